package view

import (
	"fmt"
	"sort"
	"time"
)

type Resource int

const (
	Users Resource = iota
	GlobalConfig
	UserConfig
	UserConfigs
	Holidays
	Leaves
	PendingLeaves
	Attendance
)

var resourceNames = map[Resource]string{
	Users:         "users",
	GlobalConfig:  "global-config",
	UserConfig:    "user-config",
	UserConfigs:   "user-configs",
	Holidays:      "holidays",
	Leaves:        "leaves",
	PendingLeaves: "pending-leaves",
	Attendance:    "attendance",
}

func (r Resource) String() string {
	if name, ok := resourceNames[r]; ok {
		return name
	}
	return fmt.Sprintf("resource(%d)", int(r))
}

// Need - одна единица данных. Month == 0 означает весь год,
// Year == 0 - без привязки к периоду.
type Need struct {
	Resource Resource
	Year     int
	Month    time.Month
	UserID   string
}

func (n Need) String() string {
	s := n.Resource.String()
	if n.Year != 0 {
		s += fmt.Sprintf("@%d-%02d", n.Year, int(n.Month))
	}
	if n.UserID != "" {
		s += "/" + n.UserID
	}
	return s
}

type DataSet map[Need]struct{}

func NewDataSet(needs ...Need) DataSet {
	d := make(DataSet, len(needs))
	for _, n := range needs {
		d[n] = struct{}{}
	}
	return d
}

func (d DataSet) Has(n Need) bool {
	_, ok := d[n]
	return ok
}

// Merge добавляет other к набору и возвращает его же
func (d DataSet) Merge(other DataSet) DataSet {
	for n := range other {
		d[n] = struct{}{}
	}
	return d
}

// Missing - то, что нужно, но еще не загружено, в стабильном порядке
func (d DataSet) Missing(loaded DataSet) []Need {
	var out []Need
	for n := range d {
		if !loaded.Has(n) {
			out = append(out, n)
		}
	}
	sortNeeds(out)
	return out
}

func (d DataSet) Needs() []Need {
	out := make([]Need, 0, len(d))
	for n := range d {
		out = append(out, n)
	}
	sortNeeds(out)
	return out
}

func sortNeeds(needs []Need) {
	sort.Slice(needs, func(i, j int) bool {
		a, b := needs[i], needs[j]
		if a.Resource != b.Resource {
			return a.Resource < b.Resource
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.UserID < b.UserID
	})
}

// Required выводит набор данных, нужный экрану с параметрами p.
// Одинаковые параметры всегда дают одинаковый набор.
func Required(p Params) DataSet {
	d := make(DataSet)
	switch p.View {
	case Reports:
		months := []time.Month{p.Month}
		if p.Mode == ModeYear {
			months = months[:0]
			for m := time.January; m <= time.December; m++ {
				months = append(months, m)
			}
		}
		d[Need{Resource: Users}] = struct{}{}
		for _, m := range months {
			for _, r := range []Resource{GlobalConfig, UserConfigs, Holidays, Leaves, Attendance} {
				d[Need{Resource: r, Year: p.Year, Month: m}] = struct{}{}
			}
		}

	case Calendar:
		d[Need{Resource: GlobalConfig, Year: p.Year, Month: p.Month}] = struct{}{}
		d[Need{Resource: Holidays, Year: p.Year, Month: p.Month}] = struct{}{}
		d[Need{Resource: Leaves, Year: p.Year, Month: p.Month, UserID: p.UserID}] = struct{}{}
		if p.UserID != "" {
			d[Need{Resource: UserConfig, Year: p.Year, Month: p.Month, UserID: p.UserID}] = struct{}{}
		}

	case Settings:
		d[Need{Resource: GlobalConfig, Year: p.Year, Month: p.Month}] = struct{}{}
		if p.Mode == ModeUser {
			d[Need{Resource: Users}] = struct{}{}
			d[Need{Resource: UserConfig, Year: p.Year, Month: p.Month, UserID: p.UserID}] = struct{}{}
		}

	case Vacations:
		d[Need{Resource: Users}] = struct{}{}
		d[Need{Resource: PendingLeaves}] = struct{}{}
		d[Need{Resource: Leaves, Year: p.Year, UserID: p.UserID}] = struct{}{}
	}
	return d
}
