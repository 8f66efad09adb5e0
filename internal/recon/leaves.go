package recon

import "attendance-reconciler/pkg/calendar"

// MatchLeaves возвращает заявки, покрывающие день d, в исходном порядке.
// У сотрудника может быть несколько заявок на один день.
func MatchLeaves(d calendar.Date, leaves []Leave) []Leave {
	var matched []Leave
	for _, l := range leaves {
		if l.Covers(d) {
			matched = append(matched, l)
		}
	}
	return matched
}

// HasHourlyLeave - среди заявок есть хотя бы одна почасовая.
func HasHourlyLeave(leaves []Leave) bool {
	for _, l := range leaves {
		if l.Category() == LeaveHourly {
			return true
		}
	}
	return false
}

// HasFullDayLeave - есть однодневный или многодневный отпуск.
func HasFullDayLeave(leaves []Leave) bool {
	for _, l := range leaves {
		switch l.Category() {
		case LeaveSingleDay, LeaveMultipleDay:
			return true
		}
	}
	return false
}

// FilterLeaves оставляет заявки, для которых keep вернул true.
func FilterLeaves(leaves []Leave, keep func(Leave) bool) []Leave {
	out := make([]Leave, 0, len(leaves))
	for _, l := range leaves {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

// Approved - фильтр для FilterLeaves.
func Approved(l Leave) bool {
	return l.Status == LeaveApproved
}

// ActiveLeave - фильтр для календаря: ожидающие и одобренные.
func ActiveLeave(l Leave) bool {
	return l.Status.Active()
}

// HourlyOnly - фильтр почасовых заявок.
func HourlyOnly(l Leave) bool {
	return l.Category() == LeaveHourly
}

// ByUser группирует заявки по сотруднику.
func ByUser(leaves []Leave) map[string][]Leave {
	out := make(map[string][]Leave)
	for _, l := range leaves {
		out[l.UserID] = append(out[l.UserID], l)
	}
	return out
}
