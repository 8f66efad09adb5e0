package service

import (
	"context"
	"testing"
	"time"

	"attendance-reconciler/internal/recon"
	"attendance-reconciler/pkg/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceService_CheckInOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, 1, "Amira")

	env.now = time.Date(2024, 2, 5, 8, 0, 0, 0, time.UTC)
	rec, err := env.attendance.CheckIn(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, string(recon.AttendanceCheckedIn), rec.Status)
	assert.Equal(t, calendar.MustParse("2024-02-05"), rec.Date)

	_, err = env.attendance.CheckIn(ctx, u.ID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	env.now = time.Date(2024, 2, 5, 16, 15, 0, 0, time.UTC)
	rec, err = env.attendance.CheckOut(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, string(recon.AttendanceCheckedOut), rec.Status)
	require.NotNil(t, rec.HoursWorked)
	assert.Equal(t, 8.25, *rec.HoursWorked)

	_, err = env.attendance.CheckOut(ctx, u.ID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)

	env.now = time.Date(2024, 2, 6, 8, 0, 0, 0, time.UTC)
	_, err = env.attendance.CheckOut(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestAttendanceService_ManualEditKeepsHours(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, 1, "Amira")
	day := calendar.MustParse("2024-02-07")

	hours := 6.333
	rec, err := env.attendance.ManualEdit(ctx, ManualEditRequest{
		UserID: u.ID, Date: day, HoursWorked: &hours, Status: "checked-out", AdminNotes: "forgot to scan",
	})
	require.NoError(t, err)
	assert.True(t, rec.ManuallyEdited)
	assert.Equal(t, 6.33, *rec.HoursWorked)
	assert.Equal(t, string(recon.AttendanceCheckedOut), rec.Status)

	// время прихода и ухода не переписывает ручные часы
	in := time.Date(2024, 2, 7, 8, 0, 0, 0, time.UTC)
	out := time.Date(2024, 2, 7, 17, 0, 0, 0, time.UTC)
	rec, err = env.attendance.ManualEdit(ctx, ManualEditRequest{UserID: u.ID, Date: day, CheckIn: &in, CheckOut: &out, HoursWorked: &hours})
	require.NoError(t, err)
	assert.Equal(t, 6.33, *rec.HoursWorked)

	bad := 30.0
	_, err = env.attendance.ManualEdit(ctx, ManualEditRequest{UserID: u.ID, Date: day, HoursWorked: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.attendance.ManualEdit(ctx, ManualEditRequest{UserID: u.ID, Date: day, CheckIn: &out, CheckOut: &in})
	assert.ErrorIs(t, err, ErrInvalidRange)

	records, err := env.attendance.ForPeriod(ctx, calendar.MustParse("2024-02-01"), calendar.MustParse("2024-02-29"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 6.33, records[0].Hours())
}
