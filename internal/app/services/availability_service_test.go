package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
)

func TestCheckAvailabilityTeachingClass(t *testing.T) {
	w := newWorld(t)
	c := w.classroom("X", nil, nil, nil)
	teacher := w.teacher("Hoover")
	entry := w.lesson(c, "monday", 2, "Reading", teacher.ID)

	busy, err := w.svc.Availability.CheckAvailability(w.ctx, w.school.ID, teacher.ID, monday, "monday", 2)
	require.NoError(t, err)
	assert.False(t, busy.Available)
	assert.Equal(t, models.ReasonClass, busy.Reason)
	assert.Equal(t, entry.ID, busy.ConflictID)
	assert.Equal(t, "Hoover", busy.TeacherName)

	free, err := w.svc.Availability.CheckAvailability(w.ctx, w.school.ID, teacher.ID, monday, "monday", 3)
	require.NoError(t, err)
	assert.True(t, free.Available)
	assert.Empty(t, free.Reason)
}

func TestCheckAvailabilityPriority(t *testing.T) {
	f := newProxyFixture(t)

	// Absent beats the class the absentee would have taught.
	absent, err := f.svc.Availability.CheckAvailability(f.ctx, f.school.ID, f.absentee.ID, monday, "monday", 3)
	require.NoError(t, err)
	assert.Equal(t, models.ReasonAbsent, absent.Reason)
	assert.Equal(t, f.absence.ID, absent.ConflictID)

	p, err := f.assign(f.subs[0])
	require.NoError(t, err)
	covering, err := f.svc.Availability.CheckAvailability(f.ctx, f.school.ID, f.subs[0].ID, monday, "monday", 3)
	require.NoError(t, err)
	assert.Equal(t, models.ReasonProxy, covering.Reason)
	assert.Equal(t, p.ID, covering.ConflictID)

	// A cancelled proxy frees the substitute again.
	_, err = f.svc.Proxy.CancelProxy(f.ctx, f.admin, p.ID)
	require.NoError(t, err)
	covering, err = f.svc.Availability.CheckAvailability(f.ctx, f.school.ID, f.subs[0].ID, monday, "monday", 3)
	require.NoError(t, err)
	assert.True(t, covering.Available)
}

func TestAvailableTeachersForSlot(t *testing.T) {
	f := newProxyFixture(t)
	_, err := f.assign(f.subs[0])
	require.NoError(t, err)

	slot, err := f.svc.Availability.AvailableTeachersForSlot(f.ctx, f.school.ID, monday, "monday", 3, f.absentee.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-09-02", slot.Date)

	require.Len(t, slot.Available, 1)
	assert.Equal(t, f.subs[1].ID, slot.Available[0].TeacherID)
	require.Len(t, slot.Unavailable, 1)
	assert.Equal(t, f.subs[0].ID, slot.Unavailable[0].TeacherID)
	assert.Equal(t, models.ReasonProxy, slot.Unavailable[0].Reason)
}

func TestAvailabilityRejectsBadSlot(t *testing.T) {
	w := newWorld(t)
	teacher := w.teacher("Hoover")

	tests := []struct {
		name   string
		day    string
		period int
	}{
		{name: "unknown day", day: "funday", period: 1},
		{name: "capitalised day", day: "Monday", period: 1},
		{name: "zero period", day: "monday", period: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.svc.Availability.CheckAvailability(w.ctx, w.school.ID, teacher.ID, monday, tt.day, tt.period)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
			_, err = w.svc.Availability.AvailableTeachersForSlot(w.ctx, w.school.ID, monday, tt.day, tt.period, 0)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}

	_, err := w.svc.Availability.CheckAvailability(w.ctx, w.school.ID, 9999, monday, "monday", 1)
	assert.ErrorIs(t, err, apperrors.ErrTeacherNotFound)
}
