package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
)

func TestMarkAbsentAndPresent(t *testing.T) {
	w := newWorld(t)
	a, b := w.teacher("Hoover"), w.teacher("Largo")

	absences, err := w.svc.Absence.MarkAbsent(w.ctx, w.admin, []int64{a.ID, b.ID, a.ID}, monday, " flu ")
	require.NoError(t, err)
	require.Len(t, absences, 2)
	assert.Equal(t, "flu", absences[0].Reason)
	require.NotNil(t, absences[0].MarkedBy)
	assert.Equal(t, w.admin.UserID, *absences[0].MarkedBy)

	// Marking again overwrites rather than duplicating.
	again, err := w.svc.Absence.MarkAbsent(w.ctx, w.admin, []int64{a.ID}, monday, "dentist")
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, absences[0].ID, again[0].ID)
	assert.Equal(t, "dentist", again[0].Reason)

	removed, err := w.svc.Absence.MarkPresent(w.ctx, w.admin, []int64{a.ID, b.ID}, monday)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = w.svc.Absence.MarkPresent(w.ctx, w.admin, []int64{a.ID}, monday)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestMarkAbsentRejectsUnknownTeachers(t *testing.T) {
	w := newWorld(t)
	a := w.teacher("Hoover")

	_, err := w.svc.Absence.MarkAbsent(w.ctx, w.admin, []int64{a.ID, 9999}, monday, "")
	assert.ErrorIs(t, err, apperrors.ErrTeacherNotFound)
	assert.Contains(t, err.Error(), "9999")

	_, err = w.svc.Absence.MarkAbsent(w.ctx, w.admin, nil, monday, "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	absences, err := w.store.ListAbsences(w.ctx, []int64{a.ID}, monday)
	require.NoError(t, err)
	assert.Empty(t, absences, "nothing is written when any id is rejected")
}

func TestMarkPresentIgnoresForeignTeachers(t *testing.T) {
	w := newWorld(t)
	a := w.teacher("Hoover")
	w.absent(a.ID, monday)

	removed, err := w.svc.Absence.MarkPresent(w.ctx, w.admin, []int64{a.ID, 9999}, monday)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = w.svc.Absence.MarkPresent(w.ctx, w.admin, []int64{9999}, monday)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = w.svc.Absence.MarkPresent(w.ctx, w.admin, nil, monday)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAbsenceDetails(t *testing.T) {
	f := newProxyFixture(t)
	f.lesson(f.classroom, "monday", 1, "Science", f.absentee.ID)
	f.lesson(f.classroom, "tuesday", 1, "History", f.absentee.ID)

	p, err := f.assign(f.subs[0])
	require.NoError(t, err)

	details, err := f.svc.Absence.AbsenceDetails(f.ctx, f.school.ID, f.absentee.ID, monday)
	require.NoError(t, err)
	require.NotNil(t, details.Absence)
	require.Len(t, details.Periods, 2)
	assert.Equal(t, 1, details.Periods[0].Period)
	assert.Equal(t, "5A", details.Periods[1].ClassroomName)
	require.Len(t, details.PendingProxies, 1)
	assert.Equal(t, "Hoover", details.PendingProxies[0].ProxyTeacherName)
	assert.Empty(t, details.CompletedProxies)

	_, err = f.svc.Proxy.CompleteProxy(f.ctx, f.admin, p.ID)
	require.NoError(t, err)
	details, err = f.svc.Absence.AbsenceDetails(f.ctx, f.school.ID, f.absentee.ID, monday)
	require.NoError(t, err)
	assert.Empty(t, details.PendingProxies)
	assert.Len(t, details.CompletedProxies, 1)

	present, err := f.svc.Absence.AbsenceDetails(f.ctx, f.school.ID, f.absentee.ID, tuesday)
	require.NoError(t, err)
	assert.Nil(t, present.Absence)
	assert.Len(t, present.Periods, 1)
	assert.NotNil(t, present.PendingProxies)
}

func TestClassroomTimetable(t *testing.T) {
	f := newProxyFixture(t)
	f.lesson(f.classroom, "monday", 1, "Science", f.subs[1].ID)
	_, err := f.assign(f.subs[0])
	require.NoError(t, err)

	plain, err := f.svc.Timetable.ClassroomTimetable(f.ctx, f.school.ID, f.classroom.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Springfield Elementary", plain.SchoolName)
	assert.Len(t, plain.Timetable, 5)
	require.Len(t, plain.Timetable["monday"], 2)
	assert.Equal(t, 1, plain.Timetable["monday"][0].Period)
	assert.False(t, plain.Timetable["monday"][1].TeacherAbsent)
	assert.Empty(t, plain.Timetable["friday"])

	onDate, err := f.svc.Timetable.ClassroomTimetable(f.ctx, f.school.ID, f.classroom.ID, &monday)
	require.NoError(t, err)
	assert.Equal(t, "2024-09-02", onDate.Date)
	science, math := onDate.Timetable["monday"][0], onDate.Timetable["monday"][1]
	assert.False(t, science.TeacherAbsent)
	assert.Empty(t, science.Proxies)
	assert.True(t, math.TeacherAbsent)
	assert.Equal(t, "Krabappel", math.TeacherName)
	require.Len(t, math.Proxies, 1)
	assert.Equal(t, f.subs[0].ID, math.Proxies[0].ProxyTeacherID)

	_, err = f.svc.Timetable.ClassroomTimetable(f.ctx, f.school.ID, 9999, nil)
	assert.ErrorIs(t, err, apperrors.ErrClassroomNotFound)
}

func TestTeacherSchedule(t *testing.T) {
	f := newProxyFixture(t)
	_, err := f.assign(f.subs[0])
	require.NoError(t, err)

	schedule, err := f.svc.Timetable.TeacherSchedule(f.ctx, f.school.ID, f.absentee.ID, &monday)
	require.NoError(t, err)
	assert.True(t, schedule.IsAbsentOnDate)
	require.Len(t, schedule.Schedule["monday"], 1)
	slot := schedule.Schedule["monday"][0]
	assert.Equal(t, "5A", slot.ClassroomName)
	require.Len(t, slot.Proxies, 1)
	assert.Equal(t, "Hoover", slot.Proxies[0].ProxyTeacherName)

	other, err := f.svc.Timetable.TeacherSchedule(f.ctx, f.school.ID, f.absentee.ID, &tuesday)
	require.NoError(t, err)
	assert.False(t, other.IsAbsentOnDate)
	assert.Empty(t, other.Schedule["monday"][0].Proxies)
}

func TestUpsertTimetableEntry(t *testing.T) {
	w := newWorld(t)
	a, b := w.classroom("5A", nil, nil, nil), w.classroom("5B", nil, nil, nil)
	teacher := w.teacher("Hoover")

	entry := models.TimetableEntry{ClassroomID: a.ID, Day: " Monday ", Period: 1, Subject: "Math", TeacherID: &teacher.ID}
	require.NoError(t, w.svc.Timetable.UpsertEntry(w.ctx, w.admin, &entry))
	assert.Equal(t, "monday", entry.Day)

	// Rewriting the same cell keeps its id.
	same := models.TimetableEntry{ClassroomID: a.ID, Day: "monday", Period: 1, Subject: "Art", TeacherID: &teacher.ID}
	require.NoError(t, w.svc.Timetable.UpsertEntry(w.ctx, w.admin, &same))
	assert.Equal(t, entry.ID, same.ID)

	clash := models.TimetableEntry{ClassroomID: b.ID, Day: "monday", Period: 1, Subject: "Math", TeacherID: &teacher.ID}
	err := w.svc.Timetable.UpsertEntry(w.ctx, w.admin, &clash)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	tests := []struct {
		name  string
		entry models.TimetableEntry
		want  error
	}{
		{name: "blank subject", entry: models.TimetableEntry{ClassroomID: a.ID, Day: "monday", Period: 2}, want: apperrors.ErrValidationFailed},
		{name: "bad day", entry: models.TimetableEntry{ClassroomID: a.ID, Day: "someday", Period: 2, Subject: "Math"}, want: apperrors.ErrValidationFailed},
		{name: "unknown classroom", entry: models.TimetableEntry{ClassroomID: 9999, Day: "monday", Period: 2, Subject: "Math"}, want: apperrors.ErrClassroomNotFound},
		{name: "unknown teacher", entry: models.TimetableEntry{ClassroomID: a.ID, Day: "monday", Period: 2, Subject: "Math", TeacherID: int64Ptr(9999)}, want: apperrors.ErrTeacherNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.entry
			assert.ErrorIs(t, w.svc.Timetable.UpsertEntry(w.ctx, w.admin, &e), tt.want)
		})
	}
}
