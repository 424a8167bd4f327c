package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
)

type proxyFixture struct {
	*world
	classroom models.ClassRoom
	absentee  models.Teacher
	absence   models.TeacherAttendance
	subs      []models.Teacher
}

// newProxyFixture: Krabappel teaches 5A Math in period 3 on Monday and is away.
func newProxyFixture(t *testing.T) *proxyFixture {
	w := newWorld(t)
	f := &proxyFixture{world: w}
	f.classroom = w.classroom("5A", nil, nil, nil)
	f.absentee = w.teacher("Krabappel")
	w.lesson(f.classroom, "monday", 3, "Math", f.absentee.ID)
	f.absence = w.absent(f.absentee.ID, monday)
	f.subs = []models.Teacher{w.teacher("Hoover"), w.teacher("Largo")}
	return f
}

func (f *proxyFixture) assign(sub models.Teacher) (*models.Proxy, error) {
	return f.svc.Proxy.AssignProxy(f.ctx, f.admin, services.ProxyAssignment{
		AbsenceID:      f.absence.ID,
		ClassroomID:    f.classroom.ID,
		Period:         3,
		ProxyTeacherID: sub.ID,
	})
}

func TestAssignProxyReassignmentKeepsOneRow(t *testing.T) {
	f := newProxyFixture(t)

	first, err := f.assign(f.subs[0])
	require.NoError(t, err)
	assert.Equal(t, "Math", first.Subject, "subject comes from the timetable cell")
	assert.Equal(t, "monday", first.Day)
	assert.Equal(t, monday, first.Date)
	assert.Equal(t, f.absentee.ID, first.OriginalTeacherID)

	second, err := f.assign(f.subs[1])
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	rows, err := f.store.ListProxies(f.ctx, models.ProxyFilter{AbsenceID: &f.absence.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.subs[1].ID, rows[0].ProxyTeacherID)
	assert.Equal(t, models.ProxyAssigned, rows[0].Status)
}

func TestAssignProxySameSubstituteTwice(t *testing.T) {
	f := newProxyFixture(t)

	_, err := f.assign(f.subs[0])
	require.NoError(t, err)
	_, err = f.assign(f.subs[0])
	require.NoError(t, err, "the substitute's own slot does not block a reassignment")
}

func TestAssignProxyRejections(t *testing.T) {
	f := newProxyFixture(t)
	other := f.world.classroom("5B", nil, nil, nil)
	f.lesson(other, "monday", 3, "Art", f.subs[0].ID)

	_, err := f.assign(f.subs[0])
	assert.ErrorIs(t, err, apperrors.ErrTeacherNotAvailable)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, models.ReasonClass, custom.Details["reason"])

	_, err = f.assign(f.absentee)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.Proxy.AssignProxy(f.ctx, f.admin, services.ProxyAssignment{
		AbsenceID: f.absence.ID, ClassroomID: f.classroom.ID, Period: 0, ProxyTeacherID: f.subs[1].ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.Proxy.AssignProxy(f.ctx, f.admin, services.ProxyAssignment{
		AbsenceID: 9999, ClassroomID: f.classroom.ID, Period: 3, ProxyTeacherID: f.subs[1].ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrAbsenceNotFound)
}

func TestProxyStateMachine(t *testing.T) {
	f := newProxyFixture(t)

	cancelled, err := f.svc.Proxy.CancelProxy(f.ctx, f.admin, 9999)
	require.NoError(t, err)
	assert.False(t, cancelled, "missing proxies are reported, not raised")

	p, err := f.assign(f.subs[0])
	require.NoError(t, err)

	cancelled, err = f.svc.Proxy.CancelProxy(f.ctx, f.admin, p.ID)
	require.NoError(t, err)
	assert.True(t, cancelled)

	_, err = f.svc.Proxy.CancelProxy(f.ctx, f.admin, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrProxyNotAssigned)
	_, err = f.svc.Proxy.CompleteProxy(f.ctx, f.admin, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrProxyNotAssigned)

	// Assigning again revives the cancelled slot.
	revived, err := f.assign(f.subs[1])
	require.NoError(t, err)
	assert.Equal(t, p.ID, revived.ID)

	done, err := f.svc.Proxy.CompleteProxy(f.ctx, f.admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProxyCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, today.Add(9*time.Hour), *done.CompletedAt)

	_, err = f.assign(f.subs[0])
	assert.ErrorIs(t, err, apperrors.ErrConflict, "a completed slot cannot be reassigned")
}

func TestTeacherProxySchedule(t *testing.T) {
	f := newProxyFixture(t)
	sub := f.subs[0]

	_, err := f.assign(sub)
	require.NoError(t, err)

	schedule, err := f.svc.Proxy.TeacherProxySchedule(f.ctx, f.school.ID, sub.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, "2024-09-02", schedule.Date)
	assert.Equal(t, 3, schedule.TotalPeriods, "day length follows the timetable")
	assert.Equal(t, []int{1, 2}, schedule.FreePeriods)
	assert.Equal(t, 1, schedule.TotalAssignedProxies)

	idle, err := f.svc.Proxy.TeacherProxySchedule(f.ctx, f.school.ID, sub.ID, tuesday)
	require.NoError(t, err)
	assert.NotNil(t, idle.AssignedProxies)
	assert.Empty(t, idle.AssignedProxies)
	assert.Equal(t, []int{1, 2, 3}, idle.FreePeriods)

	_, err = f.svc.Proxy.TeacherProxySchedule(f.ctx, f.school.ID, 9999, monday)
	assert.ErrorIs(t, err, apperrors.ErrTeacherNotFound)
}

func TestTeacherProxyScheduleWithoutTimetable(t *testing.T) {
	w := newWorld(t)
	sub := w.teacher("Hoover")

	schedule, err := w.svc.Proxy.TeacherProxySchedule(w.ctx, w.school.ID, sub.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, 5, schedule.TotalPeriods)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, schedule.FreePeriods)
}
