package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
)

var _ services.Store = (*Store)(nil)

type fixture struct {
	store     *Store
	school    models.School
	year      models.AcademicYear
	classroom models.ClassRoom
	teacher   models.Teacher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: New()}

	f.school = models.School{Name: "Springfield"}
	require.NoError(t, f.store.CreateSchool(ctx, &f.school))
	f.year = models.AcademicYear{SchoolID: f.school.ID, Year: "2024-2025", IsCurrent: true}
	require.NoError(t, f.store.CreateAcademicYear(ctx, &f.year))
	f.classroom = models.ClassRoom{SchoolID: f.school.ID, AcademicYearID: f.year.ID, Name: "5A"}
	require.NoError(t, f.store.CreateClassroom(ctx, &f.classroom))

	u := models.User{SchoolID: f.school.ID, Username: "edna", FirstName: "Edna", LastName: "K", UserType: models.UserTypeTeacher}
	require.NoError(t, f.store.CreateUser(ctx, &u))
	f.teacher = models.Teacher{UserID: u.ID, SchoolID: f.school.ID}
	require.NoError(t, f.store.CreateTeacher(ctx, &f.teacher))
	return f
}

func (f *fixture) student(t *testing.T, username string, classroomID int64, roll int) (models.Student, error) {
	t.Helper()
	u := models.User{SchoolID: f.school.ID, Username: username, UserType: models.UserTypeStudent}
	require.NoError(t, f.store.CreateUser(context.Background(), &u))
	st := models.Student{UserID: u.ID, ClassroomID: classroomID, RollNumber: roll}
	err := f.store.CreateStudent(context.Background(), &st)
	return st, err
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.GetClassroom(ctx, f.school.ID, 999)
	assert.ErrorIs(t, err, dberrors.ErrNotFound)

	// Scoped lookups do not leak across schools.
	_, err = f.store.GetClassroom(ctx, f.school.ID+100, f.classroom.ID)
	assert.ErrorIs(t, err, dberrors.ErrNotFound)

	_, err = f.store.GetCurrentAcademicYear(ctx, 12345)
	assert.ErrorIs(t, err, dberrors.ErrNotFound)
}

func TestTeacherNameComesFromUser(t *testing.T) {
	f := newFixture(t)
	got, err := f.store.GetTeacher(context.Background(), f.school.ID, f.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edna K", got.Name)
}

func TestCreateStudentEnforcesEnrollmentKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := models.ClassRoom{SchoolID: f.school.ID, AcademicYearID: f.year.ID, Name: "5B"}
	require.NoError(t, f.store.CreateClassroom(ctx, &other))

	first, err := f.student(t, "bart", f.classroom.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, f.year.ID, first.AcademicYearID, "year is copied from the classroom")

	// Same user, other classroom of the same year.
	dup := models.Student{UserID: first.UserID, ClassroomID: other.ID, RollNumber: 7}
	err = f.store.CreateStudent(ctx, &dup)
	assert.True(t, dberrors.IsDuplicateConstraintError(err, models.ConstraintStudentUserYear))

	// Roll number reused in the same classroom.
	_, err = f.student(t, "lisa", f.classroom.ID, 1)
	assert.True(t, dberrors.IsDuplicateConstraintError(err, models.ConstraintStudentRoll))

	taken, err := f.store.RollNumberTaken(ctx, f.classroom.ID, 1)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestCreateAcademicYearSingleCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	next := models.AcademicYear{SchoolID: f.school.ID, Year: "2025-2026", IsCurrent: true}
	err := f.store.CreateAcademicYear(ctx, &next)
	assert.True(t, dberrors.IsDuplicateConstraintError(err, models.ConstraintAcademicYearCurrent))

	next.IsCurrent = false
	require.NoError(t, f.store.CreateAcademicYear(ctx, &next))
	require.NoError(t, f.store.SetCurrentAcademicYear(ctx, f.school.ID, next.ID))

	current, err := f.store.GetCurrentAcademicYear(ctx, f.school.ID)
	require.NoError(t, err)
	assert.Equal(t, next.ID, current.ID)

	old, err := f.store.GetAcademicYear(ctx, f.school.ID, f.year.ID)
	require.NoError(t, err)
	assert.False(t, old.IsCurrent)
}

func TestUpsertAttendanceOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st, err := f.student(t, "bart", f.classroom.ID, 1)
	require.NoError(t, err)

	day := calendar.Date(2024, time.September, 2)
	_, err = f.store.UpsertAttendance(ctx, []models.Attendance{{StudentID: st.ID, AcademicYearID: f.year.ID, Date: day, Present: true}})
	require.NoError(t, err)
	_, err = f.store.UpsertAttendance(ctx, []models.Attendance{{StudentID: st.ID, AcademicYearID: f.year.ID, Date: day, Present: false}})
	require.NoError(t, err)

	rows, err := f.store.ListAttendance(ctx, models.AttendanceFilter{StudentIDs: []int64{st.ID}, From: day, To: day})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Present)
}

func TestListAttendanceEmptyStudentSet(t *testing.T) {
	f := newFixture(t)
	rows, err := f.store.ListAttendance(context.Background(), models.AttendanceFilter{})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestDeleteTeacherAttendanceCascadesProxies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := calendar.Date(2024, time.September, 2)

	_, err := f.store.UpsertTeacherAttendance(ctx, []models.TeacherAttendance{{TeacherID: f.teacher.ID, Date: day, Status: models.TeacherAbsent}})
	require.NoError(t, err)
	absences, err := f.store.ListAbsences(ctx, []int64{f.teacher.ID}, day)
	require.NoError(t, err)
	require.Len(t, absences, 1)

	p := models.Proxy{
		AbsenceID: absences[0].ID, ClassroomID: f.classroom.ID, Day: "monday", Period: 1, Date: day,
		OriginalTeacherID: f.teacher.ID, ProxyTeacherID: f.teacher.ID, Subject: "Math", Status: models.ProxyAssigned,
	}
	require.NoError(t, f.store.UpsertProxy(ctx, &p))

	removed, err := f.store.DeleteTeacherAttendance(ctx, []int64{f.teacher.ID}, day)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.store.GetProxy(ctx, p.ID)
	assert.ErrorIs(t, err, dberrors.ErrNotFound)
}

func TestUpsertProxyReusesSlotRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := calendar.Date(2024, time.September, 2)

	_, err := f.store.UpsertTeacherAttendance(ctx, []models.TeacherAttendance{{TeacherID: f.teacher.ID, Date: day, Status: models.TeacherAbsent}})
	require.NoError(t, err)
	absence, err := f.store.FindTeacherAttendance(ctx, f.teacher.ID, day)
	require.NoError(t, err)

	first := models.Proxy{AbsenceID: absence.ID, ClassroomID: f.classroom.ID, Day: "monday", Period: 2, Date: day, ProxyTeacherID: 10, Status: models.ProxyAssigned}
	require.NoError(t, f.store.UpsertProxy(ctx, &first))
	require.NoError(t, f.store.UpdateProxyStatus(ctx, first.ID, []models.ProxyStatus{models.ProxyAssigned}, models.ProxyCancelled, nil))

	second := models.Proxy{AbsenceID: absence.ID, ClassroomID: f.classroom.ID, Day: "monday", Period: 2, Date: day, ProxyTeacherID: 11, Status: models.ProxyAssigned}
	require.NoError(t, f.store.UpsertProxy(ctx, &second))
	assert.Equal(t, first.ID, second.ID)

	got, err := f.store.GetProxy(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProxyAssigned, got.Status)
	assert.Equal(t, int64(11), got.ProxyTeacherID)
}

func TestUpdateProxyStatusChecksFromStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := calendar.Date(2024, time.September, 2)

	_, err := f.store.UpsertTeacherAttendance(ctx, []models.TeacherAttendance{{TeacherID: f.teacher.ID, Date: day, Status: models.TeacherAbsent}})
	require.NoError(t, err)
	absence, err := f.store.FindTeacherAttendance(ctx, f.teacher.ID, day)
	require.NoError(t, err)

	p := models.Proxy{AbsenceID: absence.ID, ClassroomID: f.classroom.ID, Day: "monday", Period: 1, Date: day, Status: models.ProxyCompleted}
	require.NoError(t, f.store.UpsertProxy(ctx, &p))

	err = f.store.UpdateProxyStatus(ctx, p.ID, []models.ProxyStatus{models.ProxyAssigned}, models.ProxyCancelled, nil)
	assert.ErrorIs(t, err, dberrors.ErrNotFound)
	err = f.store.UpdateProxyStatus(ctx, 999, []models.ProxyStatus{models.ProxyAssigned}, models.ProxyCancelled, nil)
	assert.ErrorIs(t, err, dberrors.ErrNotFound)
}

func TestTimetableUpsertAndMaxPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	highest, err := f.store.MaxPeriod(ctx, f.school.ID)
	require.NoError(t, err)
	assert.Zero(t, highest)

	e := models.TimetableEntry{ClassroomID: f.classroom.ID, Day: "monday", Period: 6, Subject: "Math"}
	require.NoError(t, f.store.UpsertTimetableEntry(ctx, &e))
	again := models.TimetableEntry{ClassroomID: f.classroom.ID, Day: "monday", Period: 6, Subject: "Art", TeacherID: &f.teacher.ID}
	require.NoError(t, f.store.UpsertTimetableEntry(ctx, &again))
	assert.Equal(t, e.ID, again.ID)

	entries, err := f.store.ListTimetable(ctx, models.TimetableFilter{SchoolID: f.school.ID, TeacherID: &f.teacher.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Art", entries[0].Subject)

	highest, err = f.store.MaxPeriod(ctx, f.school.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, highest)
}
