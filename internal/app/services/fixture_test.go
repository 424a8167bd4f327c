package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/app/repositories/inmem"
	"github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/pkg/clock"
)

// 2024-09-02 is a Monday.
var (
	monday   = calendar.Date(2024, time.September, 2)
	tuesday  = calendar.Date(2024, time.September, 3)
	saturday = calendar.Date(2024, time.September, 7)
	sunday   = calendar.Date(2024, time.September, 8)
	today    = calendar.Date(2024, time.September, 20)
)

type world struct {
	t      *testing.T
	ctx    context.Context
	store  *inmem.Store
	svc    *services.Services
	school models.School
	year   models.AcademicYear
	admin  models.Actor
	users  int
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{t: t, ctx: context.Background(), store: inmem.New()}

	w.school = models.School{Name: "Springfield Elementary"}
	require.NoError(t, w.store.CreateSchool(w.ctx, &w.school))
	w.year = models.AcademicYear{SchoolID: w.school.ID, Year: "2024-25", IsCurrent: true}
	require.NoError(t, w.store.CreateAcademicYear(w.ctx, &w.year))

	admin := w.user("skinner", models.UserTypeAdmin)
	w.admin = models.Actor{UserID: admin.ID, SchoolID: w.school.ID, UserType: models.UserTypeAdmin}

	w.svc = services.NewServices(w.store, clock.Fixed(today.Add(9*time.Hour)), services.DefaultSettings())
	return w
}

func datePtr(t time.Time) *time.Time { return &t }

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(v bool) *bool { return &v }

func (w *world) user(username string, typ models.UserType) models.User {
	w.t.Helper()
	w.users++
	u := models.User{
		SchoolID:  w.school.ID,
		Username:  fmt.Sprintf("%s-%d", username, w.users),
		FirstName: username,
		UserType:  typ,
	}
	require.NoError(w.t, w.store.CreateUser(w.ctx, &u))
	return u
}

func (w *world) classroom(name string, start, end *time.Time, weekend []int) models.ClassRoom {
	w.t.Helper()
	c := models.ClassRoom{
		SchoolID:       w.school.ID,
		AcademicYearID: w.year.ID,
		Name:           name,
		StartDate:      start,
		EndDate:        end,
		WeekendDays:    weekend,
	}
	require.NoError(w.t, w.store.CreateClassroom(w.ctx, &c))
	return c
}

func (w *world) students(c models.ClassRoom, n int) []models.Student {
	w.t.Helper()
	out := make([]models.Student, 0, n)
	for i := 1; i <= n; i++ {
		u := w.user("student", models.UserTypeStudent)
		st := models.Student{UserID: u.ID, ClassroomID: c.ID, RollNumber: i}
		require.NoError(w.t, w.store.CreateStudent(w.ctx, &st))
		out = append(out, st)
	}
	return out
}

func (w *world) teacher(name string) models.Teacher {
	w.t.Helper()
	u := w.user(name, models.UserTypeTeacher)
	tch := models.Teacher{UserID: u.ID, SchoolID: w.school.ID}
	require.NoError(w.t, w.store.CreateTeacher(w.ctx, &tch))
	tch.Name = u.FullName()
	return tch
}

func (w *world) holiday(d time.Time) {
	w.t.Helper()
	require.NoError(w.t, w.store.CreateHoliday(w.ctx, &models.Holiday{AcademicYearID: w.year.ID, Date: d, Name: "holiday"}))
}

func (w *world) lesson(c models.ClassRoom, day string, period int, subject string, teacherID int64) models.TimetableEntry {
	w.t.Helper()
	e := models.TimetableEntry{ClassroomID: c.ID, Day: day, Period: period, Subject: subject, TeacherID: &teacherID}
	require.NoError(w.t, w.store.UpsertTimetableEntry(w.ctx, &e))
	return e
}

func (w *world) absent(teacherID int64, d time.Time) models.TeacherAttendance {
	w.t.Helper()
	absences, err := w.svc.Absence.MarkAbsent(w.ctx, w.admin, []int64{teacherID}, d, "sick")
	require.NoError(w.t, err)
	require.Len(w.t, absences, 1)
	return absences[0]
}

func (w *world) mark(st models.Student, d time.Time, present bool) {
	w.t.Helper()
	_, err := w.store.UpsertAttendance(w.ctx, []models.Attendance{{
		StudentID:      st.ID,
		AcademicYearID: w.year.ID,
		Date:           d,
		Present:        present,
	}})
	require.NoError(w.t, err)
}
