package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
)

func TestEnrollStudent(t *testing.T) {
	w := newWorld(t)
	c := w.classroom("X", nil, nil, nil)
	u := w.user("milhouse", models.UserTypeStudent)

	st, err := w.svc.Enrollment.EnrollStudent(w.ctx, w.admin, services.Enrollment{UserID: u.ID, ClassroomID: c.ID, RollNumber: 4})
	require.NoError(t, err)
	assert.NotZero(t, st.ID)
	assert.Equal(t, w.year.ID, st.AcademicYearID)
	assert.Equal(t, 4, st.RollNumber)
}

func TestEnrollStudentOncePerYear(t *testing.T) {
	w := newWorld(t)
	x := w.classroom("X", nil, nil, nil)
	y := w.classroom("Y", nil, nil, nil)
	u := w.user("milhouse", models.UserTypeStudent)

	first, err := w.svc.Enrollment.EnrollStudent(w.ctx, w.admin, services.Enrollment{UserID: u.ID, ClassroomID: x.ID, RollNumber: 1})
	require.NoError(t, err)

	_, err = w.svc.Enrollment.EnrollStudent(w.ctx, w.admin, services.Enrollment{UserID: u.ID, ClassroomID: y.ID, RollNumber: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "X")
	assert.Contains(t, err.Error(), "2024-25")

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, first.ID, custom.Details["student_id"])
	assert.Equal(t, x.ID, custom.Details["classroom_id"])
	assert.Equal(t, "X", custom.Details["classroom_name"])

	students, err := w.store.ListStudents(w.ctx, models.StudentFilter{SchoolID: w.school.ID, ClassroomID: &y.ID})
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestEnrollStudentNextYear(t *testing.T) {
	w := newWorld(t)
	x := w.classroom("X", nil, nil, nil)
	u := w.user("milhouse", models.UserTypeStudent)
	_, err := w.svc.Enrollment.EnrollStudent(w.ctx, w.admin, services.Enrollment{UserID: u.ID, ClassroomID: x.ID, RollNumber: 1})
	require.NoError(t, err)

	next := models.AcademicYear{SchoolID: w.school.ID, Year: "2025-26"}
	require.NoError(t, w.store.CreateAcademicYear(w.ctx, &next))
	later := models.ClassRoom{SchoolID: w.school.ID, AcademicYearID: next.ID, Name: "X"}
	require.NoError(t, w.store.CreateClassroom(w.ctx, &later))

	_, err = w.svc.Enrollment.EnrollStudent(w.ctx, w.admin, services.Enrollment{UserID: u.ID, ClassroomID: later.ID, RollNumber: 1})
	assert.NoError(t, err)
}

func TestEnrollStudentRejections(t *testing.T) {
	w := newWorld(t)
	c := w.classroom("X", nil, nil, nil)
	w.students(c, 1)
	teacher := w.user("hoover", models.UserTypeTeacher)
	pupil := w.user("nelson", models.UserTypeStudent)

	tests := []struct {
		name    string
		req     services.Enrollment
		wantErr error
	}{
		{name: "roll number below one", req: services.Enrollment{UserID: pupil.ID, ClassroomID: c.ID}, wantErr: apperrors.ErrValidationFailed},
		{name: "roll number taken", req: services.Enrollment{UserID: pupil.ID, ClassroomID: c.ID, RollNumber: 1}, wantErr: apperrors.ErrRollNumberTaken},
		{name: "not a student", req: services.Enrollment{UserID: teacher.ID, ClassroomID: c.ID, RollNumber: 2}, wantErr: apperrors.ErrValidationFailed},
		{name: "unknown classroom", req: services.Enrollment{UserID: pupil.ID, ClassroomID: 9999, RollNumber: 2}, wantErr: apperrors.ErrClassroomNotFound},
		{name: "unknown user", req: services.Enrollment{UserID: 9999, ClassroomID: c.ID, RollNumber: 2}, wantErr: apperrors.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.svc.Enrollment.EnrollStudent(w.ctx, w.admin, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSetCurrentYearAndWeekendConfig(t *testing.T) {
	w := newWorld(t)
	next := models.AcademicYear{SchoolID: w.school.ID, Year: "2025-26"}
	require.NoError(t, w.store.CreateAcademicYear(w.ctx, &next))

	year, err := w.svc.AcademicYear.SetCurrentYear(w.ctx, w.admin, next.ID)
	require.NoError(t, err)
	assert.True(t, year.IsCurrent)

	current, err := w.svc.AcademicYear.CurrentYear(w.ctx, w.school.ID)
	require.NoError(t, err)
	assert.Equal(t, next.ID, current.ID)

	_, err = w.svc.AcademicYear.SetCurrentYear(w.ctx, w.admin, 9999)
	assert.ErrorIs(t, err, apperrors.ErrAcademicYearNotFound)

	friday := w.classroom("F", nil, nil, []int{5, 5, 9})
	cfg, err := w.svc.AcademicYear.WeekendConfig(w.ctx, w.school.ID, friday.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, cfg.WeekendDays)
	assert.Equal(t, []string{"Friday"}, cfg.WeekendNames)

	plain := w.classroom("P", nil, nil, nil)
	cfg, err = w.svc.AcademicYear.WeekendConfig(w.ctx, w.school.ID, plain.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sunday", "Saturday"}, cfg.WeekendNames)
}
