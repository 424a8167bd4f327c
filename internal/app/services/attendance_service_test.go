package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
)

func testValidator() services.AttendanceValidator {
	return services.AttendanceValidator{
		Year: models.AcademicYear{ID: 7},
		Students: map[int64]models.ClassRoom{
			10: {ID: 1, WeekendDays: []int{0}},
			20: {ID: 2},
		},
		Holidays:       calendar.NewHolidaySet([]time.Time{calendar.Date(2024, time.September, 10)}),
		Today:          today,
		DefaultWeekend: calendar.DefaultWeekend,
	}
}

func TestAttendanceValidatorChecks(t *testing.T) {
	tests := []struct {
		name      string
		mark      services.AttendanceMark
		wantErr   string
		wantWrite bool
	}{
		{
			name:    "missing student",
			mark:    services.AttendanceMark{Date: "2024-09-02", Present: boolPtr(true)},
			wantErr: "Record 0: Missing student_id or date",
		},
		{
			name:    "missing date",
			mark:    services.AttendanceMark{StudentID: 10, Present: boolPtr(true)},
			wantErr: "Record 0: Missing student_id or date",
		},
		{
			name:    "unknown student",
			mark:    services.AttendanceMark{StudentID: 99, Date: "2024-09-02", Present: boolPtr(true)},
			wantErr: "Record 0: Invalid student_id 99",
		},
		{
			name:    "bad date",
			mark:    services.AttendanceMark{StudentID: 10, Date: "02/09/2024", Present: boolPtr(true)},
			wantErr: "Record 0: Invalid date format 02/09/2024",
		},
		{
			name:    "future date",
			mark:    services.AttendanceMark{StudentID: 10, Date: "2024-09-21", Present: boolPtr(true)},
			wantErr: "Record 0: Cannot mark attendance for future date (2024-09-21). Today is 2024-09-20",
		},
		{
			name:    "classroom weekend",
			mark:    services.AttendanceMark{StudentID: 10, Date: "2024-09-08", Present: boolPtr(true)},
			wantErr: "Record 0: Cannot mark on weekend (2024-09-08)",
		},
		{
			name:      "saturday is a school day for a sunday-only classroom",
			mark:      services.AttendanceMark{StudentID: 10, Date: "2024-09-07", Present: boolPtr(true)},
			wantWrite: true,
		},
		{
			name:    "default weekend applies without configuration",
			mark:    services.AttendanceMark{StudentID: 20, Date: "2024-09-07", Present: boolPtr(true)},
			wantErr: "Record 0: Cannot mark on weekend (2024-09-07)",
		},
		{
			name:    "holiday",
			mark:    services.AttendanceMark{StudentID: 10, Date: "2024-09-10", Present: boolPtr(true)},
			wantErr: "Record 0: Cannot mark on holiday (2024-09-10)",
		},
		{
			name: "nil present is skipped silently",
			mark: services.AttendanceMark{StudentID: 10, Date: "2024-09-02"},
		},
		{
			name:      "today is allowed",
			mark:      services.AttendanceMark{StudentID: 10, Date: "2024-09-20", Present: boolPtr(false)},
			wantWrite: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, errs := testValidator().Validate([]services.AttendanceMark{tt.mark})
			if tt.wantErr != "" {
				assert.Equal(t, []string{tt.wantErr}, errs)
			} else {
				assert.Empty(t, errs)
			}
			if tt.wantWrite {
				require.Len(t, records, 1)
				assert.Equal(t, tt.mark.StudentID, records[0].StudentID)
				assert.Equal(t, int64(7), records[0].AcademicYearID)
				assert.Equal(t, *tt.mark.Present, records[0].Present)
			} else {
				assert.Empty(t, records)
			}
		})
	}
}

func TestAttendanceValidatorEmptyBatch(t *testing.T) {
	records, errs := testValidator().Validate(nil)
	assert.Empty(t, records)
	assert.Equal(t, []string{"No attendance records provided"}, errs)
}

func TestAttendanceValidatorCollapsesRepeats(t *testing.T) {
	records, errs := testValidator().Validate([]services.AttendanceMark{
		{StudentID: 10, Date: "2024-09-02", Present: boolPtr(true)},
		{StudentID: 10, Date: "2024-09-03", Present: boolPtr(true)},
		{StudentID: 10, Date: "2024-09-02", Present: boolPtr(false)},
	})
	assert.Empty(t, errs)
	require.Len(t, records, 2)
	assert.Equal(t, monday, records[0].Date)
	assert.False(t, records[0].Present)
}

func TestSubmitAttendancePartialBatch(t *testing.T) {
	w := newWorld(t)
	c := w.classroom("5A", nil, nil, []int{0})
	st := w.students(c, 2)

	result, err := w.svc.Attendance.SubmitAttendance(w.ctx, w.admin, nil, []services.AttendanceMark{
		{StudentID: st[0].ID, Date: "2024-09-02", Present: boolPtr(true)},
		{StudentID: st[1].ID, Date: "2024-09-08", Present: boolPtr(true)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, []string{"Record 1: Cannot mark on weekend (2024-09-08)"}, result.Errors)

	rows, err := w.store.ListAttendance(w.ctx, models.AttendanceFilter{StudentIDs: []int64{st[0].ID, st[1].ID}, From: monday, To: today})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].MarkedBy)
	assert.Equal(t, w.admin.UserID, *rows[0].MarkedBy)
}

func TestSubmitAttendanceIsIdempotentAndOverwrites(t *testing.T) {
	w := newWorld(t)
	c := w.classroom("5A", nil, nil, nil)
	st := w.students(c, 1)[0]
	filter := models.AttendanceFilter{StudentIDs: []int64{st.ID}, From: monday, To: today}

	batch := []services.AttendanceMark{{StudentID: st.ID, Date: "2024-09-02", Present: boolPtr(true)}}
	for i := 0; i < 2; i++ {
		result, err := w.svc.Attendance.SubmitAttendance(w.ctx, w.admin, nil, batch)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Processed)
	}
	rows, err := w.store.ListAttendance(w.ctx, filter)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Present)

	batch[0].Present = boolPtr(false)
	_, err = w.svc.Attendance.SubmitAttendance(w.ctx, w.admin, nil, batch)
	require.NoError(t, err)
	rows, err = w.store.ListAttendance(w.ctx, filter)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Present)
}

func TestSubmitAttendanceNothingValid(t *testing.T) {
	w := newWorld(t)
	w.classroom("5A", nil, nil, nil)

	result, err := w.svc.Attendance.SubmitAttendance(w.ctx, w.admin, nil, []services.AttendanceMark{
		{StudentID: 12345, Date: "2024-09-02", Present: boolPtr(true)},
	})
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.Equal(t, []string{"Record 0: Invalid student_id 12345"}, result.Errors)
}

func TestSubmitAttendanceSkipsUnsetPresent(t *testing.T) {
	w := newWorld(t)
	c := w.classroom("5A", nil, nil, nil)
	st := w.students(c, 2)

	result, err := w.svc.Attendance.SubmitAttendance(w.ctx, w.admin, nil, []services.AttendanceMark{
		{StudentID: st[0].ID, Date: "2024-09-02"},
		{StudentID: st[1].ID, Date: "2024-09-02", Present: boolPtr(true)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 2, result.Total)
	require.NotNil(t, result.Errors)
	assert.Empty(t, result.Errors)

	rows, err := w.store.ListAttendance(w.ctx, models.AttendanceFilter{StudentIDs: []int64{st[0].ID, st[1].ID}, From: monday, To: today})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, st[1].ID, rows[0].StudentID)

	result, err = w.svc.Attendance.SubmitAttendance(w.ctx, w.admin, nil, []services.AttendanceMark{
		{StudentID: st[0].ID, Date: "2024-09-03"},
	})
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.Equal(t, []string{}, result.Errors)
}

func TestSubmitAttendanceWithoutCurrentYear(t *testing.T) {
	w := newWorld(t)
	other := models.School{Name: "Shelbyville"}
	require.NoError(t, w.store.CreateSchool(w.ctx, &other))

	actor := w.admin
	actor.SchoolID = other.ID
	_, err := w.svc.Attendance.SubmitAttendance(w.ctx, actor, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrAcademicYearNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestUpdateAndDeleteAttendance(t *testing.T) {
	w := newWorld(t)
	c := w.classroom("5A", nil, nil, nil)
	st := w.students(c, 1)[0]
	w.mark(st, monday, true)

	rows, err := w.store.ListAttendance(w.ctx, models.AttendanceFilter{StudentIDs: []int64{st.ID}, From: monday, To: monday})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	id := rows[0].ID

	updated, err := w.svc.Attendance.UpdateAttendance(w.ctx, w.admin, id, false)
	require.NoError(t, err)
	assert.False(t, updated.Present)

	require.NoError(t, w.svc.Attendance.DeleteAttendance(w.ctx, w.admin, id))
	err = w.svc.Attendance.DeleteAttendance(w.ctx, w.admin, id)
	assert.ErrorIs(t, err, apperrors.ErrAttendanceNotFound)
}
