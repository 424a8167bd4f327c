package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
	"github.com/yigit/schoolcore/internal/pkg/clock"
	"github.com/yigit/schoolcore/internal/pkg/logger"
)

// AttendanceMark is one submitted attendance record. Zero StudentID or empty
// Date mean the field was missing; a nil Present means "do not write".
type AttendanceMark struct {
	StudentID int64
	Date      string
	Present   *bool
}

// AttendanceResult reports a partially applied batch.
type AttendanceResult struct {
	Message   string   `json:"message"`
	Processed int      `json:"processed"`
	Total     int      `json:"total"`
	Errors    []string `json:"errors"`
}

// AttendanceService validates and writes student attendance
type AttendanceService interface {
	// SubmitAttendance writes every valid mark and reports the rejected ones.
	// The year defaults to the school's current year.
	SubmitAttendance(ctx context.Context, actor models.Actor, yearID *int64, marks []AttendanceMark) (*AttendanceResult, error)
	UpdateAttendance(ctx context.Context, actor models.Actor, id int64, present bool) (*models.Attendance, error)
	DeleteAttendance(ctx context.Context, actor models.Actor, id int64) error
}

// AttendanceValidator checks a batch against the school calendar.
// Students maps every student of the school to its classroom.
type AttendanceValidator struct {
	Year           models.AcademicYear
	Students       map[int64]models.ClassRoom
	Holidays       calendar.HolidaySet
	Today          time.Time
	DefaultWeekend []int
}

// Validate returns the records to write and an index-tagged message per
// rejected mark. Repeated (student, date) pairs collapse onto the last one.
func (v AttendanceValidator) Validate(marks []AttendanceMark) ([]models.Attendance, []string) {
	errs := &apperrors.ValidationErrors{}
	if len(marks) == 0 {
		errs.Add("No attendance records provided")
		return nil, errs.Messages
	}

	today := calendar.Truncate(v.Today)
	valid := make([]models.Attendance, 0, len(marks))
	seen := make(map[string]int, len(marks))

	for idx, m := range marks {
		if m.StudentID == 0 || m.Date == "" {
			errs.Addf(idx, "Missing student_id or date")
			continue
		}

		classroom, ok := v.Students[m.StudentID]
		if !ok {
			errs.Addf(idx, "Invalid student_id %d", m.StudentID)
			continue
		}

		date, err := calendar.ParseDate(m.Date)
		if err != nil {
			errs.Addf(idx, "Invalid date format %s", m.Date)
			continue
		}

		if date.After(today) {
			errs.Addf(idx, "Cannot mark attendance for future date (%s). Today is %s", m.Date, calendar.FormatDate(today))
			continue
		}

		if calendar.IsWeekend(date, calendar.ParseWeekendDays(classroom.WeekendDays, v.DefaultWeekend)) {
			errs.Addf(idx, "Cannot mark on weekend (%s)", m.Date)
			continue
		}

		if v.Holidays.Contains(date) {
			errs.Addf(idx, "Cannot mark on holiday (%s)", m.Date)
			continue
		}

		if m.Present == nil {
			continue
		}

		rec := models.Attendance{
			StudentID:      m.StudentID,
			AcademicYearID: v.Year.ID,
			Date:           date,
			Present:        *m.Present,
		}
		key := fmt.Sprintf("%d/%s", m.StudentID, calendar.FormatDate(date))
		if i, dup := seen[key]; dup {
			valid[i] = rec
			continue
		}
		seen[key] = len(valid)
		valid = append(valid, rec)
	}
	return valid, errs.Messages
}

type attendanceServiceImpl struct {
	store    Store
	years    AcademicYearService
	clock    clock.Clock
	settings Settings
}

func NewAttendanceService(store Store, years AcademicYearService, clk clock.Clock, settings Settings) AttendanceService {
	return &attendanceServiceImpl{store: store, years: years, clock: clk, settings: settings}
}

// validator loads the calendar data a batch is checked against.
func (s *attendanceServiceImpl) validator(ctx context.Context, schoolID int64, year models.AcademicYear, marks []AttendanceMark) (*AttendanceValidator, error) {
	ids := make([]int64, 0, len(marks))
	for _, m := range marks {
		ids = append(ids, m.StudentID)
	}
	ids = uniqueIDs(ids)

	v := &AttendanceValidator{
		Year:           year,
		Students:       make(map[int64]models.ClassRoom, len(ids)),
		Today:          clock.Today(s.clock),
		DefaultWeekend: s.settings.DefaultWeekend,
	}

	var err error
	if v.Holidays, err = holidaySet(ctx, s.store, year.ID); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return v, nil
	}

	students, err := s.store.ListStudents(ctx, models.StudentFilter{SchoolID: schoolID, IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("error retrieving students: %w", err)
	}
	classrooms, err := s.store.ListClassrooms(ctx, schoolID, nil)
	if err != nil {
		return nil, fmt.Errorf("error retrieving classrooms: %w", err)
	}
	byID := make(map[int64]models.ClassRoom, len(classrooms))
	for _, c := range classrooms {
		byID[c.ID] = c
	}
	for _, st := range students {
		if c, ok := byID[st.ClassroomID]; ok {
			v.Students[st.ID] = c
		}
	}
	return v, nil
}

func (s *attendanceServiceImpl) SubmitAttendance(ctx context.Context, actor models.Actor, yearID *int64, marks []AttendanceMark) (*AttendanceResult, error) {
	year, err := s.years.ResolveYear(ctx, actor.SchoolID, yearID)
	if err != nil {
		return nil, err
	}

	v, err := s.validator(ctx, actor.SchoolID, *year, marks)
	if err != nil {
		return nil, err
	}
	records, errs := v.Validate(marks)
	if errs == nil {
		errs = []string{}
	}

	result := &AttendanceResult{Total: len(marks), Errors: errs}
	if len(records) == 0 {
		result.Message = "Saved 0 attendance records"
		return result, nil
	}

	for i := range records {
		records[i].MarkedBy = int64Ptr(actor.UserID)
	}
	count, err := s.store.UpsertAttendance(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("error saving attendance: %w", err)
	}

	result.Processed = count
	result.Message = fmt.Sprintf("Saved %d attendance records", count)

	logger.Info().
		Int64("school_id", actor.SchoolID).
		Int64("academic_year_id", year.ID).
		Int64("actor_id", actor.UserID).
		Int("saved", count).
		Int("rejected", len(errs)).
		Msg("Attendance submitted")
	return result, nil
}

func (s *attendanceServiceImpl) UpdateAttendance(ctx context.Context, actor models.Actor, id int64, present bool) (*models.Attendance, error) {
	rec, err := s.store.GetAttendance(ctx, actor.SchoolID, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrAttendanceNotFound, "attendance record")
	}
	if err := s.store.UpdateAttendancePresent(ctx, id, present, int64Ptr(actor.UserID)); err != nil {
		return nil, notFound(err, apperrors.ErrAttendanceNotFound, "attendance record")
	}
	rec.Present = present
	rec.MarkedBy = int64Ptr(actor.UserID)
	return rec, nil
}

func (s *attendanceServiceImpl) DeleteAttendance(ctx context.Context, actor models.Actor, id int64) error {
	if _, err := s.store.GetAttendance(ctx, actor.SchoolID, id); err != nil {
		return notFound(err, apperrors.ErrAttendanceNotFound, "attendance record")
	}
	if err := s.store.DeleteAttendance(ctx, id); err != nil {
		return notFound(err, apperrors.ErrAttendanceNotFound, "attendance record")
	}
	logger.Info().Int64("attendance_id", id).Int64("actor_id", actor.UserID).Msg("Attendance record deleted")
	return nil
}
