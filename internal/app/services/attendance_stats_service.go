package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
	"github.com/yigit/schoolcore/internal/pkg/clock"
)

// AttendanceStatsService computes expected-versus-marked attendance per classroom and school
type AttendanceStatsService interface {
	// ClassroomStats returns nil when the classroom has no enrolled students.
	ClassroomStats(ctx context.Context, classroom models.ClassRoom, year models.AcademicYear, holidays calendar.HolidaySet, asOf time.Time) (*models.ClassroomStats, error)
	ClassroomStatsByID(ctx context.Context, schoolID, classroomID int64, yearID *int64) (*models.ClassroomStats, error)
	SchoolWideStats(ctx context.Context, schoolID int64, year models.AcademicYear, today time.Time) (*models.SchoolStats, error)
	TodayStats(ctx context.Context, schoolID int64, yearID *int64) (*models.SchoolSnapshot, error)
	// MonthlyStats defaults month and calendarYear to the clock's current month when zero.
	MonthlyStats(ctx context.Context, schoolID int64, yearID *int64, month int, calendarYear int) (*models.SchoolSnapshot, error)
	// SchoolStatistics dispatches on period: overall, today or monthly.
	// Any other period yields the empty school shape.
	SchoolStatistics(ctx context.Context, schoolID int64, yearID *int64, period string, month, calendarYear int) (interface{}, error)
	Today() time.Time
}

const (
	SchoolPeriodOverall = "overall"
	SchoolPeriodToday   = "today"
	SchoolPeriodMonthly = "monthly"
)

type attendanceStatsServiceImpl struct {
	store    Store
	years    AcademicYearService
	clock    clock.Clock
	settings Settings
}

func NewAttendanceStatsService(store Store, years AcademicYearService, clk clock.Clock, settings Settings) AttendanceStatsService {
	return &attendanceStatsServiceImpl{store: store, years: years, clock: clk, settings: settings}
}

func (s *attendanceStatsServiceImpl) Today() time.Time {
	return clock.Today(s.clock)
}

// StatsRange is the window classroom statistics are computed over: the
// classroom's own dates capped at asOf, or the calendar year to date.
func StatsRange(c models.ClassRoom, asOf time.Time) (time.Time, time.Time) {
	asOf = calendar.Truncate(asOf)
	if c.HasDateRange() {
		return calendar.Truncate(*c.StartDate), calendar.MinDate(calendar.Truncate(*c.EndDate), asOf)
	}
	return calendar.Date(asOf.Year(), time.January, 1), asOf
}

// BuildClassroomStats is the pure part of the classroom computation.
func BuildClassroomStats(c models.ClassRoom, studentCount int, records []models.Attendance, weekendDays []int, holidays calendar.HolidaySet, start, end time.Time) *models.ClassroomStats {
	if studentCount == 0 {
		return nil
	}

	expected := calendar.CountSchoolDays(start, end, weekendDays, holidays) * studentCount

	marked, present := 0, 0
	for _, r := range records {
		if !calendar.InRange(r.Date, start, end) {
			continue
		}
		marked++
		if r.Present {
			present++
		}
	}

	pending := expected - marked
	if pending < 0 {
		pending = 0
	}

	return &models.ClassroomStats{
		ClassroomID:          c.ID,
		ClassroomName:        c.Name,
		StudentCount:         studentCount,
		AttendanceRecords:    marked,
		PresentCount:         present,
		ExpectedRecords:      expected,
		PendingRecords:       pending,
		IsCompleted:          pending == 0,
		AttendancePercentage: percentage(present, marked),
		StartDate:            calendar.FormatDate(start),
		EndDate:              calendar.FormatDate(end),
	}
}

func (s *attendanceStatsServiceImpl) ClassroomStats(ctx context.Context, classroom models.ClassRoom, year models.AcademicYear, holidays calendar.HolidaySet, asOf time.Time) (*models.ClassroomStats, error) {
	students, err := s.store.ListStudents(ctx, models.StudentFilter{
		SchoolID:       classroom.SchoolID,
		ClassroomID:    int64Ptr(classroom.ID),
		AcademicYearID: int64Ptr(year.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("error retrieving students: %w", err)
	}
	if len(students) == 0 {
		return nil, nil
	}

	start, end := StatsRange(classroom, asOf)
	var records []models.Attendance
	if !start.After(end) {
		records, err = s.store.ListAttendance(ctx, models.AttendanceFilter{
			StudentIDs:     studentIDs(students),
			From:           start,
			To:             end,
			AcademicYearID: int64Ptr(year.ID),
		})
		if err != nil {
			return nil, fmt.Errorf("error retrieving attendance: %w", err)
		}
	}

	return BuildClassroomStats(classroom, len(students), records, weekendOf(&classroom, s.settings), holidays, start, end), nil
}

func (s *attendanceStatsServiceImpl) ClassroomStatsByID(ctx context.Context, schoolID, classroomID int64, yearID *int64) (*models.ClassroomStats, error) {
	classroom, err := s.store.GetClassroom(ctx, schoolID, classroomID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrClassroomNotFound, "classroom")
	}
	if yearID == nil {
		yearID = &classroom.AcademicYearID
	}
	year, err := s.years.ResolveYear(ctx, schoolID, yearID)
	if err != nil {
		return nil, err
	}
	holidays, err := holidaySet(ctx, s.store, year.ID)
	if err != nil {
		return nil, err
	}

	stats, err := s.ClassroomStats(ctx, *classroom, *year, holidays, s.Today())
	if err != nil {
		return nil, err
	}
	if stats == nil {
		start, end := StatsRange(*classroom, s.Today())
		stats = &models.ClassroomStats{
			ClassroomID:   classroom.ID,
			ClassroomName: classroom.Name,
			IsCompleted:   true,
			StartDate:     calendar.FormatDate(start),
			EndDate:       calendar.FormatDate(end),
		}
	}
	return stats, nil
}

// EmptySchoolStats is the explicit all-zero result for a school without classrooms.
func EmptySchoolStats(year models.AcademicYear, asOf time.Time) *models.SchoolStats {
	return &models.SchoolStats{
		Year:             year.Year,
		AsOfDate:         calendar.FormatDate(asOf),
		ClassroomDetails: []models.ClassroomStats{},
	}
}

func (s *attendanceStatsServiceImpl) SchoolWideStats(ctx context.Context, schoolID int64, year models.AcademicYear, today time.Time) (*models.SchoolStats, error) {
	classrooms, err := s.store.ListClassrooms(ctx, schoolID, int64Ptr(year.ID))
	if err != nil {
		return nil, fmt.Errorf("error retrieving classrooms: %w", err)
	}
	if len(classrooms) == 0 {
		return EmptySchoolStats(year, today), nil
	}

	holidays, err := holidaySet(ctx, s.store, year.ID)
	if err != nil {
		return nil, err
	}

	result := EmptySchoolStats(year, today)
	totals := &result.SchoolStatistics
	for _, c := range classrooms {
		stats, err := s.ClassroomStats(ctx, c, year, holidays, today)
		if err != nil {
			return nil, err
		}
		if stats == nil {
			continue
		}
		result.ClassroomDetails = append(result.ClassroomDetails, *stats)
		totals.TotalStudents += stats.StudentCount
		totals.TotalPresent += stats.PresentCount
		totals.TotalAttendanceRecords += stats.AttendanceRecords
		totals.ExpectedRecords += stats.ExpectedRecords
		if stats.IsCompleted {
			totals.ClassroomsCompleted++
		}
	}

	// Classrooms without students count as pending.
	totals.TotalClassrooms = len(classrooms)
	totals.ClassroomsPending = len(classrooms) - totals.ClassroomsCompleted
	totals.OverallAttendancePercentage = percentage(totals.TotalPresent, totals.TotalAttendanceRecords)
	totals.PendingRecords = totals.ExpectedRecords - totals.TotalAttendanceRecords
	if totals.PendingRecords < 0 {
		totals.PendingRecords = 0
	}
	return result, nil
}

func (s *attendanceStatsServiceImpl) TodayStats(ctx context.Context, schoolID int64, yearID *int64) (*models.SchoolSnapshot, error) {
	today := s.Today()
	return s.snapshot(ctx, schoolID, yearID, "today", today, today)
}

func (s *attendanceStatsServiceImpl) MonthlyStats(ctx context.Context, schoolID int64, yearID *int64, month int, calendarYear int) (*models.SchoolSnapshot, error) {
	today := s.Today()
	if month == 0 {
		month = int(today.Month())
	}
	if calendarYear == 0 {
		calendarYear = today.Year()
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", apperrors.ErrValidationFailed)
	}
	from, to := calendar.MonthRange(calendarYear, time.Month(month))
	return s.snapshot(ctx, schoolID, yearID, "monthly", from, to)
}

func (s *attendanceStatsServiceImpl) SchoolStatistics(ctx context.Context, schoolID int64, yearID *int64, period string, month, calendarYear int) (interface{}, error) {
	switch period {
	case SchoolPeriodToday:
		return s.TodayStats(ctx, schoolID, yearID)
	case SchoolPeriodMonthly:
		return s.MonthlyStats(ctx, schoolID, yearID, month, calendarYear)
	}

	year, err := s.years.ResolveYear(ctx, schoolID, yearID)
	if err != nil {
		return nil, err
	}
	if period == "" || period == SchoolPeriodOverall {
		return s.SchoolWideStats(ctx, schoolID, *year, s.Today())
	}
	return &models.SchoolStats{
		Year:             year.Year,
		AsOfDate:         calendar.FormatDate(s.Today()),
		Period:           period,
		ClassroomDetails: []models.ClassroomStats{},
	}, nil
}

// snapshot reports marked attendance in [from, to] for every classroom that has
// at least one record in the window.
func (s *attendanceStatsServiceImpl) snapshot(ctx context.Context, schoolID int64, yearID *int64, period string, from, to time.Time) (*models.SchoolSnapshot, error) {
	year, err := s.years.ResolveYear(ctx, schoolID, yearID)
	if err != nil {
		return nil, err
	}

	result := &models.SchoolSnapshot{
		Year:             year.Year,
		AsOfDate:         calendar.FormatDate(s.Today()),
		Period:           period,
		From:             calendar.FormatDate(from),
		To:               calendar.FormatDate(to),
		ClassroomDetails: []models.ClassroomSnapshot{},
	}

	classrooms, err := s.store.ListClassrooms(ctx, schoolID, int64Ptr(year.ID))
	if err != nil {
		return nil, fmt.Errorf("error retrieving classrooms: %w", err)
	}

	totals := &result.SchoolStatistics
	for _, c := range classrooms {
		students, err := s.store.ListStudents(ctx, models.StudentFilter{
			SchoolID:       schoolID,
			ClassroomID:    int64Ptr(c.ID),
			AcademicYearID: int64Ptr(year.ID),
		})
		if err != nil {
			return nil, fmt.Errorf("error retrieving students: %w", err)
		}
		if len(students) == 0 {
			continue
		}

		records, err := s.store.ListAttendance(ctx, models.AttendanceFilter{
			StudentIDs:     studentIDs(students),
			AcademicYearID: int64Ptr(year.ID),
			From:           from,
			To:             to,
		})
		if err != nil {
			return nil, fmt.Errorf("error retrieving attendance: %w", err)
		}
		if len(records) == 0 {
			continue
		}

		sum := sumRange(tallyByDate(records), from, to)
		result.ClassroomDetails = append(result.ClassroomDetails, models.ClassroomSnapshot{
			ClassroomID:          c.ID,
			ClassroomName:        c.Name,
			StudentCount:         len(students),
			AttendanceRecords:    sum.total,
			PresentCount:         sum.present,
			AttendancePercentage: percentage(sum.present, sum.total),
		})
		totals.TotalStudents += len(students)
		totals.TotalPresent += sum.present
		totals.TotalAttendanceRecords += sum.total
	}
	totals.OverallAttendancePercentage = percentage(totals.TotalPresent, totals.TotalAttendanceRecords)
	return result, nil
}
