package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
)

// Report periods
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// PeriodStatisticsService breaks attendance into trend buckets
type PeriodStatisticsService interface {
	// Report covers one classroom, or every student of the year when classroomID is nil.
	Report(ctx context.Context, schoolID int64, yearID *int64, classroomID *int64, period string) (*models.PeriodReport, error)
	// DateRange returns the bounds trend reports use for the classroom (or school).
	DateRange(ctx context.Context, schoolID int64, classroom *models.ClassRoom) (time.Time, time.Time, error)
}

type periodStatisticsServiceImpl struct {
	store    Store
	years    AcademicYearService
	settings Settings
}

func NewPeriodStatisticsService(store Store, years AcademicYearService, settings Settings) PeriodStatisticsService {
	return &periodStatisticsServiceImpl{store: store, years: years, settings: settings}
}

func (s *periodStatisticsServiceImpl) Report(ctx context.Context, schoolID int64, yearID *int64, classroomID *int64, period string) (*models.PeriodReport, error) {
	year, err := s.years.ResolveYear(ctx, schoolID, yearID)
	if err != nil {
		return nil, err
	}

	report := &models.PeriodReport{
		Period:     period,
		Year:       year.Year,
		Classroom:  "All",
		Statistics: []interface{}{},
	}

	filter := models.StudentFilter{SchoolID: schoolID, AcademicYearID: int64Ptr(year.ID)}
	var classroom *models.ClassRoom
	if classroomID != nil {
		classroom, err = s.store.GetClassroom(ctx, schoolID, *classroomID)
		if err != nil {
			return nil, notFound(err, apperrors.ErrClassroomNotFound, "classroom")
		}
		report.Classroom = classroom.Name
		filter.ClassroomID = int64Ptr(classroom.ID)
	}

	start, end, err := s.DateRange(ctx, schoolID, classroom)
	if err != nil {
		return nil, err
	}
	report.From, report.To = calendar.FormatDate(start), calendar.FormatDate(end)

	students, err := s.store.ListStudents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error retrieving students: %w", err)
	}
	if len(students) == 0 {
		return report, nil
	}
	ids := studentIDs(students)

	holidays, err := holidaySet(ctx, s.store, year.ID)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListAttendance(ctx, models.AttendanceFilter{
		StudentIDs:     ids,
		From:           start,
		To:             end,
		AcademicYearID: int64Ptr(year.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("error retrieving attendance: %w", err)
	}

	switch period {
	case PeriodDaily:
		report.Statistics = DailyStatistics(records, len(ids), start, end, holidays)
	case PeriodWeekly:
		report.Statistics = WeeklyStatistics(records, len(ids), start, end)
	case PeriodMonthly:
		report.Statistics = MonthlyStatistics(records, len(ids), start, end, weekendOf(classroom, s.settings), holidays)
	case PeriodYearly:
		report.Statistics = YearlyStatistics(records, start, end)
	}
	return report, nil
}

func (s *periodStatisticsServiceImpl) DateRange(ctx context.Context, schoolID int64, classroom *models.ClassRoom) (time.Time, time.Time, error) {
	if classroom != nil && classroom.HasDateRange() {
		return calendar.Truncate(*classroom.StartDate), calendar.Truncate(*classroom.EndDate), nil
	}

	classrooms, err := s.store.ListClassrooms(ctx, schoolID, nil)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("error retrieving classrooms: %w", err)
	}

	var start, end *time.Time
	for _, c := range classrooms {
		if c.StartDate != nil && (start == nil || c.StartDate.Before(*start)) {
			start = c.StartDate
		}
		if c.EndDate != nil && (end == nil || c.EndDate.After(*end)) {
			end = c.EndDate
		}
	}

	from, to := s.settings.FallbackStart, s.settings.FallbackEnd
	if start != nil {
		from = calendar.Truncate(*start)
	}
	if end != nil {
		to = calendar.Truncate(*end)
	}
	return from, to, nil
}

// DailyStatistics emits one row per non-holiday date that has at least one mark.
func DailyStatistics(records []models.Attendance, studentCount int, start, end time.Time, holidays calendar.HolidaySet) []models.DailyStat {
	byDate := tallyByDate(records)
	stats := make([]models.DailyStat, 0)
	calendar.EachDay(start, end, func(d time.Time) {
		if holidays.Contains(d) {
			return
		}
		t := byDate[d]
		if t.total == 0 {
			return
		}
		stats = append(stats, models.DailyStat{
			Date:    calendar.FormatDate(d),
			Present: t.present,
			Total:   t.total,
			Pending: studentCount - t.total,
		})
	})
	return stats
}

// WeeklyStatistics splits the range into 7-day windows, the last one cut at end.
// The pending estimate scales by the days elapsed between the window bounds.
func WeeklyStatistics(records []models.Attendance, studentCount int, start, end time.Time) []models.WeeklyStat {
	byDate := tallyByDate(records)
	stats := make([]models.WeeklyStat, 0)
	end = calendar.Truncate(end)
	week := 1
	for cur := calendar.Truncate(start); !cur.After(end); week++ {
		weekEnd := calendar.MinDate(cur.AddDate(0, 0, 6), end)
		sum := sumRange(byDate, cur, weekEnd)

		pending := studentCount*calendar.DaysBetween(cur, weekEnd) - sum.total
		if pending < 0 {
			pending = 0
		}
		stats = append(stats, models.WeeklyStat{
			Week:    fmt.Sprintf("Week %d: %s to %s", week, calendar.FormatDate(cur), calendar.FormatDate(weekEnd)),
			Present: sum.present,
			Total:   sum.total,
			Pending: pending,
		})
		cur = weekEnd.AddDate(0, 0, 1)
	}
	return stats
}

// MonthlyStatistics emits one row per calendar month touched by the range.
func MonthlyStatistics(records []models.Attendance, studentCount int, start, end time.Time, weekendDays []int, holidays calendar.HolidaySet) []models.MonthlyStat {
	byDate := tallyByDate(records)
	stats := make([]models.MonthlyStat, 0)
	end = calendar.Truncate(end)
	for cur := calendar.Truncate(start); !cur.After(end); {
		_, last := calendar.MonthRange(cur.Year(), cur.Month())
		monthEnd := calendar.MinDate(last, end)

		days := calendar.CountDays(cur, monthEnd, weekendDays, holidays)
		sum := sumRange(byDate, cur, monthEnd)

		expected := days.SchoolDays * studentCount
		pending := expected - sum.total
		if pending < 0 {
			pending = 0
		}
		stats = append(stats, models.MonthlyStat{
			Month:        cur.Month().String(),
			TotalDays:    days.TotalDays,
			Holidays:     days.Holidays,
			Weekends:     days.Weekends,
			ExpectedDays: days.SchoolDays,
			Present:      sum.present,
			Absent:       sum.total - sum.present,
			Pending:      pending,
		})
		cur = calendar.Date(cur.Year(), cur.Month()+1, 1)
	}
	return stats
}

// YearlyStatistics aggregates the whole range into one row.
func YearlyStatistics(records []models.Attendance, start, end time.Time) []models.YearlyStat {
	sum := sumRange(tallyByDate(records), start, end)
	return []models.YearlyStat{{
		Present:    sum.present,
		Total:      sum.total,
		Pending:    sum.total - sum.present,
		Percentage: percentage(sum.present, sum.total),
	}}
}
