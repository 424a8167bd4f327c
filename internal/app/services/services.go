package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/clock"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
)

// Settings carries the school-calendar knobs read from configuration.
type Settings struct {
	// DefaultWeekend applies to classrooms without a weekend configuration.
	DefaultWeekend []int
	// PeriodsPerDay is used when the timetable has no entries to derive it from.
	PeriodsPerDay int
	// FallbackStart and FallbackEnd bound trend reports when no classroom has dates.
	FallbackStart time.Time
	FallbackEnd   time.Time
}

func DefaultSettings() Settings {
	return Settings{
		DefaultWeekend: calendar.DefaultWeekend,
		PeriodsPerDay:  5,
		FallbackStart:  calendar.Date(2024, time.June, 1),
		FallbackEnd:    calendar.Date(2025, time.April, 30),
	}
}

// Services holds every engine built over one store.
type Services struct {
	AcademicYear AcademicYearService
	Enrollment   EnrollmentService
	Stats        AttendanceStatsService
	Attendance   AttendanceService
	PeriodStats  PeriodStatisticsService
	Availability TeacherAvailabilityService
	Proxy        ProxyService
	Absence      AbsenceService
	Timetable    TimetableService
}

// NewServices wires the engines together.
func NewServices(store Store, clk clock.Clock, settings Settings) *Services {
	if len(settings.DefaultWeekend) == 0 {
		settings.DefaultWeekend = calendar.DefaultWeekend
	}
	if settings.PeriodsPerDay < 1 {
		settings.PeriodsPerDay = 5
	}

	years := NewAcademicYearService(store, settings)
	availability := NewTeacherAvailabilityService(store)

	return &Services{
		AcademicYear: years,
		Enrollment:   NewEnrollmentService(store),
		Stats:        NewAttendanceStatsService(store, years, clk, settings),
		Attendance:   NewAttendanceService(store, years, clk, settings),
		PeriodStats:  NewPeriodStatisticsService(store, years, settings),
		Availability: availability,
		Proxy:        NewProxyService(store, availability, clk, settings),
		Absence:      NewAbsenceService(store),
		Timetable:    NewTimetableService(store),
	}
}

// notFound maps the store's ErrNotFound onto the given domain error.
func notFound(err error, domainErr error, what string) error {
	if errors.Is(err, dberrors.ErrNotFound) {
		return domainErr
	}
	return fmt.Errorf("error retrieving %s: %w", what, err)
}

func percentage(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round2(float64(present) / float64(total) * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func weekendOf(c *models.ClassRoom, settings Settings) []int {
	if c == nil {
		return calendar.ParseWeekendDays(nil, settings.DefaultWeekend)
	}
	return calendar.ParseWeekendDays(c.WeekendDays, settings.DefaultWeekend)
}

func holidaySet(ctx context.Context, store AcademicYearStore, yearID int64) (calendar.HolidaySet, error) {
	dates, err := store.ListHolidayDates(ctx, yearID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving holidays: %w", err)
	}
	return calendar.NewHolidaySet(dates), nil
}

func studentIDs(students []models.Student) []int64 {
	ids := make([]int64, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func int64Ptr(v int64) *int64 {
	return &v
}

// dayTally counts marked and present records on one date.
type dayTally struct {
	present int
	total   int
}

func tallyByDate(records []models.Attendance) map[time.Time]dayTally {
	byDate := make(map[time.Time]dayTally)
	for _, r := range records {
		d := calendar.Truncate(r.Date)
		t := byDate[d]
		t.total++
		if r.Present {
			t.present++
		}
		byDate[d] = t
	}
	return byDate
}

// sumRange adds up the tallies of every date in [start, end].
func sumRange(byDate map[time.Time]dayTally, start, end time.Time) dayTally {
	var sum dayTally
	calendar.EachDay(start, end, func(d time.Time) {
		t := byDate[d]
		sum.present += t.present
		sum.total += t.total
	})
	return sum
}
