// Package calendar holds the pure date utilities shared by the attendance and
// timetable engines. All dates are calendar days normalised to midnight UTC.
//
// Weekend days use school codes 0=Sunday .. 6=Saturday, which is exactly
// time.Weekday, so no remapping is needed in Go.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DefaultWeekend applies when a classroom carries no usable weekend configuration.
var DefaultWeekend = []int{0, 6}

// SchoolWeek lists the day buckets used when rendering timetables.
var SchoolWeek = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

// Date builds a normalised calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the clock part of t, keeping its calendar day.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// ParseDate parses a strict YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekendCode returns the school day-of-week code of d.
func WeekendCode(d time.Time) int {
	return int(d.Weekday())
}

// IsWeekend reports whether d falls on one of the weekend codes.
func IsWeekend(d time.Time, weekendDays []int) bool {
	code := WeekendCode(d)
	for _, w := range weekendDays {
		if w == code {
			return true
		}
	}
	return false
}

// ParseWeekendDays normalises a stored weekend configuration: codes outside
// 0..6 are dropped, duplicates removed, and an empty result yields fallback.
func ParseWeekendDays(raw []int, fallback []int) []int {
	seen := make(map[int]bool, len(raw))
	out := make([]int, 0, len(raw))
	for _, c := range raw {
		if c < 0 || c > 6 || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		out = append(out, fallback...)
	}
	sort.Ints(out)
	return out
}

// WeekdayNames returns display names ("Sunday", ...) for weekend codes.
func WeekdayNames(codes []int) []string {
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		if c < 0 || c > 6 {
			continue
		}
		names = append(names, time.Weekday(c).String())
	}
	return names
}

// DayName returns the lowercase weekday name used as timetable key.
func DayName(d time.Time) string {
	return strings.ToLower(d.Weekday().String())
}

// ValidDayName reports whether s is a lowercase weekday name.
func ValidDayName(s string) bool {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.ToLower(wd.String()) == s {
			return true
		}
	}
	return false
}

// HolidaySet answers holiday membership in O(1).
type HolidaySet map[time.Time]struct{}

func NewHolidaySet(dates []time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[Truncate(d)] = struct{}{}
	}
	return set
}

func (h HolidaySet) Contains(d time.Time) bool {
	_, ok := h[Truncate(d)]
	return ok
}

// DayCounts breaks an inclusive range down by kind of day. A date that is both
// a weekend and a holiday counts in both Weekends and Holidays but is never a
// school day.
type DayCounts struct {
	TotalDays  int
	Weekends   int
	Holidays   int
	SchoolDays int
}

// CountDays walks [start, end] inclusive. An inverted range yields zero counts.
func CountDays(start, end time.Time, weekendDays []int, holidays HolidaySet) DayCounts {
	var c DayCounts
	EachDay(start, end, func(d time.Time) {
		c.TotalDays++
		weekend := IsWeekend(d, weekendDays)
		holiday := holidays.Contains(d)
		if weekend {
			c.Weekends++
		}
		if holiday {
			c.Holidays++
		}
		if !weekend && !holiday {
			c.SchoolDays++
		}
	})
	return c
}

// CountSchoolDays counts the days in [start, end] that are neither weekend nor holiday.
func CountSchoolDays(start, end time.Time, weekendDays []int, holidays HolidaySet) int {
	return CountDays(start, end, weekendDays, holidays).SchoolDays
}

// EachDay calls fn for every calendar day in [start, end].
func EachDay(start, end time.Time, fn func(time.Time)) {
	end = Truncate(end)
	for d := Truncate(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// MonthRange returns the first and last day of the month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := Date(year, month, 1)
	return first, first.AddDate(0, 1, -1)
}

// DaysBetween returns end-start in whole days.
func DaysBetween(start, end time.Time) int {
	return int(Truncate(end).Sub(Truncate(start)).Hours() / 24)
}

func MinDate(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func MaxDate(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// InRange reports whether d lies within [start, end].
func InRange(d, start, end time.Time) bool {
	d = Truncate(d)
	return !d.Before(Truncate(start)) && !d.After(Truncate(end))
}
