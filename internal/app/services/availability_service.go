package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
)

// TeacherAvailabilityService decides whether teachers are free for a slot
type TeacherAvailabilityService interface {
	CheckAvailability(ctx context.Context, schoolID, teacherID int64, date time.Time, day string, period int) (*models.TeacherAvailability, error)
	// AvailableTeachersForSlot evaluates every teacher of the school except excludeTeacherID.
	AvailableTeachersForSlot(ctx context.Context, schoolID int64, date time.Time, day string, period int, excludeTeacherID int64) (*models.SlotAvailability, error)
}

// slotConflicts holds what occupies each teacher in one (date, day, period) slot.
type slotConflicts struct {
	absences map[int64]models.TeacherAttendance
	classes  map[int64]models.TimetableEntry
	proxies  map[int64]models.Proxy
}

// evaluate applies the fixed priority absent, class, proxy. First match wins.
func (c slotConflicts) evaluate(t models.Teacher) models.TeacherAvailability {
	res := models.TeacherAvailability{TeacherID: t.ID, TeacherName: t.Name}
	if a, ok := c.absences[t.ID]; ok {
		res.Reason, res.ConflictID = models.ReasonAbsent, a.ID
		return res
	}
	if e, ok := c.classes[t.ID]; ok {
		res.Reason, res.ConflictID = models.ReasonClass, e.ID
		return res
	}
	if p, ok := c.proxies[t.ID]; ok {
		res.Reason, res.ConflictID = models.ReasonProxy, p.ID
		return res
	}
	res.Available = true
	return res
}

type teacherAvailabilityServiceImpl struct {
	store Store
}

func NewTeacherAvailabilityService(store Store) TeacherAvailabilityService {
	return &teacherAvailabilityServiceImpl{store: store}
}

func validateSlot(day string, period int) error {
	if !calendar.ValidDayName(day) {
		return fmt.Errorf("%w: invalid day %q", apperrors.ErrValidationFailed, day)
	}
	if period < 1 {
		return fmt.Errorf("%w: period must be positive", apperrors.ErrValidationFailed)
	}
	return nil
}

// loadConflicts fetches absences, classes and active proxies for the slot.
func (s *teacherAvailabilityServiceImpl) loadConflicts(ctx context.Context, schoolID int64, teacherIDs []int64, date time.Time, day string, period int) (*slotConflicts, error) {
	date = calendar.Truncate(date)
	c := &slotConflicts{
		absences: make(map[int64]models.TeacherAttendance),
		classes:  make(map[int64]models.TimetableEntry),
		proxies:  make(map[int64]models.Proxy),
	}

	absences, err := s.store.ListAbsences(ctx, teacherIDs, date)
	if err != nil {
		return nil, fmt.Errorf("error retrieving absences: %w", err)
	}
	for _, a := range absences {
		c.absences[a.TeacherID] = a
	}

	entries, err := s.store.ListTimetable(ctx, models.TimetableFilter{SchoolID: schoolID, Day: day, Period: period})
	if err != nil {
		return nil, fmt.Errorf("error retrieving timetable: %w", err)
	}
	for _, e := range entries {
		if e.TeacherID != nil {
			c.classes[*e.TeacherID] = e
		}
	}

	proxies, err := s.store.ListProxies(ctx, models.ProxyFilter{
		Date:     &date,
		Day:      day,
		Period:   period,
		Statuses: models.ActiveProxyStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("error retrieving proxies: %w", err)
	}
	for _, p := range proxies {
		c.proxies[p.ProxyTeacherID] = p
	}
	return c, nil
}

func (s *teacherAvailabilityServiceImpl) CheckAvailability(ctx context.Context, schoolID, teacherID int64, date time.Time, day string, period int) (*models.TeacherAvailability, error) {
	if err := validateSlot(day, period); err != nil {
		return nil, err
	}
	teacher, err := s.store.GetTeacher(ctx, schoolID, teacherID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrTeacherNotFound, "teacher")
	}

	conflicts, err := s.loadConflicts(ctx, schoolID, []int64{teacher.ID}, date, day, period)
	if err != nil {
		return nil, err
	}
	res := conflicts.evaluate(*teacher)
	return &res, nil
}

func (s *teacherAvailabilityServiceImpl) AvailableTeachersForSlot(ctx context.Context, schoolID int64, date time.Time, day string, period int, excludeTeacherID int64) (*models.SlotAvailability, error) {
	if err := validateSlot(day, period); err != nil {
		return nil, err
	}
	teachers, err := s.store.ListTeachers(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving teachers: %w", err)
	}

	ids := make([]int64, 0, len(teachers))
	for _, t := range teachers {
		ids = append(ids, t.ID)
	}
	conflicts, err := s.loadConflicts(ctx, schoolID, ids, date, day, period)
	if err != nil {
		return nil, err
	}

	slot := &models.SlotAvailability{
		Date:        calendar.FormatDate(date),
		Day:         day,
		Period:      period,
		Available:   []models.TeacherAvailability{},
		Unavailable: []models.TeacherAvailability{},
	}
	for _, t := range teachers {
		if t.ID == excludeTeacherID {
			continue
		}
		res := conflicts.evaluate(t)
		if res.Available {
			slot.Available = append(slot.Available, res)
		} else {
			slot.Unavailable = append(slot.Unavailable, res)
		}
	}
	return slot, nil
}
