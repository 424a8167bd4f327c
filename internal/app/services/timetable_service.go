package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
	"github.com/yigit/schoolcore/internal/pkg/logger"
)

// TimetableService renders weekly timetables and maintains their cells
type TimetableService interface {
	// ClassroomTimetable annotates each cell with absence and proxy data when date is set.
	ClassroomTimetable(ctx context.Context, schoolID, classroomID int64, date *time.Time) (*models.ClassroomTimetable, error)
	TeacherSchedule(ctx context.Context, schoolID, teacherID int64, date *time.Time) (*models.TeacherSchedule, error)
	UpsertEntry(ctx context.Context, actor models.Actor, entry *models.TimetableEntry) error
}

type timetableServiceImpl struct {
	store Store
}

func NewTimetableService(store Store) TimetableService {
	return &timetableServiceImpl{store: store}
}

func emptyWeek() map[string][]models.TimetableSlot {
	week := make(map[string][]models.TimetableSlot, len(calendar.SchoolWeek))
	for _, d := range calendar.SchoolWeek {
		week[d] = []models.TimetableSlot{}
	}
	return week
}

func sortWeek(week map[string][]models.TimetableSlot) {
	for _, slots := range week {
		sort.Slice(slots, func(i, j int) bool { return slots[i].Period < slots[j].Period })
	}
}

// coverage collects the active proxies of one date keyed by the original
// teacher's (classroom, day, period) slot.
type coverage map[string][]models.ProxySummary

func coverageKey(classroomID int64, day string, period int) string {
	return fmt.Sprintf("%d/%s/%d", classroomID, day, period)
}

func (s *timetableServiceImpl) loadCoverage(ctx context.Context, schoolID int64, date time.Time, originalTeacherID *int64, classroomID *int64, classrooms map[int64]string) (coverage, error) {
	proxies, err := s.store.ListProxies(ctx, models.ProxyFilter{
		OriginalTeacherID: originalTeacherID,
		ClassroomID:       classroomID,
		Date:              &date,
		Statuses:          models.ActiveProxyStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("error retrieving proxies: %w", err)
	}
	byID := make(map[int64]models.Proxy, len(proxies))
	for _, p := range proxies {
		byID[p.ID] = p
	}
	summaries, err := summarizeProxies(ctx, s.store, schoolID, proxies, classrooms)
	if err != nil {
		return nil, err
	}
	cov := make(coverage)
	for _, sum := range summaries {
		p := byID[sum.ID]
		key := coverageKey(p.ClassroomID, p.Day, p.Period)
		cov[key] = append(cov[key], sum)
	}
	return cov, nil
}

func (c coverage) proxies(classroomID int64, day string, period int) []models.ProxySummary {
	if ps, ok := c[coverageKey(classroomID, day, period)]; ok {
		return ps
	}
	return []models.ProxySummary{}
}

func (s *timetableServiceImpl) ClassroomTimetable(ctx context.Context, schoolID, classroomID int64, date *time.Time) (*models.ClassroomTimetable, error) {
	classroom, err := s.store.GetClassroom(ctx, schoolID, classroomID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrClassroomNotFound, "classroom")
	}
	school, err := s.store.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrResourceNotFound, "school")
	}

	entries, err := s.store.ListTimetable(ctx, models.TimetableFilter{ClassroomID: int64Ptr(classroom.ID)})
	if err != nil {
		return nil, fmt.Errorf("error retrieving timetable: %w", err)
	}
	teachers, err := teacherNames(ctx, s.store, schoolID)
	if err != nil {
		return nil, err
	}

	result := &models.ClassroomTimetable{
		ClassroomID:   classroom.ID,
		ClassroomName: classroom.Name,
		SchoolName:    school.Name,
		Timetable:     emptyWeek(),
	}

	absent := map[int64]bool{}
	var cov coverage
	if date != nil {
		d := calendar.Truncate(*date)
		result.Date = calendar.FormatDate(d)

		var ids []int64
		for _, e := range entries {
			if e.TeacherID != nil {
				ids = append(ids, *e.TeacherID)
			}
		}
		absences, err := s.store.ListAbsences(ctx, uniqueIDs(ids), d)
		if err != nil {
			return nil, fmt.Errorf("error retrieving absences: %w", err)
		}
		for _, a := range absences {
			absent[a.TeacherID] = true
		}
		names := map[int64]string{classroom.ID: classroom.Name}
		if cov, err = s.loadCoverage(ctx, schoolID, d, nil, int64Ptr(classroom.ID), names); err != nil {
			return nil, err
		}
	}

	for _, e := range entries {
		slot := models.TimetableSlot{
			EntryID:       e.ID,
			Period:        e.Period,
			Subject:       e.Subject,
			TeacherID:     e.TeacherID,
			ClassroomID:   e.ClassroomID,
			ClassroomName: classroom.Name,
			Proxies:       []models.ProxySummary{},
		}
		if e.TeacherID != nil {
			slot.TeacherName = teachers[*e.TeacherID]
			slot.TeacherAbsent = absent[*e.TeacherID]
		}
		if slot.TeacherAbsent && cov != nil {
			slot.Proxies = cov.proxies(e.ClassroomID, e.Day, e.Period)
		}
		result.Timetable[e.Day] = append(result.Timetable[e.Day], slot)
	}
	sortWeek(result.Timetable)
	return result, nil
}

func (s *timetableServiceImpl) TeacherSchedule(ctx context.Context, schoolID, teacherID int64, date *time.Time) (*models.TeacherSchedule, error) {
	teacher, err := s.store.GetTeacher(ctx, schoolID, teacherID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrTeacherNotFound, "teacher")
	}

	entries, err := s.store.ListTimetable(ctx, models.TimetableFilter{TeacherID: int64Ptr(teacher.ID)})
	if err != nil {
		return nil, fmt.Errorf("error retrieving timetable: %w", err)
	}
	classrooms, err := classroomNames(ctx, s.store, schoolID)
	if err != nil {
		return nil, err
	}

	result := &models.TeacherSchedule{Teacher: *teacher, Schedule: emptyWeek()}

	var cov coverage
	if date != nil {
		d := calendar.Truncate(*date)
		result.Date = calendar.FormatDate(d)
		absences, err := s.store.ListAbsences(ctx, []int64{teacher.ID}, d)
		if err != nil {
			return nil, fmt.Errorf("error retrieving absences: %w", err)
		}
		result.IsAbsentOnDate = len(absences) > 0
		if result.IsAbsentOnDate {
			if cov, err = s.loadCoverage(ctx, schoolID, d, int64Ptr(teacher.ID), nil, classrooms); err != nil {
				return nil, err
			}
		}
	}

	for _, e := range entries {
		slot := models.TimetableSlot{
			EntryID:       e.ID,
			Period:        e.Period,
			Subject:       e.Subject,
			TeacherID:     e.TeacherID,
			TeacherName:   teacher.Name,
			ClassroomID:   e.ClassroomID,
			ClassroomName: classrooms[e.ClassroomID],
			TeacherAbsent: result.IsAbsentOnDate,
			Proxies:       []models.ProxySummary{},
		}
		if cov != nil {
			slot.Proxies = cov.proxies(e.ClassroomID, e.Day, e.Period)
		}
		result.Schedule[e.Day] = append(result.Schedule[e.Day], slot)
	}
	sortWeek(result.Schedule)
	return result, nil
}

func (s *timetableServiceImpl) UpsertEntry(ctx context.Context, actor models.Actor, entry *models.TimetableEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: timetable entry is nil", apperrors.ErrValidationFailed)
	}
	entry.Day = strings.ToLower(strings.TrimSpace(entry.Day))
	if err := validateSlot(entry.Day, entry.Period); err != nil {
		return err
	}
	if strings.TrimSpace(entry.Subject) == "" {
		return fmt.Errorf("%w: subject cannot be empty", apperrors.ErrValidationFailed)
	}

	if _, err := s.store.GetClassroom(ctx, actor.SchoolID, entry.ClassroomID); err != nil {
		return notFound(err, apperrors.ErrClassroomNotFound, "classroom")
	}
	if entry.TeacherID != nil {
		if _, err := s.store.GetTeacher(ctx, actor.SchoolID, *entry.TeacherID); err != nil {
			return notFound(err, apperrors.ErrTeacherNotFound, "teacher")
		}
		// A teacher cannot be in two classrooms in the same slot.
		clash, err := s.store.ListTimetable(ctx, models.TimetableFilter{
			SchoolID:  actor.SchoolID,
			TeacherID: entry.TeacherID,
			Day:       entry.Day,
			Period:    entry.Period,
		})
		if err != nil {
			return fmt.Errorf("error retrieving timetable: %w", err)
		}
		for _, c := range clash {
			if c.ClassroomID != entry.ClassroomID {
				return apperrors.NewConflictError(fmt.Sprintf("teacher already teaches classroom %d on %s period %d", c.ClassroomID, entry.Day, entry.Period))
			}
		}
	}

	if err := s.store.UpsertTimetableEntry(ctx, entry); err != nil {
		if dberrors.IsDuplicateConstraintError(err, models.ConstraintTimetableSlot) {
			return apperrors.NewConflictError("timetable slot already taken")
		}
		return fmt.Errorf("error saving timetable entry: %w", err)
	}

	logger.Info().
		Int64("entry_id", entry.ID).
		Int64("classroom_id", entry.ClassroomID).
		Str("day", entry.Day).
		Int("period", entry.Period).
		Int64("actor_id", actor.UserID).
		Msg("Timetable entry saved")
	return nil
}
