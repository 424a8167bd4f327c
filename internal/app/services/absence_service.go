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
	"github.com/yigit/schoolcore/internal/pkg/logger"
)

// AbsenceService records teacher absences and describes their impact
type AbsenceService interface {
	MarkAbsent(ctx context.Context, actor models.Actor, teacherIDs []int64, date time.Time, reason string) ([]models.TeacherAttendance, error)
	// MarkPresent removes the absences and returns how many were removed.
	MarkPresent(ctx context.Context, actor models.Actor, teacherIDs []int64, date time.Time) (int, error)
	AbsenceDetails(ctx context.Context, schoolID, teacherID int64, date time.Time) (*models.AbsenceDetails, error)
}

type absenceServiceImpl struct {
	store Store
}

func NewAbsenceService(store Store) AbsenceService {
	return &absenceServiceImpl{store: store}
}

// schoolTeachers splits the requested ids into teachers of the school and
// ids it does not know.
func (s *absenceServiceImpl) schoolTeachers(ctx context.Context, schoolID int64, teacherIDs []int64) (found []int64, missing []string, err error) {
	ids := uniqueIDs(teacherIDs)
	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("%w: teacher_ids cannot be empty", apperrors.ErrValidationFailed)
	}

	teachers, err := s.store.ListTeachers(ctx, schoolID)
	if err != nil {
		return nil, nil, fmt.Errorf("error retrieving teachers: %w", err)
	}
	known := make(map[int64]bool, len(teachers))
	for _, t := range teachers {
		known[t.ID] = true
	}

	for _, id := range ids {
		if known[id] {
			found = append(found, id)
		} else {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	return found, missing, nil
}

func (s *absenceServiceImpl) MarkAbsent(ctx context.Context, actor models.Actor, teacherIDs []int64, date time.Time, reason string) ([]models.TeacherAttendance, error) {
	ids, missing, err := s.schoolTeachers(ctx, actor.SchoolID, teacherIDs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrTeacherNotFound,
			"teachers not found in this school: "+strings.Join(missing, ", "))
	}
	date = calendar.Truncate(date)

	rows := make([]models.TeacherAttendance, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.TeacherAttendance{
			TeacherID: id,
			Date:      date,
			Status:    models.TeacherAbsent,
			Reason:    strings.TrimSpace(reason),
			MarkedBy:  int64Ptr(actor.UserID),
		})
	}
	if _, err := s.store.UpsertTeacherAttendance(ctx, rows); err != nil {
		return nil, fmt.Errorf("error marking teachers absent: %w", err)
	}

	absences, err := s.store.ListAbsences(ctx, ids, date)
	if err != nil {
		return nil, fmt.Errorf("error retrieving absences: %w", err)
	}

	logger.Info().
		Int64("school_id", actor.SchoolID).
		Str("date", calendar.FormatDate(date)).
		Int("teachers", len(ids)).
		Int64("actor_id", actor.UserID).
		Msg("Teachers marked absent")
	return absences, nil
}

func (s *absenceServiceImpl) MarkPresent(ctx context.Context, actor models.Actor, teacherIDs []int64, date time.Time) (int, error) {
	// Ids from other schools are ignored.
	ids, _, err := s.schoolTeachers(ctx, actor.SchoolID, teacherIDs)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	removed, err := s.store.DeleteTeacherAttendance(ctx, ids, calendar.Truncate(date))
	if err != nil {
		return 0, fmt.Errorf("error marking teachers present: %w", err)
	}

	logger.Info().
		Int64("school_id", actor.SchoolID).
		Str("date", calendar.FormatDate(date)).
		Int("removed", removed).
		Int64("actor_id", actor.UserID).
		Msg("Teacher absences removed")
	return removed, nil
}

func (s *absenceServiceImpl) AbsenceDetails(ctx context.Context, schoolID, teacherID int64, date time.Time) (*models.AbsenceDetails, error) {
	teacher, err := s.store.GetTeacher(ctx, schoolID, teacherID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrTeacherNotFound, "teacher")
	}
	date = calendar.Truncate(date)
	day := calendar.DayName(date)

	details := &models.AbsenceDetails{
		Teacher:          *teacher,
		Date:             calendar.FormatDate(date),
		Periods:          []models.AbsentPeriod{},
		PendingProxies:   []models.ProxySummary{},
		CompletedProxies: []models.ProxySummary{},
	}

	entries, err := s.store.ListTimetable(ctx, models.TimetableFilter{TeacherID: int64Ptr(teacher.ID), Day: day})
	if err != nil {
		return nil, fmt.Errorf("error retrieving timetable: %w", err)
	}
	names, err := classroomNames(ctx, s.store, schoolID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		details.Periods = append(details.Periods, models.AbsentPeriod{
			Period:           e.Period,
			Day:              e.Day,
			Subject:          e.Subject,
			ClassroomID:      e.ClassroomID,
			ClassroomName:    names[e.ClassroomID],
			TimetableEntryID: e.ID,
		})
	}
	sort.Slice(details.Periods, func(i, j int) bool { return details.Periods[i].Period < details.Periods[j].Period })

	absences, err := s.store.ListAbsences(ctx, []int64{teacher.ID}, date)
	if err != nil {
		return nil, fmt.Errorf("error retrieving absences: %w", err)
	}
	if len(absences) == 0 {
		return details, nil
	}
	details.Absence = &absences[0]

	proxies, err := s.store.ListProxies(ctx, models.ProxyFilter{
		AbsenceID: int64Ptr(absences[0].ID),
		Statuses:  models.ActiveProxyStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("error retrieving proxies: %w", err)
	}
	summaries, err := summarizeProxies(ctx, s.store, schoolID, proxies, names)
	if err != nil {
		return nil, err
	}
	for _, p := range summaries {
		if p.Status == models.ProxyCompleted {
			details.CompletedProxies = append(details.CompletedProxies, p)
		} else {
			details.PendingProxies = append(details.PendingProxies, p)
		}
	}
	return details, nil
}

func classroomNames(ctx context.Context, store ClassroomStore, schoolID int64) (map[int64]string, error) {
	classrooms, err := store.ListClassrooms(ctx, schoolID, nil)
	if err != nil {
		return nil, fmt.Errorf("error retrieving classrooms: %w", err)
	}
	names := make(map[int64]string, len(classrooms))
	for _, c := range classrooms {
		names[c.ID] = c.Name
	}
	return names, nil
}

func teacherNames(ctx context.Context, store TeacherStore, schoolID int64) (map[int64]string, error) {
	teachers, err := store.ListTeachers(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving teachers: %w", err)
	}
	names := make(map[int64]string, len(teachers))
	for _, t := range teachers {
		names[t.ID] = t.Name
	}
	return names, nil
}

func summarizeProxies(ctx context.Context, store TeacherStore, schoolID int64, proxies []models.Proxy, classrooms map[int64]string) ([]models.ProxySummary, error) {
	if len(proxies) == 0 {
		return []models.ProxySummary{}, nil
	}
	teachers, err := teacherNames(ctx, store, schoolID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProxySummary, 0, len(proxies))
	for _, p := range proxies {
		out = append(out, models.ProxySummary{
			ID:               p.ID,
			Period:           p.Period,
			ClassroomID:      p.ClassroomID,
			Classroom:        classrooms[p.ClassroomID],
			ProxyTeacherID:   p.ProxyTeacherID,
			ProxyTeacherName: teachers[p.ProxyTeacherID],
			Subject:          p.Subject,
			Status:           p.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}
