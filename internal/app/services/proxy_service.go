package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
	"github.com/yigit/schoolcore/internal/pkg/clock"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
	"github.com/yigit/schoolcore/internal/pkg/logger"
)

// ProxyAssignment asks for a substitute to cover one period of an absence.
// An empty Subject is taken from the classroom's timetable cell.
type ProxyAssignment struct {
	AbsenceID      int64
	ClassroomID    int64
	Period         int
	ProxyTeacherID int64
	Subject        string
	Reason         string
}

// ProxyService assigns, cancels and completes substitute teachers
type ProxyService interface {
	AssignProxy(ctx context.Context, actor models.Actor, req ProxyAssignment) (*models.Proxy, error)
	// CancelProxy returns false when the proxy does not exist.
	CancelProxy(ctx context.Context, actor models.Actor, proxyID int64) (bool, error)
	CompleteProxy(ctx context.Context, actor models.Actor, proxyID int64) (*models.Proxy, error)
	TeacherProxySchedule(ctx context.Context, schoolID, teacherID int64, date time.Time) (*models.ProxySchedule, error)
}

type proxyServiceImpl struct {
	store        Store
	availability TeacherAvailabilityService
	clock        clock.Clock
	settings     Settings
}

func NewProxyService(store Store, availability TeacherAvailabilityService, clk clock.Clock, settings Settings) ProxyService {
	return &proxyServiceImpl{store: store, availability: availability, clock: clk, settings: settings}
}

// scopedAbsence loads an absence and checks its teacher belongs to the school.
func (s *proxyServiceImpl) scopedAbsence(ctx context.Context, schoolID, absenceID int64) (*models.TeacherAttendance, error) {
	absence, err := s.store.GetTeacherAttendance(ctx, absenceID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrAbsenceNotFound, "absence")
	}
	if _, err := s.store.GetTeacher(ctx, schoolID, absence.TeacherID); err != nil {
		return nil, notFound(err, apperrors.ErrAbsenceNotFound, "absence teacher")
	}
	return absence, nil
}

// scopedProxy loads a proxy whose original teacher belongs to the school.
func (s *proxyServiceImpl) scopedProxy(ctx context.Context, schoolID, proxyID int64) (*models.Proxy, error) {
	proxy, err := s.store.GetProxy(ctx, proxyID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrProxyNotFound, "proxy")
	}
	if _, err := s.store.GetTeacher(ctx, schoolID, proxy.OriginalTeacherID); err != nil {
		return nil, notFound(err, apperrors.ErrProxyNotFound, "proxy teacher")
	}
	return proxy, nil
}

func (s *proxyServiceImpl) AssignProxy(ctx context.Context, actor models.Actor, req ProxyAssignment) (*models.Proxy, error) {
	if req.Period < 1 {
		return nil, fmt.Errorf("%w: period must be positive", apperrors.ErrValidationFailed)
	}

	absence, err := s.scopedAbsence(ctx, actor.SchoolID, req.AbsenceID)
	if err != nil {
		return nil, err
	}
	if !absence.IsAbsent() {
		return nil, apperrors.NewValidationError("teacher is not marked absent on this date")
	}

	classroom, err := s.store.GetClassroom(ctx, actor.SchoolID, req.ClassroomID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrClassroomNotFound, "classroom")
	}
	if req.ProxyTeacherID == absence.TeacherID {
		return nil, apperrors.NewValidationError("the absent teacher cannot cover their own period")
	}

	date := calendar.Truncate(absence.Date)
	day := calendar.DayName(date)

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		entries, err := s.store.ListTimetable(ctx, models.TimetableFilter{
			ClassroomID: int64Ptr(classroom.ID),
			Day:         day,
			Period:      req.Period,
		})
		if err != nil {
			return nil, fmt.Errorf("error retrieving timetable: %w", err)
		}
		if len(entries) > 0 {
			subject = entries[0].Subject
		}
	}

	avail, err := s.availability.CheckAvailability(ctx, actor.SchoolID, req.ProxyTeacherID, date, day, req.Period)
	if err != nil {
		return nil, err
	}
	if !avail.Available {
		sameSlot, err := s.isSameSlot(ctx, avail, absence.ID, classroom.ID, day, req.Period)
		if err != nil {
			return nil, err
		}
		if !sameSlot {
			return nil, apperrors.NewCustomError(apperrors.ErrTeacherNotAvailable,
				fmt.Sprintf("%s is not available for period %d on %s (%s)", avail.TeacherName, req.Period, calendar.FormatDate(date), avail.Reason)).
				WithDetails(map[string]interface{}{"reason": avail.Reason, "teacher_id": avail.TeacherID})
		}
	}

	existing, err := s.store.ListProxies(ctx, models.ProxyFilter{
		AbsenceID:   int64Ptr(absence.ID),
		ClassroomID: int64Ptr(classroom.ID),
		Day:         day,
		Period:      req.Period,
	})
	if err != nil {
		return nil, fmt.Errorf("error retrieving proxies: %w", err)
	}
	for _, p := range existing {
		if p.Status == models.ProxyCompleted {
			return nil, apperrors.NewConflictError(fmt.Sprintf("period %d of %s is already covered and completed", req.Period, classroom.Name))
		}
	}

	proxy := &models.Proxy{
		AbsenceID:         absence.ID,
		ClassroomID:       classroom.ID,
		Day:               day,
		Period:            req.Period,
		Date:              date,
		OriginalTeacherID: absence.TeacherID,
		ProxyTeacherID:    req.ProxyTeacherID,
		Subject:           subject,
		Status:            models.ProxyAssigned,
		Reason:            req.Reason,
		AssignedBy:        int64Ptr(actor.UserID),
	}
	if err := s.store.UpsertProxy(ctx, proxy); err != nil {
		return nil, fmt.Errorf("error assigning proxy: %w", err)
	}

	logger.Info().
		Int64("proxy_id", proxy.ID).
		Int64("absence_id", absence.ID).
		Int64("classroom_id", classroom.ID).
		Int("period", req.Period).
		Int64("proxy_teacher_id", req.ProxyTeacherID).
		Int64("actor_id", actor.UserID).
		Msg("Proxy assigned")
	return proxy, nil
}

// isSameSlot reports whether the substitute's only conflict is the proxy
// being reassigned, which must not block its own update.
func (s *proxyServiceImpl) isSameSlot(ctx context.Context, avail *models.TeacherAvailability, absenceID, classroomID int64, day string, period int) (bool, error) {
	if avail.Reason != models.ReasonProxy {
		return false, nil
	}
	p, err := s.store.GetProxy(ctx, avail.ConflictID)
	if err != nil {
		if errors.Is(err, dberrors.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("error retrieving proxy: %w", err)
	}
	return p.AbsenceID == absenceID && p.ClassroomID == classroomID && p.Day == day && p.Period == period, nil
}

func (s *proxyServiceImpl) CancelProxy(ctx context.Context, actor models.Actor, proxyID int64) (bool, error) {
	proxy, err := s.scopedProxy(ctx, actor.SchoolID, proxyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrProxyNotFound) {
			return false, nil
		}
		return false, err
	}
	if proxy.Status != models.ProxyAssigned {
		return false, apperrors.NewCustomError(apperrors.ErrProxyNotAssigned,
			fmt.Sprintf("proxy %d is %s and cannot be cancelled", proxy.ID, proxy.Status))
	}

	err = s.store.UpdateProxyStatus(ctx, proxy.ID, []models.ProxyStatus{models.ProxyAssigned}, models.ProxyCancelled, nil)
	if err != nil {
		if errors.Is(err, dberrors.ErrNotFound) {
			return false, apperrors.ErrProxyNotAssigned
		}
		return false, fmt.Errorf("error cancelling proxy: %w", err)
	}

	logger.Info().Int64("proxy_id", proxy.ID).Int64("actor_id", actor.UserID).Msg("Proxy cancelled")
	return true, nil
}

func (s *proxyServiceImpl) CompleteProxy(ctx context.Context, actor models.Actor, proxyID int64) (*models.Proxy, error) {
	proxy, err := s.scopedProxy(ctx, actor.SchoolID, proxyID)
	if err != nil {
		return nil, err
	}
	if proxy.Status != models.ProxyAssigned {
		return nil, apperrors.NewCustomError(apperrors.ErrProxyNotAssigned,
			fmt.Sprintf("proxy %d is %s and cannot be completed", proxy.ID, proxy.Status))
	}

	now := s.clock.Now().UTC()
	err = s.store.UpdateProxyStatus(ctx, proxy.ID, []models.ProxyStatus{models.ProxyAssigned}, models.ProxyCompleted, &now)
	if err != nil {
		if errors.Is(err, dberrors.ErrNotFound) {
			return nil, apperrors.ErrProxyNotAssigned
		}
		return nil, fmt.Errorf("error completing proxy: %w", err)
	}
	proxy.Status = models.ProxyCompleted
	proxy.CompletedAt = &now

	logger.Info().Int64("proxy_id", proxy.ID).Int64("actor_id", actor.UserID).Msg("Proxy completed")
	return proxy, nil
}

// periodsPerDay derives the day length from the school's timetable.
func (s *proxyServiceImpl) periodsPerDay(ctx context.Context, schoolID int64) (int, error) {
	highest, err := s.store.MaxPeriod(ctx, schoolID)
	if err != nil {
		return 0, fmt.Errorf("error retrieving timetable periods: %w", err)
	}
	if highest < 1 {
		return s.settings.PeriodsPerDay, nil
	}
	return highest, nil
}

func (s *proxyServiceImpl) TeacherProxySchedule(ctx context.Context, schoolID, teacherID int64, date time.Time) (*models.ProxySchedule, error) {
	teacher, err := s.store.GetTeacher(ctx, schoolID, teacherID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrTeacherNotFound, "teacher")
	}
	date = calendar.Truncate(date)

	proxies, err := s.store.ListProxies(ctx, models.ProxyFilter{
		ProxyTeacherID: int64Ptr(teacher.ID),
		Date:           &date,
		Statuses:       models.ActiveProxyStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("error retrieving proxies: %w", err)
	}
	if proxies == nil {
		proxies = []models.Proxy{}
	}
	sort.Slice(proxies, func(i, j int) bool { return proxies[i].Period < proxies[j].Period })

	total, err := s.periodsPerDay(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	busy := make(map[int]bool, len(proxies))
	for _, p := range proxies {
		busy[p.Period] = true
	}
	free := make([]int, 0, total)
	for period := 1; period <= total; period++ {
		if !busy[period] {
			free = append(free, period)
		}
	}

	return &models.ProxySchedule{
		TeacherID:            teacher.ID,
		Date:                 calendar.FormatDate(date),
		AssignedProxies:      proxies,
		FreePeriods:          free,
		TotalPeriods:         total,
		TotalAssignedProxies: len(proxies),
	}, nil
}
