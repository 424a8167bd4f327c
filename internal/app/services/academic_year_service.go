package services

import (
	"context"
	"fmt"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
	"github.com/yigit/schoolcore/internal/pkg/logger"
)

// AcademicYearService defines academic-year and classroom calendar lookups
type AcademicYearService interface {
	CurrentYear(ctx context.Context, schoolID int64) (*models.AcademicYear, error)
	// ResolveYear returns the given year, or the current one when yearID is nil.
	ResolveYear(ctx context.Context, schoolID int64, yearID *int64) (*models.AcademicYear, error)
	SetCurrentYear(ctx context.Context, actor models.Actor, yearID int64) (*models.AcademicYear, error)
	WeekendConfig(ctx context.Context, schoolID, classroomID int64) (*models.WeekendConfig, error)
}

type academicYearServiceImpl struct {
	store    Store
	settings Settings
}

func NewAcademicYearService(store Store, settings Settings) AcademicYearService {
	return &academicYearServiceImpl{store: store, settings: settings}
}

func (s *academicYearServiceImpl) CurrentYear(ctx context.Context, schoolID int64) (*models.AcademicYear, error) {
	year, err := s.store.GetCurrentAcademicYear(ctx, schoolID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrAcademicYearNotFound, "current academic year")
	}
	return year, nil
}

func (s *academicYearServiceImpl) ResolveYear(ctx context.Context, schoolID int64, yearID *int64) (*models.AcademicYear, error) {
	if yearID == nil {
		return s.CurrentYear(ctx, schoolID)
	}
	if *yearID <= 0 {
		return nil, fmt.Errorf("%w: invalid academic year ID", apperrors.ErrValidationFailed)
	}
	year, err := s.store.GetAcademicYear(ctx, schoolID, *yearID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrAcademicYearNotFound, "academic year")
	}
	return year, nil
}

func (s *academicYearServiceImpl) SetCurrentYear(ctx context.Context, actor models.Actor, yearID int64) (*models.AcademicYear, error) {
	year, err := s.ResolveYear(ctx, actor.SchoolID, &yearID)
	if err != nil {
		return nil, err
	}
	if year.IsCurrent {
		return year, nil
	}

	if err := s.store.SetCurrentAcademicYear(ctx, actor.SchoolID, year.ID); err != nil {
		return nil, fmt.Errorf("error setting current academic year: %w", err)
	}
	year.IsCurrent = true

	logger.Info().
		Int64("school_id", actor.SchoolID).
		Int64("academic_year_id", year.ID).
		Int64("actor_id", actor.UserID).
		Msg("Current academic year changed")
	return year, nil
}

func (s *academicYearServiceImpl) WeekendConfig(ctx context.Context, schoolID, classroomID int64) (*models.WeekendConfig, error) {
	classroom, err := s.store.GetClassroom(ctx, schoolID, classroomID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrClassroomNotFound, "classroom")
	}
	days := weekendOf(classroom, s.settings)
	return &models.WeekendConfig{
		ClassroomID:  classroom.ID,
		WeekendDays:  days,
		WeekendNames: calendar.WeekdayNames(days),
	}, nil
}
