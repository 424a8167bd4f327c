package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
	"github.com/yigit/schoolcore/internal/pkg/logger"
)

// Enrollment asks to place a student user into a classroom.
type Enrollment struct {
	UserID      int64
	ClassroomID int64
	RollNumber  int
}

// EnrollmentService enforces one classroom per student per academic year
type EnrollmentService interface {
	EnrollStudent(ctx context.Context, actor models.Actor, req Enrollment) (*models.Student, error)
}

type enrollmentServiceImpl struct {
	store Store
}

func NewEnrollmentService(store Store) EnrollmentService {
	return &enrollmentServiceImpl{store: store}
}

func (s *enrollmentServiceImpl) EnrollStudent(ctx context.Context, actor models.Actor, req Enrollment) (*models.Student, error) {
	if req.RollNumber < 1 {
		return nil, fmt.Errorf("%w: roll number must be positive", apperrors.ErrValidationFailed)
	}

	classroom, err := s.store.GetClassroom(ctx, actor.SchoolID, req.ClassroomID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrClassroomNotFound, "classroom")
	}
	user, err := s.store.GetUser(ctx, actor.SchoolID, req.UserID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound, "user")
	}
	if user.UserType != models.UserTypeStudent {
		return nil, apperrors.NewValidationError(fmt.Sprintf("user %d is not a student", user.ID))
	}

	existing, err := s.store.FindEnrollment(ctx, user.ID, classroom.AcademicYearID)
	switch {
	case err == nil:
		return nil, s.alreadyEnrolled(ctx, actor.SchoolID, *user, *existing)
	case !errors.Is(err, dberrors.ErrNotFound):
		return nil, fmt.Errorf("error checking enrollment: %w", err)
	}

	taken, err := s.store.RollNumberTaken(ctx, classroom.ID, req.RollNumber)
	if err != nil {
		return nil, fmt.Errorf("error checking roll number: %w", err)
	}
	if taken {
		return nil, rollNumberConflict(req.RollNumber, classroom.Name)
	}

	student := &models.Student{
		UserID:         user.ID,
		ClassroomID:    classroom.ID,
		AcademicYearID: classroom.AcademicYearID,
		RollNumber:     req.RollNumber,
		Name:           user.FullName(),
	}
	if err := s.store.CreateStudent(ctx, student); err != nil {
		return nil, s.translateCreateError(ctx, err, actor.SchoolID, *user, *classroom, req.RollNumber)
	}

	logger.Info().
		Int64("student_id", student.ID).
		Int64("user_id", user.ID).
		Int64("classroom_id", classroom.ID).
		Int64("actor_id", actor.UserID).
		Msg("Student enrolled")
	return student, nil
}

// translateCreateError turns a constraint hit from a concurrent enrollment into
// the same conflict the pre-checks report.
func (s *enrollmentServiceImpl) translateCreateError(ctx context.Context, err error, schoolID int64, user models.User, classroom models.ClassRoom, roll int) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, models.ConstraintStudentUserYear),
		dberrors.IsDuplicateConstraintError(err, models.ConstraintStudentUserClassroom):
		existing, findErr := s.store.FindEnrollment(ctx, user.ID, classroom.AcademicYearID)
		if findErr != nil {
			return apperrors.NewCustomError(apperrors.ErrAlreadyEnrolled,
				fmt.Sprintf("%s is already enrolled in a classroom this academic year", user.FullName()))
		}
		return s.alreadyEnrolled(ctx, schoolID, user, *existing)
	case dberrors.IsDuplicateConstraintError(err, models.ConstraintStudentRoll):
		return rollNumberConflict(roll, classroom.Name)
	}
	return fmt.Errorf("error creating student: %w", err)
}

func (s *enrollmentServiceImpl) alreadyEnrolled(ctx context.Context, schoolID int64, user models.User, existing models.Student) error {
	name := fmt.Sprintf("classroom %d", existing.ClassroomID)
	yearLabel := ""
	if c, err := s.store.GetClassroom(ctx, schoolID, existing.ClassroomID); err == nil {
		name = c.Name
		if y, err := s.store.GetAcademicYear(ctx, schoolID, c.AcademicYearID); err == nil {
			yearLabel = y.Year
		}
	}
	msg := fmt.Sprintf("%s is already in %s", user.FullName(), name)
	if yearLabel != "" {
		msg += " in " + yearLabel
	}
	msg += ". A student can only be in one classroom per year."

	return apperrors.NewCustomError(apperrors.ErrAlreadyEnrolled, msg).
		WithDetails(map[string]interface{}{
			"student_id":     existing.ID,
			"classroom_id":   existing.ClassroomID,
			"classroom_name": name,
		})
}

func rollNumberConflict(roll int, classroom string) error {
	return apperrors.NewCustomError(apperrors.ErrRollNumberTaken,
		fmt.Sprintf("roll number %d is already taken in %s", roll, classroom))
}
