package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
	"github.com/yigit/schoolcore/internal/pkg/logger"
)

// AuthorizationService answers the per-record questions a role check cannot:
// whether a teacher is looking at their own data.
type AuthorizationService struct {
	proxies services.ProxyStore
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(proxies services.ProxyStore) *AuthorizationService {
	return &AuthorizationService{
		proxies: proxies,
	}
}

// IsAdmin checks if the actor administers their school
func (s *AuthorizationService) IsAdmin(actor models.Actor) bool {
	return actor.UserType == models.UserTypeAdmin
}

// IsTeacher checks if the actor is the given teacher
func (s *AuthorizationService) IsTeacher(actor models.Actor, teacherID int64) bool {
	return actor.UserType == models.UserTypeTeacher &&
		actor.TeacherID != nil &&
		*actor.TeacherID == teacherID
}

// ValidateTeacherAccess lets admins read any teacher's schedule and teachers only their own.
func (s *AuthorizationService) ValidateTeacherAccess(actor models.Actor, teacherID int64) error {
	if s.IsAdmin(actor) || s.IsTeacher(actor, teacherID) {
		return nil
	}
	return apperrors.NewForbiddenError("You can only view your own schedule")
}

// ValidateProxyCompletion lets admins complete any proxy and teachers only the ones they cover.
// A missing proxy passes so the proxy service can report it.
func (s *AuthorizationService) ValidateProxyCompletion(ctx context.Context, actor models.Actor, proxyID int64) error {
	if s.IsAdmin(actor) {
		return nil
	}

	proxy, err := s.proxies.GetProxy(ctx, proxyID)
	if err != nil {
		if errors.Is(err, dberrors.ErrNotFound) {
			return nil
		}
		logger.Error().Err(err).Int64("proxyID", proxyID).Msg("Error getting proxy in ValidateProxyCompletion")
		return fmt.Errorf("failed to check proxy ownership: %w", err)
	}

	if !s.IsTeacher(actor, proxy.ProxyTeacherID) {
		return apperrors.NewForbiddenError("Only the covering teacher can complete this proxy")
	}
	return nil
}
