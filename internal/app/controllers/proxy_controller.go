package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolcore/internal/app/auth"
	"github.com/yigit/schoolcore/internal/app/models/dto"
	"github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/middleware"
	"github.com/yigit/schoolcore/internal/pkg/helpers"
)

// ProxyController handles substitute assignments
type ProxyController struct {
	proxyService services.ProxyService
	authzService *auth.AuthorizationService
}

// NewProxyController creates a new ProxyController
func NewProxyController(proxyService services.ProxyService, authzService *auth.AuthorizationService) *ProxyController {
	return &ProxyController{
		proxyService: proxyService,
		authzService: authzService,
	}
}

// AssignProxy assigns a substitute to one period of an absence
// @Summary Assign a proxy
// @Description Assigns a substitute to one period of an absence. Assigning the same slot again replaces the substitute
// @Tags proxies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssignProxyRequest true "Proxy assignment"
// @Success 201 {object} dto.APIResponse{data=models.Proxy} "Proxy assigned successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or teacher unavailable"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Absence or teacher not found"
// @Failure 409 {object} dto.ErrorResponse "Proxy already completed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /proxies [post]
func (c *ProxyController) AssignProxy(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	var req dto.AssignProxyRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	proxy, err := c.proxyService.AssignProxy(ctx, actor, services.ProxyAssignment{
		AbsenceID:      req.AbsenceID,
		ClassroomID:    req.ClassroomID,
		Period:         req.Period,
		ProxyTeacherID: req.ProxyTeacherID,
		Subject:        req.Subject,
		Reason:         req.Reason,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, proxy)
}

// CancelProxy cancels an assigned proxy; a missing id reports cancelled=false
// @Summary Cancel a proxy
// @Description Cancels an assigned proxy. An unknown ID reports cancelled=false
// @Tags proxies
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Proxy ID"
// @Success 200 {object} dto.APIResponse{data=dto.CancelResponse} "Cancellation result"
// @Failure 400 {object} dto.ErrorResponse "Invalid proxy ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Proxy is not assigned"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /proxies/{id}/cancel [post]
func (c *ProxyController) CancelProxy(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	cancelled, err := c.proxyService.CancelProxy(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.CancelResponse{Cancelled: cancelled, Message: "Proxy cancelled"}
	if !cancelled {
		resp.Message = "Proxy not found"
	}
	ok(ctx, resp)
}

// CompleteProxy marks an assigned proxy as taught
// @Summary Complete a proxy
// @Description Marks an assigned proxy as taught. Only the substitute or an admin may complete it
// @Tags proxies
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Proxy ID"
// @Success 200 {object} dto.APIResponse{data=models.Proxy} "Proxy completed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid proxy ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Proxy not found"
// @Failure 409 {object} dto.ErrorResponse "Proxy is not assigned"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /proxies/{id}/complete [post]
func (c *ProxyController) CompleteProxy(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.authzService.ValidateProxyCompletion(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	proxy, err := c.proxyService.CompleteProxy(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, proxy)
}
