package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/app/models/dto"
	"github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/middleware"
	"github.com/yigit/schoolcore/internal/pkg/helpers"
)

// TimetableController handles the weekly timetable
type TimetableController struct {
	timetableService services.TimetableService
}

// NewTimetableController creates a new TimetableController
func NewTimetableController(timetableService services.TimetableService) *TimetableController {
	return &TimetableController{
		timetableService: timetableService,
	}
}

// GetClassroomTimetable returns a classroom's week; with ?date each lesson
// reports whether its teacher is absent and who covers it.
// @Summary Get classroom timetable
// @Description Retrieves a classroom's weekly timetable; with a date each lesson reports teacher absence and proxies
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Classroom ID"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=models.ClassroomTimetable} "Timetable retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Classroom not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classrooms/{id}/timetable [get]
func (c *TimetableController) GetClassroomTimetable(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	date, err := helpers.ParseOptionalDateQuery(ctx, "date")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	timetable, err := c.timetableService.ClassroomTimetable(ctx, actor.SchoolID, id, date)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, timetable)
}

// UpsertEntry creates or replaces the lesson in a (classroom, day, period) cell
// @Summary Save timetable entry
// @Description Creates or replaces the lesson of a classroom, day and period
// @Tags timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TimetableEntryRequest true "Timetable entry"
// @Success 200 {object} dto.APIResponse{data=models.TimetableEntry} "Timetable entry saved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Classroom or teacher not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /timetable [put]
func (c *TimetableController) UpsertEntry(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	var req dto.TimetableEntryRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	entry := &models.TimetableEntry{
		ClassroomID: req.ClassroomID,
		Day:         req.Day,
		Period:      req.Period,
		Subject:     req.Subject,
		TeacherID:   req.TeacherID,
	}
	if err := c.timetableService.UpsertEntry(ctx, actor, entry); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, entry)
}
