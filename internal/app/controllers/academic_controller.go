package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolcore/internal/app/models/dto"
	"github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/middleware"
	"github.com/yigit/schoolcore/internal/pkg/helpers"
)

// AcademicController handles academic years, classroom settings and enrollment
type AcademicController struct {
	yearService       services.AcademicYearService
	enrollmentService services.EnrollmentService
}

// NewAcademicController creates a new AcademicController
func NewAcademicController(yearService services.AcademicYearService, enrollmentService services.EnrollmentService) *AcademicController {
	return &AcademicController{
		yearService:       yearService,
		enrollmentService: enrollmentService,
	}
}

// GetCurrentYear returns the school's current academic year
// @Summary Get current academic year
// @Description Retrieves the caller's school current academic year
// @Tags academic-years
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.AcademicYear} "Academic year retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "No current academic year"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /years/current [get]
func (c *AcademicController) GetCurrentYear(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}

	year, err := c.yearService.CurrentYear(ctx, actor.SchoolID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, year)
}

// SetCurrentYear makes the year in the path the current one
// @Summary Set current academic year
// @Description Marks the academic year as current and clears the flag on the other years of the school
// @Tags academic-years
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Academic year ID"
// @Success 200 {object} dto.APIResponse{data=models.AcademicYear} "Current year updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid academic year ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Academic year not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /years/{id}/current [put]
func (c *AcademicController) SetCurrentYear(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	year, err := c.yearService.SetCurrentYear(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, year)
}

// GetWeekendConfig returns the weekend codes and names of a classroom
// @Summary Get classroom weekend
// @Description Retrieves the weekend day codes (0=Sunday..6=Saturday) and names of a classroom
// @Tags classrooms
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Classroom ID"
// @Success 200 {object} dto.APIResponse{data=models.WeekendConfig} "Weekend configuration retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid classroom ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Classroom not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /classrooms/{id}/weekend [get]
func (c *AcademicController) GetWeekendConfig(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	config, err := c.yearService.WeekendConfig(ctx, actor.SchoolID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, config)
}

// EnrollStudent places a student user into a classroom for the classroom's year
// @Summary Enroll a student
// @Description Places a student user into a classroom for the classroom's academic year
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollStudentRequest true "Enrollment information"
// @Success 201 {object} dto.APIResponse{data=models.Student} "Student enrolled successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Classroom or user not found"
// @Failure 409 {object} dto.ErrorResponse "Student already enrolled this year or roll number taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [post]
func (c *AcademicController) EnrollStudent(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	var req dto.EnrollStudentRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	student, err := c.enrollmentService.EnrollStudent(ctx, actor, services.Enrollment{
		UserID:      req.UserID,
		ClassroomID: req.ClassroomID,
		RollNumber:  req.RollNumber,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, student)
}
