package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolcore/internal/app/models/dto"
	"github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/middleware"
	"github.com/yigit/schoolcore/internal/pkg/helpers"
)

// AttendanceController handles attendance marking and statistics
type AttendanceController struct {
	attendanceService  services.AttendanceService
	statsService       services.AttendanceStatsService
	periodStatsService services.PeriodStatisticsService
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(
	attendanceService services.AttendanceService,
	statsService services.AttendanceStatsService,
	periodStatsService services.PeriodStatisticsService,
) *AttendanceController {
	return &AttendanceController{
		attendanceService:  attendanceService,
		statsService:       statsService,
		periodStatsService: periodStatsService,
	}
}

// SubmitAttendance saves a batch of marks. Invalid records are reported in the
// response and fail the request only when nothing else was saved.
// @Summary Submit attendance
// @Description Saves a batch of attendance marks. Invalid records are listed in errors; records with a null present flag are skipped
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitAttendanceRequest true "Attendance records"
// @Success 201 {object} dto.APIResponse{data=services.AttendanceResult} "Attendance saved"
// @Failure 400 {object} dto.ErrorResponse "No valid attendance records"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Academic year not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attendance [post]
func (c *AttendanceController) SubmitAttendance(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	var req dto.SubmitAttendanceRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	marks := make([]services.AttendanceMark, 0, len(req.Records))
	for _, r := range req.Records {
		marks = append(marks, services.AttendanceMark{
			StudentID: r.StudentID,
			Date:      r.Date,
			Present:   r.Present,
		})
	}

	result, err := c.attendanceService.SubmitAttendance(ctx, actor, req.AcademicYearID, marks)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if result.Processed == 0 && len(result.Errors) > 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "No valid attendance records").
				WithDetails(result.Errors),
		))
		return
	}
	respond(ctx, http.StatusCreated, result)
}

// UpdateAttendance flips the present flag of one record
// @Summary Update attendance record
// @Description Changes the present flag of one attendance record
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Attendance record ID"
// @Param request body dto.UpdateAttendanceRequest true "Present flag"
// @Success 200 {object} dto.APIResponse{data=models.Attendance} "Attendance record updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Attendance record not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attendance/{id} [put]
func (c *AttendanceController) UpdateAttendance(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.UpdateAttendanceRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	record, err := c.attendanceService.UpdateAttendance(ctx, actor, id, *req.Present)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, record)
}

// DeleteAttendance removes one attendance record of the school
// @Summary Delete attendance record
// @Description Deletes one attendance record of the school
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Attendance record ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Attendance record deleted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid attendance record ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Attendance record not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attendance/{id} [delete]
func (c *AttendanceController) DeleteAttendance(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.attendanceService.DeleteAttendance(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, dto.SuccessResponse{Message: "Attendance record deleted"})
}

// GetStatistics returns the daily, weekly, monthly or yearly trend report
// @Summary Get attendance trend
// @Description Retrieves daily, weekly, monthly or yearly attendance figures for a classroom or the whole school
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param period query string false "daily, weekly, monthly or yearly (default daily)"
// @Param year_id query integer false "Academic year ID (default current)"
// @Param classroom_id query integer false "Classroom ID"
// @Success 200 {object} dto.APIResponse{data=models.PeriodReport} "Statistics retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Academic year or classroom not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attendance/statistics [get]
func (c *AttendanceController) GetStatistics(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	yearID, err := helpers.ParseOptionalIDQuery(ctx, "year_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	classroomID, err := helpers.ParseOptionalIDQuery(ctx, "classroom_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	report, err := c.periodStatsService.Report(ctx, actor.SchoolID, yearID, classroomID, ctx.DefaultQuery("period", services.PeriodDaily))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, report)
}

// GetSchoolStatistics returns the overall, today or monthly school figures
// @Summary Get school statistics
// @Description Retrieves school-wide figures. period=overall compares marked with expected records; today and monthly report marked records in the window
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param period query string false "overall, today or monthly (default overall)"
// @Param year_id query integer false "Academic year ID (default current)"
// @Param month query integer false "Month for period=monthly (1-12)"
// @Param year_month query integer false "Calendar year for period=monthly"
// @Success 200 {object} dto.APIResponse{data=models.SchoolStats} "Statistics retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Academic year not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attendance/school-statistics [get]
func (c *AttendanceController) GetSchoolStatistics(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	yearID, err := helpers.ParseOptionalIDQuery(ctx, "year_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	month, err := helpers.ParseIntQuery(ctx, "month", 0)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	calendarYear, err := helpers.ParseIntQuery(ctx, "year_month", 0)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	stats, err := c.statsService.SchoolStatistics(ctx, actor.SchoolID, yearID,
		ctx.DefaultQuery("period", services.SchoolPeriodOverall), month, calendarYear)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, stats)
}

// GetClassroomStats returns expected-versus-marked figures for one classroom
// @Summary Get classroom statistics
// @Description Retrieves expected, marked and pending attendance records of one classroom
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Classroom ID"
// @Param year_id query integer false "Academic year ID (default current)"
// @Success 200 {object} dto.APIResponse{data=models.ClassroomStats} "Statistics retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid classroom ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Classroom not found or has no students"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attendance/classrooms/{id}/stats [get]
func (c *AttendanceController) GetClassroomStats(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	yearID, err := helpers.ParseOptionalIDQuery(ctx, "year_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	stats, err := c.statsService.ClassroomStatsByID(ctx, actor.SchoolID, id, yearID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, stats)
}
