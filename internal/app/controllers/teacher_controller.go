package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolcore/internal/app/auth"
	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models/dto"
	"github.com/yigit/schoolcore/internal/app/services"
	"github.com/yigit/schoolcore/internal/middleware"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
	"github.com/yigit/schoolcore/internal/pkg/helpers"
)

// TeacherController handles teacher absences, schedules and availability
type TeacherController struct {
	absenceService      services.AbsenceService
	availabilityService services.TeacherAvailabilityService
	proxyService        services.ProxyService
	timetableService    services.TimetableService
	statsService        services.AttendanceStatsService
	authzService        *auth.AuthorizationService
}

// NewTeacherController creates a new TeacherController
func NewTeacherController(svc *services.Services, authzService *auth.AuthorizationService) *TeacherController {
	return &TeacherController{
		absenceService:      svc.Absence,
		availabilityService: svc.Availability,
		proxyService:        svc.Proxy,
		timetableService:    svc.Timetable,
		statsService:        svc.Stats,
		authzService:        authzService,
	}
}

func parseBodyDate(raw string) (time.Time, error) {
	d, err := calendar.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperrors.NewBadRequestError(fmt.Sprintf("invalid date %s, expected YYYY-MM-DD", raw))
	}
	return d, nil
}

// MarkAbsent records the teachers as absent on the date
// @Summary Mark teachers absent
// @Description Records the teachers as absent on the date. Marking again replaces the reason
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TeacherAbsenceRequest true "Teachers and date"
// @Success 200 {object} dto.APIResponse{data=[]models.TeacherAttendance} "Teachers marked absent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Teacher not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teachers/absent [post]
func (c *TeacherController) MarkAbsent(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	var req dto.TeacherAbsenceRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}
	date, err := parseBodyDate(req.Date)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	rows, err := c.absenceService.MarkAbsent(ctx, actor, req.TeacherIDs, date, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, rows)
}

// MarkPresent removes the teachers' absences on the date
// @Summary Mark teachers present
// @Description Removes the absences of the teachers on the date together with their proxies
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TeacherAbsenceRequest true "Teachers and date"
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Teachers marked present"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teachers/present [post]
func (c *TeacherController) MarkPresent(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	var req dto.TeacherAbsenceRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}
	date, err := parseBodyDate(req.Date)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	removed, err := c.absenceService.MarkPresent(ctx, actor, req.TeacherIDs, date)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, dto.CountResponse{
		Message: fmt.Sprintf("Marked %d teachers present", removed),
		Count:   removed,
	})
}

// teacherAndDate reads the :id path parameter, checks the caller may see that
// teacher and reads ?date, defaulting to today.
func (c *TeacherController) teacherAndDate(ctx *gin.Context) (int64, int64, *dateQuery, bool) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return 0, 0, nil, false
	}
	teacherID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, 0, nil, false
	}
	if err := c.authzService.ValidateTeacherAccess(actor, teacherID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, 0, nil, false
	}
	date, err := helpers.ParseOptionalDateQuery(ctx, "date")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, 0, nil, false
	}
	return actor.SchoolID, teacherID, &dateQuery{date: date, today: c.statsService.Today()}, true
}

// GetAbsenceDetails returns the periods an absent teacher misses and their proxies
// @Summary Get absence details
// @Description Retrieves the periods an absent teacher misses on the date and the proxies covering them
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Teacher ID"
// @Param date query string false "Date (YYYY-MM-DD, default today)"
// @Success 200 {object} dto.APIResponse{data=models.AbsenceDetails} "Absence details retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Teacher not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teachers/{id}/absence [get]
func (c *TeacherController) GetAbsenceDetails(ctx *gin.Context) {
	schoolID, teacherID, q, okReq := c.teacherAndDate(ctx)
	if !okReq {
		return
	}

	details, err := c.absenceService.AbsenceDetails(ctx, schoolID, teacherID, q.orToday())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, details)
}

// GetSchedule returns the teacher's week, annotated for ?date when given
// @Summary Get teacher schedule
// @Description Retrieves the teacher's weekly timetable, annotated with absence and proxies when a date is given
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Teacher ID"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=models.TeacherSchedule} "Schedule retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Teacher not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teachers/{id}/schedule [get]
func (c *TeacherController) GetSchedule(ctx *gin.Context) {
	schoolID, teacherID, q, okReq := c.teacherAndDate(ctx)
	if !okReq {
		return
	}

	schedule, err := c.timetableService.TeacherSchedule(ctx, schoolID, teacherID, q.date)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, schedule)
}

// GetProxySchedule returns the teacher's lessons, proxies and free periods for a date
// @Summary Get proxy schedule
// @Description Retrieves the proxies a teacher covers on the date and the free periods left
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Teacher ID"
// @Param date query string false "Date (YYYY-MM-DD, default today)"
// @Success 200 {object} dto.APIResponse{data=models.ProxySchedule} "Proxy schedule retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Teacher not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teachers/{id}/proxies [get]
func (c *TeacherController) GetProxySchedule(ctx *gin.Context) {
	schoolID, teacherID, q, okReq := c.teacherAndDate(ctx)
	if !okReq {
		return
	}

	schedule, err := c.proxyService.TeacherProxySchedule(ctx, schoolID, teacherID, q.orToday())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, schedule)
}

// GetAvailableTeachers partitions the school's teachers for one slot
// @Summary List available teachers
// @Description Splits the school teachers into available and unavailable for one period, with the reason (absent, class or proxy)
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD, default today)"
// @Param period query integer true "Period number"
// @Param exclude query integer false "Teacher ID to leave out"
// @Success 200 {object} dto.APIResponse{data=models.SlotAvailability} "Availability retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /teachers/available [get]
func (c *TeacherController) GetAvailableTeachers(ctx *gin.Context) {
	actor, okActor := actorOrAbort(ctx)
	if !okActor {
		return
	}
	date, err := helpers.ParseDateQuery(ctx, "date", c.statsService.Today())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	period, err := helpers.ParseIntQuery(ctx, "period", 0)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	exclude, err := helpers.ParseOptionalIDQuery(ctx, "exclude")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var excludeID int64
	if exclude != nil {
		excludeID = *exclude
	}

	slot, err := c.availabilityService.AvailableTeachersForSlot(ctx, actor.SchoolID, date, calendar.DayName(date), period, excludeID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, slot)
}
