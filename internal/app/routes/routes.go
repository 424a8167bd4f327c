package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolcore/internal/app/controllers"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Academic   *controllers.AcademicController
	Attendance *controllers.AttendanceController
	Teacher    *controllers.TeacherController
	Proxy      *controllers.ProxyController
	Timetable  *controllers.TimetableController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	admin := authMiddleware.RoleRequired(models.UserTypeAdmin)
	staff := authMiddleware.RoleRequired(models.UserTypeAdmin, models.UserTypeTeacher)

	// Every API route runs as an authenticated actor
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.JWTAuth())

	years := v1.Group("/years")
	{
		years.GET("/current", ctrl.Academic.GetCurrentYear)
		years.PUT("/:id/current", admin, ctrl.Academic.SetCurrentYear)
	}

	classrooms := v1.Group("/classrooms")
	{
		classrooms.GET("/:id/weekend", ctrl.Academic.GetWeekendConfig)
		classrooms.GET("/:id/timetable", ctrl.Timetable.GetClassroomTimetable)
	}

	v1.POST("/students", admin, ctrl.Academic.EnrollStudent)

	attendance := v1.Group("/attendance")
	attendance.Use(staff)
	{
		attendance.POST("", ctrl.Attendance.SubmitAttendance)
		attendance.PUT("/:id", ctrl.Attendance.UpdateAttendance)
		attendance.DELETE("/:id", ctrl.Attendance.DeleteAttendance)
		attendance.GET("/statistics", ctrl.Attendance.GetStatistics)
		attendance.GET("/school-statistics", ctrl.Attendance.GetSchoolStatistics)
		attendance.GET("/classrooms/:id/stats", ctrl.Attendance.GetClassroomStats)
	}

	teachers := v1.Group("/teachers")
	teachers.Use(staff)
	{
		teachers.POST("/absent", admin, ctrl.Teacher.MarkAbsent)
		teachers.POST("/present", admin, ctrl.Teacher.MarkPresent)
		teachers.GET("/available", admin, ctrl.Teacher.GetAvailableTeachers)
		// Teachers may read their own records; the controller checks ownership
		teachers.GET("/:id/absence", ctrl.Teacher.GetAbsenceDetails)
		teachers.GET("/:id/schedule", ctrl.Teacher.GetSchedule)
		teachers.GET("/:id/proxies", ctrl.Teacher.GetProxySchedule)
	}

	proxies := v1.Group("/proxies")
	proxies.Use(staff)
	{
		proxies.POST("", admin, ctrl.Proxy.AssignProxy)
		proxies.POST("/:id/cancel", admin, ctrl.Proxy.CancelProxy)
		proxies.POST("/:id/complete", ctrl.Proxy.CompleteProxy)
	}

	v1.PUT("/timetable", admin, ctrl.Timetable.UpsertEntry)
}
