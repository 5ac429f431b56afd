package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ecolehub/school-admin-api/internal/middleware"
	"github.com/ecolehub/school-admin-api/internal/models"
	"github.com/ecolehub/school-admin-api/internal/service"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Students      *StudentHandler
	Teachers      *TeacherHandler
	Classes       *ClassHandler
	Subjects      *SubjectHandler
	Announcements *AnnouncementHandler
	Attendance    *AttendanceHandler
	Assignments   *AssignmentHandler
	Results       *AssignmentResultHandler
	Schedules     *ScheduleHandler
	Finance       *FinanceHandler
	Reports       *ReportHandler
}

// RegisterRoutes mounts the API surface under /api/v1. Everything except
// login requires a valid access token; destructive and finance routes
// additionally require the admin role.
func RegisterRoutes(r *gin.Engine, h Handlers, authService *service.AuthService) {
	v1 := r.Group("/api/v1")

	v1.POST("/auth/login", h.Auth.Login)

	secured := v1.Group("")
	secured.Use(middleware.JWT(authService))
	secured.GET("/auth/me", h.Auth.Me)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	students := secured.Group("/students")
	{
		students.GET("", h.Students.List)
		students.GET("/:id", h.Students.Get)
		students.POST("", staff, h.Students.Create)
		students.PATCH("/:id", staff, h.Students.Update)
		students.DELETE("/:id", adminOnly, h.Students.Delete)
		students.POST("/:id/behavioral-records", staff, h.Students.AddBehavioralRecord)
		students.POST("/:id/tuition-payments", adminOnly, h.Students.RecordTuitionPayment)
	}

	teachers := secured.Group("/teachers")
	{
		teachers.GET("", h.Teachers.List)
		teachers.GET("/:id", h.Teachers.Get)
		teachers.POST("", adminOnly, h.Teachers.Create)
		teachers.PATCH("/:id", adminOnly, h.Teachers.Update)
		teachers.DELETE("/:id", adminOnly, h.Teachers.Delete)
		teachers.POST("/:id/salary-payments", adminOnly, h.Teachers.RecordSalaryPayment)
	}

	classes := secured.Group("/classes")
	{
		classes.GET("", h.Classes.List)
		classes.GET("/:id", h.Classes.Get)
		classes.POST("", adminOnly, h.Classes.Create)
		classes.PATCH("/:id", adminOnly, h.Classes.Update)
		classes.DELETE("/:id", adminOnly, h.Classes.Delete)
	}

	subjects := secured.Group("/subjects")
	{
		subjects.GET("", h.Subjects.List)
		subjects.GET("/:id", h.Subjects.Get)
		subjects.POST("", adminOnly, h.Subjects.Create)
		subjects.PATCH("/:id", adminOnly, h.Subjects.Update)
		subjects.DELETE("/:id", adminOnly, h.Subjects.Delete)
	}

	announcements := secured.Group("/announcements")
	{
		announcements.GET("", h.Announcements.List)
		announcements.GET("/:id", h.Announcements.Get)
		announcements.POST("", staff, h.Announcements.Create)
		announcements.PATCH("/:id", staff, h.Announcements.Update)
		announcements.DELETE("/:id", staff, h.Announcements.Delete)
	}

	attendance := secured.Group("/attendance")
	{
		attendance.GET("", h.Attendance.List)
		attendance.GET("/statistics", h.Attendance.Statistics)
		attendance.GET("/:id", h.Attendance.Get)
		attendance.POST("", staff, h.Attendance.Mark)
		attendance.PATCH("/:id", staff, h.Attendance.Update)
		attendance.DELETE("/:id", staff, h.Attendance.Delete)
	}

	assignments := secured.Group("/assignments")
	{
		assignments.GET("", h.Assignments.List)
		assignments.GET("/:id", h.Assignments.Get)
		assignments.POST("", staff, h.Assignments.Create)
		assignments.PATCH("/:id", staff, h.Assignments.Update)
		assignments.DELETE("/:id", staff, h.Assignments.Delete)

		assignments.GET("/:id/results", h.Results.List)
		assignments.GET("/:id/results/statistics", h.Results.Statistics)
		assignments.GET("/:id/results/:studentId", h.Results.Get)
		assignments.PUT("/:id/results/:studentId", staff, h.Results.Record)
		assignments.DELETE("/:id/results/:studentId", staff, h.Results.Delete)
	}

	schedules := secured.Group("/schedules")
	{
		schedules.GET("", h.Schedules.List)
		schedules.GET("/:id", h.Schedules.Get)
		schedules.POST("", staff, h.Schedules.Create)
		schedules.PATCH("/:id", staff, h.Schedules.Update)
		schedules.DELETE("/:id", staff, h.Schedules.Delete)
	}

	finance := secured.Group("/finance", adminOnly)
	{
		finance.GET("/payments", h.Finance.ListPayments)
		finance.POST("/payments", h.Finance.CreatePayment)
		finance.PATCH("/payments/:id", h.Finance.UpdatePayment)
		finance.GET("/invoices", h.Finance.ListInvoices)
		finance.POST("/invoices", h.Finance.CreateInvoice)
		finance.PATCH("/invoices/:id", h.Finance.UpdateInvoice)
		finance.GET("/installment-plans", h.Finance.ListInstallmentPlans)
		finance.POST("/installment-plans", h.Finance.CreateInstallmentPlan)
		finance.PATCH("/installment-plans/:id", h.Finance.UpdateInstallmentPlan)
		finance.GET("/items/:id", h.Finance.GetItem)
		finance.DELETE("/items/:id", h.Finance.DeleteItem)
	}

	reports := secured.Group("/reports", staff)
	{
		reports.POST("", h.Reports.Generate)
	}
	// Downloads authenticate through the signed token instead of a JWT
	// so the link can be handed to a browser.
	v1.GET("/reports/download", h.Reports.Download)
}
