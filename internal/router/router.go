package router

import (
	"github.com/gin-gonic/gin"

	"github.com/edukit/academia-api/internal/handler"
	"github.com/edukit/academia-api/internal/middleware"
	"github.com/edukit/academia-api/internal/models"
	"github.com/edukit/academia-api/internal/service"
)

// Handlers bundles the HTTP handlers mounted by Register.
type Handlers struct {
	Auth      *handler.AuthHandler
	Programs  *handler.ProgramHandler
	Teachers  *handler.TeacherHandler
	Classroom *handler.ClassroomHandler
	Students  *handler.StudentHandler
	Groups    *handler.GroupHandler
	Finance   *handler.FinanceHandler
	Academic  *handler.AcademicHandler
	Reports   *handler.ReportHandler
}

// Register mounts the API routes under the prefix. Everything except
// login requires a valid token; write access is narrowed per role.
func Register(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))

	secured.GET("/auth/me", h.Auth.Me)
	secured.PUT("/auth/password", h.Auth.ChangePassword)
	secured.POST("/auth/register", middleware.RequireRoles(models.RoleAdmin), h.Auth.Register)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	programs := secured.Group("/programs")
	programs.GET("", h.Programs.List)
	programs.GET("/:id", h.Programs.Get)
	programs.POST("", adminOnly, h.Programs.Create)
	programs.PUT("/:id", adminOnly, h.Programs.Update)
	programs.DELETE("/:id", adminOnly, h.Programs.Deactivate)
	programs.POST("/:id/activate", adminOnly, h.Programs.Activate)

	teachers := secured.Group("/teachers")
	teachers.GET("", h.Teachers.List)
	teachers.GET("/:id", h.Teachers.Get)
	teachers.POST("", adminOnly, h.Teachers.Create)
	teachers.PUT("/:id", adminOnly, h.Teachers.Update)
	teachers.DELETE("/:id", adminOnly, h.Teachers.Deactivate)
	teachers.POST("/:id/activate", adminOnly, h.Teachers.Activate)

	classrooms := secured.Group("/classrooms")
	classrooms.GET("", h.Classroom.List)
	classrooms.GET("/:id", h.Classroom.Get)
	classrooms.POST("", adminOnly, h.Classroom.Create)
	classrooms.PUT("/:id", adminOnly, h.Classroom.Update)
	classrooms.DELETE("/:id", adminOnly, h.Classroom.Deactivate)
	classrooms.POST("/:id/activate", adminOnly, h.Classroom.Activate)

	students := secured.Group("/students")
	students.GET("", h.Students.List)
	students.GET("/:id", h.Students.Get)
	students.POST("", adminOnly, h.Students.Create)
	students.PUT("/:id", adminOnly, h.Students.Update)
	students.DELETE("/:id", adminOnly, h.Students.Deactivate)
	students.POST("/:id/activate", adminOnly, h.Students.Activate)

	groups := secured.Group("/groups")
	groups.GET("", h.Groups.List)
	groups.GET("/:id", h.Groups.Get)
	groups.POST("", adminOnly, h.Groups.Create)
	groups.PUT("/:id", adminOnly, h.Groups.Update)
	groups.PATCH("/:id/status", adminOnly, h.Groups.UpdateStatus)

	financeWrite := middleware.RequireRoles(models.RoleAdmin, models.RoleCashier)
	finances := secured.Group("/finances")
	finances.POST("/enroll", financeWrite, h.Finance.Enroll)
	finances.POST("/pay", financeWrite, h.Finance.Pay)
	finances.POST("/grades", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Finance.Grade)
	finances.GET("/groups/:groupId", h.Finance.GroupFinancials)
	finances.GET("/transactions", middleware.RequireRoles(models.RoleAdmin, models.RoleCashier), h.Finance.Transactions)

	academicWrite := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	academic := secured.Group("/academic")
	academic.POST("/attendance", academicWrite, h.Academic.TakeAttendance)
	academic.PUT("/status", academicWrite, h.Academic.UpdateStatus)
	academic.GET("/enrollments/:id", h.Academic.EnrollmentRecord)

	reportRead := middleware.RequireRoles(models.RoleAdmin, models.RoleCashier)
	reports := secured.Group("/reports")
	reports.GET("/dashboard", middleware.RequireRoles(models.RoleAdmin, models.RoleCashier, models.RoleTeacher), h.Reports.Dashboard)
	reports.GET("/payments", reportRead, h.Reports.Payments)
	reports.GET("/payments/export", reportRead, h.Reports.ExportPayments)
	reports.GET("/debtors", reportRead, h.Reports.Debtors)
	reports.GET("/debtors/export", reportRead, h.Reports.ExportDebtors)
}
