package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/abroadcrm/internal/app/controllers"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/middleware"
)

// Controllers bundles every HTTP controller the router mounts
type Controllers struct {
	Auth         *controllers.AuthController
	Users        *controllers.UserController
	Students     *controllers.StudentController
	Universities *controllers.UniversityController
	Applications *controllers.ApplicationController
	Employees    *controllers.EmployeeController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh", ctrl.Auth.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authProtected := authenticated.Group("/auth")
	{
		authProtected.GET("/verify", ctrl.Auth.Verify)
		authProtected.POST("/logout", ctrl.Auth.Logout)
		authProtected.GET("/me", ctrl.Auth.Me)

		users := authProtected.Group("/users")
		users.GET("", ctrl.Users.ListUsers)
		users.POST("", adminOnly, ctrl.Users.CreateUser)
		users.GET("/:id", ctrl.Users.GetUser)
		users.PUT("/:id", ctrl.Users.UpdateUser)
		users.PATCH("/:id", ctrl.Users.PatchUser)
		users.DELETE("/:id", ctrl.Users.DeleteUser)
	}

	students := authenticated.Group("/students")
	{
		students.GET("", ctrl.Students.ListStudents)
		students.POST("", ctrl.Students.CreateStudent)
		students.GET("/stats", ctrl.Students.GetStats)
		students.GET("/:id", ctrl.Students.GetStudent)
		students.PUT("/:id", ctrl.Students.UpdateStudent)
		students.PATCH("/:id", ctrl.Students.PatchStudent)
		students.DELETE("/:id", ctrl.Students.DeleteStudent)

		remarks := students.Group("/remarks")
		remarks.GET("", ctrl.Students.ListRemarks)
		remarks.POST("", ctrl.Students.CreateRemark)
		remarks.GET("/:id", ctrl.Students.GetRemark)
		remarks.PUT("/:id", ctrl.Students.UpdateRemark)
		remarks.PATCH("/:id", ctrl.Students.PatchRemark)
		remarks.DELETE("/:id", ctrl.Students.DeleteRemark)
	}

	// Universities are readable by everyone, writes are admin only
	universities := authenticated.Group("/universities")
	{
		universities.GET("", ctrl.Universities.ListUniversities)
		universities.GET("/:id", ctrl.Universities.GetUniversity)
		universities.GET("/:id/programs", ctrl.Universities.ListPrograms)
		universities.GET("/:id/requirements", ctrl.Universities.GetRequirements)

		universitiesAdmin := universities.Group("")
		universitiesAdmin.Use(adminOnly)
		{
			universitiesAdmin.POST("", ctrl.Universities.CreateUniversity)
			universitiesAdmin.PUT("/:id", ctrl.Universities.UpdateUniversity)
			universitiesAdmin.PATCH("/:id", ctrl.Universities.PatchUniversity)
			universitiesAdmin.DELETE("/:id", ctrl.Universities.DeleteUniversity)
			universitiesAdmin.POST("/:id/programs", ctrl.Universities.CreateProgram)
			universitiesAdmin.PUT("/:id/programs/:programId", ctrl.Universities.UpdateProgram)
			universitiesAdmin.DELETE("/:id/programs/:programId", ctrl.Universities.DeleteProgram)
			universitiesAdmin.PUT("/:id/requirements", ctrl.Universities.PutRequirements)
		}
	}

	applications := authenticated.Group("/applications")
	{
		applications.GET("", ctrl.Applications.ListApplications)
		applications.POST("", ctrl.Applications.CreateApplication)
		applications.GET("/:id", ctrl.Applications.GetApplication)
		applications.PUT("/:id", ctrl.Applications.UpdateApplication)
		applications.PATCH("/:id", ctrl.Applications.PatchApplication)
		applications.DELETE("/:id", ctrl.Applications.DeleteApplication)

		applications.GET("/:id/documents", ctrl.Applications.ListDocuments)
		applications.POST("/:id/documents", ctrl.Applications.CreateDocument)
		applications.PATCH("/:id/documents/:docId", ctrl.Applications.PatchDocument)
		applications.DELETE("/:id/documents/:docId", ctrl.Applications.DeleteDocument)
		applications.POST("/:id/documents/:docId/file", ctrl.Applications.UploadDocumentFile)

		applications.GET("/:id/timeline", ctrl.Applications.ListTimeline)
		applications.POST("/:id/timeline", ctrl.Applications.AddTimelineEntry)
	}

	employees := authenticated.Group("/employees")
	{
		employees.GET("/performance", ctrl.Employees.ListPerformance)
		employees.GET("/targets", ctrl.Employees.ListTargets)
		employees.POST("/targets", ctrl.Employees.CreateTarget)
		employees.DELETE("/targets/:id", ctrl.Employees.DeleteTarget)
		employees.GET("/:userId/performance", ctrl.Employees.GetPerformance)
		employees.PUT("/:userId/performance", adminOnly, ctrl.Employees.PutPerformance)
	}
}
