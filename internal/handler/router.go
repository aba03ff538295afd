package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/acadhub/portal-api/internal/middleware"
	"github.com/acadhub/portal-api/internal/models"
	"github.com/acadhub/portal-api/internal/service"
	"github.com/acadhub/portal-api/pkg/config"
	"github.com/acadhub/portal-api/pkg/logger"
	corsmiddleware "github.com/acadhub/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadhub/portal-api/pkg/middleware/requestid"
)

// Handlers bundles every route handler for registration.
type Handlers struct {
	Auth            *AuthHandler
	Users           *UserHandler
	Intakes         *IntakeHandler
	Schools         *SchoolHandler
	Departments     *DepartmentHandler
	Courses         *CourseHandler
	CourseOfferings *CourseOfferingHandler
	Assignments     *CourseAssignmentHandler
	Contents        *ContentHandler
	SavedCourses    *SavedCourseHandler
	Notifications   *NotificationHandler
	Summarizer      *SummarizerHandler
}

// NewRouter builds the gin engine with middleware, probes and all v1 routes.
// Mutating routes on registry resources are restricted to moderators and
// admins; the intake service applies its own finer-grained access matrix.
func NewRouter(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authed := middleware.JWT(auth)
	staffOnly := middleware.RequireStaff()
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	moderation := middleware.RequireRoles(models.RoleModerator, models.RoleAdmin)

	v1 := r.Group(cfg.APIPrefix)

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.POST("/google", h.Auth.Google)
		authGroup.POST("/github", h.Auth.GitHub)
	}

	users := v1.Group("/users", authed)
	{
		users.GET("/me", h.Users.Me)
		users.PUT("/me", h.Users.UpdateMe)
		users.GET("", adminOnly, h.Users.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), h.Users.Get)
		users.PUT("/:id", adminOnly, h.Users.Update)
		users.DELETE("/:id", adminOnly, h.Users.Delete)
	}

	intakes := v1.Group("/intakes")
	{
		intakes.POST("/check-user", h.Intakes.CheckUser)
		intakes.GET("/content-reported", authed, h.Intakes.ContentReported)
		intakes.GET("/export", authed, h.Intakes.Export)
		intakes.POST("", authed, h.Intakes.Create)
		intakes.GET("", authed, h.Intakes.List)
		intakes.GET("/:id", authed, h.Intakes.Get)
		intakes.PUT("/:id", authed, h.Intakes.Update)
		intakes.DELETE("/:id", authed, h.Intakes.Delete)
	}

	schools := v1.Group("/schools", authed)
	{
		schools.GET("", h.Schools.List)
		schools.GET("/:id", h.Schools.Get)
		schools.POST("", moderation, h.Schools.Create)
		schools.PUT("/:id", moderation, h.Schools.Update)
		schools.DELETE("/:id", moderation, h.Schools.Delete)
	}

	departments := v1.Group("/departments", authed)
	{
		departments.GET("", h.Departments.List)
		departments.GET("/:id", h.Departments.Get)
		departments.POST("", moderation, h.Departments.Create)
		departments.PUT("/:id", moderation, h.Departments.Update)
		departments.DELETE("/:id", moderation, h.Departments.Delete)
	}

	courses := v1.Group("/courses", authed)
	{
		courses.GET("", h.Courses.List)
		courses.GET("/:id", h.Courses.Get)
		courses.POST("", moderation, h.Courses.Create)
		courses.PUT("/:id", moderation, h.Courses.Update)
		courses.DELETE("/:id", moderation, h.Courses.Delete)
	}

	offerings := v1.Group("/course-offerings", authed)
	{
		offerings.GET("", h.CourseOfferings.List)
		offerings.GET("/:id", h.CourseOfferings.Get)
		offerings.POST("", moderation, h.CourseOfferings.Create)
		offerings.PUT("/:id", moderation, h.CourseOfferings.Update)
		offerings.DELETE("/:id", moderation, h.CourseOfferings.Delete)
	}

	assignments := v1.Group("/course-assignments", authed)
	{
		assignments.GET("", staffOnly, h.Assignments.List)
		assignments.POST("", moderation, h.Assignments.Create)
		assignments.DELETE("/:id", moderation, h.Assignments.Delete)
	}

	contents := v1.Group("/contents")
	{
		contents.GET("/download", h.Contents.Download)
		contents.GET("", authed, h.Contents.List)
		contents.GET("/:id", authed, h.Contents.Get)
		contents.GET("/:id/signed-url", authed, h.Contents.SignedURL)
		contents.POST("", authed, staffOnly, h.Contents.Upload)
		contents.PUT("/:id", authed, staffOnly, h.Contents.Update)
		contents.DELETE("/:id", authed, staffOnly, h.Contents.Delete)
	}

	saved := v1.Group("/saved-courses", authed)
	{
		saved.GET("", h.SavedCourses.List)
		saved.POST("/:courseId", h.SavedCourses.Save)
		saved.DELETE("/:courseId", h.SavedCourses.Remove)
	}

	notifications := v1.Group("/notifications", authed)
	{
		notifications.GET("", h.Notifications.List)
		notifications.POST("/broadcast", moderation, h.Notifications.Broadcast)
		notifications.PUT("/:id/read", h.Notifications.MarkRead)
		notifications.DELETE("/:id", moderation, h.Notifications.Delete)
	}

	v1.POST("/summarizer/summarize", authed, h.Summarizer.Summarize)

	return r
}
