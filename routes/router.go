package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/config"
	"github.com/hadealahmad/anonymous-messages/controllers"
	"github.com/hadealahmad/anonymous-messages/middleware"
	"github.com/hadealahmad/anonymous-messages/services"
	"github.com/hadealahmad/anonymous-messages/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	// Shared service wiring
	uploads := services.NewUploadStore(db, cfg.UploadDir, cfg.MaxImagesPerUpload, cfg.MaxImageSizeMB, cfg.AllowedImageTypes)
	users := services.NewUserStore(db)
	submission := services.NewSubmissionService(
		services.NewMessageStore(db),
		users,
		uploads,
		services.NewIntervalLimiter(time.Duration(cfg.SubmitIntervalSeconds)*time.Second, utils.GetRedis()),
		services.NewHeuristicSpamChecker(),
		services.NewRecaptchaVerifier(cfg.RecaptchaSecretKey, cfg.RecaptchaMinScore),
		services.NewNotifier(users, cfg.AdminEmail),
		services.SubmissionOptions{
			LimitEnabled:    cfg.SubmitLimitEnabled,
			LimitExemptAuth: cfg.SubmitLimitExemptAuth,
			SpamEnabled:     cfg.SpamFilterEnabled,
			UploadsEnabled:  cfg.UploadsEnabled,
		},
	)

	authController := controllers.NewAuthController(db)
	submissionController := controllers.NewSubmissionController(submission)
	questionController := controllers.NewQuestionController(db)
	messageController := controllers.NewMessageController(db, uploads)
	responseController := controllers.NewResponseController(db)
	categoryController := controllers.NewCategoryController(db)
	postController := controllers.NewPostController(db)
	exportController := controllers.NewExportController(db)

	api := r.Group("/api/v1")

	// Public surface
	public := api.Group("")
	public.Use(middleware.RateLimitMiddleware())
	public.GET("/form-token", submissionController.FormToken)
	public.POST("/messages", middleware.OptionalAuth(), submissionController.Submit)
	public.GET("/questions", questionController.List)
	public.GET("/categories", categoryController.List)
	public.GET("/posts/:slug", postController.GetBySlug)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Reviewer surface: any authenticated user, pinned to their own
	// assignments unless they carry the admin flag.
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	admin.GET("/messages", messageController.List)
	admin.GET("/messages/counts", messageController.Counts)
	admin.GET("/messages/:id", messageController.Get)
	admin.PATCH("/messages/:id/status", messageController.UpdateStatus)
	admin.PATCH("/messages/:id/category", messageController.AssignCategory)
	admin.DELETE("/messages/:id", messageController.Delete)
	admin.POST("/messages/:id/response", responseController.Upsert)
	admin.GET("/messages/:id/response", responseController.Get)
	admin.GET("/export", exportController.Export)
	admin.GET("/posts", postController.List)
	admin.GET("/categories", categoryController.List)

	// Admin-only management
	manage := admin.Group("")
	manage.Use(middleware.AdminRequired())
	manage.POST("/categories", categoryController.Create)
	manage.DELETE("/categories/:id", categoryController.Delete)
	manage.POST("/posts", postController.Create)
	manage.GET("/users", authController.ListUsers)
	manage.POST("/users", authController.CreateUser)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		ctx.Status(http.StatusNotFound)
	})

	return r
}
