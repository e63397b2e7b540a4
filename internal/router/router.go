package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/config"
	"github.com/glowfit-dev/glowfit/internal/handlers"
	"github.com/glowfit-dev/glowfit/internal/middleware"
	"github.com/glowfit-dev/glowfit/internal/services"
	"github.com/glowfit-dev/glowfit/internal/storage"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries everything the route handlers need; main wires it once.
type Deps struct {
	DB       *gorm.DB
	Logger   *zap.Logger
	Config   *config.Config
	Storage  *storage.LocalStorage
	Notifier *services.Notifier
}

func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handlers.NewAuthHandler(deps.DB, deps.Logger, deps.Config.Server.Domain)
	areaHandler := handlers.NewGlowAreaHandler(deps.DB, deps.Logger)
	deviceHandler := handlers.NewGlowDeviceHandler(deps.DB, deps.Logger)
	planHandler := handlers.NewGlowPlanHandler(deps.DB, deps.Logger, deps.Notifier)
	glowHistoryHandler := handlers.NewGlowHistoryHandler(deps.DB, deps.Logger)
	itemHandler := handlers.NewFitnessItemHandler(deps.DB, deps.Logger, deps.Notifier)
	fitnessHistoryHandler := handlers.NewFitnessHistoryHandler(deps.DB, deps.Logger)
	videoHandler := handlers.NewVideoHandler(deps.DB, deps.Logger, deps.Storage, deps.Config.Upload.MaxSizeMB)
	reminderHandler := handlers.NewReminderHandler(deps.DB, deps.Logger)
	notificationHandler := handlers.NewNotificationHandler(deps.DB, deps.Logger)
	dashboardHandler := handlers.NewDashboardHandler(deps.DB, deps.Logger)
	exportHandler := handlers.NewExportHandler(deps.DB, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.DB, deps.Logger)
	wsHandler := handlers.NewWSHandler(deps.Logger)

	authRequired := middleware.AuthMiddleware(deps.DB)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static(deps.Storage.BaseURL(), deps.Storage.Root())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", authRequired, wsHandler.Connect)

		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authRequired, authHandler.Me)
			auth.PATCH("/me", authRequired, authHandler.UpdateProfile)
			auth.DELETE("/me", authRequired, authHandler.DeleteAccount)
		}

		areas := api.Group("/glow-areas", authRequired)
		{
			areas.POST("", areaHandler.Create)
			areas.GET("", areaHandler.List)
			areas.PUT("/:id", areaHandler.Update)
			areas.DELETE("/:id", areaHandler.Delete)
		}

		devices := api.Group("/glow-devices", authRequired)
		{
			devices.POST("", deviceHandler.Create)
			devices.GET("", deviceHandler.List)
			devices.PUT("/:id", deviceHandler.Update)
			devices.DELETE("/:id", deviceHandler.Delete)
		}

		plans := api.Group("/glow-plans", authRequired)
		{
			plans.POST("", planHandler.Create)
			plans.GET("", planHandler.List)
			plans.GET("/:id", planHandler.Get)
			plans.PUT("/:id", planHandler.Update)
			plans.DELETE("/:id", planHandler.Delete)
			plans.POST("/:id/complete", planHandler.Complete)
		}

		glowHistory := api.Group("/glow-history", authRequired)
		{
			glowHistory.GET("", glowHistoryHandler.List)
			glowHistory.DELETE("/:id", glowHistoryHandler.Delete)
		}

		items := api.Group("/fitness-items", authRequired)
		{
			items.POST("", itemHandler.Create)
			items.GET("", itemHandler.List)
			items.GET("/:id", itemHandler.Get)
			items.PUT("/:id", itemHandler.Update)
			items.DELETE("/:id", itemHandler.Delete)
			items.POST("/:id/complete", itemHandler.Complete)
		}

		fitnessHistory := api.Group("/fitness-history", authRequired)
		{
			fitnessHistory.GET("", fitnessHistoryHandler.List)
			fitnessHistory.DELETE("/:id", fitnessHistoryHandler.Delete)
		}

		videos := api.Group("/videos", authRequired)
		{
			videos.POST("", videoHandler.Upload)
			videos.GET("", videoHandler.List)
			videos.DELETE("/:id", videoHandler.Delete)
		}

		glowReminders := api.Group("/glow-reminders", authRequired)
		{
			glowReminders.POST("", reminderHandler.CreateGlow)
			glowReminders.GET("", reminderHandler.ListGlow)
			glowReminders.PUT("/:id", reminderHandler.UpdateGlow)
			glowReminders.DELETE("/:id", reminderHandler.DeleteGlow)
		}

		fitnessReminders := api.Group("/fitness-reminders", authRequired)
		{
			fitnessReminders.POST("", reminderHandler.CreateFitness)
			fitnessReminders.GET("", reminderHandler.ListFitness)
			fitnessReminders.PUT("/:id", reminderHandler.UpdateFitness)
			fitnessReminders.DELETE("/:id", reminderHandler.DeleteFitness)
		}

		notifications := api.Group("/notifications", authRequired)
		{
			notifications.GET("", notificationHandler.List)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
		}

		api.GET("/dashboard", authRequired, dashboardHandler.Stats)

		export := api.Group("/export", authRequired)
		{
			export.GET("/glow-history", exportHandler.GlowHistory)
			export.GET("/fitness-history", exportHandler.FitnessHistory)
		}

		admin := api.Group("/admin", authRequired, middleware.RequireAdmin())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id/status", adminHandler.UpdateUserStatus)
		}
	}

	return r
}
