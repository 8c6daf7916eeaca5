package routes

import (
	"github.com/ashin12345678/pfc-balance-app/controllers"
	"github.com/ashin12345678/pfc-balance-app/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every controller the router mounts. Nil controllers leave
// their routes unmounted.
type Handlers struct {
	Auth          *controllers.AuthController
	Profile       *controllers.ProfileController
	AI            *controllers.AIController
	Meals         *controllers.MealController
	Barcode       *controllers.BarcodeController
	Summaries     *controllers.SummaryController
	Analytics     *controllers.AnalyticsController
	Devices       *controllers.DeviceController
	Notifications *controllers.NotificationController
	Realtime      *controllers.RealtimeController
}

func SetupRouter(h Handlers, jwtSecret string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(logger))

	r.GET("/healthz", controllers.Health)

	// Public auth routes
	if h.Auth != nil {
		auth := r.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}
	}

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(jwtSecret))

	if h.Profile != nil {
		api.GET("/profile", h.Profile.Get)
		api.PUT("/profile", h.Profile.Update)
		api.GET("/profile/targets", h.Profile.Targets)
	}
	if h.AI != nil {
		ai := api.Group("/ai")
		{
			ai.POST("/analyze", h.AI.Analyze)
			ai.POST("/analyze-image", h.AI.AnalyzeImage)
			ai.POST("/advice", h.AI.GenerateAdvice)
		}
	}
	if h.Meals != nil {
		api.GET("/meals", h.Meals.List)
		api.POST("/meals", h.Meals.Create)
		api.PATCH("/meals", h.Meals.Update)
		api.DELETE("/meals", h.Meals.Delete)
		api.POST("/meals/photo", h.Meals.UploadPhoto)
	}
	if h.Barcode != nil {
		api.GET("/barcode/:code", h.Barcode.Lookup)
	}
	if h.Summaries != nil {
		api.GET("/summaries", h.Summaries.List)
		api.POST("/summaries", h.Summaries.SaveAdvice)
		api.POST("/summaries/:date/email", h.Summaries.EmailAdvice)
	}
	if h.Analytics != nil {
		api.GET("/analytics/weekly", h.Analytics.GetWeeklyOverview)
		api.GET("/analytics/summary", h.Analytics.GetAnalyticsSummary)
	}
	if h.Devices != nil {
		api.POST("/devices", h.Devices.Register)
	}
	if h.Notifications != nil {
		api.GET("/alerts", h.Notifications.ListAlerts)
		api.POST("/notifications/toggle", h.Notifications.Toggle)
	}
	if h.Realtime != nil {
		api.GET("/ws/alerts", h.Realtime.AlertsWS)
	}

	return r
}
