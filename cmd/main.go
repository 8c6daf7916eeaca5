package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ashin12345678/pfc-balance-app/config"
	"github.com/ashin12345678/pfc-balance-app/controllers"
	"github.com/ashin12345678/pfc-balance-app/routes"
	"github.com/ashin12345678/pfc-balance-app/services"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	analysisCacheTTL = 24 * time.Hour
	productCacheTTL  = 7 * 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := config.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	rdb, err := config.NewRedis(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
	}

	ai, err := services.NewAIClient(cfg)
	if err != nil {
		if !errors.Is(err, services.ErrAIKeyNotSet) {
			logger.Fatal("AI client init failed", zap.Error(err))
		}
		logger.Warn("AI key not set, AI features will answer AI_KEY_NOT_SET", zap.String("provider", cfg.AIProvider))
		ai = nil
	}
	policy := utils.RetryPolicy{MaxRetries: cfg.AIMaxRetries, InitialDelay: cfg.AIInitialDelay}

	rt := services.NewRealtimeHub(logger)
	profiles := services.NewProfileService(db, cfg.MinTargetCalories, logger)
	analysis := services.NewMealAnalysisService(ai, policy, logger).
		WithCache(services.NewResultCache(rdb, "pfc:analysis:", analysisCacheTTL, logger))
	advice := services.NewAdviceService(ai, policy, logger)

	h := routes.Handlers{
		Auth:      controllers.NewAuthController(services.NewAuthService(db, cfg.JWTSecret, logger)),
		Profile:   controllers.NewProfileController(profiles),
		Analytics: controllers.NewAnalyticsController(services.NewAnalyticsService(db, profiles)),
		Realtime:  controllers.NewRealtimeController(rt),
	}

	// AWS backed pieces are optional; each needs its own setting as well.
	var (
		pusher services.Pusher
		mailer services.DigestSender
		photos services.PhotoUploader
		push   *services.PushService
	)
	awsCfg, err := utils.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		logger.Warn("AWS config unavailable, photo, mail and push disabled", zap.Error(err))
	} else {
		analysis.WithLabelRecognizer(services.NewRekognitionService(awsCfg))
		if cfg.S3Bucket != "" {
			photos = utils.NewImageUploader(awsCfg, cfg.S3Bucket, cfg.CloudFrontURL)
		}
		if cfg.SESEmail != "" {
			mailer = utils.NewMailer(awsCfg, cfg.SESEmail)
		}
		if cfg.SNSFCMArn != "" {
			push = services.NewPushService(db, awsCfg, cfg.SNSFCMArn, logger)
			pusher = push
		}
	}

	alerts := services.NewAlertBus(db, rt, pusher, logger)
	summaries := services.NewSummaryService(db, profiles, alerts, mailer, logger)
	meals := services.NewMealService(db, summaries, rt, photos, logger)
	barcode := services.NewBarcodeService(
		services.NewOpenFoodFactsClient(cfg.OFFBaseURL),
		services.NewGormProductStore(db),
		services.NewResultCache(rdb, "pfc:product:", productCacheTTL, logger),
		ai, policy, logger,
	)

	h.AI = &controllers.AIController{Analysis: analysis, Advice: advice, Profiles: profiles, Meals: meals}
	h.Meals = controllers.NewMealController(meals)
	h.Summaries = controllers.NewSummaryController(summaries)
	h.Barcode = controllers.NewBarcodeController(barcode)
	h.Notifications = &controllers.NotificationController{Alerts: alerts, Push: push}
	if push != nil {
		h.Devices = controllers.NewDeviceController(push)
	}

	r := routes.SetupRouter(h, cfg.JWTSecret, logger)
	logger.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
