package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"flitz/config"
	"flitz/internal/cache"
	"flitz/internal/handler"
	"flitz/internal/logger"
	"flitz/internal/middleware"
	"flitz/internal/repository"
	"flitz/internal/service"
)

// Deps exposes the long-lived engines the job scheduler drives outside the
// request path.
type Deps struct {
	ChronoWave *service.ChronoWaveMatcher
	Reveal     *service.RevealEngine
}

func Setup(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache) (*gin.Engine, *Deps) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(rdb, 100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	locRepo := repository.NewLocationRepository(db)
	cardRepo := repository.NewCardRepository(db)
	safetyRepo := repository.NewSafetyRepository(db)
	discoveryRepo := repository.NewDiscoveryRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	authSvc := service.NewAuthService(&cfg.JWT, userRepo)
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		logger.Info("push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		logger.Warn("push notifications disabled: firebase init failed, check service account file")
	} else {
		logger.Info("push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcmSvc)

	gate := service.NewSafetyGate(safetyRepo)
	reveal := service.NewRevealEngine(
		&cfg.Reveal, cardRepo, locRepo, matchRepo, gate,
		service.NoShadowban{}, service.NoOfficialCards{},
		cache.NewLease(rdb), notifSvc,
	)
	chronoWave := service.NewChronoWaveMatcher(&cfg.ChronoWave, locRepo, cardRepo, gate, reveal, notifSvc)
	wave := service.NewWaveMatcher(
		db, &cfg.Wave, discoveryRepo, cardRepo, locRepo, userRepo, matchRepo, gate,
		service.HaversineNearby{MaxMeters: cfg.Wave.MaxReportDistanceMeters}, notifSvc,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	identityHandler := handler.NewIdentityHandler(userRepo)
	locationHandler := handler.NewLocationHandler(locRepo)
	safetyHandler := handler.NewSafetyHandler(safetyRepo)
	cardHandler := handler.NewCardHandler(cardRepo, userRepo)
	waveHandler := handler.NewWaveHandler(wave)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.POST("/fcm-token", authHandler.UpdateFCMToken)
			me.PUT("/identity", identityHandler.Upsert)
			me.GET("/identity", identityHandler.Get)
			me.PATCH("/location", locationHandler.Update)
			me.PUT("/safety-zone", safetyHandler.UpsertZone)
			me.GET("/safety-zone", safetyHandler.GetZone)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		api.POST("/block", authMw, safetyHandler.Block)
		api.DELETE("/block", authMw, safetyHandler.Unblock)

		cards := api.Group("/cards")
		cards.Use(authMw)
		{
			cards.POST("", cardHandler.Create)
			cards.PUT("/:id/main", cardHandler.SetMain)
			cards.GET("/received", cardHandler.ListReceived)
			cards.DELETE("/received/:id", cardHandler.Dismiss)
		}

		waveGroup := api.Group("/wave")
		waveGroup.Use(authMw)
		{
			waveGroup.POST("/sessions", waveHandler.StartDiscovery)
			waveGroup.DELETE("/sessions", waveHandler.StopDiscovery)
			waveGroup.POST("/reports", waveHandler.ReportDiscovery)
		}
	}

	return r, &Deps{ChronoWave: chronoWave, Reveal: reveal}
}
