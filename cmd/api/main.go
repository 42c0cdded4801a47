package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/donatehub/backend/internal/admin"
	"github.com/donatehub/backend/internal/alerts"
	"github.com/donatehub/backend/internal/auth"
	"github.com/donatehub/backend/internal/config"
	"github.com/donatehub/backend/internal/db"
	"github.com/donatehub/backend/internal/donation"
	appmw "github.com/donatehub/backend/internal/middleware"
	"github.com/donatehub/backend/internal/overlay"
	"github.com/donatehub/backend/internal/settlement"
	"github.com/donatehub/backend/internal/storage"
	"github.com/donatehub/backend/internal/user"
	"github.com/donatehub/backend/internal/withdraw"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := db.CreateTables(ctx, pool); err != nil {
		logger.Fatalf("db schema: %v", err)
	}

	files, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		logger.Fatalf("storage: %v", err)
	}

	hub := overlay.NewHub(pool, logger)

	// Alert queue is optional; without Redis donations still settle,
	// the overlay just stays quiet.
	var notifier *alerts.Notifier
	if cfg.RedisAddr != "" {
		notifier = alerts.NewNotifier(cfg.RedisAddr, logger)
		defer notifier.Close()

		processor := alerts.NewProcessor(cfg.RedisAddr, hub, logger)
		processor.Start()
		defer processor.Shutdown()
	} else {
		logger.Printf("REDIS_ADDR not set, overlay alerts disabled")
	}

	coordinator := settlement.New(pool, logger)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	authHandler := &auth.Handler{
		DB:                pool,
		Tokens:            tokens,
		Log:               logger,
		BotToken:          cfg.TelegramBotToken,
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: cfg.AdminPasswordHash,
	}
	userHandler := user.NewHandler(pool, files, logger)
	donationHandler := donation.NewHandler(pool, coordinator, notifier, donation.PaymentLinks{
		ClickServiceID:   cfg.ClickServiceID,
		ClickMerchantID:  cfg.ClickMerchantID,
		MirpayMerchantID: cfg.MirpayMerchantID,
	}, logger)
	withdrawHandler := withdraw.NewHandler(pool, coordinator, notifier, logger)
	adminHandler := admin.NewHandler(pool, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.Static("/uploads", cfg.UploadDir)

	// Auth (rate limited; the login endpoints face the open internet)
	authGroup := e.Group("/auth")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(10)))
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/admin/login", authHandler.AdminLogin)

	// Public donation surface
	e.POST("/donation/complete/:method", donationHandler.Complete)
	e.POST("/donation/:streamerId", donationHandler.Create)
	e.GET("/donation/statistics", donationHandler.Statistics)
	e.GET("/donation/statistics/:streamerId", donationHandler.StatisticsForStreamer)

	// Public directory reads
	e.GET("/user/user-info/:userId", userHandler.GetUserInfo)
	e.GET("/user/verified", userHandler.Verified)
	e.GET("/user/:channelName", userHandler.GetByChannelName)

	// Overlay widget socket, authenticated by api key
	e.GET("/overlay/:apiKey", hub.Serve)

	// Authenticated surface
	g := e.Group("")
	g.Use(appmw.JWT(cfg.JWTSecret))

	g.GET("/user/me", userHandler.Me)
	g.PUT("/user/:userId", userHandler.Update)
	g.PUT("/user/register/:userId", userHandler.FullRegister)
	g.PUT("/user/online/:id", userHandler.Online)
	g.PUT("/user/offline/:id", userHandler.Offline)

	g.GET("/donation/:streamerId", donationHandler.ListForStreamer)
	g.POST("/donation/test/:streamerId", donationHandler.CreateTest)

	payoutRoles := appmw.RequireRoles(user.RoleStreamer, user.RoleAdmin)
	g.POST("/withdraw/:streamerId", withdrawHandler.Create, payoutRoles)
	g.GET("/withdraw/:streamerId", withdrawHandler.ForStreamerByStatus, payoutRoles)

	// Admin surface
	adminGroup := e.Group("")
	adminGroup.Use(appmw.JWT(cfg.JWTSecret))
	adminGroup.Use(appmw.AdminGuard)

	adminGroup.GET("/donation", donationHandler.ListAll)
	adminGroup.GET("/withdraw", withdrawHandler.ByStatus)
	adminGroup.PUT("/withdraw/complete/:withdrawId", withdrawHandler.Complete)
	adminGroup.PUT("/withdraw/cancel/:withdrawId", withdrawHandler.Cancel)
	adminGroup.GET("/user/not-verified", userHandler.NotVerified)
	adminGroup.GET("/user/statistic/register", userHandler.RegisterStatistics)
	adminGroup.GET("/user/statistic/last-online", userHandler.LastOnlineStatistics)
	adminGroup.GET("/user/search", userHandler.Search)
	adminGroup.PUT("/user/enable/:id", userHandler.Enable)
	adminGroup.PUT("/user/disable/:id", userHandler.Disable)
	adminGroup.GET("/admin/stats", adminHandler.Stats)

	logger.Printf("API server listening on %s", cfg.RunAddress)
	if err := e.Start(cfg.RunAddress); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
