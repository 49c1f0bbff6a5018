package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resepi/internal/config"
	"resepi/internal/db"
	"resepi/internal/logger"
	"resepi/internal/metrics"
	"resepi/internal/middleware"
	"resepi/internal/router"
	"resepi/internal/services"
	"resepi/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const listingCacheSize = 128

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	// Initialize Database
	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to get sql.DB")
	}

	// Redis 不可用时计数器退回进程内存储
	rdb := db.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	cache := utils.NewCache(listingCacheSize)
	engagement := services.NewEngagementService(services.NewCounterStoreWithFallback(rdb), cfg.CounterTimeout)
	subscribers := services.NewSubscriberService(gdb, services.NewMailService(cfg), cfg.SiteURL, cfg.VerificationTokenTTL)
	users := services.NewUserService(gdb)

	scheduler := services.NewScheduler(subscribers)
	if err := scheduler.Register(cfg.TokenSweepSpec); err != nil {
		logrus.WithError(err).Fatal("Failed to register scheduled jobs")
	}
	scheduler.Start()

	// Initialize Gin
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinLogger(), metrics.GinMiddleware())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("resepi_session", store))

	r.HTMLRender = loadTemplates(cfg.TemplatesDir)
	r.Static("/static", "./web/static")

	r.Use(middleware.LoadUser(users))

	router.RegisterRoutes(r, router.Deps{
		Users:          users,
		Recipes:        services.NewRecipeService(gdb, cache),
		Guides:         services.NewGuideService(gdb, cache),
		Comments:       services.NewCommentService(gdb),
		Engagement:     engagement,
		Subscribers:    subscribers,
		CommentLimiter: middleware.NewRateLimiter(cfg.CommentRatePerMinute, cfg.CommentRatePerMinute),
		DB:             sqlDB,
		SiteURL:        cfg.SiteURL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("Resepi server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("HTTP shutdown")
	}
	scheduler.Stop()
	// 等待未完成的计数器写入
	engagement.Wait()
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = sqlDB.Close()
	logrus.Info("Server exited")
}
