package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vnkhanh/feedback-server/config"
	"github.com/vnkhanh/feedback-server/janitor"
	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/routes"
	"github.com/vnkhanh/feedback-server/services"
	"github.com/vnkhanh/feedback-server/utils"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	configureLogging(cfg)
	if os.Getenv("JWT_SECRET") == "" {
		log.Warn("JWT_SECRET not set, using a random per-process secret; tokens will not survive a restart")
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get database handle")
	}
	defer sqlDB.Close()

	tokens := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	sessions := services.NewSessionService(db, services.SessionOptions{
		CodeLength:   cfg.Sessions.JoinCodeLength,
		CodeAttempts: cfg.Sessions.JoinCodeAttempts,
	})
	deps := routes.Deps{
		DB:              db,
		Auth:            services.NewAuthService(db, tokens, cfg.Auth.GoogleClientID),
		Modules:         services.NewModuleService(db),
		Sessions:        sessions,
		Items:           services.NewItemService(db),
		Feedback:        services.NewFeedbackService(db),
		Results:         services.NewResultService(db),
		FeedbackLimiter: middleware.NewIPRateLimiter(cfg.RateLimit.FeedbackPerMin, cfg.RateLimit.FeedbackBurst, cfg.RateLimit.TTL),
		LoginLimiter:    middleware.NewIPRateLimiter(cfg.RateLimit.LoginPerMin, cfg.RateLimit.LoginBurst, cfg.RateLimit.TTL),
	}

	var jan *janitor.Janitor
	if cfg.Sessions.MaxDuration > 0 {
		jan, err = janitor.New(sessions, cfg.Sessions.MaxDuration, cfg.Sessions.JanitorInterval)
		if err != nil {
			log.WithError(err).Fatal("failed to create janitor")
		}
		jan.Start()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.AttachRequestID(), middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if err := r.SetTrustedProxies(nil); err != nil {
		log.WithError(err).Fatal("failed to configure trusted proxies")
	}
	routes.SetupRoutes(r, deps)

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if jan != nil {
		if err := jan.Stop(); err != nil {
			log.WithError(err).Warn("janitor did not stop cleanly")
		}
	}
	log.Info("server exited")
}

func configureLogging(cfg *config.Config) {
	if cfg.Logging.Format == "json" {
		log.SetHandler(json.New(os.Stderr))
	} else {
		log.SetHandler(cli.New(os.Stderr))
	}
	log.SetLevel(log.MustParseLevel(cfg.Logging.Level))
}
