package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ssonotify/internal/config"
	"ssonotify/internal/handler"
	"ssonotify/internal/httpserver"
	"ssonotify/internal/repository"
	"ssonotify/internal/service"
	"ssonotify/pkg/db"
	"ssonotify/pkg/logger"
	"ssonotify/pkg/mq"
	"ssonotify/pkg/redis"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_DIR"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.NewLogger()
	defer zlog.Sync()

	zlog.Info("Starting notification engine...",
		zap.String("env", cfg.Env),
		zap.String("db_host", cfg.DB.Host),
		zap.Bool("sms_enabled", cfg.SMS.APIURL != "" && cfg.SMS.APIKey != ""),
		zap.Bool("mq_enabled", cfg.MQ.URL != ""),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, zlog)
	if err != nil {
		zlog.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis dedup cache (optional)
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(cfg.Redis)
		defer rdb.Close()
	}

	// MQ event publisher (optional)
	var events service.EventPublisher
	if cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			zlog.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer publisher.Close()
		events = publisher
	}

	// Repositories
	notifRepo := repository.NewNotificationRepository(dbConn, zlog)
	benefitRepo := repository.NewBenefitRepository(dbConn, zlog)
	profileRepo := repository.NewProfileRepository(dbConn, zlog)
	auditRepo := repository.NewAuditRepository(dbConn, zlog)

	// Engine
	guard := service.NewDedupGuard(notifRepo, rdb, zlog)
	line := service.NewLineClient(cfg.Line.ChannelAccessToken)
	sms := service.NewSMSClient(cfg.SMS)
	dispatcher := service.NewDispatcher(notifRepo, guard, line, sms, events, zlog)
	auditor := service.NewAuditor(auditRepo, events, zlog)
	engine := service.NewEngine(benefitRepo, profileRepo, dispatcher, auditor, zlog)

	// HTTP
	predictHandler := handler.NewPredictHandler(engine, cfg.CronSecret, cfg.IsProduction(), zlog)
	notifyHandler := handler.NewNotifyHandler(dispatcher, zlog)
	router := httpserver.NewRouter(predictHandler, notifyHandler, cfg.JWTSecret, dbConn)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		zlog.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down notification engine gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP server shutdown error", zap.Error(err))
	}

	zlog.Info("Notification engine shutdown complete")
}
