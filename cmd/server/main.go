package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/yuruojie777/auth-service/internal/config"
	"github.com/yuruojie777/auth-service/internal/database"
	"github.com/yuruojie777/auth-service/internal/handler"
	"github.com/yuruojie777/auth-service/internal/logger"
	"github.com/yuruojie777/auth-service/internal/middleware"
	"github.com/yuruojie777/auth-service/internal/queue"
	"github.com/yuruojie777/auth-service/internal/repository"
	"github.com/yuruojie777/auth-service/internal/router"
	"github.com/yuruojie777/auth-service/internal/service"
	"github.com/yuruojie777/auth-service/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	codec := token.NewAccessCodec(cfg.JWTSecret, time.Duration(cfg.AccessTTLSec)*time.Second)
	hasher := token.NewRefreshHasher(cfg.RefreshHashKey)

	var events service.EventPublisher
	if cfg.RabbitURL != "" {
		events = queue.NewPublisher(cfg.RabbitURL, zl)
		go queue.StartAuditConsumer(cfg.RabbitURL, cfg.AuditLogDir, zl)
	}

	sessions := service.NewSessionService(
		repository.NewUserRepo(db),
		repository.NewProjectRepo(db),
		repository.NewMembershipRepo(db),
		repository.NewTokenRepo(db),
		codec,
		hasher,
		cfg.BcryptCost,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
		events,
		zl,
	)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())
	authHandler := handler.NewAuthHandler(sessions, zl, cfg.Env == "prod")
	router.RegisterAuth(e, authHandler, codec, limiter)

	addr := ":" + cfg.Port
	zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
