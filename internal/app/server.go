// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"console-service/internal/client"
	"console-service/internal/config"
	"console-service/internal/db"
	accountHandler "console-service/internal/handlers/account"
	adminHandler "console-service/internal/handlers/admin"
	authHandler "console-service/internal/handlers/auth"
	"console-service/internal/metrics"
	"console-service/internal/middleware"
	"console-service/internal/pkg/response"
	"console-service/internal/pkg/session"
	"console-service/internal/pkg/token"
	authUsecase "console-service/internal/service/auth"
	"console-service/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	redis  *redis.Client
	http   *http.Server
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, engine: gin.New(), logger: logger}
}

// Start connects to Redis, wires the console and serves until Shutdown.
func (s *Server) Start() error {
	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Address:  s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return err
	}
	s.logger.Info("connected to redis", zap.String("addr", s.cfg.RedisAddr))

	// ----- Metrics -----
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := s.build(redisClient, registry); err != nil {
		_ = redisClient.Close()
		return err
	}

	s.http = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("console listening",
		zap.String("addr", s.cfg.HTTPAddr),
		zap.String("api", s.cfg.APIBaseURL),
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve http: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and closes the Redis pool.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// build wires every component onto the engine.
func (s *Server) build(redisClient *redis.Client, registry *prometheus.Registry) error {
	s.redis = redisClient
	logger := s.logger
	m := metrics.NewMetrics(registry)

	// ----- Templates -----
	tmpl, err := web.Templates(response.FuncMap())
	if err != nil {
		return err
	}
	s.engine.SetHTMLTemplate(tmpl)

	// ----- Browser Session -----
	tokens := token.NewRedisStore(redisClient, s.cfg.TokenIdleTTL)
	sessions := session.NewManager(s.cfg.SessionSecret, s.cfg.SessionCookie, s.cfg.CookieSecure, s.cfg.TokenIdleTTL)
	flash := session.NewFlash(redisClient)
	cooldown := session.NewCooldown(redisClient, s.cfg.OTPResendCooldown)

	// ----- Remote API -----
	httpClient := &http.Client{Timeout: s.cfg.APITimeout}
	apiClient := client.New(s.cfg.APIBaseURL, httpClient, tokens, m, logger)

	// ----- Services -----
	authService := authUsecase.NewAuthService(apiClient, tokens, m, logger)
	render := response.NewRenderer(flash, logger)

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:    authHandler.NewAuthHandler(apiClient, cooldown, render, logger),
		AccountHandler: accountHandler.NewAccountHandler(apiClient, render, logger),
		AdminHandler:   adminHandler.NewAdminHandler(apiClient, render, logger),
		AuthMiddleware: middleware.NewAuthMiddleware(authService, sessions, logger),
		RateLimiter:    middleware.NewRateLimiter(s.cfg.LoginRatePerSec, s.cfg.LoginRateBurst),
		Render:         render,
		Registry:       registry,
		Redis:          redisClient,
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RequestID(),
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.MetricsMiddleware(m),
		middleware.SecurityHeaders(),
	)

	SetupRouter(s.engine, logger, handlers)
	return nil
}
