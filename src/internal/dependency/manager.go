package dependency

import (
	"context"
	"fmt"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/clients"
	"github.com/rishipandey14/HRMS-Backend/src/internal/cache"
	"github.com/rishipandey14/HRMS-Backend/src/internal/clock"
	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
	"github.com/rishipandey14/HRMS-Backend/src/internal/metrics"
	"github.com/rishipandey14/HRMS-Backend/src/internal/middleware"
	"github.com/rishipandey14/HRMS-Backend/src/internal/session"
	"github.com/rishipandey14/HRMS-Backend/src/internal/uptime"
	"github.com/rishipandey14/HRMS-Backend/src/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const LockBackendRedis = "redis"

type Manager struct {
	Router         *gin.Engine
	Config         *config.Configuration
	Mongodb        *clients.MongoDB
	Redis          *clients.RedisClient
	RabbitMQ       *clients.RabbitMQ
	Metrics        *metrics.Metrics
	CacheService   cache.Service
	UserService    user.Service
	UserHandler    user.Handler
	SessionService session.Service
	SessionHandler session.Handler
	UptimeService  uptime.Service
	UptimeHandler  uptime.Handler
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencyManager wires repositories, services and handlers. rabbitMQ may be nil when
// event publishing is disabled.
func NewDependencyManager(router *gin.Engine,
	mongodb *clients.MongoDB,
	redisClient *clients.RedisClient,
	rabbitMQ *clients.RabbitMQ,
	cfg *config.Configuration) (*Manager, error) {
	clk := clock.System()
	registry := metrics.New()
	cacheService := cache.NewCacheService(redisClient.Client, cfg)

	userRepo := user.NewUserRepository(mongodb, cfg.Database.Collections.Users)
	sessionRepo := session.NewSessionRepository(mongodb, cfg.Database.Collections.Sessions)
	uptimeRepo := uptime.NewRepository(mongodb, cfg.Database.Collections.Uptimes)

	if err := ensureIndexes(cfg, sessionRepo, uptimeRepo); err != nil {
		return nil, err
	}

	aggregator := uptime.NewAggregator(uptimeRepo, cfg.App.Location(), cfg.Session.MaxDailyHours)

	opts := session.Options{
		Locker:  newLocker(cfg, redisClient),
		Cache:   cacheService,
		Metrics: registry,
		Clock:   clk,
	}
	// an untyped nil keeps the publisher disabled instead of a nil *EventPublisher
	if rabbitMQ != nil {
		opts.Publisher = clients.NewEventPublisher(cfg, rabbitMQ.Channel)
	}

	userService := user.NewUserService(userRepo, cfg, clk)
	sessionService := session.NewSessionService(sessionRepo, aggregator, opts)
	uptimeService := uptime.NewService(uptimeRepo)

	timeout := time.Duration(cfg.App.Timeout) * time.Second

	return &Manager{
		Router:         router,
		Config:         cfg,
		Mongodb:        mongodb,
		Redis:          redisClient,
		RabbitMQ:       rabbitMQ,
		Metrics:        registry,
		CacheService:   cacheService,
		UserService:    userService,
		UserHandler:    user.NewHandler(cfg, userService, cacheService),
		SessionService: sessionService,
		SessionHandler: session.NewHandler(cfg, sessionService),
		UptimeService:  uptimeService,
		UptimeHandler:  uptime.NewHandler(cfg, uptimeService),
		AuthMiddleware: middleware.NewAuthMiddleware(cfg.Security.JwtKey, userService, timeout),
	}, nil
}

func newLocker(cfg *config.Configuration, redisClient *clients.RedisClient) session.Locker {
	if cfg.Session.LockBackend == LockBackendRedis {
		ttl := time.Duration(cfg.Session.LockTTLSeconds) * time.Second
		logrus.WithField("ttl", ttl).Info("Using Redis session locks")
		return cache.NewRedisLocker(redisClient.Client, ttl)
	}
	logrus.Info("Using in-process session locks")
	return session.NewLocalLocker()
}

func ensureIndexes(cfg *config.Configuration, sessions session.Repository, uptimes uptime.Repository) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.Timeout)*time.Second)
	defer cancel()

	if err := sessions.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("session indexes: %w", err)
	}
	if err := uptimes.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("uptime indexes: %w", err)
	}
	return nil
}
