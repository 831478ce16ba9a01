package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/clients"
	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
	"github.com/rishipandey14/HRMS-Backend/src/internal/dependency"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg *config.Configuration
}

func New(cfg *config.Configuration) *Server {
	return &Server{cfg: cfg}
}

// Start connects to the backing services, serves HTTP and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	cfg := s.cfg
	gin.SetMode(cfg.Server.Mode)

	mongodb, err := clients.NewMongoDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongodb.Close(ctx)
	}()

	redisClient, err := clients.NewRedisClient(&cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var rabbitMQ *clients.RabbitMQ
	if cfg.Queue.RabbitMQ.Enabled {
		rabbitMQ, err = clients.NewRabbitMQ(&cfg.Queue.RabbitMQ)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()

		if err := rabbitMQ.SetupExchange(); err != nil {
			return err
		}
	} else {
		log.Info("RabbitMQ disabled, session events will not be published")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	deps, err := dependency.NewDependencyManager(router, mongodb, redisClient, rabbitMQ, cfg)
	if err != nil {
		return fmt.Errorf("failed to build dependencies: %w", err)
	}
	SetupRoutes(deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id, reusing the caller's X-Request-ID when present.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		entry := log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		})
		if name, ok := c.Get("route_name"); ok {
			entry = entry.WithField("route", name)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("Request completed with server error")
			return
		}
		entry.Debug("Request completed")
	}
}
