package server

import (
	"net/http"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/clients"
	"github.com/rishipandey14/HRMS-Backend/src/internal/dependency"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func SetupRoutes(deps *dependency.Manager) {
	router := deps.Router
	router.Use(enableCORS)

	setupHealthEndpoint(deps)
	setupPublicRoutes(router, deps)
	setupSessionRoutes(router, deps)
	setupUptimeRoutes(router, deps)
	setupAdminRoutes(router, deps)
}

func setupHealthEndpoint(deps *dependency.Manager) {
	router := deps.Router
	mongodb := deps.Mongodb
	redisClient := deps.Redis
	cfg := deps.Config

	router.GET("/health", func(c *gin.Context) {
		log.Debug("Health check endpoint requested")

		mongoStatus := "ok"
		if err := mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
			mongoStatus = "error: " + err.Error()
		}

		redisStatus := "ok"
		if err := redisClient.Client.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "error: " + err.Error()
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   cfg.App.Name,
			"version":   cfg.App.Version,
			"mongodb":   mongoStatus,
			"redis":     redisStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.GET("/health/detailed", func(c *gin.Context) {
		log.Debug("Detailed health check endpoint requested")

		events := "disabled"
		if deps.RabbitMQ != nil {
			events = getStatus(deps.RabbitMQ.Conn != nil && !deps.RabbitMQ.Conn.IsClosed())
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "operational",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
			"components": gin.H{
				"database": gin.H{
					"mongodb": getStatus(isMongoConnected(mongodb, c)),
					"redis":   getStatus(isRedisConnected(redisClient.Client, c)),
				},
				"services": gin.H{
					"session": "operational",
					"uptime":  "operational",
					"cache":   "operational",
					"events":  events,
				},
				"session_locks": cfg.Session.LockBackend,
				"timezone":      cfg.App.Timezone,
			},
		})
	})

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
}

func setupPublicRoutes(router *gin.Engine, deps *dependency.Manager) {
	// API status endpoint
	router.GET("/api/v1/status", func(c *gin.Context) {
		log.Debug("API status requested")
		c.JSON(http.StatusOK, gin.H{
			"api_version": "v1",
			"status":      "operational",
			"service":     deps.Config.App.Name,
		})
	})
}

func setupSessionRoutes(router *gin.Engine, deps *dependency.Manager) {
	authMiddleware := deps.AuthMiddleware
	handler := deps.SessionHandler

	sessions := router.Group("/api/v1/sessions")
	{
		sessions.POST("/login",
			setRouteName("startSession"),
			authMiddleware.RequireAuth(),
			handler.Login)

		sessions.POST("/logout",
			setRouteName("endSession"),
			authMiddleware.RequireAuth(),
			handler.Logout)

		sessions.GET("/active",
			setRouteName("getActiveSession"),
			authMiddleware.RequireAuth(),
			handler.GetActive)
	}
}

func setupUptimeRoutes(router *gin.Engine, deps *dependency.Manager) {
	authMiddleware := deps.AuthMiddleware
	handler := deps.UptimeHandler

	uptimes := router.Group("/api/v1/uptimes")
	{
		uptimes.GET("",
			setRouteName("getUptimes"),
			authMiddleware.RequireAuth(),
			handler.GetUptimes)

		uptimes.GET("/week/:week",
			setRouteName("getUptimesByWeek"),
			authMiddleware.RequireAuth(),
			handler.GetUptimes)

		uptimes.GET("/company/:companyId",
			setRouteName("getCompanyUptimes"),
			authMiddleware.RequireAuth(),
			authMiddleware.RequireAdminRights(),
			handler.GetUptimes)
	}
}

func setupAdminRoutes(router *gin.Engine, deps *dependency.Manager) {
	authMiddleware := deps.AuthMiddleware
	handler := deps.UserHandler

	// Apply route name FIRST, then auth middlewares
	admin := router.Group("/api/v1/admin")
	{
		admin.GET("/users",
			setRouteName("getUsersList"),
			authMiddleware.RequireAuth(),
			authMiddleware.RequireAdminRights(),
			handler.GetAllUsers)

		admin.GET("/users/stats",
			setRouteName("getUsersStats"),
			authMiddleware.RequireAuth(),
			authMiddleware.RequireAdminRights(),
			handler.GetUserStats)

		admin.POST("/users/approve",
			setRouteName("approveUser"),
			authMiddleware.RequireAuth(),
			authMiddleware.RequireAdminRights(),
			handler.ApproveUser)
	}
}

func setRouteName(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("route_name", name)
		c.Next()
	}
}

func isMongoConnected(mongodb *clients.MongoDB, c *gin.Context) bool {
	if err := mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
		return false
	}
	return true
}

func isRedisConnected(redisClient *redis.Client, c *gin.Context) bool {
	if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
		return false
	}
	return true
}

func enableCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	c.Next()
}

func getStatus(b bool) string {
	if b {
		return "connected"
	}
	return "disconnected"
}
