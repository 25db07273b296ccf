package main

import (
	"database/sql"
	"net/http"
	"time"

	"leadcapture-platform/internal/auth"
	"leadcapture-platform/internal/config"
	"leadcapture-platform/internal/httpapi"
	"leadcapture-platform/internal/monitoring"
	"leadcapture-platform/internal/rbac"
	"leadcapture-platform/internal/telephony"
	"leadcapture-platform/pkg/logger"
	"leadcapture-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type routeDeps struct {
	cfg     config.Config
	db      *sql.DB
	rdb     *redis.Client
	metrics *monitoring.Metrics
	auth    *auth.Manager
	webhook telephony.WebhookHandler
	api     httpapi.Handlers
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), d.db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", monitoring.Handler())

	// Provider webhook (public; the token in the path is the credential).
	// Gin's trailing-slash redirect also serves /webhook/:token/.
	webhook := r.Group("/webhook")
	if d.cfg.Webhook.RateLimitPerMinute > 0 {
		webhook.Use(rateLimit(d))
	}
	webhook.GET("/:token", d.webhook.HandleCallEvent)

	// protected API group
	v1 := r.Group("/v1")

	v1.POST("/auth/refresh", d.api.Refresh)

	authed := v1.Group("")
	authed.Use(auth.RequireAccessToken(d.auth))
	{
		authed.POST("/clients", d.api.OnboardClient)
		authed.GET("/clients/me", d.api.GetMyClient)

		authed.GET("/leads", d.api.ListLeads)
		authed.PATCH("/leads/:id", d.api.UpdateLead)

		authed.GET("/analytics/dashboard", d.api.Dashboard)

		admin := authed.Group("/admin")
		admin.Use(rbac.RequireAdmin())
		{
			admin.GET("/clients", d.api.AdminListClients)
			admin.PATCH("/clients/:id", d.api.AdminUpdateClient)
		}
	}
}

// rateLimit caps webhook deliveries per token per minute. Redis errors fail
// open so a cache outage never drops call events.
func rateLimit(d routeDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.Next()
			return
		}
		key := "ratelimit:webhook:" + token
		ok, err := utils.AllowFixedWindow(c.Request.Context(), d.rdb, key, d.cfg.Webhook.RateLimitPerMinute, time.Minute)
		if err != nil {
			logger.FromGin(c).Warn("rate limiter unavailable", "err", err)
			c.Next()
			return
		}
		if !ok {
			d.metrics.WebhookOutcome(monitoring.OutcomeRateLimited)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
