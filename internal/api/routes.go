// Package api wires the HTTP surface: redirection, link management, stats,
// auth and the admin endpoints. Handlers stay thin; every semantic decision
// lives in the services and the store.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/averlane/shortener/internal/config"
	"github.com/averlane/shortener/internal/services"
)

// Deps bundles everything the routes need.
type Deps struct {
	Cfg     *config.Config
	Links   *services.LinkService
	Resolve *services.ResolveService
	Auth    *services.AuthService
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter gin.HandlerFunc
}

// SetupRoutes registers all endpoints on router.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", HealthCheckHandler)

	v1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter)
	}
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", RegisterHandler(deps.Auth))
			auth.POST("/login", LoginHandler(deps.Auth))
		}

		v1.POST("/links", RequireUser(deps.Auth), CreateLinkHandler(deps.Cfg, deps.Links))
		v1.GET("/links/:shortCode/stats", GetLinkStatsHandler(deps.Links))

		admin := v1.Group("/admin", RequireUser(deps.Auth), RequireAdmin())
		{
			admin.PATCH("/links/:shortCode", UpdateLinkStatusHandler(deps.Links))
			admin.DELETE("/links/:shortCode", DeleteLinkHandler(deps.Links))
			admin.PATCH("/users/:email/plan", UpdateUserPlanHandler(deps.Auth))
			admin.GET("/stats/top-links", TopLinksHandler(deps.Links))
		}
	}

	// The redirect sits at root level, outside the rate-limited API group:
	// it is the hot path and has its own safeguard in the visit quota.
	router.GET("/:shortCode", RedirectHandler(deps.Resolve))
}

// HealthCheckHandler reports service liveness for load balancers.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
