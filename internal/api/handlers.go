package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/averlane/shortener/internal/config"
	apperrors "github.com/averlane/shortener/internal/errors"
	"github.com/averlane/shortener/internal/services"
)

// CreateLinkRequest is the body of POST /api/v1/links. The URL format is
// validated here by the binding layer; the services only enforce semantic
// invariants (quotas, usability).
type CreateLinkRequest struct {
	LongURL   string     `json:"long_url" binding:"required,url"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// CreateLinkHandler creates a shortened link for the authenticated user,
// applying the plan's active-link quota.
func CreateLinkHandler(cfg *config.Config, linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expires_at must be in the future"})
			return
		}

		user := CurrentUser(c)
		maxActive := cfg.MaxActiveLinksForPlan(user.Plan)

		link, err := linkService.CreateLink(req.LongURL, req.ExpiresAt, user.ID, maxActive)
		if err != nil {
			if errors.Is(err, apperrors.ErrQuotaExceeded) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Active link quota reached for your plan"})
				return
			}
			log.Printf("Error creating link: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create short link"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"short_code":     link.Code(),
			"long_url":       link.LongURL,
			"full_short_url": cfg.Server.BaseURL + "/" + link.Code(),
			"expires_at":     link.ExpiresAt,
			"visit_limit":    link.VisitLimit,
			"created_at":     link.CreatedAt,
		})
	}
}

// RedirectHandler resolves a short code and issues the 302. The four
// rejection kinds stay distinct on the wire: a disabled link is not a
// missing one, and an exhausted link is gone rather than absent.
func RedirectHandler(resolveService *services.ResolveService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shortCode := c.Param("shortCode")

		destination, err := resolveService.Resolve(
			shortCode,
			c.GetHeader("Referer"),
			c.GetHeader("User-Agent"),
		)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrLinkNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
			case errors.Is(err, apperrors.ErrLinkInactive):
				c.JSON(http.StatusForbidden, gin.H{"error": "Short URL is disabled"})
			case errors.Is(err, apperrors.ErrLinkExpired):
				c.JSON(http.StatusGone, gin.H{"error": "Short URL has expired"})
			case errors.Is(err, apperrors.ErrVisitLimitReached):
				c.JSON(http.StatusGone, gin.H{"error": "Short URL has reached its visit limit"})
			default:
				log.Printf("Error resolving %s: %v", shortCode, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.Redirect(http.StatusFound, destination)
	}
}

// GetLinkStatsHandler serves total and per-day visit counts for a code.
func GetLinkStatsHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shortCode := c.Param("shortCode")

		stats, err := linkService.GetLinkStats(shortCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrLinkNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
				return
			}
			log.Printf("Error retrieving stats for %s: %v", shortCode, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"short_code":    stats.Link.Code(),
			"long_url":      stats.Link.LongURL,
			"is_active":     stats.Link.IsActive,
			"visit_count":   stats.Link.VisitCount,
			"visit_limit":   stats.Link.VisitLimit,
			"total_visits":  stats.TotalVisits,
			"visits_by_day": stats.VisitsByDay,
			"created_at":    stats.Link.CreatedAt,
			"expires_at":    stats.Link.ExpiresAt,
		})
	}
}
