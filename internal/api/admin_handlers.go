package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/averlane/shortener/internal/errors"
	"github.com/averlane/shortener/internal/services"
)

type linkStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UpdateLinkStatusHandler enables or disables a link. Deactivation is the
// logical-deletion step of the link lifecycle and frees a quota slot for
// the owner.
func UpdateLinkStatusHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req linkStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		link, err := linkService.SetLinkActive(c.Param("shortCode"), *req.IsActive)
		if err != nil {
			if errors.Is(err, apperrors.ErrLinkNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
				return
			}
			log.Printf("Error updating link status: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update link"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"short_code": link.Code(),
			"long_url":   link.LongURL,
			"is_active":  link.IsActive,
		})
	}
}

// DeleteLinkHandler hard-deletes a link and its visit history.
func DeleteLinkHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := linkService.DeleteLink(c.Param("shortCode")); err != nil {
			if errors.Is(err, apperrors.ErrLinkNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
				return
			}
			log.Printf("Error deleting link: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete link"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type planRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// UpdateUserPlanHandler changes a user's plan.
func UpdateUserPlanHandler(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req planRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		user, err := authService.SetUserPlan(c.Param("email"), req.Plan)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"email": user.Email,
			"plan":  user.Plan,
		})
	}
}

// TopLinksHandler returns the most visited links, busiest first.
func TopLinksHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 1 || limit > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}

		links, err := linkService.TopLinks(limit)
		if err != nil {
			log.Printf("Error retrieving top links: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top links"})
			return
		}

		out := make([]gin.H, 0, len(links))
		for _, link := range links {
			out = append(out, gin.H{
				"short_code":  link.Code(),
				"long_url":    link.LongURL,
				"visit_count": link.VisitCount,
				"visit_limit": link.VisitLimit,
				"is_active":   link.IsActive,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}
