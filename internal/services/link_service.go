// Package services contains the business logic layer: link creation with
// plan quotas, resolution with atomic visit accounting, stats aggregation
// and account management.
package services

import (
	"fmt"
	"time"

	"github.com/averlane/shortener/internal/base62"
	apperrors "github.com/averlane/shortener/internal/errors"
	"github.com/averlane/shortener/internal/models"
	"github.com/averlane/shortener/internal/repository"
)

// LinkService creates links and serves their statistics.
type LinkService struct {
	linkRepo          repository.LinkRepository
	visitRepo         repository.VisitRepository
	defaultVisitLimit int64
}

// NewLinkService wires a LinkService. defaultVisitLimit is applied to every
// new link and must be positive.
func NewLinkService(linkRepo repository.LinkRepository, visitRepo repository.VisitRepository, defaultVisitLimit int64) *LinkService {
	return &LinkService{
		linkRepo:          linkRepo,
		visitRepo:         visitRepo,
		defaultVisitLimit: defaultVisitLimit,
	}
}

// CreateLink allocates a link for ownerID and attaches its short code.
//
// maxActiveForPlan < 0 means unlimited; otherwise the owner's active links
// are counted first and ErrQuotaExceeded is returned at or above the
// ceiling. That check-then-act is deliberately not serialized: briefly
// exceeding the plan quota by one link under a race is acceptable, unlike
// the visit quota.
//
// The code is the base-62 encoding of the row ID, so the insert has to
// happen first; the code is attached in a second write.
func (s *LinkService) CreateLink(longURL string, expiresAt *time.Time, ownerID uint, maxActiveForPlan int64) (*models.Link, error) {
	if maxActiveForPlan >= 0 {
		active, err := s.linkRepo.CountActiveLinksForOwner(ownerID)
		if err != nil {
			return nil, err
		}
		if active >= maxActiveForPlan {
			return nil, apperrors.ErrQuotaExceeded
		}
	}

	link := &models.Link{
		LongURL:    longURL,
		ExpiresAt:  expiresAt,
		IsActive:   true,
		VisitCount: 0,
		VisitLimit: s.defaultVisitLimit,
		OwnerID:    ownerID,
	}
	if err := s.linkRepo.CreateLink(link); err != nil {
		return nil, err
	}

	code := base62.Encode(uint64(link.ID))
	if err := s.linkRepo.AttachShortCode(link.ID, code); err != nil {
		return nil, fmt.Errorf("failed to attach code %q to link %d: %w", code, link.ID, err)
	}
	link.ShortCode = &code

	return link, nil
}

// LinkStats is the aggregate view served by the stats endpoint and CLI.
type LinkStats struct {
	Link        *models.Link
	TotalVisits int64
	VisitsByDay []repository.DayCount
}

// GetLinkStats returns a link with its total visit count and per-day
// buckets. The total is computed from the visit log so it always equals the
// sum of the daily buckets.
func (s *LinkService) GetLinkStats(code string) (*LinkStats, error) {
	link, err := s.linkRepo.GetLinkByShortCode(code)
	if err != nil {
		return nil, err
	}
	total, err := s.visitRepo.CountVisitsByLinkID(link.ID)
	if err != nil {
		return nil, err
	}
	byDay, err := s.visitRepo.CountVisitsByDay(link.ID)
	if err != nil {
		return nil, err
	}
	return &LinkStats{Link: link, TotalVisits: total, VisitsByDay: byDay}, nil
}

// GetLinkByShortCode exposes the read-only lookup for callers that must
// not touch the visit counter (admin views, monitors).
func (s *LinkService) GetLinkByShortCode(code string) (*models.Link, error) {
	return s.linkRepo.GetLinkByShortCode(code)
}

// SetLinkActive toggles the administrative kill switch.
func (s *LinkService) SetLinkActive(code string, active bool) (*models.Link, error) {
	return s.linkRepo.SetLinkActive(code, active)
}

// DeleteLink removes a link and its visit history.
func (s *LinkService) DeleteLink(code string) error {
	return s.linkRepo.DeleteLink(code)
}

// TopLinks returns the most visited links for the admin dashboard.
func (s *LinkService) TopLinks(limit int) ([]models.Link, error) {
	return s.linkRepo.GetTopLinks(limit)
}
