package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/averlane/shortener/internal/errors"
	"github.com/averlane/shortener/internal/models"
)

// LinkRepository is the system of record for links. ConsumeVisit is the
// only way the visit counter moves; callers never read-compare-write it.
type LinkRepository interface {
	CreateLink(link *models.Link) error
	AttachShortCode(id uint, code string) error
	GetLinkByShortCode(code string) (*models.Link, error)
	ConsumeVisit(code string, now time.Time) (*models.Link, error)
	CountActiveLinksForOwner(ownerID uint) (int64, error)
	GetAllLinks() ([]models.Link, error)
	GetTopLinks(limit int) ([]models.Link, error)
	SetLinkActive(code string, active bool) (*models.Link, error)
	DeleteLink(code string) error
}

// GormLinkRepository implements LinkRepository on gorm.
type GormLinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// CreateLink inserts a new link row. The assigned ID is available on the
// argument afterwards; the short code is attached in a second step because
// it is derived from that ID.
func (r *GormLinkRepository) CreateLink(link *models.Link) error {
	if err := r.db.Create(link).Error; err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// AttachShortCode sets the short code exactly once. The WHERE short_code IS
// NULL guard makes a second attachment a no-op at the SQL level, which we
// then report as ErrCodeAlreadyAssigned. Normal flow never hits that path,
// but the invariant is enforced here rather than trusted.
func (r *GormLinkRepository) AttachShortCode(id uint, code string) error {
	res := r.db.Model(&models.Link{}).
		Where("id = ? AND short_code IS NULL", id).
		Update("short_code", code)
	if res.Error != nil {
		return fmt.Errorf("failed to attach short code to link %d: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// Nothing matched: either the row is missing or a code is already set.
	var link models.Link
	if err := r.db.First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrLinkNotFound
		}
		return fmt.Errorf("failed to inspect link %d: %w", id, err)
	}
	return apperrors.ErrCodeAlreadyAssigned
}

// GetLinkByShortCode is a read-only point lookup.
func (r *GormLinkRepository) GetLinkByShortCode(code string) (*models.Link, error) {
	var link models.Link
	if err := r.db.Where("short_code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to look up link %q: %w", code, err)
	}
	return &link, nil
}

// ConsumeVisit atomically checks usability and claims one visit slot in a
// single conditional UPDATE. The usability predicate and the increment are
// the same statement, so under concurrent calls against a link with k slots
// left exactly k succeed and the counter never exceeds the limit.
//
// When the UPDATE matches no row, nothing was mutated; the link is re-read
// purely to classify the rejection.
func (r *GormLinkRepository) ConsumeVisit(code string, now time.Time) (*models.Link, error) {
	res := r.db.Model(&models.Link{}).
		Where("short_code = ?", code).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Where("visit_count < visit_limit").
		Update("visit_count", gorm.Expr("visit_count + 1"))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to consume visit for %q: %w", code, res.Error)
	}

	if res.RowsAffected == 1 {
		// The slot is claimed; re-read only to return the fresh state.
		link, err := r.GetLinkByShortCode(code)
		if err != nil {
			return nil, err
		}
		return link, nil
	}

	return nil, r.classifyReject(code, now)
}

// classifyReject explains why the conditional update matched nothing. The
// read happens after the failed update, which is safe: no mutation occurred
// and every rejecting state is terminal with respect to this call.
func (r *GormLinkRepository) classifyReject(code string, now time.Time) error {
	link, err := r.GetLinkByShortCode(code)
	if err != nil {
		return err // ErrLinkNotFound or a store failure
	}
	switch {
	case !link.IsActive:
		return apperrors.ErrLinkInactive
	case link.ExpiresAt != nil && !link.ExpiresAt.After(now):
		return apperrors.ErrLinkExpired
	default:
		return apperrors.ErrVisitLimitReached
	}
}

// CountActiveLinksForOwner serves the creation-time plan quota check.
func (r *GormLinkRepository) CountActiveLinksForOwner(ownerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Link{}).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active links for owner %d: %w", ownerID, err)
	}
	return count, nil
}

// GetAllLinks returns every link; used by the destination monitor.
func (r *GormLinkRepository) GetAllLinks() ([]models.Link, error) {
	var links []models.Link
	if err := r.db.Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve links: %w", err)
	}
	return links, nil
}

// GetTopLinks returns the most visited links, busiest first.
func (r *GormLinkRepository) GetTopLinks(limit int) ([]models.Link, error) {
	var links []models.Link
	if err := r.db.Order("visit_count DESC").Limit(limit).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve top links: %w", err)
	}
	return links, nil
}

// SetLinkActive flips the administrative kill switch and returns the
// updated row.
func (r *GormLinkRepository) SetLinkActive(code string, active bool) (*models.Link, error) {
	res := r.db.Model(&models.Link{}).
		Where("short_code = ?", code).
		Update("is_active", active)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update link %q status: %w", code, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrLinkNotFound
	}
	return r.GetLinkByShortCode(code)
}

// DeleteLink hard-deletes a link together with its visits. The visit rows
// are removed explicitly so the cascade holds even when the SQLite
// foreign_keys pragma is off.
func (r *GormLinkRepository) DeleteLink(code string) error {
	link, err := r.GetLinkByShortCode(code)
	if err != nil {
		return err
	}
	if err := r.db.Where("link_id = ?", link.ID).Delete(&models.Visit{}).Error; err != nil {
		return fmt.Errorf("failed to delete visits for link %q: %w", code, err)
	}
	if err := r.db.Delete(&models.Link{}, link.ID).Error; err != nil {
		return fmt.Errorf("failed to delete link %q: %w", code, err)
	}
	return nil
}
