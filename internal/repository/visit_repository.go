package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/averlane/shortener/internal/models"
)

// DayCount is one daily bucket of the stats aggregation. Day is the
// calendar date in "2006-01-02" form.
type DayCount struct {
	Day   string `json:"date"`
	Count int64  `json:"visits"`
}

// VisitRepository owns the append-only visit log.
type VisitRepository interface {
	CreateVisit(visit *models.Visit) error
	CountVisitsByLinkID(linkID uint) (int64, error)
	CountVisitsByDay(linkID uint) ([]DayCount, error)
}

// GormVisitRepository implements VisitRepository on gorm.
type GormVisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *GormVisitRepository {
	return &GormVisitRepository{db: db}
}

// CreateVisit appends one visit row.
func (r *GormVisitRepository) CreateVisit(visit *models.Visit) error {
	if err := r.db.Create(visit).Error; err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

// CountVisitsByLinkID returns the total number of recorded visits.
func (r *GormVisitRepository) CountVisitsByLinkID(linkID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Visit{}).Where("link_id = ?", linkID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count visits for link %d: %w", linkID, err)
	}
	return count, nil
}

// CountVisitsByDay groups a link's visits by calendar day, oldest first.
// date() is understood by SQLite; the composite (link_id, occurred_at)
// index keeps the scan narrow.
func (r *GormVisitRepository) CountVisitsByDay(linkID uint) ([]DayCount, error) {
	var rows []DayCount
	err := r.db.Model(&models.Visit{}).
		Select("date(occurred_at) AS day, COUNT(*) AS count").
		Where("link_id = ?", linkID).
		Group("date(occurred_at)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate visits for link %d: %w", linkID, err)
	}
	return rows, nil
}
