package models

import "time"

// Link maps a short code to a destination URL and carries the usage
// accounting for it. A link is usable when it is active, unexpired and
// still under its visit limit; that predicate is only ever evaluated
// together with the counter increment (see repository.ConsumeVisit).
type Link struct {
	// ID is the identity the short code is derived from. It exists before
	// the code does, which is why ShortCode is attached in a second step.
	ID uint `gorm:"primaryKey"`

	// ShortCode is nullable only in the window between insertion and code
	// attachment; it is immutable once set.
	ShortCode *string `gorm:"uniqueIndex;size:16"`

	LongURL   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	// ExpiresAt, when set and in the past, makes the link unusable.
	ExpiresAt *time.Time

	// IsActive is toggled by admins only; false overrides quota and expiry.
	// No gorm default on purpose: an explicit false must survive the insert.
	IsActive bool `gorm:"not null"`

	// VisitCount advances only through the store's conditional update and
	// never exceeds VisitLimit.
	VisitCount int64 `gorm:"not null"`
	VisitLimit int64 `gorm:"not null"`

	// OwnerID references the owning user for per-plan quota checks.
	OwnerID uint `gorm:"index;not null"`
}

// Code returns the attached short code, or "" during the brief
// pre-attachment window.
func (l *Link) Code() string {
	if l.ShortCode == nil {
		return ""
	}
	return *l.ShortCode
}
