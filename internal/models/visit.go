package models

import "time"

// Visit is an append-only record of one successful resolution. Rows are
// never updated; they disappear only when their link is hard-deleted
// (cascade).
type Visit struct {
	ID uint `gorm:"primaryKey"`

	// LinkID is indexed together with the event time to serve the
	// per-day aggregation in stats queries.
	LinkID uint `gorm:"index:idx_visits_link_day;not null"`
	Link   Link `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE"`

	OccurredAt time.Time `gorm:"index:idx_visits_link_day;not null"`

	Referrer    string `gorm:"size:2048"`
	UserAgent   string `gorm:"size:255"`
	CountryCode string `gorm:"size:2"`
}

// VisitEvent is the lightweight payload passed from the resolution path to
// the async visit workers over a channel. Persistence of the event is
// best-effort; the link's visit counter is the source of truth for quota.
type VisitEvent struct {
	LinkID     uint
	OccurredAt time.Time
	Referrer   string
	UserAgent  string
}
