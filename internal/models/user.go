package models

import "time"

// Plans understood by the quota logic. PlanAdmin additionally unlocks the
// admin API surface.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
	PlanAdmin   = "admin"
)

// User owns links. The plan decides how many active links the user may
// hold at once.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Plan         string    `gorm:"size:16;not null"`
	IsActive     bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// ValidPlan reports whether p is one of the known plan names.
func ValidPlan(p string) bool {
	switch p {
	case PlanFree, PlanPremium, PlanAdmin:
		return true
	}
	return false
}
