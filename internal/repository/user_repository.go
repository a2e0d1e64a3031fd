package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/averlane/shortener/internal/errors"
	"github.com/averlane/shortener/internal/models"
)

// UserRepository owns account rows.
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	UpdateUserPlan(email, plan string) (*models.User, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) CreateUser(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *GormUserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user %q: %w", email, err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user %d: %w", id, err)
	}
	return &user, nil
}

// UpdateUserPlan changes a user's plan and returns the updated row.
func (r *GormUserRepository) UpdateUserPlan(email, plan string) (*models.User, error) {
	res := r.db.Model(&models.User{}).Where("email = ?", email).Update("plan", plan)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update plan for %q: %w", email, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrUserNotFound
	}
	return r.GetUserByEmail(email)
}
