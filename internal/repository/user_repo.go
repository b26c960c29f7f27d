// Package repository contains the repository layer for the Bookinsights API
package repository

import (
	"errors"

	"github.com/stayview/bookinsightsapi/internal/models"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when no row matches the requested name
var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new repository for the user_id table
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// GetUserByName gets a user by name. The lookup is exact-match and
// case-sensitive; no normalization is applied.
func (r *UserRepository) GetUserByName(name string) (*models.UserModel, error) {
	var user models.UserModel
	err := r.DB.Where("name = ?", name).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
