package repository

import (
	"errors"

	"github.com/transparentpro/transparency-api/internal/model"
	"gorm.io/gorm"
)

type UserRepositoryInterface interface {
	FindOrCreateByUsername(username, email string) (*model.User, error)
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db}
}

// FindOrCreateByUsername backs the explicit bootstrap of the demo user.
func (r *UserRepository) FindOrCreateByUsername(username, email string) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, "username = ?", username).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user = model.User{
		Username: username,
		Password: "password_hash",
		Email:    email,
	}
	if err := r.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
