package gorm

import (
	"errors"

	"github.com/taskpad/backend/usersvc"
	libgorm "gorm.io/gorm"
)

type userRepository struct {
	db *libgorm.DB
}

func NewUserRepository(db *libgorm.DB) usersvc.UserRepository {
	return &userRepository{db}
}

func (u *userRepository) Create(email, passwordHash string) (usersvc.User, error) {
	user := usersvc.User{Email: email, PasswordHash: passwordHash}
	result := u.db.Create(&user)

	return user, result.Error
}

func (u *userRepository) FindByEmail(email string) (usersvc.User, error) {
	var user usersvc.User
	result := u.db.Where("email = ?", email).First(&user)

	if errors.Is(result.Error, libgorm.ErrRecordNotFound) {
		return usersvc.User{}, usersvc.ErrUserNotFound
	}

	return user, result.Error
}
