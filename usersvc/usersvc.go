package usersvc

import "errors"

type User struct {
	ID           uint64 `json:"id"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	PasswordHash string `json:"-"`
}

type UserRepository interface {
	Create(email, passwordHash string) (User, error)
	FindByEmail(email string) (User, error)
}

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
