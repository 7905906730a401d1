package userservice

import (
	"context"
	"errors"

	"github.com/go-kit/kit/log"
	"github.com/taskpad/backend/usersvc"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, email, password string) (usersvc.User, error)
	Verify(ctx context.Context, email, password string) (usersvc.User, error)
}

func New(u usersvc.UserRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(u)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	users usersvc.UserRepository
}

func NewBasicService(u usersvc.UserRepository) Service {
	return basicService{users: u}
}

func (s basicService) Register(_ context.Context, email, password string) (usersvc.User, error) {
	if email == "" || password == "" {
		return usersvc.User{}, usersvc.ErrInvalidArgument
	}

	_, err := s.users.FindByEmail(email)
	if err == nil {
		return usersvc.User{}, usersvc.ErrDuplicateUser
	}
	if !errors.Is(err, usersvc.ErrUserNotFound) {
		return usersvc.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return usersvc.User{}, err
	}

	return s.users.Create(email, string(hash))
}

func (s basicService) Verify(_ context.Context, email, password string) (usersvc.User, error) {
	if email == "" || password == "" {
		return usersvc.User{}, usersvc.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			return usersvc.User{}, usersvc.ErrInvalidCredentials
		}
		return usersvc.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return usersvc.User{}, usersvc.ErrInvalidCredentials
	}

	return user, nil
}
