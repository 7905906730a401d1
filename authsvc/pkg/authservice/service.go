package authservice

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/taskpad/backend/usersvc"
	"github.com/taskpad/backend/usersvc/pkg/userservice"
)

type Service interface {
	Register(ctx context.Context, email, password string) (usersvc.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

func New(u userservice.Service, t Tokenizer, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(u, t)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	users     userservice.Service
	tokenizer Tokenizer
}

func NewBasicService(u userservice.Service, t Tokenizer) Service {
	return &basicService{users: u, tokenizer: t}
}

func (s *basicService) Register(ctx context.Context, email, password string) (usersvc.User, error) {
	return s.users.Register(ctx, email, password)
}

func (s *basicService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.Verify(ctx, email, password)
	if err != nil {
		return "", err
	}

	return s.tokenizer.Issue(user)
}
