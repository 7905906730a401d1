package authservice

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/taskpad/backend/usersvc"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger, next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

func (mw loggingMiddleware) Register(ctx context.Context, email, password string) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Register",
			"email", email,
			"err", err,
		)
	}()
	return mw.next.Register(ctx, email, password)
}

// The issued token is deliberately absent from the log line.
func (mw loggingMiddleware) Login(ctx context.Context, email, password string) (token string, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Login",
			"email", email,
			"err", err,
		)
	}()
	return mw.next.Login(ctx, email, password)
}
