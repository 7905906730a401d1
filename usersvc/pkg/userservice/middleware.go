package userservice

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

// Passwords and hashes never reach the logger.
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

func (mw loggingMiddleware) Verify(ctx context.Context, email, password string) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Verify",
			"email", email,
			"err", err,
		)
	}()
	return mw.next.Verify(ctx, email, password)
}
