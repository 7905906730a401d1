package authsvc

import (
	"errors"
	"time"
)

// Identity is the verified claim attached to the request context by the
// bearer-token authenticator and read by downstream endpoints.
type Identity struct {
	TokenUUID string
	UserID    uint64
	Email     string
}

type contextKey string

const IdentityContextKey contextKey = "Identity"

// TokenExpiry is the fixed TTL of an issued access token.
func TokenExpiry() time.Duration {
	return time.Hour
}

var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrTokenMissing           = errors.New("token required")
	ErrTokenInvalid           = errors.New("token invalid")
	ErrTokenExpired           = errors.New("token expired")
	ErrIdentityContextMissing = errors.New("identity was not passed through the context")
)
