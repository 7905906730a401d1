package authtransport

import (
	"context"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"
	"github.com/taskpad/backend/authsvc"
	"github.com/taskpad/backend/authsvc/pkg/authservice"
)

// NewAuthenticator gates an endpoint behind bearer-token verification. The raw
// token is expected in the context, placed there by kitjwt.HTTPToContext. On
// success the verified identity is attached to the context and the next
// endpoint is invoked; on failure the request short-circuits. The gate reads
// nothing but the token and writes nothing but the context.
func NewAuthenticator(t authservice.Tokenizer) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			tokenString, ok := ctx.Value(kitjwt.JWTContextKey).(string)
			if !ok {
				return nil, authsvc.ErrTokenMissing
			}

			identity, err := t.Verify(tokenString)
			if err != nil {
				return nil, err
			}

			ctx = context.WithValue(ctx, authsvc.IdentityContextKey, identity)

			return next(ctx, request)
		}
	}
}
