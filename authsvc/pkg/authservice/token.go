package authservice

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/taskpad/backend/authsvc"
	"github.com/taskpad/backend/usersvc"
	"github.com/twinj/uuid"
)

// Tokenizer issues and verifies the signed access tokens that stand in for a
// session. Verification is stateless: signature and expiry are the only checks.
type Tokenizer interface {
	Issue(user usersvc.User) (string, error)
	Verify(tokenString string) (authsvc.Identity, error)
}

type tokenizer struct {
	secret []byte
}

// NewTokenizer holds the process-wide signing secret for its whole lifetime.
// The secret is supplied once at construction and never reconfigured;
// regenerating it would invalidate every outstanding token.
func NewTokenizer(secret []byte) Tokenizer {
	return &tokenizer{secret: secret}
}

func (t *tokenizer) Issue(user usersvc.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"uuid":    uuid.NewV4().String(),
		"user_id": user.ID,
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(authsvc.TokenExpiry()).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(t.secret)
}

func (t *tokenizer) Verify(tokenString string) (authsvc.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, authsvc.ErrTokenInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		if v, ok := err.(*jwt.ValidationError); ok && v.Errors&jwt.ValidationErrorExpired != 0 {
			return authsvc.Identity{}, authsvc.ErrTokenExpired
		}
		return authsvc.Identity{}, authsvc.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return authsvc.Identity{}, authsvc.ErrTokenInvalid
	}

	id, ok := claims["uuid"].(string)
	if !ok {
		return authsvc.Identity{}, authsvc.ErrTokenInvalid
	}

	email, ok := claims["email"].(string)
	if !ok {
		return authsvc.Identity{}, authsvc.ErrTokenInvalid
	}

	userID, err := strconv.ParseUint(fmt.Sprintf("%.f", claims["user_id"]), 10, 64)
	if err != nil {
		return authsvc.Identity{}, authsvc.ErrTokenInvalid
	}

	return authsvc.Identity{TokenUUID: id, UserID: userID, Email: email}, nil
}
