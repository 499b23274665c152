// Package auth implements session-token issuance and verification plus the
// tenant access filter. There is exactly one token implementation; every
// entry point (cookie or bearer header) verifies through it.
package auth

import (
	"errors"
	"time"

	"github.com/figmints/meetsync/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the signed token claims: the registered set plus the subject
// user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// TokenService issues and verifies HMAC-signed (HS256) session tokens.
// Tokens expire a fixed validity after issue; expiry is never renewed by use.
type TokenService struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time // injectable for tests
}

func NewTokenService(secret []byte, validity time.Duration) *TokenService {
	return &TokenService{secret: secret, validity: validity, now: time.Now}
}

// Issue creates a signed token for the given user id. No server-side session
// state is created; validity is purely time- and signature-based.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		UserID: userID,
	})

	return token.SignedString(s.secret)
}

// Verify recomputes the signature over the token and checks expiry, returning
// the subject user id. Failures are distinguished as common.ErrTokenExpired
// vs common.ErrInvalidToken so callers can log the reason; both must surface
// to the end caller as the same generic invalid result.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
