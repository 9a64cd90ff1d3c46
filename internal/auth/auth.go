package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cookalong/pkg/types"
)

// Claims is the token payload: the user id and username embedded at issue
// time plus the registered expiry.
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 bearer tokens. Verification runs once
// per connection at handshake time; issuance backs the REST auth endpoint.
type Service struct {
	secret []byte
}

// NewService creates a token service over a shared HMAC secret.
func NewService(secret string) *Service {
	return &Service{
		secret: []byte(secret),
	}
}

// Issue mints a signed token embedding the user's identity, expiring after
// ttl.
func (s *Service) Issue(userID, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a presented token, returning the embedded
// identity. Only HMAC-signed tokens are accepted.
func (s *Service) Verify(tokenString string) (types.Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return types.Identity{}, ErrTokenExpired
		}
		return types.Identity{}, ErrInvalidToken
	}

	if !token.Valid {
		return types.Identity{}, ErrInvalidToken
	}

	return types.Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
	}, nil
}
