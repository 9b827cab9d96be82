package userservice

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// newAccessToken signs an HS256 JWT whose subject is the user id.
func newAccessToken(secret string, userID int, ttl time.Duration) (*AccessToken, error) {
	now := time.Now().UTC()
	expiry := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	return &AccessToken{Token: signed, Expiry: expiry}, nil
}

// parseAccessToken verifies the signature and expiry and returns the user id
// carried in the subject claim. Any failure collapses to ErrInvalidToken so
// callers cannot distinguish a forged token from an expired one.
func parseAccessToken(secret, token string) (int, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return 0, ErrInvalidToken
	}

	id, err := strconv.Atoi(sub)
	if err != nil || id < 1 {
		return 0, ErrInvalidToken
	}

	return id, nil
}
