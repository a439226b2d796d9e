// Package utils holds the signing helpers for the storage-origin cookie.
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const originIssuer = "artisanedge"

var ErrInvalidOrigin = errors.New("invalid origin token")

// OriginToken is a signed HS256 JWT whose subject is a storage-origin id.
type OriginToken struct {
	ID    string
	Token string
	Exp   time.Time
}

// NewOrigin mints a fresh origin id and signs it.
func NewOrigin(secret string, ttl time.Duration) (OriginToken, error) {
	return SignOrigin(secret, uuid.NewString(), ttl)
}

// SignOrigin signs an existing origin id.
func SignOrigin(secret, id string, ttl time.Duration) (OriginToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   id,
		Issuer:    originIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return OriginToken{}, err
	}
	return OriginToken{ID: id, Token: signed, Exp: exp}, nil
}

// ParseOrigin verifies raw and returns the origin id it carries.
func ParseOrigin(secret, raw string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(originIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return "", ErrInvalidOrigin
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", ErrInvalidOrigin
	}
	return claims.Subject, nil
}
