package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ticketbari/internal/status"
	"ticketbari/models"
)

const tokenIssuer = "ticketbari"

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// HMACVerifier issues and verifies HS256 access tokens signed with a shared
// secret.
type HMACVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewHMACVerifier(secret string) (*HMACVerifier, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: access token secret must be at least 16 bytes")
	}
	return &HMACVerifier{secret: []byte(secret), now: time.Now}, nil
}

func (v *HMACVerifier) Issue(email string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		Email: models.NormalizeEmail(email),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   models.NormalizeEmail(email),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

func (v *HMACVerifier) Verify(_ context.Context, raw string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", status.ErrUnauthenticated, err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: token has no email", status.ErrUnauthenticated)
	}

	return &Identity{
		UID:   claims.Subject,
		Email: claims.Email,
		Claims: map[string]any{
			"iss": claims.Issuer,
			"sub": claims.Subject,
		},
	}, nil
}
