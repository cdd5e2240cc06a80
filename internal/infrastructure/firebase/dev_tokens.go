package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const devIssuer = "agroconnect-dev"

// DevTokenIssuer signs HS256 tokens accepted in development in place of
// Firebase ID tokens.
type DevTokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewDevTokenIssuer(secret string, ttl time.Duration) *DevTokenIssuer {
	return &DevTokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (d *DevTokenIssuer) Issue(uid string) (string, error) {
	if uid == "" {
		return "", errors.New("uid is required")
	}
	now := d.now()
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		Issuer:    devIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
}

func (d *DevTokenIssuer) VerifyToken(_ context.Context, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return d.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Issuer != devIssuer || claims.Subject == "" {
		return "", errors.New("invalid dev token")
	}
	return claims.Subject, nil
}
