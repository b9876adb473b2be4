package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viralforge/campaign-bot/internal/domain"
)

const adminRole = "admin"

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminTokenVerifier checks HS256 operator tokens for the refresh endpoint.
type AdminTokenVerifier struct {
	secret []byte
	issuer string
}

func NewAdminTokenVerifier(secret, issuer string) (*AdminTokenVerifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("admin jwt secret is empty")
	}
	return &AdminTokenVerifier{secret: []byte(secret), issuer: strings.TrimSpace(issuer)}, nil
}

// Verify returns the token subject when it is signed, unexpired and carries
// the admin role.
func (v *AdminTokenVerifier) Verify(raw string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30 * time.Second),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := &adminClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: invalid admin token", domain.ErrUnauthorized)
	}
	if !strings.EqualFold(strings.TrimSpace(claims.Role), adminRole) {
		return "", domain.ErrForbidden
	}
	return claims.Subject, nil
}

// Sign issues an admin token; used by operators and tests.
func (v *AdminTokenVerifier) Sign(subject string, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, adminClaims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(v.secret)
}
