package service

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/bjarke-xyz/careercode/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	emailClaimKey = "email"

	// DefaultSessionTTL is how long an issued session credential stays valid.
	DefaultSessionTTL = 24 * time.Hour
)

var reservedClaims = []string{"exp", "iat", "nbf"}

// SessionSigner issues and verifies HS256 session credentials. Nothing is
// stored server side; a credential is valid while its signature checks out and
// it has not expired.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionSigner(secret []byte, ttl time.Duration) (*SessionSigner, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionSigner{secret: secret, ttl: ttl, now: time.Now}, nil
}

func (s *SessionSigner) TTL() time.Duration {
	return s.ttl
}

// Issue signs claims, which must carry a non-empty email, and returns the
// credential together with its expiry.
func (s *SessionSigner) Issue(claims map[string]any) (string, time.Time, error) {
	email, _ := claims[emailClaimKey].(string)
	if email == "" {
		return "", time.Time{}, &domain.ValidationError{Field: emailClaimKey, Reason: "is required"}
	}
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	mapClaims := jwt.MapClaims(maps.Clone(claims))
	for _, k := range reservedClaims {
		delete(mapClaims, k)
	}
	mapClaims["iat"] = jwt.NewNumericDate(issuedAt)
	mapClaims["exp"] = jwt.NewNumericDate(expiresAt)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// identity it carries. Every failure wraps domain.ErrUnauthenticated.
func (s *SessionSigner) Verify(tokenString string) (domain.Identity, error) {
	mapClaims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, mapClaims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	email, _ := mapClaims[emailClaimKey].(string)
	if email == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing email claim", domain.ErrUnauthenticated)
	}
	claims := map[string]any(mapClaims)
	for _, k := range reservedClaims {
		delete(claims, k)
	}
	return domain.Identity{Email: email, Claims: claims}, nil
}
