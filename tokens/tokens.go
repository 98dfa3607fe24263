// Package tokens issues and verifies the bearer tokens handed to customers
// and shops. Access and refresh tokens share one HMAC secret and differ by
// their typ claim.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-ordering-api/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevoked      = errors.New("token has been revoked")
)

type Type string

const (
	Access  Type = "access"
	Refresh Type = "refresh"
)

type Claims struct {
	Kind models.AccountKind `json:"kind"`
	Type Type               `json:"typ"`
	jwt.RegisteredClaims
}

// RevocationStore remembers refresh tokens that were logged out.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Service struct {
	secret      []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	revocations RevocationStore
	now         func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRevocations enables logout. Without it Revoke is a no-op.
func WithRevocations(r RevocationStore) Option {
	return func(s *Service) { s.revocations = r }
}

func NewService(secret []byte, accessTTL, refreshTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) IssueAccess(subject string, kind models.AccountKind) (string, error) {
	return s.issue(subject, kind, Access, s.accessTTL)
}

func (s *Service) IssueRefresh(subject string, kind models.AccountKind) (string, error) {
	return s.issue(subject, kind, Refresh, s.refreshTTL)
}

// Pair is what a successful login returns.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Service) IssuePair(subject string, kind models.AccountKind) (Pair, error) {
	access, err := s.IssueAccess(subject, kind)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.IssueRefresh(subject, kind)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) issue(subject string, kind models.AccountKind, typ Type, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Kind: kind,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Verify parses raw and checks signature, expiry, type and revocation.
// Every failure wraps ErrInvalidToken.
func (s *Service) Verify(ctx context.Context, raw string, want Type) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: missing token", ErrInvalidToken)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: token has expired", ErrInvalidToken)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Type != want {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, want, claims.Type)
	}
	if claims.Subject == "" || !claims.Kind.Valid() {
		return nil, fmt.Errorf("%w: incomplete claims", ErrInvalidToken)
	}

	if want == Refresh && s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrRevoked)
		}
	}
	return claims, nil
}

// Revoke blocks a refresh token until it expires.
func (s *Service) Revoke(ctx context.Context, claims *Claims) error {
	if s.revocations == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
