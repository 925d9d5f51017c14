// Package token issues and validates the platform's bearer tokens.
//
// Access and refresh tokens are HS256 JWTs signed with disjoint keys. A
// token of one kind never validates as the other: the signature check uses
// the kind's own key and the token_type claim must match as well.
package token

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookly/booking-platform/internal/core/domain"
	"github.com/bookly/booking-platform/internal/core/ports"
)

const (
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 14 * 24 * time.Hour

	typeAccess  = "access"
	typeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrSameKeys     = errors.New("access and refresh keys must differ")
)

type accessClaims struct {
	TokenType string `json:"token_type"`
	UserID    int64  `json:"id"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Manager implements ports.TokenIssuer.
type Manager struct {
	access     AccessKey
	refresh    RefreshKey
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Manager)

func WithAccessTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.accessTTL = ttl
		}
	}
}

func WithRefreshTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.refreshTTL = ttl
		}
	}
}

// WithClock replaces time.Now for both issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager builds a Manager. Both keys are mandatory and must not be equal.
func NewManager(access AccessKey, refresh RefreshKey, opts ...Option) (*Manager, error) {
	if len(access.secret) == 0 {
		return nil, fmt.Errorf("%w: access key not configured", ErrInvalidKey)
	}
	if len(refresh.secret) == 0 {
		return nil, fmt.Errorf("%w: refresh key not configured", ErrInvalidKey)
	}
	if bytes.Equal(access.secret, refresh.secret) {
		return nil, ErrSameKeys
	}

	m := &Manager{
		access:     access,
		refresh:    refresh,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *Manager) IssueAccessToken(identity *domain.Identity) (string, error) {
	now := m.now()
	claims := accessClaims{
		TokenType:        typeAccess,
		UserID:           identity.ID,
		Role:             string(identity.Role),
		FirstName:        identity.FirstName,
		LastName:         identity.LastName,
		Email:            identity.Email,
		RegisteredClaims: m.registered(identity.Email, now, m.accessTTL),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.access.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (m *Manager) IssueRefreshToken(identity *domain.Identity) (string, error) {
	now := m.now()
	claims := refreshClaims{
		TokenType:        typeRefresh,
		RegisteredClaims: m.registered(identity.Email, now, m.refreshTTL),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refresh.secret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

func (m *Manager) ValidateAccessToken(token string) bool {
	_, err := m.ExtractAccessClaims(token)
	return err == nil
}

func (m *Manager) ValidateRefreshToken(token string) bool {
	_, err := m.ExtractRefreshClaims(token)
	return err == nil
}

func (m *Manager) ExtractAccessClaims(token string) (*ports.TokenClaims, error) {
	var claims accessClaims
	if err := m.parse(token, m.access.secret, &claims); err != nil {
		return nil, err
	}
	if claims.TokenType != typeAccess {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.TokenType)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &ports.TokenClaims{
		Subject:   claims.Subject,
		UserID:    claims.UserID,
		Role:      role,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Email:     claims.Email,
		IssuedAt:  numericTime(claims.IssuedAt),
		ExpiresAt: numericTime(claims.ExpiresAt),
	}, nil
}

func (m *Manager) ExtractRefreshClaims(token string) (*ports.TokenClaims, error) {
	var claims refreshClaims
	if err := m.parse(token, m.refresh.secret, &claims); err != nil {
		return nil, err
	}
	if claims.TokenType != typeRefresh {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.TokenType)
	}

	return &ports.TokenClaims{
		Subject:   claims.Subject,
		IssuedAt:  numericTime(claims.IssuedAt),
		ExpiresAt: numericTime(claims.ExpiresAt),
	}, nil
}

func (m *Manager) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// parse verifies signature, algorithm and expiry. Every failure is wrapped
// in ErrInvalidToken.
func (m *Manager) parse(token string, secret []byte, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return nil
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
