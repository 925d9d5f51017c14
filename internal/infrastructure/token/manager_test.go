package token

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookly/booking-platform/internal/core/domain"
)

var (
	accessSecret  = bytes.Repeat([]byte("a"), MinKeyBytes)
	refreshSecret = bytes.Repeat([]byte("r"), MinKeyBytes)
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	access, err := ParseAccessKey(base64.StdEncoding.EncodeToString(accessSecret))
	if err != nil {
		t.Fatalf("parse access key: %v", err)
	}
	refresh, err := ParseRefreshKey(base64.StdEncoding.EncodeToString(refreshSecret))
	if err != nil {
		t.Fatalf("parse refresh key: %v", err)
	}
	m, err := NewManager(access, refresh, opts...)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func testIdentity() *domain.Identity {
	return &domain.Identity{
		ID:        42,
		Email:     "alice@example.com",
		Role:      domain.RoleMaster,
		FirstName: "Alice",
		LastName:  "Smith",
		Active:    true,
	}
}

func TestManager_AccessRoundTrip(t *testing.T) {
	m := newTestManager(t)
	id := testIdentity()

	tok, err := m.IssueAccessToken(id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !m.ValidateAccessToken(tok) {
		t.Fatalf("expected fresh access token to validate")
	}

	claims, err := m.ExtractAccessClaims(tok)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if claims.Subject != id.Email {
		t.Fatalf("subject = %q, want %q", claims.Subject, id.Email)
	}
	if claims.Role != id.Role {
		t.Fatalf("role = %q, want %q", claims.Role, id.Role)
	}
	if claims.UserID != id.ID || claims.FirstName != "Alice" || claims.LastName != "Smith" || claims.Email != id.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestManager_AccessExpiresAfter24Hours(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, WithClock(clock.Now))

	tok, err := m.IssueAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.ExtractAccessClaims(tok)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if want := clock.t.Add(24 * time.Hour); !claims.ExpiresAt.Equal(want) {
		t.Fatalf("expires at %v, want %v", claims.ExpiresAt, want)
	}

	clock.t = clock.t.Add(23 * time.Hour)
	if !m.ValidateAccessToken(tok) {
		t.Fatalf("expected token to be valid before expiry")
	}

	clock.t = clock.t.Add(2 * time.Hour)
	if m.ValidateAccessToken(tok) {
		t.Fatalf("expected expired token to fail validation")
	}
	if _, err := m.ExtractAccessClaims(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestManager_RefreshExpiresAfter14Days(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, WithClock(clock.Now))

	tok, err := m.IssueRefreshToken(testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock.t = clock.t.Add(13 * 24 * time.Hour)
	if !m.ValidateRefreshToken(tok) {
		t.Fatalf("expected refresh token to be valid on day 13")
	}

	clock.t = clock.t.Add(2 * 24 * time.Hour)
	if m.ValidateRefreshToken(tok) {
		t.Fatalf("expected refresh token to be expired on day 15")
	}
}

func TestManager_PreExpiredToken(t *testing.T) {
	past := &fakeClock{t: time.Now().Add(-72 * time.Hour)}
	issuer := newTestManager(t, WithClock(past.Now))
	validator := newTestManager(t)

	tok, err := issuer.IssueAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if validator.ValidateAccessToken(tok) {
		t.Fatalf("expected token issued 72h ago to be expired")
	}
}

func TestManager_CrossKeyRejection(t *testing.T) {
	m := newTestManager(t)
	id := testIdentity()

	refresh, err := m.IssueRefreshToken(id)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	access, err := m.IssueAccessToken(id)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	if m.ValidateAccessToken(refresh) {
		t.Fatalf("refresh token must not validate as access token")
	}
	if m.ValidateRefreshToken(access) {
		t.Fatalf("access token must not validate as refresh token")
	}
	if _, err := m.ExtractAccessClaims(refresh); err == nil {
		t.Fatalf("expected extract to fail for refresh token")
	}
}

func TestManager_TokenTypeEnforced(t *testing.T) {
	m := newTestManager(t)

	// Correct key, wrong token_type.
	forged := refreshClaims{
		TokenType: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, forged).SignedString(refreshSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if m.ValidateRefreshToken(tok) {
		t.Fatalf("expected token_type mismatch to be rejected")
	}
}

func TestManager_RefreshCarriesNoRole(t *testing.T) {
	m := newTestManager(t)

	tok, err := m.IssueRefreshToken(testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	if _, ok := claims["role"]; ok {
		t.Fatalf("refresh token must not carry a role claim: %v", claims)
	}
	if claims["sub"] != "alice@example.com" {
		t.Fatalf("unexpected subject: %v", claims["sub"])
	}
}

func TestManager_RejectsMalformedInput(t *testing.T) {
	m := newTestManager(t)

	for _, tok := range []string{"", "garbage", "a.b.c", "Bearer x"} {
		if m.ValidateAccessToken(tok) {
			t.Fatalf("expected %q to be rejected as access token", tok)
		}
		if m.ValidateRefreshToken(tok) {
			t.Fatalf("expected %q to be rejected as refresh token", tok)
		}
	}
}

func TestManager_RejectsOtherAlgorithms(t *testing.T) {
	m := newTestManager(t)

	claims := accessClaims{
		TokenType: typeAccess,
		Role:      string(domain.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(accessSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if m.ValidateAccessToken(hs512) {
		t.Fatalf("expected HS512 token to be rejected")
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if m.ValidateAccessToken(none) {
		t.Fatalf("expected unsigned token to be rejected")
	}
}

func TestManager_RejectsTamperedToken(t *testing.T) {
	m := newTestManager(t)

	alice, err := m.IssueAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	admin := testIdentity()
	admin.Role = domain.RoleAdmin
	escalated, err := m.IssueAccessToken(admin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Escalated payload with alice's signature.
	a := strings.Split(alice, ".")
	e := strings.Split(escalated, ".")
	spliced := strings.Join([]string{a[0], e[1], a[2]}, ".")
	if m.ValidateAccessToken(spliced) {
		t.Fatalf("expected spliced token to be rejected")
	}
}

func TestManager_ValidationIsIdempotent(t *testing.T) {
	m := newTestManager(t)

	tok, err := m.IssueAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	for i := 0; i < 5; i++ {
		if !m.ValidateAccessToken(tok) {
			t.Fatalf("validation %d failed", i)
		}
	}
}

func TestNewManager_KeyRequirements(t *testing.T) {
	access, err := ParseAccessKey(base64.StdEncoding.EncodeToString(accessSecret))
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	sameAsAccess, err := ParseRefreshKey(base64.StdEncoding.EncodeToString(accessSecret))
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}

	if _, err := NewManager(access, sameAsAccess); !errors.Is(err, ErrSameKeys) {
		t.Fatalf("expected ErrSameKeys, got %v", err)
	}
	if _, err := NewManager(AccessKey{}, sameAsAccess); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for missing access key, got %v", err)
	}
	if _, err := NewManager(access, RefreshKey{}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for missing refresh key, got %v", err)
	}
}

func TestParseKeys_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"blank":      "   ",
		"not base64": "%%%not-base64%%%",
		"too short":  base64.StdEncoding.EncodeToString([]byte("short")),
	}
	for name, in := range cases {
		if _, err := ParseAccessKey(in); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("%s: expected ErrInvalidKey for access key, got %v", name, err)
		}
		if _, err := ParseRefreshKey(in); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("%s: expected ErrInvalidKey for refresh key, got %v", name, err)
		}
	}
}
