package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookly/booking-platform/internal/core/domain"
	"github.com/bookly/booking-platform/internal/core/ports"
)

// AuthService implements registration, login, refresh and logout.
type AuthService struct {
	repo     ports.IdentityRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	ids      ports.IDGenerator
	log      zerolog.Logger
	now      func() time.Time
	activity ports.ActivityRecorder

	// refreshStore is nil when refresh tokens are not tracked server-side.
	refreshStore ports.RefreshTokenStore
	refreshTTL   time.Duration
}

type AuthOption func(*AuthService)

// WithRefreshStore makes login record each refresh token and makes refresh
// accept only the latest recorded token for a subject.
func WithRefreshStore(store ports.RefreshTokenStore, ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		s.refreshStore = store
		s.refreshTTL = ttl
	}
}

func WithActivityRecorder(rec ports.ActivityRecorder) AuthOption {
	return func(s *AuthService) {
		s.activity = rec
	}
}

func NewAuthService(
	repo ports.IdentityRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	ids ports.IDGenerator,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		ids:    ids,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a CLIENT or MASTER account. Masters start inactive and
// wait for an administrator to confirm them.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil || !role.SelfRegistrable() {
		return nil, domain.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	identity := &domain.Identity{
		ID:           s.ids.NextID(),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         role,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Active:       role == domain.RoleClient,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("user_id", identity.ID).Str("role", string(role)).Msg("identity registered")
	return identity, nil
}

// Login verifies credentials and issues an access and a refresh token.
// Unknown users and wrong passwords both yield ErrAuthenticationFailed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	email = normalizeEmail(email)

	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.record(email, domain.ActivityLoginFailed, "user not found")
			return nil, fmt.Errorf("%w: user not found", domain.ErrAuthenticationFailed)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, identity.PasswordHash) {
		s.record(email, domain.ActivityLoginFailed, "bad password")
		return nil, fmt.Errorf("%w: bad password", domain.ErrAuthenticationFailed)
	}

	access, err := s.tokens.IssueAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(identity)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.refreshStore != nil {
		if err := s.refreshStore.Save(ctx, identity.Email, refresh, s.refreshTTL); err != nil {
			// A lost record only costs the user a re-login once the access token expires.
			s.log.Warn().Err(err).Int64("user_id", identity.ID).Msg("failed to record refresh token")
		}
	}

	s.record(email, domain.ActivityLoginSucceeded, "")
	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token. A refused
// refresh returns an empty pair and a nil error; only infrastructure
// failures are reported as errors.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	if !s.tokens.ValidateRefreshToken(refreshToken) {
		return &ports.TokenPair{}, nil
	}
	claims, err := s.tokens.ExtractRefreshClaims(refreshToken)
	if err != nil {
		return &ports.TokenPair{}, nil
	}
	subject := claims.Subject

	if s.refreshStore != nil {
		ok, err := s.refreshStore.Matches(ctx, subject, refreshToken)
		if err != nil {
			return nil, fmt.Errorf("refresh: %w", err)
		}
		if !ok {
			s.record(subject, domain.ActivityRefreshDenied, "token not current")
			return &ports.TokenPair{}, nil
		}
	}

	identity, err := s.repo.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.record(subject, domain.ActivityRefreshDenied, "user not found")
			return &ports.TokenPair{}, nil
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	access, err := s.tokens.IssueAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	s.record(subject, domain.ActivityTokenRefreshed, "")
	return &ports.TokenPair{AccessToken: access}, nil
}

// Logout forgets the refresh token recorded for the caller. The caller is
// the authenticated principal or, when the access token is gone, the
// subject of refreshToken. With a tracked store the refresh token must be
// the one currently recorded, so a stale token cannot end a newer session.
func (s *AuthService) Logout(ctx context.Context, principal domain.Principal, refreshToken string) error {
	subject, err := s.logoutSubject(ctx, principal, refreshToken)
	if err != nil {
		return err
	}
	if subject == "" {
		return nil
	}

	if s.refreshStore != nil {
		if err := s.refreshStore.Revoke(ctx, subject); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}
	s.record(subject, domain.ActivityLogout, "")
	return nil
}

func (s *AuthService) logoutSubject(ctx context.Context, principal domain.Principal, refreshToken string) (string, error) {
	if principal.Authenticated {
		return principal.Subject, nil
	}
	if refreshToken == "" || !s.tokens.ValidateRefreshToken(refreshToken) {
		return "", nil
	}
	claims, err := s.tokens.ExtractRefreshClaims(refreshToken)
	if err != nil {
		return "", nil
	}
	if s.refreshStore != nil {
		ok, err := s.refreshStore.Matches(ctx, claims.Subject, refreshToken)
		if err != nil {
			return "", fmt.Errorf("logout: %w", err)
		}
		if !ok {
			return "", nil
		}
	}
	return claims.Subject, nil
}

func (s *AuthService) record(email string, kind domain.ActivityKind, reason string) {
	if s.activity == nil {
		return
	}
	s.activity.Record(domain.Activity{
		Email:      email,
		Kind:       kind,
		Reason:     reason,
		OccurredAt: s.now().UTC(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
