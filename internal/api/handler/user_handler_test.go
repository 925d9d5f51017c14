package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bookly/booking-platform/internal/api/authctx"
	"github.com/bookly/booking-platform/internal/core/domain"
)

type stubUserService struct {
	profileFn  func(ctx context.Context, p domain.Principal) (*domain.Identity, error)
	activateFn func(ctx context.Context, id int64) (*domain.Identity, error)
}

func (s *stubUserService) Profile(ctx context.Context, p domain.Principal) (*domain.Identity, error) {
	return s.profileFn(ctx, p)
}

func (s *stubUserService) ActivateMaster(ctx context.Context, id int64) (*domain.Identity, error) {
	return s.activateFn(ctx, id)
}

func TestUserHandler_Me(t *testing.T) {
	stub := &stubUserService{
		profileFn: func(ctx context.Context, p domain.Principal) (*domain.Identity, error) {
			if p.Subject != "me@example.com" {
				t.Fatalf("unexpected principal: %+v", p)
			}
			return &domain.Identity{ID: 3, Email: p.Subject, Role: domain.RoleClient, Active: true}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/v1/users/me", "")
	principal := domain.Principal{Authenticated: true, Subject: "me@example.com", Roles: []domain.Role{domain.RoleClient}}
	c.SetRequest(c.Request().WithContext(authctx.WithPrincipal(c.Request().Context(), principal)))

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["email"] != "me@example.com" || resp["id"] != float64(3) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_ActivateMaster(t *testing.T) {
	stub := &stubUserService{
		activateFn: func(ctx context.Context, id int64) (*domain.Identity, error) {
			if id != 12 {
				t.Fatalf("unexpected id %d", id)
			}
			return &domain.Identity{ID: id, Role: domain.RoleMaster, Active: true}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(http.MethodPatch, "/v1/admin/masters/12/activate", "")
	c.SetParamNames("id")
	c.SetParamValues("12")

	if err := h.ActivateMaster(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_ActivateMaster_BadID(t *testing.T) {
	h := NewUserHandler(&stubUserService{})

	c, _ := newTestContext(http.MethodPatch, "/v1/admin/masters/abc/activate", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	var he *echo.HTTPError
	if err := h.ActivateMaster(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_ActivateMaster_NotMaster(t *testing.T) {
	stub := &stubUserService{
		activateFn: func(ctx context.Context, id int64) (*domain.Identity, error) {
			return nil, domain.ErrNotMaster
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(http.MethodPatch, "/v1/admin/masters/5/activate", "")
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.ActivateMaster(c); !errors.Is(err, domain.ErrNotMaster) {
		t.Fatalf("expected ErrNotMaster, got %v", err)
	}
}
