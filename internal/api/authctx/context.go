// Package authctx carries the request principal through context.Context.
package authctx

import (
	"context"

	"github.com/bookly/booking-platform/internal/core/domain"
)

type contextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// Principal returns the principal attached to ctx. The boolean is false
// for anonymous requests.
func Principal(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(domain.Principal)
	if !ok || !p.Authenticated {
		return domain.Principal{}, false
	}
	return p, true
}
