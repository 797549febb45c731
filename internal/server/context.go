package server

import (
	"context"

	"bazaar/backend/internal/platform/authz"
	websitedomain "bazaar/backend/internal/website/domain"
)

type ctxKey int

const (
	principalKey ctxKey = iota
	websiteKey
)

func withPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (authz.Principal, bool) {
	p, ok := ctx.Value(principalKey).(authz.Principal)
	return p, ok
}

func withWebsite(ctx context.Context, w *websitedomain.Website) context.Context {
	return context.WithValue(ctx, websiteKey, w)
}

// WebsiteFromContext returns the resolved tenant website, if any.
func WebsiteFromContext(ctx context.Context) (*websitedomain.Website, bool) {
	w, ok := ctx.Value(websiteKey).(*websitedomain.Website)
	return w, ok
}
