package domain

import "context"

type principalKey struct{}

// ContextPrincipal carries the requesting identity through request context.
// There is no real authentication layer — the middleware injects a fixed
// user ID — but every access decision still flows through this type so a
// future identity provider can slot in without touching the services.
type ContextPrincipal struct {
	UserID int64
}

// WithPrincipal stores a ContextPrincipal in the context.
func WithPrincipal(ctx context.Context, p ContextPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the ContextPrincipal from the context.
func PrincipalFromContext(ctx context.Context) (ContextPrincipal, bool) {
	p, ok := ctx.Value(principalKey{}).(ContextPrincipal)
	return p, ok
}
