package shared

import "context"

// Principal describes the authenticated caller as decoded from the bearer
// token. Permissions are the snapshot embedded at token-issue time, not a
// live lookup.
type Principal struct {
	UserID      int64
	Permissions []string
}

// HasAny reports whether the principal holds at least one of the required
// permission actions. An empty requirement list is vacuously satisfied.
func (p Principal) HasAny(required []string) bool {
	if len(required) == 0 {
		return true
	}
	held := make(map[string]struct{}, len(p.Permissions))
	for _, action := range p.Permissions {
		held[action] = struct{}{}
	}
	for _, action := range required {
		if _, ok := held[action]; ok {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in the context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
