package directory

import "context"

type identityContextKey struct{}

// ContextWithIdentity attaches the authenticated caller to the context so
// audit logging can report who triggered a decision.
func ContextWithIdentity(ctx context.Context, who Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, who)
}

// IdentityFromContext extracts the caller identity if one was attached.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok {
		return Identity{}, false
	}
	return v, true
}
