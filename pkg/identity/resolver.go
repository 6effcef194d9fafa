package identity

import "context"

// Resolver resolves the push user id for one device key. It satisfies
// onboarding.IdentityResolver.
type Resolver struct {
	store Store
	key   string
}

func NewResolver(store Store, key string) *Resolver {
	return &Resolver{store: store, key: key}
}

func (r *Resolver) UserID(ctx context.Context) (string, error) {
	if r.key == "" {
		return "", ErrNoDeviceKey
	}
	return r.store.GetOrCreate(ctx, r.key)
}

// Static is a resolver that always returns the same id.
type Static string

func (s Static) UserID(context.Context) (string, error) {
	return string(s), nil
}
