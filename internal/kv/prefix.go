package kv

import "context"

type prefixed struct {
	base   Store
	prefix string
}

// WithPrefix returns a Store that prepends prefix to every key before
// delegating to base. It is how a single backend is split into isolated
// storage origins.
func WithPrefix(base Store, prefix string) Store {
	if p, ok := base.(*prefixed); ok {
		return &prefixed{base: p.base, prefix: p.prefix + prefix}
	}
	return &prefixed{base: base, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.base.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.base.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.base.Remove(ctx, p.prefix+key)
}
