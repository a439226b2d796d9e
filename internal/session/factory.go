package session

import "github.com/iliyamo/artisanedge/internal/kv"

// Factory builds Stores that share a backend but each see only the keys of
// their own storage origin.
type Factory struct {
	Base    kv.Store
	Options []Option
}

// For returns the Store for origin. extra options are applied last, so
// per-request notifiers and navigators override the shared ones.
func (f *Factory) For(origin string, extra ...Option) *Store {
	opts := make([]Option, 0, len(f.Options)+len(extra)+1)
	opts = append(opts, WithOrigin(origin))
	opts = append(opts, f.Options...)
	opts = append(opts, extra...)
	return New(kv.WithPrefix(f.Base, "origin:"+origin+":"), opts...)
}
