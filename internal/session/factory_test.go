package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/artisanedge/internal/kv"
)

func TestFactory_IsolatesOrigins(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	f := &Factory{Base: mem}

	a := f.For("a")
	require.NoError(t, a.Signup(ctx, "a@b.com", "secret1", "A B", "Artisan"))

	b := f.For("b")
	in, err := b.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, in)
	require.ErrorIs(t, b.Login(ctx, "a@b.com", "secret1"), ErrAuth, "registries are per origin")

	_, ok, err := mem.Get(ctx, "origin:a:artisanedge_isLoggedIn")
	require.NoError(t, err)
	assert.True(t, ok)

	in, err = f.For("a").IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, in, "a fresh Store for the same origin sees the session")
}
