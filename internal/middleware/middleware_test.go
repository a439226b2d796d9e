package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/artisanedge/internal/config"
	"github.com/iliyamo/artisanedge/internal/kv"
	"github.com/iliyamo/artisanedge/internal/session"
	"github.com/iliyamo/artisanedge/internal/utils"
)

const testSecret = "test-secret"

func newTestEcho(f *session.Factory, mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(Origin(testSecret, time.Hour), Session(f))
	e.GET("/page", func(c echo.Context) error { return c.String(http.StatusOK, OriginID(c)) }, mw...)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func originCookie(t *testing.T, id string) *http.Cookie {
	t.Helper()
	tok, err := utils.SignOrigin(testSecret, id, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: OriginCookie, Value: tok.Token}
}

func TestOrigin_IssuesAndReusesCookie(t *testing.T) {
	e := newTestEcho(&session.Factory{Base: kv.NewMemory()})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/page", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, OriginCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	first := rec.Body.String()
	assert.NotEmpty(t, first)

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(cookies[0])
	rec = serve(e, req)
	assert.Equal(t, first, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies(), "valid cookie is not reissued")
}

func TestOrigin_ReplacesForgedCookie(t *testing.T) {
	e := newTestEcho(&session.Factory{Base: kv.NewMemory()})
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: OriginCookie, Value: "forged"})

	rec := serve(e, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestRequireLogin_RedirectsAndRemembers(t *testing.T) {
	f := &session.Factory{Base: kv.NewMemory(), Options: []session.Option{session.WithPaths("/signin", "/")}}
	e := newTestEcho(f, RequireLogin())
	id := "7d1f9d0e-8a0c-4a57-9d1c-2f3c5b7c9e11"

	req := httptest.NewRequest(http.MethodGet, "/page?tab=orders", nil)
	req.AddCookie(originCookie(t, id))
	rec := serve(e, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get(echo.HeaderLocation))

	url, err := f.For(id).RedirectURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/page?tab=orders", url)

	require.NoError(t, f.For(id).Signup(context.Background(), "a@b.com", "secret1", "A B", "Customer"))
	req = httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(originCookie(t, id))
	rec = serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	f := &session.Factory{Base: kv.NewMemory()}
	e := newTestEcho(f, RequireLogin(), RequireRole(session.RoleArtisan))
	id := "0b0c4a35-9e1f-4f7e-b0a8-6a1d3d3f2b10"
	require.NoError(t, f.For(id).Signup(context.Background(), "c@b.com", "secret1", "C", "Customer"))

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(originCookie(t, id))
	rec := serve(e, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "only for Artisans")

	s := f.For(id)
	require.NoError(t, s.Logout(context.Background()))
	require.NoError(t, s.Signup(context.Background(), "a@b.com", "secret1", "A", "Artisan"))
	req = httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(originCookie(t, id))
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestRedirectIfLoggedIn(t *testing.T) {
	f := &session.Factory{Base: kv.NewMemory()}
	e := newTestEcho(f, RedirectIfLoggedIn())
	id := "5c2d8a4e-1b3f-4c6d-8e9f-0a1b2c3d4e5f"

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(originCookie(t, id))
	assert.Equal(t, http.StatusOK, serve(e, req).Code)

	require.NoError(t, f.For(id).Signup(context.Background(), "a@b.com", "secret1", "A", "Artisan"))
	req = httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(originCookie(t, id))
	rec := serve(e, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, session.DefaultHomePath, rec.Header().Get(echo.HeaderLocation))
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl:test",
	}
	e := newTestEcho(&session.Factory{Base: kv.NewMemory()}, RateLimit(cfg, rdb, zerolog.Nop()))

	for i := 0; i < 2; i++ {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/page", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/page", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_DisabledWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	e := newTestEcho(&session.Factory{Base: kv.NewMemory()}, RateLimit(cfg, nil, zerolog.Nop()))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/page", nil)).Code)
	}
}
