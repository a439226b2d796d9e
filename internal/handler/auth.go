package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/artisanedge/internal/middleware"
	"github.com/iliyamo/artisanedge/internal/session"
	"github.com/iliyamo/artisanedge/internal/view"
)

// AuthHandler serves the session operations of the caller's storage origin.
type AuthHandler struct {
	Paths view.Paths
}

func NewAuthHandler(p view.Paths) *AuthHandler { return &AuthHandler{Paths: p} }

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"` // Artisan | Influencer | Customer
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type redirectReq struct {
	URL string `json:"url"`
}

type authResp struct {
	User     *session.SessionRecord `json:"user"`
	Redirect string                 `json:"redirect"`
}

type sessionResp struct {
	LoggedIn bool                   `json:"logged_in"`
	User     *session.SessionRecord `json:"user"`
	Role     *string                `json:"role"`
}

func opCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// Signup registers the user, signs them in and returns where to go next.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()

	s := middleware.SessionFrom(c)
	if err := s.Signup(ctx, strings.TrimSpace(req.Email), req.Password, strings.TrimSpace(req.FullName), req.Role); err != nil {
		return failure(c, err)
	}
	return h.signedIn(ctx, c, s, http.StatusCreated)
}

// Login signs the user in and hands back the pending redirect, if any.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()

	s := middleware.SessionFrom(c)
	if err := s.Login(ctx, strings.TrimSpace(req.Email), req.Password); err != nil {
		return failure(c, err)
	}
	return h.signedIn(ctx, c, s, http.StatusOK)
}

func (h *AuthHandler) signedIn(ctx context.Context, c echo.Context, s *session.Store, status int) error {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return failure(c, err)
	}
	next, err := s.RedirectURL(ctx)
	if err != nil {
		return failure(c, err)
	}
	if next == "" {
		next = h.Paths.Home
	}
	return c.JSON(status, authResp{User: user, Redirect: next})
}

// Logout always succeeds for a signed-out caller.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()
	if err := middleware.SessionFrom(c).Logout(ctx); err != nil {
		return failure(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"redirect": h.Paths.Home})
}

// Session reports who, if anyone, is signed in.
func (h *AuthHandler) Session(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()
	s := middleware.SessionFrom(c)

	in, err := s.IsLoggedIn(ctx)
	if err != nil {
		return failure(c, err)
	}
	resp := sessionResp{LoggedIn: in}
	if in {
		if resp.User, err = s.CurrentUser(ctx); err != nil {
			return failure(c, err)
		}
		role, err := s.UserRole(ctx)
		if err != nil {
			return failure(c, err)
		}
		r := string(role)
		resp.Role = &r
	}
	return c.JSON(http.StatusOK, resp)
}

// HasRole compares :role with the signed-in user's role exactly.
func (h *AuthHandler) HasRole(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()
	role := session.Role(c.Param("role"))
	ok, err := middleware.SessionFrom(c).HasRole(ctx, role)
	if err != nil {
		return failure(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"role": role, "has_role": ok})
}

func (h *AuthHandler) SetRedirect(c echo.Context) error {
	var req redirectReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url required"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	if err := middleware.SessionFrom(c).SetRedirectURL(ctx, req.URL); err != nil {
		return failure(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// TakeRedirect returns the pending redirect and clears it.
func (h *AuthHandler) TakeRedirect(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()
	url, err := middleware.SessionFrom(c).RedirectURL(ctx)
	if err != nil {
		return failure(c, err)
	}
	if url == "" {
		return c.JSON(http.StatusOK, echo.Map{"url": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// Nav renders the account area of the navigation bar.
func (h *AuthHandler) Nav(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()
	n, err := view.Build(ctx, middleware.SessionFrom(c), h.Paths)
	if err != nil {
		return failure(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

// failure maps session errors onto HTTP statuses. The body carries the same
// message the session showed the user.
func failure(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	var ae *session.AuthError
	switch {
	case errors.As(err, &ae) && ae.Reason == session.ReasonEmailTaken:
		status = http.StatusConflict
	case errors.Is(err, session.ErrAuth):
		status = http.StatusUnauthorized
	case errors.Is(err, session.ErrValidation):
		status = http.StatusBadRequest
	default:
		c.Logger().Errorf("session: %v", err)
	}
	msg := session.Message(err)
	if n := middleware.OutcomeFrom(c).Notices; len(n) > 0 {
		msg = n[len(n)-1]
	}
	return c.JSON(status, echo.Map{"error": msg})
}
