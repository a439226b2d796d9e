// Package session manages the user registry and the single signed-in session
// of one storage origin. All state lives in a kv.Store under namespaced keys:
//
//	<prefix>users        JSON object of email -> UserRecord
//	<prefix>isLoggedIn   "true" while signed in, absent otherwise
//	<prefix>user         JSON SessionRecord
//	<prefix>userRole     role name
//	<prefix>redirectUrl  pending post-login destination, read once
//
// Writes are not transactional and nothing guards against two clients sharing
// an origin; the last write wins.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/iliyamo/artisanedge/internal/events"
	"github.com/iliyamo/artisanedge/internal/kv"
)

const (
	DefaultPrefix     = "artisanedge_"
	DefaultSignInPath = "signin.html"
	DefaultHomePath   = "index.html"

	minPasswordLen = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type keys struct {
	users, loggedIn, user, role, redirect string
}

func newKeys(prefix string) keys {
	return keys{
		users:    prefix + "users",
		loggedIn: prefix + "isLoggedIn",
		user:     prefix + "user",
		role:     prefix + "userRole",
		redirect: prefix + "redirectUrl",
	}
}

// Store is the session manager for one storage origin. Build one with New
// and pass it to whatever needs it; it holds no state of its own beyond its
// dependencies.
type Store struct {
	kv     kv.Store
	keys   keys
	creds  Credentials
	notify Notifier
	nav    Navigator
	pub    events.Publisher
	log    zerolog.Logger
	now    func() time.Time

	origin     string
	signInPath string
	homePath   string
}

type Option func(*Store)

// WithPrefix overrides the key prefix (DefaultPrefix).
func WithPrefix(p string) Option { return func(s *Store) { s.keys = newKeys(p) } }

func WithCredentials(c Credentials) Option    { return func(s *Store) { s.creds = c } }
func WithNotifier(n Notifier) Option          { return func(s *Store) { s.notify = n } }
func WithNavigator(n Navigator) Option        { return func(s *Store) { s.nav = n } }
func WithPublisher(p events.Publisher) Option { return func(s *Store) { s.pub = p } }
func WithLogger(l zerolog.Logger) Option      { return func(s *Store) { s.log = l } }
func WithClock(now func() time.Time) Option   { return func(s *Store) { s.now = now } }
func WithOrigin(origin string) Option         { return func(s *Store) { s.origin = origin } }

// WithPaths sets where RequireLogin and RedirectIfLoggedIn navigate to.
// Empty values keep the defaults.
func WithPaths(signIn, home string) Option {
	return func(s *Store) {
		if signIn != "" {
			s.signInPath = signIn
		}
		if home != "" {
			s.homePath = home
		}
	}
}

func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:         store,
		keys:       newKeys(DefaultPrefix),
		creds:      Plaintext{},
		notify:     discard{},
		nav:        discard{},
		pub:        events.Nop{},
		log:        zerolog.Nop(),
		now:        time.Now,
		signInPath: DefaultSignInPath,
		homePath:   DefaultHomePath,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Signup registers a new user and signs them in. The whole registry is
// rewritten on success.
func (s *Store) Signup(ctx context.Context, email, password, fullName, role string) error {
	if email == "" || password == "" || fullName == "" || role == "" {
		return s.fail(ctx, "signup", errMissing("", "All fields are required"))
	}
	if !emailPattern.MatchString(email) {
		return s.fail(ctx, "signup", errMissing("email", "Invalid email format"))
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return s.fail(ctx, "signup", errMissing("password", "Password must be at least 6 characters"))
	}
	r, ok := ParseRole(role)
	if !ok {
		return s.fail(ctx, "signup", errMissing("role", "Invalid role"))
	}

	users, err := s.registry(ctx)
	if err != nil {
		return s.fail(ctx, "signup", err)
	}
	if _, taken := users[email]; taken {
		return s.fail(ctx, "signup", &AuthError{Reason: ReasonEmailTaken, Message: "Email already registered"})
	}

	sealed, err := s.creds.Seal(password)
	if err != nil {
		return s.fail(ctx, "signup", fmt.Errorf("seal password: %w", err))
	}
	users[email] = UserRecord{
		Email:     email,
		Password:  sealed,
		FullName:  fullName,
		Role:      r,
		CreatedAt: s.now().UTC(),
	}
	blob, err := json.Marshal(users)
	if err != nil {
		return s.fail(ctx, "signup", fmt.Errorf("encode registry: %w", err))
	}
	if err := s.kv.Set(ctx, s.keys.users, string(blob)); err != nil {
		return s.fail(ctx, "signup", fmt.Errorf("write registry: %w", err))
	}
	s.log.Info().Str("email", email).Str("role", string(r)).Msg("user registered")
	s.emit(ctx, events.SignedUp, email, r)

	return s.Login(ctx, email, password)
}

// Login checks the credentials against the registry and opens a session.
// The flag, session record and role are written one after another; a
// failure part way leaves a partial session behind.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return s.fail(ctx, "login", errMissing("", "Email and password are required"))
	}
	users, err := s.registry(ctx)
	if err != nil {
		return s.fail(ctx, "login", err)
	}
	u, ok := users[email]
	if !ok || !s.creds.Match(u.Password, password) {
		return s.fail(ctx, "login", errInvalidCredentials)
	}

	rec, err := json.Marshal(u.session())
	if err != nil {
		return s.fail(ctx, "login", fmt.Errorf("encode session: %w", err))
	}
	if err := s.kv.Set(ctx, s.keys.loggedIn, "true"); err != nil {
		return s.fail(ctx, "login", fmt.Errorf("write session flag: %w", err))
	}
	if err := s.kv.Set(ctx, s.keys.user, string(rec)); err != nil {
		return s.fail(ctx, "login", fmt.Errorf("write session: %w", err))
	}
	if err := s.kv.Set(ctx, s.keys.role, string(u.Role)); err != nil {
		return s.fail(ctx, "login", fmt.Errorf("write role: %w", err))
	}
	s.log.Info().Str("email", email).Msg("signed in")
	s.emit(ctx, events.LoggedIn, email, u.Role)
	return nil
}

// Logout removes every session key, the pending redirect included. It is
// safe to call when nobody is signed in.
func (s *Store) Logout(ctx context.Context) error {
	cur, _ := s.CurrentUser(ctx)

	var errs []error
	for _, k := range []string{s.keys.loggedIn, s.keys.user, s.keys.role, s.keys.redirect} {
		if err := s.kv.Remove(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Error().Err(err).Msg("logout incomplete")
		return fmt.Errorf("logout: %w", err)
	}
	if cur != nil {
		s.log.Info().Str("email", cur.Email).Msg("signed out")
		s.emit(ctx, events.LoggedOut, cur.Email, cur.Role)
	}
	return nil
}

// IsLoggedIn reports whether the session flag holds exactly "true".
func (s *Store) IsLoggedIn(ctx context.Context) (bool, error) {
	v, _, err := s.kv.Get(ctx, s.keys.loggedIn)
	if err != nil {
		return false, fmt.Errorf("read session flag: %w", err)
	}
	return v == "true", nil
}

// CurrentUser returns the signed-in user's session record, or nil when
// signed out. The record is not checked against the registry.
func (s *Store) CurrentUser(ctx context.Context) (*SessionRecord, error) {
	if in, err := s.IsLoggedIn(ctx); err != nil || !in {
		return nil, err
	}
	raw, ok, err := s.kv.Get(ctx, s.keys.user)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var rec *SessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: session: %v", ErrCorruptState, err)
	}
	return rec, nil
}

// UserRole returns the stored role, or "" when signed out.
func (s *Store) UserRole(ctx context.Context) (Role, error) {
	if in, err := s.IsLoggedIn(ctx); err != nil || !in {
		return "", err
	}
	v, _, err := s.kv.Get(ctx, s.keys.role)
	if err != nil {
		return "", fmt.Errorf("read role: %w", err)
	}
	return Role(v), nil
}

func (s *Store) HasRole(ctx context.Context, role Role) (bool, error) {
	r, err := s.UserRole(ctx)
	if err != nil {
		return false, err
	}
	return r != "" && r == role, nil
}

// SetRedirectURL remembers where to send the user after they sign in,
// replacing any earlier value.
func (s *Store) SetRedirectURL(ctx context.Context, url string) error {
	if err := s.kv.Set(ctx, s.keys.redirect, url); err != nil {
		return fmt.Errorf("write redirect: %w", err)
	}
	return nil
}

// RedirectURL returns the pending redirect and clears it. It returns "" when
// none is pending.
func (s *Store) RedirectURL(ctx context.Context) (string, error) {
	v, _, err := s.kv.Get(ctx, s.keys.redirect)
	if err != nil {
		return "", fmt.Errorf("read redirect: %w", err)
	}
	if err := s.kv.Remove(ctx, s.keys.redirect); err != nil {
		return "", fmt.Errorf("clear redirect: %w", err)
	}
	return v, nil
}

// RequireLogin returns true when someone is signed in. Otherwise it records
// currentURL as the redirect, navigates to the sign-in page and returns false;
// the caller must stop rendering the protected page.
func (s *Store) RequireLogin(ctx context.Context, currentURL string) (bool, error) {
	in, err := s.IsLoggedIn(ctx)
	if err != nil {
		return false, err
	}
	if in {
		return true, nil
	}
	if err := s.SetRedirectURL(ctx, currentURL); err != nil {
		return false, err
	}
	s.nav.Navigate(ctx, s.signInPath)
	return false, nil
}

// RedirectIfLoggedIn sends a signed-in user away from the sign-in and
// sign-up pages to the home page. It reports whether it navigated.
func (s *Store) RedirectIfLoggedIn(ctx context.Context) (bool, error) {
	in, err := s.IsLoggedIn(ctx)
	if err != nil || !in {
		return false, err
	}
	s.nav.Navigate(ctx, s.homePath)
	return true, nil
}

// Users returns a copy of the registry.
func (s *Store) Users(ctx context.Context) (map[string]UserRecord, error) {
	return s.registry(ctx)
}

func (s *Store) registry(ctx context.Context) (map[string]UserRecord, error) {
	raw, ok, err := s.kv.Get(ctx, s.keys.users)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	users := map[string]UserRecord{}
	if !ok || raw == "" {
		return users, nil
	}
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("%w: registry: %v", ErrCorruptState, err)
	}
	if users == nil {
		users = map[string]UserRecord{}
	}
	return users, nil
}

// fail surfaces err to the user and returns it unchanged.
func (s *Store) fail(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrAuth):
		s.log.Info().Str("op", op).Str("reason", err.Error()).Msg("auth rejected")
	default:
		s.log.Error().Err(err).Str("op", op).Msg("session storage failure")
	}
	s.notify.Notify(ctx, Message(err))
	return err
}

func (s *Store) emit(ctx context.Context, t events.Type, email string, role Role) {
	ev := events.AuthEvent{Type: t, Email: email, Role: string(role), Origin: s.origin, At: s.now().UTC()}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("type", string(t)).Msg("auth event not published")
	}
}
