// Package view builds the account area of the storefront navigation bar from
// the current session.
package view

import (
	"context"

	"github.com/iliyamo/artisanedge/internal/session"
)

// Session is the read side of session.Store the nav needs.
type Session interface {
	IsLoggedIn(ctx context.Context) (bool, error)
	CurrentUser(ctx context.Context) (*session.SessionRecord, error)
	UserRole(ctx context.Context) (session.Role, error)
}

// Paths are the pages the nav links to.
type Paths struct {
	SignIn  string
	SignUp  string
	Home    string
	SignOut string
}

var DefaultPaths = Paths{
	SignIn:  "signin.html",
	SignUp:  "signup.html",
	Home:    "index.html",
	SignOut: "/v1/auth/logout",
}

type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	// Method is set for links that perform an action rather than navigate.
	Method string `json:"method,omitempty"`
	// Then is where to go once the action completes.
	Then string `json:"then,omitempty"`
}

// Nav is either the signed-out presentation (sign-in and sign-up links) or
// the signed-in one (name, role badge, sign-out action).
type Nav struct {
	SignedIn bool   `json:"signed_in"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
	Badge    string `json:"badge,omitempty"`
	Links    []Link `json:"links"`
}

// Build reads the session and picks the presentation. A session flag with no
// readable session record renders as signed out.
func Build(ctx context.Context, s Session, p Paths) (Nav, error) {
	in, err := s.IsLoggedIn(ctx)
	if err != nil {
		return Nav{}, err
	}
	if !in {
		return signedOut(p), nil
	}
	u, err := s.CurrentUser(ctx)
	if err != nil {
		return Nav{}, err
	}
	if u == nil {
		return signedOut(p), nil
	}
	role, err := s.UserRole(ctx)
	if err != nil {
		return Nav{}, err
	}
	n := Nav{
		SignedIn: true,
		FullName: u.FullName,
		Role:     string(role),
		Links:    []Link{{Label: "Sign Out", Href: p.SignOut, Method: "POST", Then: p.Home}},
	}
	if role != "" {
		n.Badge = "(" + string(role) + ")"
	}
	return n, nil
}

func signedOut(p Paths) Nav {
	return Nav{Links: []Link{
		{Label: "Sign In", Href: p.SignIn},
		{Label: "Sign Up", Href: p.SignUp},
	}}
}
