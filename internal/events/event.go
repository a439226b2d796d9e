// Package events carries session lifecycle notifications over the message
// broker so other services can audit signups and sign-ins.
package events

import (
	"context"
	"time"
)

// QueueName is the durable queue auth events are published to.
const QueueName = "auth.events"

// Type names a session lifecycle transition.
type Type string

const (
	SignedUp  Type = "user.signed_up"
	LoggedIn  Type = "user.logged_in"
	LoggedOut Type = "user.logged_out"
)

// AuthEvent is published after a successful signup, login or logout. It never
// carries credentials.
type AuthEvent struct {
	Type   Type      `json:"type"`
	Email  string    `json:"email"`
	Role   string    `json:"role,omitempty"`
	Origin string    `json:"origin,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher delivers AuthEvents. Implementations report failures but callers
// treat them as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, ev AuthEvent) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, AuthEvent) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	Events []AuthEvent
	Err    error
}

func (r *Recorder) Publish(_ context.Context, ev AuthEvent) error {
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, ev)
	return nil
}

// Types returns the type of each recorded event in order.
func (r *Recorder) Types() []Type {
	out := make([]Type, 0, len(r.Events))
	for _, ev := range r.Events {
		out = append(out, ev.Type)
	}
	return out
}
