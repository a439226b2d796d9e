package session

import "context"

// Notifier shows a blocking, user-facing message.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// Navigator sends the user to another page.
type Navigator interface {
	Navigate(ctx context.Context, url string)
}

type NotifierFunc func(ctx context.Context, msg string)

func (f NotifierFunc) Notify(ctx context.Context, msg string) { f(ctx, msg) }

type NavigatorFunc func(ctx context.Context, url string)

func (f NavigatorFunc) Navigate(ctx context.Context, url string) { f(ctx, url) }

type discard struct{}

func (discard) Notify(context.Context, string)   {}
func (discard) Navigate(context.Context, string) {}
