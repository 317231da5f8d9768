package layer

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
)

// Notifier delivers a user-facing error notification naming its source.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n domain.Notification)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n domain.Notification) {
	f(ctx, n)
}

// Notifiers fans a notification out to every member in order.
type Notifiers []Notifier

// Notify delivers n to each non-nil member.
func (ns Notifiers) Notify(ctx context.Context, n domain.Notification) {
	for _, notifier := range ns {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

// LogNotifier writes notifications to a logger. It is the fallback when no
// other channel is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs n at warn level.
func (l LogNotifier) Notify(_ context.Context, n domain.Notification) {
	l.Logger.Warn("user notification", "source", n.Source, "message", n.Message)
}
