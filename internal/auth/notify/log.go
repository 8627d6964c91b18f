package notify

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// LogNotifier writes reset notifications to the request logger. It is meant
// for development; the code and link only appear at debug level.
type LogNotifier struct{}

func (LogNotifier) SendPasswordReset(ctx context.Context, to, code, link string) error {
	l := slogx.FromContext(ctx).With(slog.String("component", "notify.log"))
	l.Info("password reset issued", slog.String("to", to))
	l.Debug("password reset credentials",
		slog.String("to", to),
		slog.String("code", code),
		slog.String("link", link),
	)
	return nil
}
