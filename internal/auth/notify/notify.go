// Package notify delivers password reset credentials to users. The auth
// core only decides what to send; each Notifier decides how.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Notifier hands a reset code and link to a delivery channel. Implementations
// do not retry; a returned error surfaces to the caller.
type Notifier interface {
	SendPasswordReset(ctx context.Context, to, code, link string) error
}

// Kinds accepted by AUTH_NOTIFIER.
const (
	KindLog   = "log"
	KindSMTP  = "smtp"
	KindKafka = "kafka"
)

var ErrUnknownKind = errors.New("notify: unknown notifier kind")

// ParseKind validates a notifier kind, defaulting to log.
func ParseKind(kind string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(kind)); k {
	case "":
		return KindLog, nil
	case KindLog, KindSMTP, KindKafka:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Closer is implemented by notifiers holding network resources.
type Closer interface {
	Close() error
}
