// Package mail provides the outbound email boundary: a Sender interface
// consumed by the order engine and an SMTP implementation.
package mail

import (
	"context"

	"github.com/go-faster/errors"
)

// Sender delivers a single HTML email. A nil error means the transport
// accepted the message; anything else must be treated as not delivered.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type disabledSender struct{}

func (disabledSender) Send(context.Context, string, string, string) error {
	return errors.New("email delivery is not configured")
}

// Disabled returns a Sender that rejects every delivery. Used when no
// SMTP transport is configured so the rest of the engine keeps working.
func Disabled() Sender {
	return disabledSender{}
}
