// Package mail delivers templated customer emails on behalf of rule actions.
// Rendering and SMTP delivery belong to a downstream worker; this package
// only hands messages off.
package mail

import (
	"context"
	"errors"
	"strings"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/internal/logger"
)

// ErrNoRecipient is returned for messages without a destination address
var ErrNoRecipient = errors.New("message has no recipient")

// Message is a templated email
type Message struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}

// Validate checks the fields every mailer requires
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}
	if strings.TrimSpace(m.Template) == "" {
		return errors.New("message has no template")
	}
	return nil
}

// Mailer sends a message or reports why it could not
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the structured log instead of sending them.
// Used in development and when no outbox is configured.
type LogMailer struct{}

// Send logs msg
func (LogMailer) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	logger.Info("email queued", "to", msg.To, "template", msg.Template)
	return nil
}
