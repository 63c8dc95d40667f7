// Package notify is the message delivery collaborator. Actual WhatsApp
// delivery is out of scope; dispatchers either log the payload or relay
// it over SMTP to an operator mailbox.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/billzio/billzio/config"
)

// Dispatcher delivers a rendered message to a recipient identifier
// (phone number for WhatsApp-style channels, address for mail).
type Dispatcher interface {
	Send(ctx context.Context, recipient, message string) error
}

// LogDispatcher writes every message to the application log. This is the
// default channel and the only one used when no SMTP relay is set up.
type LogDispatcher struct{}

func (LogDispatcher) Send(_ context.Context, recipient, message string) error {
	zap.L().Info("notification dispatched",
		zap.String("channel", "log"),
		zap.String("recipient", recipient),
		zap.String("message", message))
	return nil
}

// MailDispatcher relays messages to an operator mailbox over SMTP
type MailDispatcher struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewMailDispatcher(cfg config.NotifyConfig) *MailDispatcher {
	return &MailDispatcher{
		dialer: gomail.NewDialer(cfg.SmtpHost, cfg.SmtpPort, cfg.SmtpUser, cfg.SmtpPwd),
		from:   cfg.From,
		to:     cfg.SmtpUser,
	}
}

func (d *MailDispatcher) Send(_ context.Context, recipient, message string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", d.from)
	m.SetHeader("To", d.to)
	m.SetHeader("Subject", fmt.Sprintf("Billzio notification for %s", recipient))
	m.SetBody("text/plain", message)
	if err := d.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp dispatch: %w", err)
	}
	return nil
}

// NewFromConfig selects the dispatcher for the configured channel
func NewFromConfig(cfg config.NotifyConfig) Dispatcher {
	switch cfg.Channel {
	case "smtp":
		if cfg.SmtpHost != "" {
			return NewMailDispatcher(cfg)
		}
		zap.L().Warn("smtp notify channel selected but smtp_host empty, falling back to log")
	}
	return LogDispatcher{}
}
