// Package email delivers rendered notification messages over SMTP.
package email

import (
	"context"

	"estate_sales_backend/platform/config"
	"estate_sales_backend/platform/logger"
)

// Sender delivers a rendered message to one recipient. The notification
// module renders subject and HTML body before they reach the sender.
type Sender interface {
	Send(ctx context.Context, toName, toEmail, subject, htmlBody string) error
}

// NewSender returns the SMTP sender when email is configured, or a
// logging sender that records what would have been sent.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		return NewLogSender(log)
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

// LogSender logs outgoing messages instead of delivering them. Used in
// development and when no SMTP host is configured.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, toName, toEmail, subject, _ string) error {
	s.log.Info("email delivery skipped, smtp not configured",
		"to_name", toName, "to_email", toEmail, "subject", subject)
	return nil
}
