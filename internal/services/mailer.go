package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/inkwell/internal/config"
)

// Message is a rendered outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers outbound email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer builds the transport selected by MAIL_PROVIDER.
func NewMailer(ctx context.Context, cfg config.MailConfig, logger *slog.Logger) (Mailer, error) {
	switch cfg.Provider {
	case config.MailProviderSES:
		return NewSESMailer(ctx, cfg.AWSRegion, cfg.From, logger)
	case config.MailProviderResend:
		return NewResendMailer(cfg.ResendAPIKey, cfg.From, logger), nil
	case config.MailProviderLog:
		return NewLogMailer(logger, cfg.Env), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
