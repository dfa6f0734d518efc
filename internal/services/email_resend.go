package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	pkglogger "github.com/BradenHooton/inkwell/pkg/logger"
)

// ResendMailer sends email through the Resend API.
type ResendMailer struct {
	client    *resend.Client
	fromEmail string
	logger    *slog.Logger
}

func NewResendMailer(apiKey, fromEmail string, logger *slog.Logger) *ResendMailer {
	return NewResendMailerWithClient(resend.NewClient(apiKey), fromEmail, logger)
}

// NewResendMailerWithClient allows pointing the client at a different base URL.
func NewResendMailerWithClient(client *resend.Client, fromEmail string, logger *slog.Logger) *ResendMailer {
	return &ResendMailer{
		client:    client,
		fromEmail: fromEmail,
		logger:    logger,
	}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    m.fromEmail,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email via resend: %w", err)
	}

	m.logger.InfoContext(ctx, "email sent",
		slog.String("provider", "resend"),
		slog.String("to", pkglogger.SanitizedEmail(msg.To)),
		slog.String("message_id", sent.Id),
	)
	return nil
}
