package services

import (
	"context"
	"log/slog"

	pkglogger "github.com/BradenHooton/inkwell/pkg/logger"
)

// LogMailer writes messages to the log instead of delivering them. Used in
// development where links are copied from the console. Recipient and body
// are redacted in production.
type LogMailer struct {
	logger *slog.Logger
	env    string
}

func NewLogMailer(logger *slog.Logger, env string) *LogMailer {
	return &LogMailer{logger: logger, env: env}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "email sent (log transport)",
		pkglogger.RedactedAttr("to", msg.To, m.env),
		slog.String("subject", msg.Subject),
		pkglogger.RedactedAttr("body", msg.Text, m.env),
	)
	return nil
}
