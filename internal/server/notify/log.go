package notify

import (
	"context"

	"github.com/dmitrijs2005/usuarios/internal/logging"
)

// LogSender writes messages to the logger instead of delivering them.
// Used in development where no mail provider is configured.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log.With("module", "notify")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info(ctx, "email",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
