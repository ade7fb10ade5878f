package services

import (
	"context"

	"github.com/dmitrijs2005/studyshare/internal/logging"
)

// Mailer delivers account e-mails.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, link string) error
}

// LogMailer writes the confirmation link to the log instead of sending
// mail. It is the only Mailer shipped with the server.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) SendConfirmation(ctx context.Context, email, link string) error {
	m.logger.Info(ctx, "confirmation link issued", "email", email, "link", link)
	return nil
}
