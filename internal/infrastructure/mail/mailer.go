// Package mail provides the outbound notification boundary. The shipped
// implementation logs instead of delivering; swapping in a real provider is
// a matter of implementing ports.Mailer.
package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// LogMailer writes password-reset notifications to the log. The token is
// deliberately not logged in full.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	preview := token
	if len(preview) > 8 {
		preview = preview[:8]
	}
	m.logger.Info().
		Str("email", email).
		Str("token_prefix", preview).
		Msg("password reset notification dispatched")
	return nil
}
