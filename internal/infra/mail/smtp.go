// Package mail implements transactional email delivery over SMTP.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"pentrack/config"
	"pentrack/internal/domain/service"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// smtpMailer is a concrete implementation of the MailService interface.
type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

// NewSMTPMailer is the constructor for smtpMailer.
func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) service.MailService {
	mailCfg := cfg.Mail
	from := mailCfg.From
	if mailCfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mailCfg.FromName, mailCfg.From)
	}

	return &smtpMailer{
		dialer: gomail.NewDialer(mailCfg.Host, mailCfg.Port, mailCfg.Username, mailCfg.Password),
		from:   from,
		logger: logger,
	}
}

// SendOneTimeCode delivers a login code. The caller treats a failure here
// as fatal to the issuing request.
func (m *smtpMailer) SendOneTimeCode(ctx context.Context, to, code string, expiresInMinutes int) error {
	body := fmt.Sprintf(
		"Your login code is %s.\n\nIt expires in %d minutes. If you did not request this code, you can ignore this email.",
		code, expiresInMinutes,
	)

	return m.send(ctx, to, "Your login code", body)
}

// SendAccountNotice delivers an informational notice.
func (m *smtpMailer) SendAccountNotice(ctx context.Context, to, subject, body string) error {
	return m.send(ctx, to, subject, body)
}

func (m *smtpMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "mail send aborted")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return errors.Wrap(err, "failed to send mail")
	}

	m.logger.Debug("Mail sent", slog.String("to", to), slog.String("subject", subject))

	return nil
}
