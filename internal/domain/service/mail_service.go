package service

import "context"

// MailService defines the interface for transactional email delivery.
type MailService interface {
	// SendOneTimeCode delivers a login code to the recipient. A delivery
	// failure here is fatal to the issuing operation: the caller rolls
	// back the code record so no unreachable code lingers.
	SendOneTimeCode(ctx context.Context, to, code string, expiresInMinutes int) error

	// SendAccountNotice delivers an informational notice (new device
	// login, account created). Failures are logged by callers but do
	// not fail the surrounding operation.
	SendAccountNotice(ctx context.Context, to, subject, body string) error
}
