package service

import "context"

// MailMessage is a single transactional email.
type MailMessage struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// MailSender dispatches transactional email. Send failures are reported but
// never roll back state already persisted by the caller.
type MailSender interface {
	Send(ctx context.Context, msg *MailMessage) error
}

// SMSSender dispatches a text message through an SMS gateway.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}
