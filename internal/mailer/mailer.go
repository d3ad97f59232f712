package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Email is a single outbound message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers emails. The worker depends on this interface so tests
// can capture messages instead of hitting the provider.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// ResendSender delivers email through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, email Email) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send to %s: %w", email.To, err)
	}
	return nil
}
