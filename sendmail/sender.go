package sendmail

import (
	"context"
	"fmt"

	"github.com/toolforge/jobs-emailer/compose"
	"github.com/toolforge/jobs-emailer/settings"

	"github.com/wneessen/go-mail"
)

// Sender delivers a composed email. Abstracted behind an interface so the
// send loop can be tested without a real SMTP server.
type Sender interface {
	Send(ctx context.Context, email compose.Email) error
}

// SMTPSender delivers mail through the relay configured in the settings
// store. The server is resolved per send so ConfigMap changes take effect
// without a restart.
type SMTPSender struct {
	store *settings.Store
}

func NewSMTPSender(store *settings.Store) *SMTPSender {
	return &SMTPSender{store: store}
}

func (s *SMTPSender) Send(ctx context.Context, email compose.Email) error {
	snapshot := s.store.Snapshot()
	server := snapshot.SMTPServerFQDN
	port := snapshot.SMTPServerPort

	msg := mail.NewMsg()
	if err := msg.From(email.FromAddr); err != nil {
		return fmt.Errorf("invalid from address %q: %w", email.FromAddr, err)
	}
	if err := msg.To(email.ToAddr); err != nil {
		return fmt.Errorf("invalid to address %q: %w", email.ToAddr, err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Body)

	opts := []mail.Option{mail.WithPort(port)}
	if port == 465 {
		// smtps, implicit TLS
		opts = append(opts, mail.WithSSL())
	} else {
		// in-cluster relays usually don't speak STARTTLS
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(server, opts...)
	if err != nil {
		return fmt.Errorf("unable to contact SMTP server at %s:%d: %w", server, port, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("unable to send email to %s via %s:%d: %w", email.ToAddr, server, port, err)
	}
	return nil
}
