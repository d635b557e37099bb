package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/cronograma/internal/model"
)

// Mailer sends plain-text e-mail.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// EmailSink delivers notifications by e-mail.
type EmailSink struct {
	mailer Mailer
	to     []string
}

// NewEmailSink sends to the comma-separated recipient list.
func NewEmailSink(m Mailer, recipients string) *EmailSink {
	var to []string
	for _, r := range strings.Split(recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	return &EmailSink{mailer: m, to: to}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Send(ctx context.Context, n model.Notification) error {
	if len(s.to) == 0 {
		return fmt.Errorf("email: no recipients configured")
	}
	body := n.Message
	if !n.CreatedAt.IsZero() {
		body += "\n\n" + n.CreatedAt.Local().Format("02/01/2006 15:04")
	}
	return s.mailer.Send(ctx, s.to, "[Cronograma] "+n.Title, body)
}
