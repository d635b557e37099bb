package mail

import "time"

// Envelope holds the parsed envelope data from an IMAP message.
type Envelope struct {
	MessageID string
	Subject   string
	From      string
	Date      time.Time
	UID       uint32
}

// Message is an inbox message reduced to what task matching needs.
type Message struct {
	Envelope Envelope
	TextBody string
	HTMLBody string
}

// Text returns the plain-text body, falling back to stripped HTML.
func (m Message) Text() string {
	if m.TextBody != "" {
		return m.TextBody
	}
	return stripHTML(m.HTMLBody)
}

// SMTPConfig holds the SMTP server settings for sending notifications.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	TLS      bool
}
