package mail

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	gomail "github.com/emersion/go-message/mail"

	"github.com/nhle/cronograma/internal/source"
)

const mailbox = "INBOX"

// Inbox reads one IMAP mailbox.
type Inbox struct {
	addr        string
	user        string
	pass        string
	implicitTLS bool
}

// NewInbox describes the mailbox at host:port. With implicitTLS the
// connection is TLS from the start, otherwise it is upgraded with STARTTLS.
func NewInbox(host, port, user, pass string, implicitTLS bool) *Inbox {
	return &Inbox{
		addr:        net.JoinHostPort(host, port),
		user:        user,
		pass:        pass,
		implicitTLS: implicitTLS,
	}
}

// Dial opens an authenticated session. Login failures are reported as
// *source.AuthError. Callers log out when done.
func (in *Inbox) Dial(ctx context.Context) (*imapclient.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dial := imapclient.DialStartTLS
	if in.implicitTLS {
		dial = imapclient.DialTLS
	}
	c, err := dial(in.addr, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", in.addr, err)
	}
	if err := c.Login(in.user, in.pass).Wait(); err != nil {
		c.Close()
		return nil, &source.AuthError{
			SourceType: source.SourceTypeMail,
			Message:    fmt.Sprintf("login rejected for %s: %v", in.user, err),
		}
	}
	return c, nil
}

// Count reports how many messages the mailbox holds.
func (in *Inbox) Count(ctx context.Context) (uint32, error) {
	c, err := in.Dial(ctx)
	if err != nil {
		return 0, err
	}
	defer logout(c)

	data, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		return 0, fmt.Errorf("selecting %s: %w", mailbox, err)
	}
	return data.NumMessages, nil
}

// Recent returns the messages received on or after since with a UID above
// afterUID, oldest first. Only the newest limit are kept when limit > 0.
func (in *Inbox) Recent(ctx context.Context, since time.Time, afterUID uint32, limit int) ([]Message, error) {
	c, err := in.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer logout(c)

	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", mailbox, err)
	}

	found, err := c.UIDSearch(&imap.SearchCriteria{Since: since}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", mailbox, err)
	}
	uids := newerThan(found.AllUIDs(), afterUID, limit)
	if len(uids) == 0 {
		return nil, nil
	}

	section := &imap.FetchItemBodySection{Peek: true}
	bufs, err := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{section},
	}).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetching %d messages: %w", len(uids), err)
	}

	out := make([]Message, 0, len(bufs))
	for _, buf := range bufs {
		out = append(out, toMessage(buf, section))
	}
	return out, nil
}

func logout(c *imapclient.Client) {
	_ = c.Logout().Wait()
}

// newerThan keeps the UIDs above after, trimmed to the newest limit.
func newerThan(all []imap.UID, after uint32, limit int) []imap.UID {
	var uids []imap.UID
	for _, uid := range all {
		if uint32(uid) > after {
			uids = append(uids, uid)
		}
	}
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}
	return uids
}

func toMessage(buf *imapclient.FetchMessageBuffer, section *imap.FetchItemBodySection) Message {
	m := Message{Envelope: Envelope{UID: uint32(buf.UID)}}
	if env := buf.Envelope; env != nil {
		m.Envelope.MessageID = env.MessageID
		m.Envelope.Subject = env.Subject
		m.Envelope.Date = env.Date
		if len(env.From) > 0 {
			m.Envelope.From = env.From[0].Name
			if m.Envelope.From == "" {
				m.Envelope.From = env.From[0].Addr()
			}
		}
	}
	if raw := buf.FindBodySection(section); raw != nil {
		m.TextBody, m.HTMLBody = readBody(raw)
	}
	return m
}

// readBody returns the first text/plain and text/html parts of a raw
// message. Input that is not MIME is returned whole as text.
func readBody(raw []byte) (text, htmlBody string) {
	r, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw), ""
	}
	defer r.Close()

	for text == "" || htmlBody == "" {
		part, err := r.NextPart()
		if err != nil {
			break
		}
		h, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		if ct != "text/plain" && ct != "text/html" {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		if ct == "text/plain" && text == "" {
			text = string(body)
		} else if ct == "text/html" && htmlBody == "" {
			htmlBody = string(body)
		}
	}
	return text, htmlBody
}

var (
	lineBreaks = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|tr)>`)
	anyTag     = regexp.MustCompile(`<[^>]*>`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

// stripHTML reduces an HTML body to text, keeping block breaks as
// newlines.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = lineBreaks.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = strings.ReplaceAll(html.UnescapeString(s), "\u00a0", " ")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
