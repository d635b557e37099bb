package mail

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nhle/cronograma/internal/crossref"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/source"
)

const (
	lookback   = 7 * 24 * time.Hour
	fetchLimit = 100
)

// KnownNumbersFunc returns the task numbers that currently exist locally.
type KnownNumbersFunc func(ctx context.Context) (map[int]bool, error)

// Watcher implements source.Source by scanning the inbox for messages
// that mention tasks.
type Watcher struct {
	inbox    *Inbox
	username string
	known    KnownNumbersFunc

	mu      sync.Mutex
	lastUID uint32
}

// NewWatcher creates an inbox watcher. known may be nil, in which case
// every referenced number produces a notification.
func NewWatcher(host, port, username, password string, useTLS bool, known KnownNumbersFunc) *Watcher {
	return &Watcher{
		inbox:    NewInbox(host, port, username, password, useTLS),
		username: username,
		known:    known,
	}
}

// Type returns the source type identifier for the inbox watcher.
func (w *Watcher) Type() source.SourceType {
	return source.SourceTypeMail
}

// ValidateConnection logs in and reports the size of the inbox.
func (w *Watcher) ValidateConnection(ctx context.Context) (string, error) {
	n, err := w.inbox.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("validating mail connection: %w", err)
	}
	return fmt.Sprintf("%s (%d mensagens)", w.username, n), nil
}

// Fetch reads messages that arrived since the previous call and turns
// each task reference into a notification.
func (w *Watcher) Fetch(ctx context.Context) (*source.Update, error) {
	w.mu.Lock()
	after := w.lastUID
	w.mu.Unlock()

	messages, err := w.inbox.Recent(ctx, time.Now().Add(-lookback), after, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching mail: %w", err)
	}

	var known map[int]bool
	if w.known != nil {
		if known, err = w.known(ctx); err != nil {
			return nil, fmt.Errorf("loading task numbers: %w", err)
		}
	}

	update := &source.Update{}
	maxUID := after
	for _, m := range messages {
		update.Notifications = append(update.Notifications, MessageNotifications(m, known)...)
		maxUID = max(maxUID, m.Envelope.UID)
	}

	w.mu.Lock()
	w.lastUID = max(w.lastUID, maxUID)
	w.mu.Unlock()

	return update, nil
}

// MessageNotifications builds one task notification per task number the
// message mentions. Refs are stable per message and task so a message
// seen twice does not notify twice.
func MessageNotifications(m Message, known map[int]bool) []model.Notification {
	numbers := crossref.MatchTaskRefs(m.Envelope.Subject, m.Text(), known)
	if len(numbers) == 0 {
		return nil
	}

	msgKey := m.Envelope.MessageID
	if msgKey == "" {
		msgKey = "uid-" + strconv.FormatUint(uint64(m.Envelope.UID), 10)
	}
	from := strings.TrimSpace(m.Envelope.From)
	if from == "" {
		from = "desconhecido"
	}
	subject := strings.TrimSpace(m.Envelope.Subject)
	if subject == "" {
		subject = "(sem assunto)"
	}

	out := make([]model.Notification, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, model.Notification{
			Title:    fmt.Sprintf("E-mail sobre a tarefa %d", n),
			Message:  fmt.Sprintf("%s: %s", from, subject),
			Type:     model.NotificationInfo,
			Category: model.CategoryTask,
			Ref:      fmt.Sprintf("mail:%s:%d", msgKey, n),
		})
	}
	return out
}
