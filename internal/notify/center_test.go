package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/notify"
	"github.com/nhle/cronograma/tests/testutil"
)

type recordingSink struct {
	name string
	err  error

	mu   sync.Mutex
	sent []model.Notification
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestCenter_AddDeliversToEnabledSinks(t *testing.T) {
	ctx := context.Background()
	push := &recordingSink{name: "push"}
	mail := &recordingSink{name: "mail", err: errors.New("smtp down")}
	c := notify.NewCenter(testutil.NewTestStore(t),
		model.NotificationSettings{PushNotifications: true},
		notify.Sinks{Push: push, Email: mail})

	n, err := c.Add(ctx, model.Notification{Title: "Planilha importada", Type: model.NotificationSuccess})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, 1, push.count())
	assert.Equal(t, 0, mail.count())

	require.NoError(t, c.UpdateSettings(model.NotificationSettings{EmailNotifications: true}))
	_, err = c.Add(ctx, model.Notification{Title: "Outra"})
	require.NoError(t, err, "sink failures are not returned")
	assert.Equal(t, 1, push.count())
	assert.Equal(t, 1, mail.count())

	count, err := c.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCenter_AddOnceDeduplicatesByRef(t *testing.T) {
	ctx := context.Background()
	c := notify.NewCenter(testutil.NewTestStore(t), model.NotificationSettings{}, notify.Sinks{})

	_, added, err := c.AddOnce(ctx, model.Notification{Title: "Atrasada", Ref: "overdue:t1:2024-06-14"})
	require.NoError(t, err)
	assert.True(t, added)

	_, added, err = c.AddOnce(ctx, model.Notification{Title: "Atrasada", Ref: "overdue:t1:2024-06-14"})
	require.NoError(t, err)
	assert.False(t, added)

	_, added, err = c.AddOnce(ctx, model.Notification{Title: "Sem ref"})
	require.NoError(t, err)
	assert.True(t, added)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCenter_AddEventRespectsSetting(t *testing.T) {
	ctx := context.Background()
	c := notify.NewCenter(testutil.NewTestStore(t),
		model.NotificationSettings{EventNotifications: false}, notify.Sinks{})

	n, err := c.AddEvent(ctx, "Evento criado", "Reunião em 14/06")
	require.NoError(t, err)
	assert.Nil(t, n)

	var saved model.NotificationSettings
	c.OnSettingsChange = func(s model.NotificationSettings) error {
		saved = s
		return nil
	}
	require.NoError(t, c.UpdateSettings(model.NotificationSettings{EventNotifications: true}))
	assert.True(t, saved.EventNotifications)

	n, err = c.AddEvent(ctx, "Evento criado", "Reunião em 14/06")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, model.CategoryEvent, n.Category)
}

func TestCenter_ReadAndClear(t *testing.T) {
	ctx := context.Background()
	c := notify.NewCenter(testutil.NewTestStore(t), model.NotificationSettings{}, notify.Sinks{})

	a, err := c.Add(ctx, model.Notification{Title: "a"})
	require.NoError(t, err)
	b, err := c.Add(ctx, model.Notification{Title: "b"})
	require.NoError(t, err)
	_, err = c.Add(ctx, model.Notification{Title: "c"})
	require.NoError(t, err)

	require.NoError(t, c.MarkRead(ctx, a.ID))
	count, _ := c.UnreadCount(ctx)
	assert.Equal(t, 2, count)

	require.NoError(t, c.Clear(ctx, b.ID))
	list, _ := c.List(ctx)
	assert.Len(t, list, 2)

	require.NoError(t, c.MarkAllRead(ctx))
	count, _ = c.UnreadCount(ctx)
	assert.Zero(t, count)

	require.NoError(t, c.ClearAll(ctx))
	list, _ = c.List(ctx)
	assert.Empty(t, list)
}

func TestCenter_UpdateSettingsSaveError(t *testing.T) {
	c := notify.NewCenter(testutil.NewTestStore(t), model.NotificationSettings{}, notify.Sinks{})
	c.OnSettingsChange = func(model.NotificationSettings) error { return errors.New("read-only") }

	err := c.UpdateSettings(model.NotificationSettings{PushNotifications: true})
	assert.Error(t, err)
	assert.True(t, c.Settings().PushNotifications)
}

type fakeMailer struct {
	to      []string
	subject string
	body    string
}

func (m *fakeMailer) Send(_ context.Context, to []string, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return nil
}

func TestEmailSink(t *testing.T) {
	m := &fakeMailer{}
	s := notify.NewEmailSink(m, " ana@example.com, ,bruno@example.com ")

	require.NoError(t, s.Send(context.Background(), model.Notification{Title: "Tarefa 3 atrasada", Message: "Prazo 10/06"}))
	assert.Equal(t, []string{"ana@example.com", "bruno@example.com"}, m.to)
	assert.Equal(t, "[Cronograma] Tarefa 3 atrasada", m.subject)
	assert.Equal(t, "Prazo 10/06", m.body)

	empty := notify.NewEmailSink(m, "")
	assert.Error(t, empty.Send(context.Background(), model.Notification{Title: "x"}))
}
