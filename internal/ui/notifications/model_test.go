package notifications

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/notify"
	"github.com/nhle/cronograma/tests/testutil"
)

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	m, _ = m.Update(m.Load()())
	return m
}

func TestNotifications_ReadAndClear(t *testing.T) {
	st := testutil.NewTestStore(t)
	center := notify.NewCenter(st, model.NotificationSettings{}, notify.Sinks{})
	ctx := context.Background()
	for _, title := range []string{"Primeira", "Segunda"} {
		_, err := center.Add(ctx, model.Notification{Title: title, Type: model.NotificationInfo})
		require.NoError(t, err)
	}

	m := New(center, keys.DefaultKeyMap(), 100, 30)
	m, _ = m.Update(m.Load()())
	require.Len(t, m.items, 2)
	assert.Contains(t, m.View(), "2 não lidas")

	m = press(t, m, "x")
	unread, err := center.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	m = press(t, m, "X")
	unread, err = center.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, unread)

	m = press(t, m, "d")
	assert.Len(t, m.items, 1)

	m = press(t, m, "D")
	assert.Empty(t, m.items)
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "agora", relativeTime(now.Add(-10*time.Second), now))
	assert.Equal(t, "5min", relativeTime(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h", relativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2d", relativeTime(now.Add(-48*time.Hour), now))
	assert.Equal(t, "01/02", relativeTime(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), now))
	assert.Empty(t, relativeTime(time.Time{}, now))
}
