package ai

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/assistant"
	"github.com/nhle/cronograma/internal/keys"
)

type echo struct {
	err error
}

func (e echo) Respond(_ context.Context, message string) (string, string, error) {
	if e.err != nil {
		return "", "", e.err
	}
	return "eco: " + message, "teste", nil
}

func typeText(m Model, s string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

// drain runs the reply commands until the reply is done.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg, ok := cmd().(ReplyMsg)
		require.True(t, ok)
		m, cmd = m.Update(msg)
	}
	require.False(t, m.streaming)
	return m
}

func TestPanel_AskAndAnswer(t *testing.T) {
	a := assistant.New(echo{})
	m := New(a, keys.DefaultKeyMap(), 100, 30)

	m = typeText(m, "prazos")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.streaming)
	assert.Contains(t, m.renderConversation(), "prazos")

	_, closing := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, closing, "esc is ignored while answering")

	m = drain(t, m, cmd)
	msgs := a.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "eco: prazos", msgs[2].Content)
	assert.Contains(t, m.View(), "modo teste")
	assert.Empty(t, m.input.Value())

	_, closing = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, closing)
	assert.Equal(t, CloseMsg{}, closing())
}

func TestPanel_ResponderFailureApologizes(t *testing.T) {
	a := assistant.New(echo{err: errors.New("backend down")})
	m := New(a, keys.DefaultKeyMap(), 100, 30)

	m = typeText(m, "oi")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, m, cmd)

	msgs := a.Messages()
	assert.Equal(t, assistant.Apology, msgs[len(msgs)-1].Content)
}

func TestPanel_BlankInputAndReset(t *testing.T) {
	a := assistant.New(echo{})
	m := New(a, keys.DefaultKeyMap(), 100, 30)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m = typeText(m, "x")
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, m, cmd)
	require.Len(t, a.Messages(), 3)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Len(t, a.Messages(), 1)
	assert.Equal(t, assistant.ModeStandard, a.Mode())
}
