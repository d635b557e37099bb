// Package assistant implements the schedule chat assistant.
package assistant

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
)

// Apology replaces the reply when the responder fails.
const Apology = "Desculpe, ocorreu um erro ao processar sua mensagem. Tente novamente."

// ModeStandard is the chat mode until a responder reports another one.
const ModeStandard = "standard"

// ErrEmptyMessage is returned for blank input.
var ErrEmptyMessage = errors.New("empty message")

// Responder produces a reply and the chat mode it answered in. An empty
// mode leaves the current one unchanged.
type Responder interface {
	Respond(ctx context.Context, message string) (reply string, mode string, err error)
}

// StreamChunk is a piece of the reply delivered to the TUI.
type StreamChunk struct {
	Text string
	Done bool
}

// Assistant pairs a conversation with a responder.
type Assistant struct {
	conv      *Conversation
	responder Responder

	mu   sync.Mutex
	mode string
}

// New creates an assistant answering through r.
func New(r Responder) *Assistant {
	return &Assistant{conv: NewConversation(), responder: r, mode: ModeStandard}
}

// Ask records the user's message, asks the responder and records the
// reply. Responder failures are logged and answered with Apology.
func (a *Assistant) Ask(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	a.conv.Add(RoleUser, text)

	reply, mode, err := a.responder.Respond(ctx, text)
	if err != nil {
		log.Printf("assistant: %v", err)
		return a.conv.Add(RoleBot, Apology), nil
	}
	if mode != "" {
		a.mu.Lock()
		a.mode = mode
		a.mu.Unlock()
	}
	return a.conv.Add(RoleBot, reply), nil
}

// SendMessage is Ask delivered on a channel, for use from a tea.Cmd.
func (a *Assistant) SendMessage(ctx context.Context, text string) (<-chan StreamChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	ch := make(chan StreamChunk, 1)
	go func() {
		defer close(ch)
		m, _ := a.Ask(ctx, text)
		ch <- StreamChunk{Text: m.Content, Done: true}
	}()
	return ch, nil
}

// Messages returns the chat history.
func (a *Assistant) Messages() []Message { return a.conv.Messages() }

// Mode returns the last chat mode reported by the responder.
func (a *Assistant) Mode() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Reset clears the history back to the greeting.
func (a *Assistant) Reset() {
	a.conv.Reset()
	a.mu.Lock()
	a.mode = ModeStandard
	a.mu.Unlock()
}
