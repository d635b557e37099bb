package assistant

import (
	"sync"
	"time"
)

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Greeting opens every conversation.
const Greeting = "Olá! Sou a Melora, sua assistente virtual do Cronograma Modular. Como posso ajudar você hoje?"

// maxMessages bounds the history, greeting included.
const maxMessages = 20

// Message is one entry of the chat history.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation keeps an ordered chat history that always starts with the
// greeting. When full, the oldest messages after the greeting are dropped.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
}

// NewConversation creates a conversation holding only the greeting.
func NewConversation() *Conversation {
	c := &Conversation{}
	c.Reset()
	return c
}

// Add appends a message, trimming the history when it exceeds the cap.
func (c *Conversation) Add(role Role, content string) Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := Message{Role: role, Content: content, Timestamp: time.Now()}
	c.messages = append(c.messages, m)

	if len(c.messages) > maxMessages {
		trimmed := make([]Message, 0, maxMessages)
		trimmed = append(trimmed, c.messages[0])
		excess := len(c.messages) - maxMessages
		trimmed = append(trimmed, c.messages[1+excess:]...)
		c.messages = trimmed
	}
	return m
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Reset drops everything but a fresh greeting.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = []Message{{Role: RoleBot, Content: Greeting, Timestamp: time.Now()}}
}

// Len returns the number of messages, greeting included.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}
