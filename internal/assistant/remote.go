package assistant

import "context"

// Chatter is the backend chat endpoint.
type Chatter interface {
	Chat(ctx context.Context, message string) (string, string, error)
}

// RemoteResponder forwards messages to the backend assistant.
type RemoteResponder struct {
	chat Chatter
}

func NewRemoteResponder(c Chatter) *RemoteResponder {
	return &RemoteResponder{chat: c}
}

func (r *RemoteResponder) Respond(ctx context.Context, message string) (string, string, error) {
	return r.chat.Chat(ctx, message)
}
