package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
)

func TestTelegramSink_Send(t *testing.T) {
	var gotChat, gotText, gotMode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":     true,
				"result": map[string]any{"id": 1, "is_bot": true, "first_name": "cronograma", "username": "cronograma_bot"},
			})
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			gotChat = r.PostForm.Get("chat_id")
			gotText = r.PostForm.Get("text")
			gotMode = r.PostForm.Get("parse_mode")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":     true,
				"result": map[string]any{"message_id": 10, "date": 0, "chat": map[string]any{"id": 42, "type": "private"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sink, err := newTelegramSink("123:abc", 42, srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	err = sink.Send(context.Background(), model.Notification{
		Title:   "Tarefa 4 <atrasada>",
		Message: "Prazo & entrega",
		Type:    model.NotificationWarning,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", gotChat)
	assert.Equal(t, "HTML", gotMode)
	assert.Equal(t, "⚠️ <b>Tarefa 4 &lt;atrasada&gt;</b>\nPrazo &amp; entrega", gotText)
}

func TestNewTelegramSink_RequiresChat(t *testing.T) {
	_, err := newTelegramSink("123:abc", 0, "http://unused/bot%s/%s")
	assert.Error(t, err)
}
