package mail

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	gomail "github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
)

func TestCompose_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	date := time.Date(2024, 6, 14, 9, 30, 0, 0, time.UTC)
	err := Compose(&buf, "pcp@example.com", []string{"ana@example.com", "bruno@example.com"},
		"Tarefas atrasadas: 3", "Olá, equipe.\nHá 3 tarefas atrasadas.", date)
	require.NoError(t, err)

	mr, err := gomail.CreateReader(&buf)
	require.NoError(t, err)
	defer mr.Close()

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Tarefas atrasadas: 3", subject)

	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 2)
	assert.Equal(t, "bruno@example.com", to[1].Address)

	got, err := mr.Header.Date()
	require.NoError(t, err)
	assert.True(t, got.Equal(date))

	id, err := mr.Header.MessageID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	part, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Equal(t, "Olá, equipe.\r\nHá 3 tarefas atrasadas.", string(body), "line breaks go out as CRLF")
}

func TestReadBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Compose(&buf, "a@example.com", []string{"b@example.com"},
		"x", "corpo da #4", time.Now()))

	text, html := readBody(buf.Bytes())
	assert.Equal(t, "corpo da #4", text)
	assert.Empty(t, html)
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<p>Tarefa 12 &amp; 13</p><div>ok<br>fim</div>")
	assert.Equal(t, "Tarefa 12 & 13\nok\nfim", got)
	assert.Equal(t, "a b", stripHTML("a&nbsp;b"))
	assert.Empty(t, stripHTML(""))
}

func TestMessageNotifications(t *testing.T) {
	m := Message{
		Envelope: Envelope{MessageID: "abc@host", Subject: "Re: Tarefa 12", From: "Maria", UID: 7},
		HTMLBody: "<p>ver também a #14</p>",
	}

	got := MessageNotifications(m, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "E-mail sobre a tarefa 12", got[0].Title)
	assert.Equal(t, "Maria: Re: Tarefa 12", got[0].Message)
	assert.Equal(t, model.CategoryTask, got[0].Category)
	assert.Equal(t, "mail:abc@host:12", got[0].Ref)
	assert.Equal(t, "mail:abc@host:14", got[1].Ref)

	filtered := MessageNotifications(m, map[int]bool{14: true})
	require.Len(t, filtered, 1)
	assert.Equal(t, "E-mail sobre a tarefa 14", filtered[0].Title)

	m.Envelope.MessageID = ""
	m.Envelope.From = ""
	m.HTMLBody = ""
	got = MessageNotifications(m, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "mail:uid-7:12", got[0].Ref)
	assert.True(t, strings.HasPrefix(got[0].Message, "desconhecido:"))

	assert.Nil(t, MessageNotifications(Message{Envelope: Envelope{Subject: "almoço"}}, nil))
}

func TestNewerThan(t *testing.T) {
	all := []imap.UID{3, 5, 8, 9, 12}
	assert.Equal(t, []imap.UID{8, 9, 12}, newerThan(all, 5, 0))
	assert.Equal(t, []imap.UID{9, 12}, newerThan(all, 5, 2))
	assert.Empty(t, newerThan(all, 12, 10))
}
