package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
)

func newBackend(t *testing.T, routes map[string]http.HandlerFunc) *Adapter {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewAdapter(srv.URL, "tok", time.UTC)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestAdapter_Fetch(t *testing.T) {
	a := newBackend(t, map[string]http.HandlerFunc{
		"GET /arquivos_usuario": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `{"arquivos":[
				{"id": 12, "name": "Blister", "project": "Projeto X", "importedAt": "2024-06-01"},
				{"id": null, "name": "sem id"}
			]}`)
		},
		"GET /arquivo/12/dados": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `{"dados":[
				{"num": 1, "classe": "Design", "name": "Arte final", "duration": "5 dias",
				 "conclusion": 0.4, "start_date": "2024-06-03", "atraso": "2",
				 "responsavel": "Maria da Silva", "status": "A"},
				{"num": 2, "nome": "Prova", "duracao": 3, "conclusion": 100, "end_date": null},
				{"num": 3, "name": "   "},
				{"name": "sem número"}
			]}`)
		},
		"POST /api/team/info": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `{"employees":[
				{"user_id": 7, "first_name": "Ana", "last_name": "Souza", "email": "not-an-email",
				 "active": "1", "completed_tasks": 4, "team_name": "PCP",
				 "address": {"city": "Campinas", "country": "Brasil"}},
				{"user_id": 8, "email": "bruno@example.com", "active": 0}
			]}`)
		},
	})

	u, err := a.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, u.Sheets, 1)
	sheet := u.Sheets[0]
	assert.Equal(t, "12", sheet.Sheet.ID)
	assert.Equal(t, "Projeto X", sheet.Sheet.Project)
	assert.Equal(t, model.SheetOther, sheet.Sheet.Type)

	require.Len(t, sheet.Tasks, 2)
	first := sheet.Tasks[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "Design", first.Classification)
	assert.Equal(t, 5, first.DurationDays)
	assert.Equal(t, 40, first.Percent)
	assert.Equal(t, 2, first.DelayDays)
	assert.Equal(t, "A", first.Condition)
	assert.Equal(t, "Projeto X", first.ProjectName)
	require.NotNil(t, first.StartDate)
	assert.Equal(t, 3, first.StartDate.Day())

	second := sheet.Tasks[1]
	assert.Equal(t, "Prova", second.Name)
	assert.Equal(t, 3, second.DurationDays)
	assert.Equal(t, 100, second.Percent)
	assert.Nil(t, second.EndDate)

	require.Len(t, u.Members, 2)
	assert.Equal(t, "Ana Souza", u.Members[0].Name)
	assert.Empty(t, u.Members[0].Email)
	assert.Equal(t, "Campinas, Brasil", u.Members[0].Location)
	assert.Equal(t, model.MemberActive, u.Members[0].Status)
	assert.Equal(t, 4, u.Members[0].TasksCompleted)
	assert.Equal(t, "bruno@example.com", u.Members[1].Name)
	assert.Equal(t, model.MemberInactive, u.Members[1].Status)

	assert.Equal(t, 3, u.Skipped)
}

func TestAdapter_SaveRowSendsFraction(t *testing.T) {
	var got RowPayload
	a := newBackend(t, map[string]http.HandlerFunc{
		"PATCH /arquivo/12/linha/0": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		},
	})

	err := a.SaveRow(context.Background(), "12", model.Task{Name: "Nova", Percent: 35})
	require.NoError(t, err)
	assert.Equal(t, "Nova", got.Name)
	assert.InDelta(t, 0.35, got.Conclusion, 1e-9)
	assert.Equal(t, 1, got.Duration)

	err = a.SaveRow(context.Background(), "12", model.Task{Name: " "})
	assert.Error(t, err)
}

func TestAdapter_ProgressAndChat(t *testing.T) {
	a := newBackend(t, map[string]http.HandlerFunc{
		"GET /project/progress_tasks/all": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `{"progresso":{"total":10,"concluded":4,"in_progress":3,"not_started":2,"overdue":1}}`)
		},
		"POST /api/chat": func(w http.ResponseWriter, r *http.Request) {
			var req ChatRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			writeJSON(w, `{"resposta":"eco: `+req.Mensagem+`","modo_chat":"geral"}`)
		},
		"POST /arquivo/12/start/4": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})
	ctx := context.Background()

	p, err := a.Progress(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, ProgressDTO{Total: 10, Concluded: 4, InProgress: 3, NotStarted: 2, Overdue: 1}, p)

	reply, mode, err := a.Chat(ctx, "olá")
	require.NoError(t, err)
	assert.Equal(t, "eco: olá", reply)
	assert.Equal(t, "geral", mode)

	_, _, err = a.Chat(ctx, "   ")
	assert.Error(t, err)

	assert.NoError(t, a.StartRow(ctx, "12", 4))
}
