package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/api"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/notify"
	"github.com/nhle/cronograma/internal/store"
	"github.com/nhle/cronograma/tests/testutil"
)

var fixedNow = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	store  *store.SQLiteStore
	router *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := testutil.NewTestStore(t)
	center := notify.NewCenter(st, model.NotificationSettings{EventNotifications: true}, notify.Sinks{})
	r := api.NewRouter(model.APIConfig{AllowedOrigins: []string{"*"}}, api.Deps{
		Store:    st,
		Notify:   center,
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	})
	return &harness{t: t, store: st, router: r}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) sheet(name string) *model.Spreadsheet {
	h.t.Helper()
	s, err := h.store.SaveSpreadsheet(context.Background(), model.Spreadsheet{Name: name, Project: "Alpha"})
	require.NoError(h.t, err)
	return s
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCreateTask_ValidationErrors(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/tasks", map[string]any{"percent": 150, "start_date": "10/03/2024"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, w)
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, "required", body.Fields["sheet_id"])
	assert.Equal(t, "required", body.Fields["name"])
	assert.Equal(t, "max", body.Fields["percent"])
	assert.Equal(t, "datetime", body.Fields["start_date"])
}

func TestTaskName_RejectsBlank(t *testing.T) {
	h := newHarness(t)
	sh := h.sheet("Embalagem")

	w := h.do(http.MethodPost, "/tasks", map[string]any{"sheet_id": sh.ID, "name": "   "})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, w)
	assert.Equal(t, "notblank", body.Fields["name"])

	w = h.do(http.MethodPost, "/tasks", map[string]any{"sheet_id": sh.ID, "name": "Arte final"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[model.Task](t, w)

	w = h.do(http.MethodPatch, "/tasks/"+task.ID, map[string]any{"name": " \t "})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body = decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, w)
	assert.Equal(t, "notblank", body.Fields["name"])

	w = h.do(http.MethodPost, "/members", map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = h.do(http.MethodPost, "/events", map[string]any{"title": " ", "date": "2024-03-12"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskLifecycle(t *testing.T) {
	h := newHarness(t)
	sh := h.sheet("Embalagem")

	w := h.do(http.MethodPost, "/tasks", map[string]any{
		"sheet_id": sh.ID, "name": "Arte final", "duration_days": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[model.Task](t, w)
	assert.Equal(t, 1, task.Number)
	assert.Equal(t, "Alpha", task.ProjectName)

	w = h.do(http.MethodPatch, "/tasks/"+task.ID, map[string]any{"percent": 101})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPatch, "/tasks/"+task.ID, map[string]any{"percent": 40})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 40, decode[model.Task](t, w).Percent)

	w = h.do(http.MethodPost, "/tasks/"+task.ID+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	started := decode[model.Task](t, w)
	require.NotNil(t, started.StartDate)
	assert.Equal(t, "2024-03-10", started.StartDate.Format("2006-01-02"))

	w = h.do(http.MethodPost, "/tasks/"+task.ID+"/unstart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	unstarted := decode[model.Task](t, w)
	assert.Nil(t, unstarted.StartDate)
	assert.Equal(t, 0, unstarted.Percent)

	h.do(http.MethodPatch, "/tasks/"+task.ID, map[string]any{"percent": 100})
	w = h.do(http.MethodPost, "/tasks/"+task.ID+"/unstart", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodDelete, "/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = h.do(http.MethodDelete, "/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSheetTasksAndCounters(t *testing.T) {
	h := newHarness(t)
	sh := h.sheet("Embalagem")
	ctx := context.Background()

	past := fixedNow.AddDate(0, 0, -10)
	end := past.AddDate(0, 0, 1)
	require.NoError(t, h.store.UpsertTasks(ctx, sh.ID, []model.Task{
		{Number: 1, Name: "Done", Percent: 100, ResponsibleName: "Maria da Silva Santos"},
		{Number: 2, Name: "Late", Percent: 20, StartDate: &past, EndDate: &end, DurationDays: 2, Condition: "A"},
		{Number: 3, Name: "Fresh", Condition: "Sempre"},
	}))

	w := h.do(http.MethodGet, "/sheets/"+sh.ID+"/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]map[string]any](t, w)
	require.Len(t, all, 3)
	assert.Equal(t, "completed", all[0]["status"])
	assert.Equal(t, "Maria S. S.", all[0]["responsible"])
	assert.Equal(t, "Not defined", all[1]["responsible"])

	w = h.do(http.MethodGet, "/sheets/"+sh.ID+"/tasks?status=overdue", nil)
	overdue := decode[[]map[string]any](t, w)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Late", overdue[0]["name"])

	w = h.do(http.MethodGet, "/sheets/"+sh.ID+"/tasks?condition=B", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 1, "only the Sempre task passes condition B")

	w = h.do(http.MethodGet, "/sheets/"+sh.ID+"/tasks?condition=A&condition=B", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	w = h.do(http.MethodGet, "/sheets/"+sh.ID+"/counters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	counters := decode[struct {
		Counters map[string]int `json:"counters"`
		Percent  int            `json:"percent"`
	}](t, w)
	assert.Equal(t, 3, counters.Counters["total"])
	assert.Equal(t, 1, counters.Counters["done"])
	assert.Equal(t, 1, counters.Counters["overdue"])
	assert.Equal(t, 33, counters.Percent)

	w = h.do(http.MethodGet, "/sheets/missing/tasks", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportAndExportSheet(t *testing.T) {
	h := newHarness(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "cronograma.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Número;Nome;% Concluído\n1;Arte final;100%\n2;Prova de cor;0\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("project", "Alpha"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sheets/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	sh := decode[model.Spreadsheet](t, w)
	assert.Equal(t, "cronograma", sh.Name)
	assert.Equal(t, 2, sh.TotalRows)
	assert.Equal(t, 1, sh.CompletedRows)

	w = h.do(http.MethodGet, "/progress", nil)
	assert.Equal(t, 50.0, decode[map[string]any](t, w)["percent"])

	w = h.do(http.MethodGet, "/sheets/"+sh.ID+"/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cronograma.csv")
	assert.Contains(t, w.Body.String(), "Prova de cor")

	w = h.do(http.MethodGet, "/sheets/"+sh.ID+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/notifications", nil)
	inbox := decode[struct {
		Notifications []model.Notification `json:"notifications"`
		Unread        int                  `json:"unread"`
	}](t, w)
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, "Planilha importada", inbox.Notifications[0].Title)

	w = h.do(http.MethodDelete, "/sheets/"+sh.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = h.do(http.MethodGet, "/sheets", nil)
	assert.Empty(t, decode[[]model.Spreadsheet](t, w))
}

func TestImportSheet_RejectsUnknownFormat(t *testing.T) {
	h := newHarness(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("hello"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sheets/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvents(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/events", map[string]any{"title": "Reunião", "type": "party"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, w).Fields
	assert.Equal(t, "required", fields["date"])
	assert.Equal(t, "oneof", fields["type"])

	w = h.do(http.MethodPost, "/events", map[string]any{
		"title": "Reunião", "date": "2024-03-20", "time": "14:30", "type": "meeting",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ev := decode[model.Event](t, w)

	w = h.do(http.MethodGet, "/events?month=2024-03&tasks=false", nil)
	assert.Len(t, decode[[]model.Event](t, w), 1)
	w = h.do(http.MethodGet, "/events?month=2024-04&tasks=false", nil)
	assert.Empty(t, decode[[]model.Event](t, w))
	w = h.do(http.MethodGet, "/events?month=march", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/notifications", nil)
	assert.Equal(t, 1.0, decode[map[string]any](t, w)["unread"])

	w = h.do(http.MethodDelete, "/events/"+ev.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEvents_IncludeTaskEntries(t *testing.T) {
	h := newHarness(t)
	sh := h.sheet("Embalagem")
	deadline := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, h.store.UpsertTasks(context.Background(), sh.ID, []model.Task{
		{Number: 7, Name: "Aprovação", Deadline: &deadline, DurationDays: 2},
	}))

	w := h.do(http.MethodGet, "/events?month=2024-03", nil)
	events := decode[[]model.Event](t, w)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventDeadline, events[0].Type)
	assert.True(t, strings.HasPrefix(events[0].Title, "Tarefa: 7"))
}

func TestMembersCRUD(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/members", map[string]any{"name": "Ana", "email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/members", map[string]any{"name": "Ana Lima", "email": "ana@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	m := decode[model.TeamMember](t, w)
	assert.Equal(t, model.MemberActive, m.Status)

	w = h.do(http.MethodPut, "/members/"+m.ID, map[string]any{"name": "Ana Lima", "status": "vacation"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.MemberVacation, decode[model.TeamMember](t, w).Status)

	w = h.do(http.MethodGet, "/members", nil)
	assert.Len(t, decode[[]model.TeamMember](t, w), 1)

	w = h.do(http.MethodDelete, "/members/"+m.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = h.do(http.MethodPut, "/members/"+m.ID, map[string]any{"name": "Ana Lima"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationsReadAndClear(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	n, err := h.store.AddNotification(ctx, model.Notification{Title: "a", Message: "b"})
	require.NoError(t, err)
	_, err = h.store.AddNotification(ctx, model.Notification{Title: "c", Message: "d"})
	require.NoError(t, err)

	w := h.do(http.MethodPost, "/notifications/"+n.ID+"/read", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	count, err := h.store.UnreadNotificationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	h.do(http.MethodPost, "/notifications/read-all", nil)
	count, _ = h.store.UnreadNotificationCount(ctx)
	assert.Equal(t, 0, count)

	w = h.do(http.MethodDelete, "/notifications/"+n.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = h.do(http.MethodDelete, "/notifications", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	list, err := h.store.GetNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTimeline(t *testing.T) {
	h := newHarness(t)
	sh := h.sheet("Embalagem")
	start := time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)
	require.NoError(t, h.store.UpsertTasks(context.Background(), sh.ID, []model.Task{
		{Number: 1, Name: "Arte", StartDate: &start, DurationDays: 2},
	}))

	w := h.do(http.MethodGet, "/timeline?date=2024-03-10&mode=week&zoom=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tl := decode[struct {
		Days []string `json:"days"`
		Bars []struct {
			Left  float64 `json:"left"`
			Width float64 `json:"width"`
		} `json:"bars"`
	}](t, w)
	require.Len(t, tl.Days, 15)
	assert.Equal(t, "2024-03-03", tl.Days[0])
	require.Len(t, tl.Bars, 1)
	assert.Equal(t, 500.0, tl.Bars[0].Left)
	assert.Equal(t, 200.0, tl.Bars[0].Width)

	w = h.do(http.MethodGet, "/timeline?mode=month&zoom=9", nil)
	require.Equal(t, http.StatusOK, w.Code)
	month := decode[map[string]any](t, w)
	assert.Len(t, month["days"], 31)
	assert.Equal(t, 3.0, month["zoom"])

	w = h.do(http.MethodGet, "/timeline?date=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sheets", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
