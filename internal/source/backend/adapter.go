package backend

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/source"
)

// Adapter implements source.Source for the schedule backend and exposes
// the row operations the backend supports.
type Adapter struct {
	client *Client
	loc    *time.Location
}

// NewAdapter creates a backend adapter. Dates without a zone are read in loc.
func NewAdapter(baseURL, token string, loc *time.Location) *Adapter {
	if loc == nil {
		loc = time.Local
	}
	return &Adapter{client: NewClient(baseURL, token), loc: loc}
}

// Type returns the source type identifier for the backend.
func (a *Adapter) Type() source.SourceType {
	return source.SourceTypeBackend
}

// ValidateConnection lists the user's spreadsheets as a connectivity check.
func (a *Adapter) ValidateConnection(ctx context.Context) (string, error) {
	var resp FilesResponse
	if err := a.client.Get(ctx, "/arquivos_usuario", &resp); err != nil {
		return "", fmt.Errorf("validating backend connection: %w", err)
	}
	return fmt.Sprintf("%d spreadsheet(s) available", len(resp.Arquivos)), nil
}

// Fetch downloads every spreadsheet with its rows and the team roster.
// Invalid records are skipped and counted.
func (a *Adapter) Fetch(ctx context.Context) (*source.Update, error) {
	var files FilesResponse
	if err := a.client.Get(ctx, "/arquivos_usuario", &files); err != nil {
		return nil, fmt.Errorf("listing backend spreadsheets: %w", err)
	}

	update := &source.Update{}
	for _, f := range files.Arquivos {
		sheet, err := FileToSheet(f, a.loc)
		if err != nil {
			log.Printf("backend: skipping file: %v", err)
			update.Skipped++
			continue
		}

		tasks, skipped, err := a.Rows(ctx, sheet.ID)
		if err != nil {
			return nil, err
		}
		update.Skipped += skipped
		for i := range tasks {
			if tasks[i].ProjectName == "" {
				tasks[i].ProjectName = sheet.Project
			}
		}
		update.Sheets = append(update.Sheets, source.SheetUpdate{Sheet: sheet, Tasks: tasks})
	}

	members, skipped, err := a.Team(ctx)
	if err != nil {
		log.Printf("backend: team roster unavailable: %v", err)
	}
	update.Members = members
	update.Skipped += skipped

	return update, nil
}

// Rows downloads and converts the rows of one spreadsheet. It returns the
// number of rows rejected by validation.
func (a *Adapter) Rows(ctx context.Context, sheetID string) ([]model.Task, int, error) {
	var resp RowsResponse
	path := "/arquivo/" + url.PathEscape(sheetID) + "/dados"
	if err := a.client.Get(ctx, path, &resp); err != nil {
		return nil, 0, fmt.Errorf("fetching rows of %s: %w", sheetID, err)
	}

	tasks := make([]model.Task, 0, len(resp.Dados))
	skipped := 0
	for _, row := range resp.Dados {
		t, err := RowToTask(row, sheetID, a.loc)
		if err != nil {
			skipped++
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, skipped, nil
}

// Team downloads the team roster.
func (a *Adapter) Team(ctx context.Context) ([]model.TeamMember, int, error) {
	var resp TeamResponse
	if err := a.client.Post(ctx, "/api/team/info", struct{}{}, &resp); err != nil {
		return nil, 0, fmt.Errorf("fetching team: %w", err)
	}

	members := make([]model.TeamMember, 0, len(resp.Employees))
	skipped := 0
	for _, e := range resp.Employees {
		m, err := EmployeeToMember(e)
		if err != nil {
			skipped++
			continue
		}
		members = append(members, m)
	}
	return members, skipped, nil
}

// StartRow asks the backend to start a row.
func (a *Adapter) StartRow(ctx context.Context, sheetID string, number int) error {
	path := fmt.Sprintf("/arquivo/%s/start/%d", url.PathEscape(sheetID), number)
	if err := a.client.Post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("starting row %d of %s: %w", number, sheetID, err)
	}
	return nil
}

// SaveRow creates (Number 0) or updates a row.
func (a *Adapter) SaveRow(ctx context.Context, sheetID string, t model.Task) error {
	payload, err := TaskToPayload(t)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/arquivo/%s/linha/%d", url.PathEscape(sheetID), payload.Num)
	if err := a.client.Patch(ctx, path, payload, nil); err != nil {
		return fmt.Errorf("saving row %d of %s: %w", t.Number, sheetID, err)
	}
	return nil
}

// DeleteRow removes a row.
func (a *Adapter) DeleteRow(ctx context.Context, sheetID string, number int) error {
	path := fmt.Sprintf("/arquivo/%s/linha/%d", url.PathEscape(sheetID), number)
	if err := a.client.Delete(ctx, path); err != nil {
		return fmt.Errorf("deleting row %d of %s: %w", number, sheetID, err)
	}
	return nil
}

// Progress returns the backend's counters for one spreadsheet, or for all
// of them when sheetID is empty.
func (a *Adapter) Progress(ctx context.Context, sheetID string) (ProgressDTO, error) {
	id := strings.TrimSpace(sheetID)
	if id == "" {
		id = "all"
	}
	var resp ProgressResponse
	if err := a.client.Get(ctx, "/project/progress_tasks/"+url.PathEscape(id), &resp); err != nil {
		return ProgressDTO{}, fmt.Errorf("fetching progress of %s: %w", id, err)
	}
	if err := validate.Struct(resp.Progresso); err != nil {
		return ProgressDTO{}, fmt.Errorf("invalid progress of %s: %w", id, err)
	}
	return resp.Progresso, nil
}

// Chat sends a message to the backend assistant and returns its reply and
// the chat mode it reports.
func (a *Adapter) Chat(ctx context.Context, message string) (string, string, error) {
	req := ChatRequest{Mensagem: strings.TrimSpace(message)}
	if err := validate.Struct(req); err != nil {
		return "", "", fmt.Errorf("empty chat message: %w", err)
	}
	var resp ChatResponse
	if err := a.client.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", "", fmt.Errorf("chatting with backend: %w", err)
	}
	return resp.Resposta, resp.ModoChat, nil
}
