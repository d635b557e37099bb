package sheet

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/nhle/cronograma/internal/model"
)

// Store is the persistence needed to record an import.
type Store interface {
	SaveSpreadsheet(ctx context.Context, sheet model.Spreadsheet) (*model.Spreadsheet, error)
	UpsertTasks(ctx context.Context, sheetID string, tasks []model.Task) error
	GetSpreadsheetByID(ctx context.Context, id string) (*model.Spreadsheet, error)
}

// ImportOptions describes the spreadsheet being imported.
type ImportOptions struct {
	// Name defaults to the file name without extension.
	Name     string
	Project  string
	Type     model.SheetType
	Location *time.Location
}

// Import parses r as the file named filename and stores it as a new
// spreadsheet. The returned spreadsheet carries refreshed row counters.
func Import(
	ctx context.Context,
	st Store,
	filename string,
	r io.Reader,
	opts ImportOptions,
) (*model.Spreadsheet, error) {
	ext := filepath.Ext(filename)
	tasks, err := ReadFrom(r, ext, opts.Location)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(filename), ext)
	}
	for i := range tasks {
		tasks[i].ProjectName = opts.Project
	}

	saved, err := st.SaveSpreadsheet(ctx, model.Spreadsheet{
		Name:    name,
		Project: opts.Project,
		Type:    opts.Type,
	})
	if err != nil {
		return nil, err
	}

	if err := st.UpsertTasks(ctx, saved.ID, tasks); err != nil {
		return nil, fmt.Errorf("storing tasks of %s: %w", name, err)
	}
	return st.GetSpreadsheetByID(ctx, saved.ID)
}
