package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/cronograma/internal/model"
)

// SaveSpreadsheet inserts a spreadsheet or updates the one with the same ID.
// Row counters are left alone on update; see RefreshSpreadsheetCounts.
func (s *SQLiteStore) SaveSpreadsheet(
	ctx context.Context,
	sheet model.Spreadsheet,
) (*model.Spreadsheet, error) {
	if strings.TrimSpace(sheet.Name) == "" {
		return nil, fmt.Errorf("%w: spreadsheet name must not be empty", ErrInvalid)
	}
	if sheet.ID == "" {
		sheet.ID = uuid.New().String()
	}
	if sheet.Type == "" {
		sheet.Type = model.SheetOther
	}
	if sheet.ImportedAt.IsZero() {
		sheet.ImportedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spreadsheets (id, name, project, type, imported_at, total_rows, completed_rows)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			project = excluded.project,
			type = excluded.type,
			imported_at = excluded.imported_at`,
		sheet.ID, sheet.Name, sheet.Project, sheet.Type, sheet.ImportedAt,
		sheet.TotalRows, sheet.CompletedRows,
	)
	if err != nil {
		return nil, fmt.Errorf("saving spreadsheet %s: %w", sheet.ID, err)
	}
	return &sheet, nil
}

// GetSpreadsheets lists spreadsheets, most recently imported first.
func (s *SQLiteStore) GetSpreadsheets(ctx context.Context) ([]model.Spreadsheet, error) {
	var sheets []model.Spreadsheet
	err := s.db.SelectContext(ctx, &sheets,
		"SELECT * FROM spreadsheets ORDER BY imported_at DESC, name")
	if err != nil {
		return nil, fmt.Errorf("querying spreadsheets: %w", err)
	}
	return sheets, nil
}

// GetSpreadsheetByID retrieves a single spreadsheet.
func (s *SQLiteStore) GetSpreadsheetByID(
	ctx context.Context,
	id string,
) (*model.Spreadsheet, error) {
	var sheet model.Spreadsheet
	if err := s.db.GetContext(ctx, &sheet, "SELECT * FROM spreadsheets WHERE id = ?", id); err != nil {
		return nil, notFound(err, "spreadsheet", id)
	}
	return &sheet, nil
}

// DeleteSpreadsheet removes a spreadsheet and, by cascade, its tasks.
func (s *SQLiteStore) DeleteSpreadsheet(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM spreadsheets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting spreadsheet %s: %w", id, err)
	}
	return mustAffect(result, "spreadsheet", id)
}

// RefreshSpreadsheetCounts recomputes the total and completed row counters
// of a spreadsheet from its tasks.
func (s *SQLiteStore) RefreshSpreadsheetCounts(ctx context.Context, id string) error {
	return refreshCounts(ctx, s.db, id)
}

func refreshCounts(ctx context.Context, db execer, id string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE spreadsheets SET
			total_rows = (SELECT COUNT(*) FROM tasks WHERE sheet_id = ?),
			completed_rows = (SELECT COUNT(*) FROM tasks WHERE sheet_id = ? AND percent >= 100)
		WHERE id = ?`, id, id, id)
	if err != nil {
		return fmt.Errorf("refreshing counts for spreadsheet %s: %w", id, err)
	}
	return nil
}
