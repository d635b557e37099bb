package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
)

// execer is satisfied by both *sqlx.DB and *sqlx.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// normalizeTask enforces the task invariants before any write.
func normalizeTask(t *model.Task) {
	t.Percent = schedule.ClampPercent(t.Percent)
	if t.DurationDays < 1 {
		t.DurationDays = 1
	}
	t.Name = strings.TrimSpace(t.Name)
	t.ResponsibleName = strings.TrimSpace(t.ResponsibleName)
}

// UpsertTasks inserts or updates a batch of tasks of one spreadsheet, keyed
// by row number, then refreshes the spreadsheet counters. Existing tasks
// keep their IDs.
func (s *SQLiteStore) UpsertTasks(ctx context.Context, sheetID string, tasks []model.Task) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO tasks (
			id, sheet_id, number, classification, category, phase, condition,
			name, duration_days, percent, start_date, end_date, deadline,
			delay_days, responsible_id, responsible_name, how_to, reference_url,
			project_name, created_at, updated_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?
		)
		ON CONFLICT(sheet_id, number) DO UPDATE SET
			classification = excluded.classification,
			category = excluded.category,
			phase = excluded.phase,
			condition = excluded.condition,
			name = excluded.name,
			duration_days = excluded.duration_days,
			percent = excluded.percent,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			deadline = excluded.deadline,
			delay_days = excluded.delay_days,
			responsible_id = excluded.responsible_id,
			responsible_name = excluded.responsible_name,
			how_to = excluded.how_to,
			reference_url = excluded.reference_url,
			project_name = excluded.project_name,
			updated_at = excluded.updated_at`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, t := range tasks {
		normalizeTask(&t)
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		_, err = stmt.ExecContext(ctx,
			t.ID, sheetID, t.Number, t.Classification, t.Category, t.Phase, t.Condition,
			t.Name, t.DurationDays, t.Percent, t.StartDate, t.EndDate, t.Deadline,
			t.DelayDays, t.ResponsibleID, t.ResponsibleName, t.HowTo, t.ReferenceURL,
			t.ProjectName, now, now,
		)
		if err != nil {
			return fmt.Errorf("upserting task %d of %s: %w", t.Number, sheetID, err)
		}
	}

	if err := refreshCounts(ctx, tx, sheetID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetTasks retrieves tasks matching the provided filter options.
func (s *SQLiteStore) GetTasks(
	ctx context.Context,
	opts TaskFilter,
) ([]model.Task, error) {
	var conditions []string
	var args []any

	if opts.SheetID != nil {
		conditions = append(conditions, "sheet_id = ?")
		args = append(args, *opts.SheetID)
	}
	if opts.Responsible != nil {
		conditions = append(conditions, "LOWER(responsible_name) = LOWER(?)")
		args = append(args, strings.TrimSpace(*opts.Responsible))
	}
	if opts.Query != nil && *opts.Query != "" {
		conditions = append(conditions, "(name LIKE ? OR how_to LIKE ?)")
		q := "%" + *opts.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT * FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "number"
	allowedSorts := map[string]bool{
		"number":     true,
		"name":       true,
		"percent":    true,
		"start_date": true,
		"end_date":   true,
		"deadline":   true,
		"updated_at": true,
	}
	if allowedSorts[opts.SortBy] {
		sortBy = opts.SortBy
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, sheet_id, number", sortBy, direction)

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	} else if opts.Offset > 0 {
		// SQLite only accepts OFFSET after a LIMIT.
		query += " LIMIT -1"
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}

	var tasks []model.Task
	if err := s.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return tasks, nil
}

// GetTaskByID retrieves a single task by its ID.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	return getTask(ctx, s.db, id)
}

func getTask(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Task, error) {
	var task model.Task
	if err := sqlx.GetContext(ctx, q, &task, "SELECT * FROM tasks WHERE id = ?", id); err != nil {
		return nil, notFound(err, "task", id)
	}
	return &task, nil
}

// GetTaskByNumber retrieves a task by its row number within a spreadsheet.
func (s *SQLiteStore) GetTaskByNumber(
	ctx context.Context,
	sheetID string,
	number int,
) (*model.Task, error) {
	var task model.Task
	err := s.db.GetContext(ctx, &task,
		"SELECT * FROM tasks WHERE sheet_id = ? AND number = ?", sheetID, number)
	if err != nil {
		return nil, notFound(err, "task", fmt.Sprintf("%s#%d", sheetID, number))
	}
	return &task, nil
}

// CreateTask inserts a new task. A zero Number is assigned the next free
// row number of the spreadsheet.
func (s *SQLiteStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	normalizeTask(&task)
	if task.Name == "" {
		return nil, fmt.Errorf("%w: task name must not be empty", ErrInvalid)
	}
	if task.SheetID == "" {
		return nil, fmt.Errorf("%w: task must belong to a spreadsheet", ErrInvalid)
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if task.Number == 0 {
		var maxNumber int
		err := tx.GetContext(ctx, &maxNumber,
			"SELECT COALESCE(MAX(number), 0) FROM tasks WHERE sheet_id = ?", task.SheetID)
		if err != nil {
			return nil, fmt.Errorf("getting max task number: %w", err)
		}
		task.Number = maxNumber + 1
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO tasks (
			id, sheet_id, number, classification, category, phase, condition,
			name, duration_days, percent, start_date, end_date, deadline,
			delay_days, responsible_id, responsible_name, how_to, reference_url,
			project_name, created_at, updated_at
		) VALUES (
			:id, :sheet_id, :number, :classification, :category, :phase, :condition,
			:name, :duration_days, :percent, :start_date, :end_date, :deadline,
			:delay_days, :responsible_id, :responsible_name, :how_to, :reference_url,
			:project_name, :created_at, :updated_at
		)`, task)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	if err := refreshCounts(ctx, tx, task.SheetID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing task: %w", err)
	}
	return &task, nil
}

// UpdateTask overwrites the editable fields of an existing task.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.Task) error {
	normalizeTask(&task)
	if task.Name == "" {
		return fmt.Errorf("%w: task name must not be empty", ErrInvalid)
	}
	task.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.NamedExecContext(ctx, `
		UPDATE tasks SET
			classification = :classification, category = :category,
			phase = :phase, condition = :condition, name = :name,
			duration_days = :duration_days, percent = :percent,
			start_date = :start_date, end_date = :end_date, deadline = :deadline,
			delay_days = :delay_days, responsible_id = :responsible_id,
			responsible_name = :responsible_name, how_to = :how_to,
			reference_url = :reference_url, updated_at = :updated_at
		WHERE id = :id`, task)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}
	if err := mustAffect(result, "task", task.ID); err != nil {
		return err
	}

	if err := s.refreshCountsForTask(ctx, tx, task.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteTask removes a task by ID.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	if err := refreshCounts(ctx, tx, task.SheetID); err != nil {
		return err
	}
	return tx.Commit()
}

// StartTask stamps today's date as the start of a task that has none, and
// derives its end date from the duration when that is missing too. The
// percentage is left untouched.
func (s *SQLiteStore) StartTask(ctx context.Context, id string, now time.Time) (*model.Task, error) {
	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.StartDate != nil {
		return task, nil
	}

	start := schedule.StartOfDay(now)
	task.StartDate = &start
	if task.EndDate == nil {
		end := start.AddDate(0, 0, task.DurationDays-1)
		task.EndDate = &end
	}
	task.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		"UPDATE tasks SET start_date = ?, end_date = ?, updated_at = ? WHERE id = ?",
		task.StartDate, task.EndDate, task.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("starting task %s: %w", id, err)
	}
	return task, nil
}

// UnstartTask clears the start date of a task and resets its percentage.
// An end date derived by StartTask is cleared with it. Completed tasks
// cannot be unstarted.
func (s *SQLiteStore) UnstartTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.unstart(ctx, task)
}

// unstart writes the reset of task. The percent guard in the UPDATE keeps a
// concurrent completion from being undone after task was read.
func (s *SQLiteStore) unstart(ctx context.Context, task *model.Task) (*model.Task, error) {
	if task.Percent >= 100 {
		return nil, fmt.Errorf("unstarting task %s: %w", task.ID, ErrCompletedTask)
	}

	out := *task
	if derivedEnd(task) {
		out.EndDate = nil
	}
	out.StartDate = nil
	out.Percent = 0
	out.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET start_date = NULL, end_date = ?, percent = 0, updated_at = ?
		WHERE id = ? AND percent < 100`,
		out.EndDate, out.UpdatedAt, task.ID)
	if err != nil {
		return nil, fmt.Errorf("unstarting task %s: %w", task.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		if _, err := s.GetTaskByID(ctx, task.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unstarting task %s: %w", task.ID, ErrCompletedTask)
	}
	return &out, nil
}

// derivedEnd reports whether the end date of t is the one StartTask derives
// from its start and duration.
func derivedEnd(t *model.Task) bool {
	if t.StartDate == nil || t.EndDate == nil {
		return false
	}
	return t.EndDate.Equal(t.StartDate.AddDate(0, 0, max(t.DurationDays, 1)-1))
}

// SetTaskPercent updates the completion percentage, clamped to [0,100].
func (s *SQLiteStore) SetTaskPercent(ctx context.Context, id string, pct int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE tasks SET percent = ?, updated_at = ? WHERE id = ?",
		schedule.ClampPercent(pct), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("setting percent of task %s: %w", id, err)
	}
	if err := mustAffect(result, "task", id); err != nil {
		return err
	}
	if err := s.refreshCountsForTask(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) refreshCountsForTask(ctx context.Context, tx *sqlx.Tx, taskID string) error {
	var sheetID string
	if err := tx.GetContext(ctx, &sheetID, "SELECT sheet_id FROM tasks WHERE id = ?", taskID); err != nil {
		return notFound(err, "task", taskID)
	}
	return refreshCounts(ctx, tx, sheetID)
}
