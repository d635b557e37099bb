package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
)

// eventRow is the stored shape of a model.Event; dependencies are kept as
// a JSON array.
type eventRow struct {
	model.Event
	DependenciesJSON string `db:"dependencies"`
}

func toEventRow(e model.Event) (eventRow, error) {
	deps := e.Dependencies
	if deps == nil {
		deps = []string{}
	}
	raw, err := json.Marshal(deps)
	if err != nil {
		return eventRow{}, fmt.Errorf("marshaling dependencies for event %s: %w", e.ID, err)
	}
	return eventRow{Event: e, DependenciesJSON: string(raw)}, nil
}

func (r eventRow) toModel() (model.Event, error) {
	e := r.Event
	if r.DependenciesJSON != "" {
		if err := json.Unmarshal([]byte(r.DependenciesJSON), &e.Dependencies); err != nil {
			return model.Event{}, fmt.Errorf("unmarshaling dependencies for event %s: %w", e.ID, err)
		}
	}
	if len(e.Dependencies) == 0 {
		e.Dependencies = nil
	}
	return e, nil
}

func normalizeEvent(e *model.Event) {
	e.Title = strings.TrimSpace(e.Title)
	if e.DurationDays < 1 {
		e.DurationDays = 1
	}
	e.Progress = schedule.ClampPercent(e.Progress)
	if e.Type == "" {
		e.Type = model.EventOther
	}
	if e.Priority == "" {
		e.Priority = model.PriorityMedium
	}
}

// CreateEvent inserts a new calendar event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event model.Event) (*model.Event, error) {
	normalizeEvent(&event)
	if event.Title == "" {
		return nil, fmt.Errorf("%w: event title must not be empty", ErrInvalid)
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = time.Now().UTC()

	row, err := toEventRow(event)
	if err != nil {
		return nil, err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO events (
			id, title, date, time, type, description, duration_days,
			progress, priority, dependencies, task_id, created_at
		) VALUES (
			:id, :title, :date, :time, :type, :description, :duration_days,
			:progress, :priority, :dependencies, :task_id, :created_at
		)`, row)
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	return &event, nil
}

// UpdateEvent overwrites an existing calendar event.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, event model.Event) error {
	normalizeEvent(&event)
	if event.Title == "" {
		return fmt.Errorf("%w: event title must not be empty", ErrInvalid)
	}

	row, err := toEventRow(event)
	if err != nil {
		return err
	}

	result, err := s.db.NamedExecContext(ctx, `
		UPDATE events SET
			title = :title, date = :date, time = :time, type = :type,
			description = :description, duration_days = :duration_days,
			progress = :progress, priority = :priority,
			dependencies = :dependencies, task_id = :task_id
		WHERE id = :id`, row)
	if err != nil {
		return fmt.Errorf("updating event %s: %w", event.ID, err)
	}
	return mustAffect(result, "event", event.ID)
}

// DeleteEvent removes a calendar event by ID.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", id, err)
	}
	return mustAffect(result, "event", id)
}

// GetEvents returns every stored event ordered by date and time. Range
// selection is done by schedule.EventsInMonth and schedule.EventsOn.
func (s *SQLiteStore) GetEvents(ctx context.Context) ([]model.Event, error) {
	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM events ORDER BY date, time"); err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}

	events := make([]model.Event, 0, len(rows))
	for _, r := range rows {
		e, err := r.toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
