package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/cronograma/internal/model"
)

var (
	// ErrNotFound is returned when a row addressed by ID does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCompletedTask is returned when unstarting a task that is already at 100%.
	ErrCompletedTask = errors.New("task is already completed")

	// ErrInvalid is returned when a row fails a field rule, such as a blank name.
	ErrInvalid = errors.New("invalid")
)

// TaskFilter controls filtering, sorting, and pagination for task queries.
type TaskFilter struct {
	SheetID     *string
	Responsible *string // case-insensitive exact match on responsible_name
	Query       *string // search name + how_to
	SortBy      string  // "number", "name", "percent", "start_date", "end_date", "deadline", "updated_at"
	SortDesc    bool
	Limit       int
	Offset      int
}

// Store defines the persistence interface for spreadsheets, tasks, calendar
// events, team members and notifications.
type Store interface {
	// === Spreadsheets ===

	SaveSpreadsheet(ctx context.Context, sheet model.Spreadsheet) (*model.Spreadsheet, error)
	GetSpreadsheets(ctx context.Context) ([]model.Spreadsheet, error)
	GetSpreadsheetByID(ctx context.Context, id string) (*model.Spreadsheet, error)
	DeleteSpreadsheet(ctx context.Context, id string) error
	RefreshSpreadsheetCounts(ctx context.Context, id string) error

	// === Tasks ===

	UpsertTasks(ctx context.Context, sheetID string, tasks []model.Task) error
	GetTasks(ctx context.Context, opts TaskFilter) ([]model.Task, error)
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	GetTaskByNumber(ctx context.Context, sheetID string, number int) (*model.Task, error)
	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) error
	DeleteTask(ctx context.Context, id string) error
	StartTask(ctx context.Context, id string, now time.Time) (*model.Task, error)
	UnstartTask(ctx context.Context, id string) (*model.Task, error)
	SetTaskPercent(ctx context.Context, id string, pct int) error

	// === Calendar events ===

	CreateEvent(ctx context.Context, event model.Event) (*model.Event, error)
	UpdateEvent(ctx context.Context, event model.Event) error
	DeleteEvent(ctx context.Context, id string) error
	GetEvents(ctx context.Context) ([]model.Event, error)

	// === Team members ===

	CreateMember(ctx context.Context, member model.TeamMember) (*model.TeamMember, error)
	UpdateMember(ctx context.Context, member model.TeamMember) error
	DeleteMember(ctx context.Context, id string) error
	GetMemberByID(ctx context.Context, id string) (*model.TeamMember, error)
	GetMembers(ctx context.Context) ([]model.TeamMember, error)
	UpsertMembers(ctx context.Context, members []model.TeamMember) error

	// === Notifications ===

	AddNotification(ctx context.Context, n model.Notification) (*model.Notification, error)
	GetNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	ClearNotifications(ctx context.Context) error
	UnreadNotificationCount(ctx context.Context) (int, error)
	NotificationRefExists(ctx context.Context, ref string) (bool, error)
}

var _ Store = (*SQLiteStore)(nil)
