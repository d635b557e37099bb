package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/cronograma/internal/model"
)

// AuthError indicates that authentication has failed or expired for a source.
// It is returned by source clients when a 401 response is received.
type AuthError struct {
	SourceType SourceType
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.SourceType, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// SourceType identifies the kind of background feed.
type SourceType string

const (
	// SourceTypeBackend is the REST backend that owns shared schedules.
	SourceTypeBackend SourceType = "backend"
	// SourceTypeMail is the IMAP inbox watcher.
	SourceTypeMail SourceType = "mail"
)

// SheetUpdate is one spreadsheet and its full task list as seen remotely.
type SheetUpdate struct {
	Sheet model.Spreadsheet
	Tasks []model.Task
}

// Update is everything a source delivered in one poll. Sources fill only
// the parts they know about.
type Update struct {
	Sheets        []SheetUpdate
	Members       []model.TeamMember
	Notifications []model.Notification

	// Skipped counts remote records rejected by validation.
	Skipped int
}

// IsEmpty reports whether the update carries nothing to apply.
func (u *Update) IsEmpty() bool {
	return u == nil ||
		(len(u.Sheets) == 0 && len(u.Members) == 0 && len(u.Notifications) == 0)
}

// Source defines the contract that every background feed implements.
type Source interface {
	// Type returns the source type identifier.
	Type() SourceType

	// ValidateConnection verifies credentials and connectivity.
	// Returns a human-readable status message on success.
	ValidateConnection(ctx context.Context) (string, error)

	// Fetch retrieves what changed remotely since the source was created
	// or last fetched.
	Fetch(ctx context.Context) (*Update, error)
}
