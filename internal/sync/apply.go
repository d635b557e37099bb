package sync

import (
	"context"
	"fmt"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/source"
)

// Store is the persistence an update is applied to.
type Store interface {
	SaveSpreadsheet(ctx context.Context, sheet model.Spreadsheet) (*model.Spreadsheet, error)
	UpsertTasks(ctx context.Context, sheetID string, tasks []model.Task) error
	UpsertMembers(ctx context.Context, members []model.TeamMember) error
}

// Notifier records notifications, skipping refs that were already seen.
type Notifier interface {
	AddOnce(ctx context.Context, n model.Notification) (*model.Notification, bool, error)
}

// Result summarizes what an applied update changed locally.
type Result struct {
	Sheets        int
	Tasks         int
	Members       int
	Notifications int
	Skipped       int
}

// Apply writes an update into the store. Sheets are saved before their
// tasks; notifications go through n so sinks see them.
func Apply(ctx context.Context, st Store, n Notifier, u *source.Update) (Result, error) {
	var res Result
	if u == nil {
		return res, nil
	}
	res.Skipped = u.Skipped

	for _, su := range u.Sheets {
		saved, err := st.SaveSpreadsheet(ctx, su.Sheet)
		if err != nil {
			return res, fmt.Errorf("saving spreadsheet %s: %w", su.Sheet.ID, err)
		}
		if err := st.UpsertTasks(ctx, saved.ID, su.Tasks); err != nil {
			return res, fmt.Errorf("saving tasks of %s: %w", saved.ID, err)
		}
		res.Sheets++
		res.Tasks += len(su.Tasks)
	}

	if len(u.Members) > 0 {
		if err := st.UpsertMembers(ctx, u.Members); err != nil {
			return res, fmt.Errorf("saving team members: %w", err)
		}
		res.Members = len(u.Members)
	}

	if n != nil {
		for _, note := range u.Notifications {
			_, added, err := n.AddOnce(ctx, note)
			if err != nil {
				return res, fmt.Errorf("saving notification %q: %w", note.Title, err)
			}
			if added {
				res.Notifications++
			}
		}
	}
	return res, nil
}
