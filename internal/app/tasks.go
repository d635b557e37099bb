package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/store"
	"github.com/nhle/cronograma/internal/ui"
	"github.com/nhle/cronograma/internal/ui/taskform"
)

// RowWriter mirrors task changes to the backend.
type RowWriter interface {
	StartRow(ctx context.Context, sheetID string, number int) error
	SaveRow(ctx context.Context, sheetID string, t model.Task) error
	DeleteRow(ctx context.Context, sheetID string, number int) error
}

// taskDoneMsg reports the outcome of a task operation.
type taskDoneMsg struct {
	notice string
	err    error
}

// remoteSheet reports whether a sheet came from the backend. Sheets
// imported locally get a UUID; backend sheets keep the backend's id.
func remoteSheet(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err != nil
}

// handleTaskAction turns a view request into a store operation, or opens
// the view that collects more input.
func (m Model) handleTaskAction(msg ui.TaskActionMsg) (Model, tea.Cmd) {
	t := msg.Task
	switch msg.Action {
	case ui.ActionNew:
		m.openView(ViewTaskForm)
		m.taskForm.SetOptions(m.taskList.AllTasks(), m.members)
		cmd := m.taskForm.StartCreate(t, m.taskList.AllTasks())
		return m, cmd

	case ui.ActionEdit:
		m.openView(ViewTaskForm)
		m.taskForm.SetOptions(m.taskList.AllTasks(), m.members)
		cmd := m.taskForm.StartEdit(t)
		return m, cmd

	case ui.ActionDelete:
		if m.currentView == ViewDetail {
			m.currentView = ViewSchedule
			cmd := m.taskList.ConfirmDelete(t)
			return m, cmd
		}
		return m, m.runTask(func(ctx context.Context) (string, error) {
			return m.deleteTask(ctx, t)
		})

	case ui.ActionStart:
		return m, m.runTask(func(ctx context.Context) (string, error) {
			return m.startTask(ctx, t)
		})

	case ui.ActionUnstart:
		return m, m.runTask(func(ctx context.Context) (string, error) {
			return m.unstartTask(ctx, t)
		})

	case ui.ActionProgress:
		return m, m.runTask(func(ctx context.Context) (string, error) {
			return m.setPercent(ctx, t, t.Percent+ui.ProgressStep)
		})

	case ui.ActionRegress:
		return m, m.runTask(func(ctx context.Context) (string, error) {
			return m.setPercent(ctx, t, t.Percent-ui.ProgressStep)
		})
	}
	return m, nil
}

func (m Model) runTask(op func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		notice, err := op(context.Background())
		return taskDoneMsg{notice: notice, err: err}
	}
}

func (m Model) startTask(ctx context.Context, t model.Task) (string, error) {
	started, err := m.store.StartTask(ctx, t.ID, m.session.Now())
	if err != nil {
		return "", err
	}
	m.mirror(ctx, started.SheetID, func(w RowWriter) error {
		return w.StartRow(ctx, started.SheetID, started.Number)
	})
	return fmt.Sprintf("Tarefa #%d iniciada", started.Number), nil
}

func (m Model) unstartTask(ctx context.Context, t model.Task) (string, error) {
	reset, err := m.store.UnstartTask(ctx, t.ID)
	if errors.Is(err, store.ErrCompletedTask) {
		return "", fmt.Errorf("tarefa #%d já está concluída", t.Number)
	}
	if err != nil {
		return "", err
	}
	m.mirror(ctx, reset.SheetID, func(w RowWriter) error {
		return w.SaveRow(ctx, reset.SheetID, *reset)
	})
	return fmt.Sprintf("Tarefa #%d voltou para não iniciada", reset.Number), nil
}

func (m Model) setPercent(ctx context.Context, t model.Task, pct int) (string, error) {
	pct = schedule.ClampPercent(pct)
	if pct == t.Percent {
		return fmt.Sprintf("Tarefa #%d já está em %d%%", t.Number, pct), nil
	}
	if err := m.store.SetTaskPercent(ctx, t.ID, pct); err != nil {
		return "", err
	}
	t.Percent = pct
	m.mirror(ctx, t.SheetID, func(w RowWriter) error {
		return w.SaveRow(ctx, t.SheetID, t)
	})

	if pct == 100 {
		_, err := m.center.Add(ctx, model.Notification{
			Type:     model.NotificationSuccess,
			Category: model.CategoryTask,
			Title:    "Tarefa concluída",
			Message:  fmt.Sprintf("#%d %s", t.Number, t.Name),
		})
		if err != nil {
			log.Printf("recording completion of task %s: %v", t.ID, err)
		}
	}
	return fmt.Sprintf("Tarefa #%d em %d%%", t.Number, pct), nil
}

func (m Model) deleteTask(ctx context.Context, t model.Task) (string, error) {
	if err := m.store.DeleteTask(ctx, t.ID); err != nil {
		return "", err
	}
	m.mirror(ctx, t.SheetID, func(w RowWriter) error {
		return w.DeleteRow(ctx, t.SheetID, t.Number)
	})
	return fmt.Sprintf("Tarefa #%d excluída", t.Number), nil
}

func (m Model) saveTask(msg taskform.SubmittedMsg) tea.Cmd {
	return m.runTask(func(ctx context.Context) (string, error) {
		t := msg.Task
		if msg.IsNew {
			created, err := m.store.CreateTask(ctx, t)
			if err != nil {
				return "", err
			}
			remote := *created
			remote.Number = 0
			m.mirror(ctx, created.SheetID, func(w RowWriter) error {
				return w.SaveRow(ctx, created.SheetID, remote)
			})
			return fmt.Sprintf("Tarefa #%d criada", created.Number), nil
		}

		if err := m.store.UpdateTask(ctx, t); err != nil {
			return "", err
		}
		m.mirror(ctx, t.SheetID, func(w RowWriter) error {
			return w.SaveRow(ctx, t.SheetID, t)
		})
		return fmt.Sprintf("Tarefa #%d atualizada", t.Number), nil
	})
}

// mirror applies op to the backend when sheetID belongs to it. The local
// change stands even when the backend rejects it.
func (m Model) mirror(ctx context.Context, sheetID string, op func(RowWriter) error) {
	if m.rows == nil || !remoteSheet(sheetID) {
		return
	}
	if err := op(m.rows); err != nil {
		log.Printf("mirroring change to backend sheet %s: %v", sheetID, err)
	}
}
