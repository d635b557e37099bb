package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/sheet"
	"github.com/nhle/cronograma/internal/ui/command"
	"github.com/nhle/cronograma/internal/ui/sheets"
)

// importedMsg selects a sheet that was just imported from the palette.
type importedMsg struct {
	sheet *model.Spreadsheet
}

// executeCommand runs a palette command against the services.
func (m *Model) executeCommand(c command.Command) tea.Cmd {
	switch c.Name {
	case "import":
		if c.Arg(0) == "" {
			return m.fail(errors.New("uso: import <arquivo> [projeto]"))
		}
		project := strings.Join(c.Args[min(1, len(c.Args)):], " ")
		return m.importSheet(sheets.ExpandHome(c.Arg(0)), project)

	case "export":
		if c.Arg(0) == "" {
			return m.fail(errors.New("uso: export <arquivo.csv|xlsx>"))
		}
		return m.exportTasks(sheets.ExpandHome(c.Arg(0)))

	case "sheets":
		m.openView(ViewSheets)
		return m.sheetsView.Load(m.session.SheetID)

	case "sync":
		if len(m.poller.GetStatuses()) == 0 {
			return m.fail(errors.New("nenhuma fonte configurada"))
		}
		m.setNotice("Sincronizando...", nil)
		return m.poller.RefreshAll()

	case "sweep":
		runner := m.jobs
		return m.runTask(func(ctx context.Context) (string, error) {
			n, err := runner.SweepOverdue(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d tarefas atrasadas notificadas", n), nil
		})

	case "digest":
		runner := m.jobs
		return m.runTask(func(ctx context.Context) (string, error) {
			if _, err := runner.SendDigest(ctx); err != nil {
				return "", err
			}
			return "Resumo diário enviado", nil
		})

	case "gcal":
		return m.pushCalendar()

	case "clear":
		m.session.Filter = schedule.Filter{}
		m.ganttView.SetTasks(m.taskList.AllTasks())
		return m.taskList.Refresh()

	case "week", "month":
		m.session.SetMode(schedule.ViewMode(c.Name))
		m.ganttView.SetTasks(m.taskList.Tasks())
		return nil

	case "today":
		m.session.GoToday()
		m.ganttView.SetTasks(m.taskList.Tasks())
		return m.reloadActive()

	case "settings":
		m.openView(ViewSettings)
		return m.configView.Init()

	case "quit":
		m.poller.Stop()
		return tea.Quit
	}
	return m.fail(fmt.Errorf("comando desconhecido: %s", c.Name))
}

func (m *Model) fail(err error) tea.Cmd {
	m.setNotice("", err)
	return nil
}

func (m Model) importSheet(path, project string) tea.Cmd {
	st := m.store
	center := m.center
	loc := m.session.Location()
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return taskDoneMsg{err: err}
		}
		defer f.Close()

		ctx := context.Background()
		saved, err := sheet.Import(ctx, st, filepath.Base(path), f, sheet.ImportOptions{
			Project:  project,
			Type:     model.SheetOther,
			Location: loc,
		})
		if err != nil {
			return taskDoneMsg{err: err}
		}
		if center != nil {
			msg := fmt.Sprintf("%s: %d tarefas", saved.Label(), saved.TotalRows)
			if _, err := center.AddEvent(ctx, "Planilha importada", msg); err != nil {
				return taskDoneMsg{err: err}
			}
		}
		return importedMsg{sheet: saved}
	}
}

func (m Model) exportTasks(path string) tea.Cmd {
	tasks := m.taskList.AllTasks()
	return func() tea.Msg {
		if len(tasks) == 0 {
			return taskDoneMsg{err: errors.New("nenhuma tarefa para exportar")}
		}
		if err := sheet.Write(path, tasks); err != nil {
			return taskDoneMsg{err: err}
		}
		return taskDoneMsg{notice: fmt.Sprintf("%d tarefas exportadas para %s", len(tasks), path)}
	}
}

func (m Model) pushCalendar() tea.Cmd {
	if m.secrets == nil {
		return func() tea.Msg {
			return taskDoneMsg{err: errors.New("keyring indisponível para o token do Google")}
		}
	}
	cfg := m.cfg.GCal
	tokens := m.secrets
	st := m.store
	sheetID := m.session.SheetID
	loc := m.session.Location()
	return m.runTask(func(ctx context.Context) (string, error) {
		res, err := PushCalendar(ctx, cfg, tokens, st, sheetID, loc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Google Calendar: %d criados, %d atualizados", res.Created, res.Updated), nil
	})
}
