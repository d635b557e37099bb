package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/theme"
)

// progressCells is the width of the inline percent bar.
const progressCells = 10

// TaskItem wraps a model.Task with its status as of the last load.
type TaskItem struct {
	Task   model.Task
	Status model.Status
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Name }

// Title returns the task name for the list.
func (i TaskItem) Title() string { return i.Task.Name }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	return strings.Join([]string{
		i.Status.Badge(),
		fmt.Sprintf("%d%%", i.Task.Percent),
		schedule.DisplayName(i.Task.ResponsibleName),
	}, " | ")
}

// ItemDelegate renders one schedule row per line.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single schedule row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(TaskItem)
	if !ok {
		return
	}
	t := it.Task

	number := lipgloss.NewStyle().Foreground(theme.ColorGray).Render(fmt.Sprintf("#%-4d", t.Number))
	badge := theme.StatusStyle(it.Status).Width(15).Render(it.Status.Badge())
	bar := progressBar(t.Percent, it.Status)
	who := lipgloss.NewStyle().
		Foreground(theme.ColorMagenta).
		Render(schedule.DisplayName(t.ResponsibleName))

	due := ""
	if t.Deadline != nil {
		due = theme.DimmedStyle.Render(" " + t.Deadline.Format("02/01"))
	} else if t.EndDate != nil {
		due = theme.DimmedStyle.Render(" " + t.EndDate.Format("02/01"))
	}

	delay := ""
	if d.now != nil && it.Status == model.StatusOverdue {
		delay = lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Render(fmt.Sprintf(" +%dd", schedule.EffectiveDelay(t, d.now())))
	}

	nameWidth := m.Width() - 60
	if nameWidth < 12 {
		nameWidth = 12
	}
	name := truncate(t.Name, nameWidth)

	line := fmt.Sprintf("%s %s %-*s %s %s%s%s", number, badge, nameWidth, name, bar, who, due, delay)

	if it.Status == model.StatusCompleted {
		line = theme.DimmedStyle.Render(line)
	}
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// progressBar renders pct as a fixed-width bar followed by the number.
func progressBar(pct int, status model.Status) string {
	filled := pct * progressCells / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressCells-filled)
	return lipgloss.NewStyle().
		Foreground(theme.StatusColor(status)).
		Render(fmt.Sprintf("%s %3d%%", bar, pct))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
