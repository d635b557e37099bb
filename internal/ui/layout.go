package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/theme"
)

// Layout manages the terminal frame: header, tab bar, content, status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	TabsHeight      int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions. Each bar
// takes one line.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		TabsHeight:      1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left for the active view.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.TabsHeight - l.StatusBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// RenderHeader renders the title on the left and status on the right.
func (l Layout) RenderHeader(title string, status string) string {
	return l.bar(theme.HeaderStyle, theme.HeaderStyle.Render(title), theme.HeaderStyle.Render(status))
}

// RenderTabs renders the view switcher with the active tab highlighted.
func (l Layout) RenderTabs(labels []string, active int) string {
	parts := make([]string, len(labels))
	for i, label := range labels {
		if i == active {
			parts[i] = theme.ActiveTabStyle.Render(label)
		} else {
			parts[i] = theme.TabStyle.Render(label)
		}
	}
	return lipgloss.NewStyle().MaxWidth(l.Width).Render(strings.Join(parts, ""))
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return l.bar(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints), "")
}

func (l Layout) bar(style lipgloss.Style, left, right string) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderWithFrame stacks the frame parts vertically.
func (l Layout) RenderWithFrame(header, tabs, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, tabs, content, statusBar)
}

// FormWidth bounds a huh form to the content width.
func FormWidth(width int) int {
	return min(max(width-4, 40), 100)
}

// FormHeight bounds a huh form to the content height.
func FormHeight(height int) int {
	return max(height-4, 10)
}
