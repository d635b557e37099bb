package ui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// NewConfirm builds a yes/no form bound to value.
func NewConfirm(title, description string, value *bool, width, height int) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(value),
		),
	).WithWidth(FormWidth(width)).WithHeight(FormHeight(height))
}

// ViewForm pads a form for display inside a view.
func ViewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}
