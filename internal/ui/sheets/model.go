// Package sheets is the spreadsheet picker: select, import, export and
// delete schedules.
package sheets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/sheet"
	"github.com/nhle/cronograma/internal/store"
	"github.com/nhle/cronograma/internal/theme"
	"github.com/nhle/cronograma/internal/ui"
)

// Notifier raises the "spreadsheet imported" notification.
type Notifier interface {
	AddEvent(ctx context.Context, title, message string) (*model.Notification, error)
}

// SelectedMsg asks the parent to switch to a spreadsheet.
type SelectedMsg struct {
	SheetID string
}

// ChangedMsg tells the parent that sheets were imported or removed.
type ChangedMsg struct {
	SheetID string
}

// CloseMsg asks the parent to leave the picker.
type CloseMsg struct{}

type loadedMsg struct {
	sheets []model.Spreadsheet
	err    error
}

type doneMsg struct {
	notice  string
	sheetID string
	err     error
}

type mode int

const (
	modeList mode = iota
	modeImport
	modeExport
	modeConfirmDelete
)

type formBindings struct {
	path      string
	name      string
	project   string
	sheetType model.SheetType
	confirm   bool
}

var exportKey = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export"))

// Model is the spreadsheet picker.
type Model struct {
	mode        mode
	store       store.Store
	keys        *keys.KeyMap
	notifier    Notifier
	loc         *time.Location
	sheets      []model.Spreadsheet
	activeID    string
	selectedIdx int
	form        *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates the picker.
func New(s store.Store, k *keys.KeyMap, n Notifier, loc *time.Location, width, height int) Model {
	return Model{
		store:    s,
		keys:     k,
		notifier: n,
		loc:      loc,
		fb:       &formBindings{},
		width:    width,
		height:   height,
	}
}

// Load reads the spreadsheets and marks activeID.
func (m *Model) Load(activeID string) tea.Cmd {
	m.activeID = activeID
	s := m.store
	return func() tea.Msg {
		sheets, err := s.GetSpreadsheets(context.Background())
		return loadedMsg{sheets: sheets, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.sheets = msg.sheets
		for i, sh := range m.sheets {
			if sh.ID == m.activeID {
				m.selectedIdx = i
			}
		}
		if m.selectedIdx >= len(m.sheets) {
			m.selectedIdx = max(len(m.sheets)-1, 0)
		}
		return m, nil

	case doneMsg:
		m.mode = modeList
		m.statusMsg = msg.notice
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		id := msg.sheetID
		return m, tea.Batch(m.Load(m.activeID), func() tea.Msg { return ChangedMsg{SheetID: id} })
	}

	switch m.mode {
	case modeImport, modeExport, modeConfirmDelete:
		return m.updateForm(msg)
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleListKey(kmsg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.sheets) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.sheets)
		}

	case key.Matches(msg, m.keys.Up):
		if len(m.sheets) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(m.sheets)) % len(m.sheets)
		}

	case key.Matches(msg, m.keys.Select):
		if sh, ok := m.selected(); ok {
			id := sh.ID
			return m, func() tea.Msg { return SelectedMsg{SheetID: id} }
		}

	case key.Matches(msg, m.keys.New):
		*m.fb = formBindings{sheetType: model.SheetPrimaryPackaging}
		m.form = m.buildImportForm()
		m.mode = modeImport
		return m, m.form.Init()

	case key.Matches(msg, exportKey):
		sh, ok := m.selected()
		if !ok {
			return m, nil
		}
		*m.fb = formBindings{path: defaultExportPath(sh)}
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Exportar para").
					Description(".csv or .xlsx").
					Value(&m.fb.path).
					Validate(validateExportPath),
			),
		).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
		m.mode = modeExport
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		sh, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.fb.confirm = false
		m.form = ui.NewConfirm(
			fmt.Sprintf("Delete spreadsheet %q?", sh.Label()),
			fmt.Sprintf("Its %d tasks are deleted too.", sh.TotalRows),
			&m.fb.confirm, m.width, m.height,
		)
		m.mode = modeConfirmDelete
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) buildImportForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Arquivo").
				Placeholder("~/cronograma.xlsx").
				Value(&m.fb.path).
				Validate(validateImportPath),
			huh.NewInput().
				Title("Nome").
				Placeholder("defaults to the file name").
				Value(&m.fb.name),
			huh.NewInput().
				Title("Projeto").
				Value(&m.fb.project),
			huh.NewSelect[model.SheetType]().
				Title("Tipo").
				Options(
					huh.NewOption("Embalagem primária", model.SheetPrimaryPackaging),
					huh.NewOption("Outros", model.SheetOther),
				).
				Value(&m.fb.sheetType),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	case huh.StateCompleted:
		submitted := m.mode
		m.mode = modeList
		switch submitted {
		case modeImport:
			return m, m.importFile(*m.fb)
		case modeExport:
			if sh, ok := m.selected(); ok {
				return m, m.exportSheet(sh, ExpandHome(m.fb.path))
			}
		case modeConfirmDelete:
			if sh, ok := m.selected(); ok && m.fb.confirm {
				return m, m.deleteSheet(sh)
			}
		}
		return m, nil
	}
	return m, cmd
}

func (m Model) selected() (model.Spreadsheet, bool) {
	if m.selectedIdx < len(m.sheets) {
		return m.sheets[m.selectedIdx], true
	}
	return model.Spreadsheet{}, false
}

func (m Model) importFile(fb formBindings) tea.Cmd {
	s := m.store
	n := m.notifier
	loc := m.loc
	return func() tea.Msg {
		path := ExpandHome(fb.path)
		f, err := os.Open(path)
		if err != nil {
			return doneMsg{err: err}
		}
		defer f.Close()

		ctx := context.Background()
		saved, err := sheet.Import(ctx, s, filepath.Base(path), f, sheet.ImportOptions{
			Name:     strings.TrimSpace(fb.name),
			Project:  strings.TrimSpace(fb.project),
			Type:     fb.sheetType,
			Location: loc,
		})
		if err != nil {
			return doneMsg{err: err}
		}
		if n != nil {
			msg := fmt.Sprintf("%s: %d tarefas", saved.Label(), saved.TotalRows)
			if _, err := n.AddEvent(ctx, "Planilha importada", msg); err != nil {
				return doneMsg{err: err}
			}
		}
		return doneMsg{
			notice:  fmt.Sprintf("Imported %d tasks into %s", saved.TotalRows, saved.Label()),
			sheetID: saved.ID,
		}
	}
}

func (m Model) exportSheet(sh model.Spreadsheet, path string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		tasks, err := s.GetTasks(context.Background(), store.TaskFilter{SheetID: &sh.ID, SortBy: "number"})
		if err != nil {
			return doneMsg{err: err}
		}
		if err := sheet.Write(path, tasks); err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{notice: fmt.Sprintf("Exported %d tasks to %s", len(tasks), path)}
	}
}

func (m Model) deleteSheet(sh model.Spreadsheet) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.DeleteSpreadsheet(context.Background(), sh.ID); err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{notice: "Deleted " + sh.Label()}
	}
}

func defaultExportPath(sh model.Spreadsheet) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, sh.Name)
	return name + ".xlsx"
}

// ExpandHome resolves a leading "~/" against the home directory.
func ExpandHome(p string) string {
	p = strings.TrimSpace(p)
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return p
}

func validateImportPath(s string) error {
	path := ExpandHome(s)
	if path == "" {
		return fmt.Errorf("file is required")
	}
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s", path)
	}
	if st.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return validateExtension(path)
}

func validateExportPath(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("path is required")
	}
	return validateExtension(s)
}

func validateExtension(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return nil
	}
	return fmt.Errorf("use a .csv or .xlsx file")
}

// View renders the picker.
func (m Model) View() string {
	if m.mode != modeList {
		title := map[mode]string{
			modeImport:        "Importar planilha",
			modeExport:        "Exportar planilha",
			modeConfirmDelete: "",
		}[m.mode]
		if title == "" {
			return ui.ViewForm(m.form)
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(theme.TitleStyle.Render(title) + "\n" + m.form.View())
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Planilhas"))
	b.WriteString("\n\n")

	if len(m.sheets) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render(
			"No spreadsheets yet. Press 'n' to import a .csv or .xlsx file.",
		))
	}
	for i, sh := range m.sheets {
		pct := 0
		if sh.TotalRows > 0 {
			pct = sh.CompletedRows * 100 / sh.TotalRows
		}
		active := "  "
		if sh.ID == m.activeID {
			active = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("● ")
		}
		label := fmt.Sprintf("%s%-40s %3d/%-3d %3d%%  %s",
			active, sh.Label(), sh.CompletedRows, sh.TotalRows, pct,
			theme.DimmedStyle.Render(sh.ImportedAt.In(m.loc).Format("02/01/2006")),
		)
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.DimmedStyle.Render("enter select | n import | x export | d delete | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// Editing reports whether a form is open.
func (m Model) Editing() bool { return m.mode != modeList }

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
