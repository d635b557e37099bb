// Package config is the settings screen. It edits the YAML configuration
// section by section and keeps secrets in the keyring.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/validator/v10"

	"github.com/nhle/cronograma/internal/credential"
	"github.com/nhle/cronograma/internal/jobs"
	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/theme"
	"github.com/nhle/cronograma/internal/ui"
)

// ConfigMode represents the current state of the settings view.
type ConfigMode int

const (
	ModeList           ConfigMode = iota // List of sections
	ModeForm                             // Editing one section
	ModeValidating                       // Testing a connection
	ModeValidateResult                   // Showing the test result
)

// Section identifies a group of settings.
type Section int

const (
	SectionDisplay Section = iota
	SectionNotifications
	SectionBackend
	SectionMail
	SectionGCal
	SectionAssistant
)

var sectionNames = map[Section]string{
	SectionDisplay:       "Exibição",
	SectionNotifications: "Notificações",
	SectionBackend:       "Backend",
	SectionMail:          "E-mail",
	SectionGCal:          "Google Calendar",
	SectionAssistant:     "Assistente",
}

var sections = []Section{
	SectionDisplay, SectionNotifications, SectionBackend,
	SectionMail, SectionGCal, SectionAssistant,
}

// Secrets is where passwords and tokens are written.
type Secrets interface {
	Lookup(key string) (string, error)
	Set(key, value string) error
}

// Tester checks connectivity for a section using the given configuration.
// It returns a short description of what it reached.
type Tester func(ctx context.Context, cfg model.AppConfig, s Section) (string, error)

// ConfigDoneMsg signals the settings view should close.
type ConfigDoneMsg struct{}

// SavedMsg carries the configuration after a successful save.
type SavedMsg struct {
	Config  model.AppConfig
	Section Section
}

// ValidateResultMsg carries the result of a connection test.
type ValidateResultMsg struct {
	Name string
	Err  error
}

type savedInternalMsg struct {
	cfg     model.AppConfig
	section Section
	err     error
}

// formBindings holds the values huh writes to. It lives on the heap so
// copies of Model share it.
type formBindings struct {
	viewMode string
	zoom     string
	timezone string

	event, email, push bool
	chatID             string
	telegramToken      string
	emailTo            string
	sweepMin           string
	digestTime         string

	backendEnabled bool
	baseURL        string
	backendToken   string
	backendPoll    string

	mailEnabled  bool
	imapHost     string
	imapPort     string
	smtpHost     string
	smtpPort     string
	username     string
	mailPassword string
	tls          bool
	mailPoll     string

	calendarID  string
	credentials string

	assistantMode string
}

// Model is the settings view.
type Model struct {
	mode        ConfigMode
	cfg         model.AppConfig
	path        string
	secrets     Secrets
	test        Tester
	selectedIdx int
	editing     Section

	form *huh.Form
	b    *formBindings

	validResult string
	validError  error
	spinner     spinner.Model

	statusMsg     string
	keys          *keys.KeyMap
	width, height int
}

// New creates the settings view. test may be nil, in which case
// connection tests are unavailable.
func New(cfg model.AppConfig, path string, secrets Secrets, test Tester, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeList,
		cfg:     cfg,
		path:    path,
		secrets: secrets,
		test:    test,
		keys:    k,
		spinner: sp,
		b:       &formBindings{},
		width:   width,
		height:  height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Config returns the configuration as last saved.
func (m Model) Config() model.AppConfig { return m.cfg }

// Editing reports whether a form is open.
func (m Model) Editing() bool { return m.mode != ModeList }

// Update handles messages and dispatches based on the current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedInternalMsg:
		m.mode = ModeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving settings: %v", msg.err)
			return m, nil
		}
		m.cfg = msg.cfg
		m.statusMsg = fmt.Sprintf("%s saved", sectionNames[msg.section])
		return m, func() tea.Msg { return SavedMsg{Config: msg.cfg, Section: msg.section} }

	case ValidateResultMsg:
		if m.mode != ModeValidating {
			return m, nil
		}
		m.validResult = msg.Name
		m.validError = msg.Err
		m.mode = ModeValidateResult
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch m.mode {
	case ModeForm:
		return m.updateForm(msg)
	case ModeValidating:
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.mode = ModeList
		}
		return m, nil
	case ModeValidateResult:
		if k, ok := msg.(tea.KeyMsg); ok {
			return m.handleValidateResultKeys(k)
		}
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		return m.handleListKeys(k)
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return ConfigDoneMsg{} }

	case key.Matches(msg, m.keys.Down):
		m.selectedIdx = (m.selectedIdx + 1) % len(sections)

	case key.Matches(msg, m.keys.Up):
		m.selectedIdx = (m.selectedIdx - 1 + len(sections)) % len(sections)

	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Edit):
		return m.openForm(sections[m.selectedIdx])

	case msg.String() == "t":
		return m.startValidation(sections[m.selectedIdx])
	}
	return m, nil
}

func (m Model) handleValidateResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = ModeList
		m.validResult = ""
		m.validError = nil
	case "r":
		if m.validError != nil {
			return m.startValidation(m.editing)
		}
	}
	return m, nil
}

func (m Model) startValidation(s Section) (Model, tea.Cmd) {
	if m.test == nil || (s != SectionBackend && s != SectionMail) {
		m.statusMsg = fmt.Sprintf("Nothing to test for %s", sectionNames[s])
		return m, nil
	}
	m.editing = s
	m.mode = ModeValidating
	cfg, test := m.cfg, m.test
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			name, err := test(ctx, cfg, s)
			return ValidateResultMsg{Name: name, Err: err}
		},
	)
}

// --- Forms ---

func (m Model) openForm(s Section) (Model, tea.Cmd) {
	m.fillBindings()
	m.editing = s
	m.mode = ModeForm
	m.form = m.buildForm(s)
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = ModeList
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.mode = ModeList
		cfg, secrets, err := m.apply(m.editing)
		if err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
			return m, nil
		}
		return m, m.save(cfg, secrets, m.editing)
	case huh.StateAborted:
		m.mode = ModeList
		return m, nil
	}
	return m, cmd
}

func (m Model) buildForm(s Section) *huh.Form {
	b := m.b
	var group *huh.Group

	switch s {
	case SectionDisplay:
		group = huh.NewGroup(
			huh.NewSelect[string]().
				Title("Modo do Gantt").
				Options(huh.NewOption("Semana", "week"), huh.NewOption("Mês", "month")).
				Value(&b.viewMode),
			huh.NewInput().
				Title("Zoom").
				Description("Entre 0.5 e 3").
				Value(&b.zoom).
				Validate(validateZoom),
			huh.NewInput().
				Title("Fuso horário").
				Placeholder("America/Sao_Paulo").
				Value(&b.timezone).
				Validate(validateTimezone),
		)

	case SectionNotifications:
		group = huh.NewGroup(
			huh.NewConfirm().Title("Notificações de eventos").Value(&b.event),
			huh.NewConfirm().Title("Notificações por e-mail").Value(&b.email),
			huh.NewConfirm().Title("Notificações push (Telegram)").Value(&b.push),
			huh.NewInput().
				Title("Chat ID do Telegram").
				Value(&b.chatID).
				Validate(validateChatID),
			huh.NewInput().
				Title("Token do bot do Telegram").
				Description("Deixe em branco para manter o atual").
				EchoMode(huh.EchoModePassword).
				Value(&b.telegramToken),
			huh.NewInput().
				Title("E-mail para notificações").
				Value(&b.emailTo).
				Validate(validateEmails),
			huh.NewInput().
				Title("Verificar atrasos a cada (min)").
				Value(&b.sweepMin).
				Validate(validatePositive("Intervalo")),
			huh.NewInput().
				Title("Horário do resumo diário").
				Placeholder("08:00").
				Value(&b.digestTime).
				Validate(validateDigestTime),
		)

	case SectionBackend:
		group = huh.NewGroup(
			huh.NewConfirm().Title("Sincronizar com o backend").Value(&b.backendEnabled),
			huh.NewInput().
				Title("URL base").
				Placeholder("http://127.0.0.1:5000").
				Value(&b.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Token de acesso").
				Description("Deixe em branco para manter o atual").
				EchoMode(huh.EchoModePassword).
				Value(&b.backendToken),
			huh.NewInput().
				Title("Intervalo de sincronização (s)").
				Value(&b.backendPoll).
				Validate(validatePositive("Intervalo")),
		)

	case SectionMail:
		group = huh.NewGroup(
			huh.NewConfirm().Title("Observar caixa de entrada").Value(&b.mailEnabled),
			huh.NewInput().Title("Servidor IMAP").Value(&b.imapHost),
			huh.NewInput().Title("Porta IMAP").Value(&b.imapPort).Validate(validatePort),
			huh.NewInput().Title("Servidor SMTP").Value(&b.smtpHost),
			huh.NewInput().Title("Porta SMTP").Value(&b.smtpPort).Validate(validatePort),
			huh.NewInput().Title("Usuário").Value(&b.username),
			huh.NewInput().
				Title("Senha").
				Description("Deixe em branco para manter a atual").
				EchoMode(huh.EchoModePassword).
				Value(&b.mailPassword),
			huh.NewConfirm().Title("Usar TLS").Value(&b.tls),
			huh.NewInput().
				Title("Intervalo de leitura (s)").
				Value(&b.mailPoll).
				Validate(validatePositive("Intervalo")),
		)

	case SectionGCal:
		group = huh.NewGroup(
			huh.NewInput().
				Title("ID do calendário").
				Placeholder("primary").
				Value(&b.calendarID).
				Validate(validateRequired("ID do calendário")),
			huh.NewInput().
				Title("Arquivo de credenciais OAuth").
				Value(&b.credentials).
				Validate(validateRequired("Arquivo de credenciais")),
		)

	default:
		group = huh.NewGroup(
			huh.NewSelect[string]().
				Title("Modo do assistente").
				Options(
					huh.NewOption("Local (responde a partir do cronograma)", "local"),
					huh.NewOption("Remoto (chat do backend)", "remote"),
				).
				Value(&b.assistantMode),
		)
	}

	return huh.NewForm(group.Title(sectionNames[s])).
		WithWidth(ui.FormWidth(m.width)).
		WithShowHelp(true)
}

// fillBindings copies the current configuration into the form values.
func (m Model) fillBindings() {
	c := m.cfg
	*m.b = formBindings{
		viewMode: c.Display.ViewMode,
		zoom:     strconv.FormatFloat(c.Display.Zoom, 'f', -1, 64),
		timezone: c.Display.Timezone,

		event:      c.Notifications.EventNotifications,
		email:      c.Notifications.EmailNotifications,
		push:       c.Notifications.PushNotifications,
		emailTo:    c.Notifications.EmailTo,
		sweepMin:   strconv.Itoa(c.Notifications.SweepIntervalMin),
		digestTime: c.Notifications.DigestTime,

		backendEnabled: c.Backend.Enabled,
		baseURL:        c.Backend.BaseURL,
		backendPoll:    strconv.Itoa(c.Backend.PollIntervalSec),

		mailEnabled: c.Mail.Enabled,
		imapHost:    c.Mail.IMAPHost,
		imapPort:    c.Mail.IMAPPort,
		smtpHost:    c.Mail.SMTPHost,
		smtpPort:    c.Mail.SMTPPort,
		username:    c.Mail.Username,
		tls:         c.Mail.TLS,
		mailPoll:    strconv.Itoa(c.Mail.PollIntervalSec),

		calendarID:  c.GCal.CalendarID,
		credentials: c.GCal.CredentialsFile,

		assistantMode: c.Assistant.Mode,
	}
	if c.Notifications.TelegramChatID != 0 {
		m.b.chatID = strconv.FormatInt(c.Notifications.TelegramChatID, 10)
	}
}

// apply returns the configuration with one section replaced by the form
// values, plus the secrets that were typed in.
func (m Model) apply(s Section) (model.AppConfig, map[string]string, error) {
	b := m.b
	cfg := m.cfg
	secrets := map[string]string{}

	switch s {
	case SectionDisplay:
		zoom, err := strconv.ParseFloat(strings.TrimSpace(b.zoom), 64)
		if err != nil {
			return cfg, nil, fmt.Errorf("invalid zoom: %w", err)
		}
		cfg.Display.ViewMode = string(schedule.ParseViewMode(b.viewMode))
		cfg.Display.Zoom = schedule.ClampZoom(zoom)
		cfg.Display.Timezone = strings.TrimSpace(b.timezone)

	case SectionNotifications:
		n := &cfg.Notifications
		n.EventNotifications = b.event
		n.EmailNotifications = b.email
		n.PushNotifications = b.push
		n.TelegramChatID, _ = strconv.ParseInt(strings.TrimSpace(b.chatID), 10, 64)
		n.EmailTo = strings.TrimSpace(b.emailTo)
		n.SweepIntervalMin, _ = strconv.Atoi(strings.TrimSpace(b.sweepMin))
		n.DigestTime = strings.TrimSpace(b.digestTime)
		if b.telegramToken != "" {
			secrets[credential.KeyTelegramToken] = b.telegramToken
		}

	case SectionBackend:
		cfg.Backend.Enabled = b.backendEnabled
		cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(b.baseURL), "/")
		cfg.Backend.PollIntervalSec, _ = strconv.Atoi(strings.TrimSpace(b.backendPoll))
		if b.backendToken != "" {
			secrets[credential.KeyBackendToken] = b.backendToken
		}

	case SectionMail:
		cfg.Mail = model.MailConfig{
			Enabled:  b.mailEnabled,
			IMAPHost: strings.TrimSpace(b.imapHost),
			IMAPPort: strings.TrimSpace(b.imapPort),
			SMTPHost: strings.TrimSpace(b.smtpHost),
			SMTPPort: strings.TrimSpace(b.smtpPort),
			Username: strings.TrimSpace(b.username),
			TLS:      b.tls,
		}
		cfg.Mail.PollIntervalSec, _ = strconv.Atoi(strings.TrimSpace(b.mailPoll))
		if b.mailPassword != "" {
			secrets[credential.KeyMailPassword] = b.mailPassword
		}

	case SectionGCal:
		cfg.GCal.CalendarID = strings.TrimSpace(b.calendarID)
		cfg.GCal.CredentialsFile = strings.TrimSpace(b.credentials)

	case SectionAssistant:
		cfg.Assistant.Mode = b.assistantMode
	}
	return cfg, secrets, nil
}

// save writes the secrets to the keyring and the rest to the YAML file.
func (m Model) save(cfg model.AppConfig, secrets map[string]string, s Section) tea.Cmd {
	path, vault := m.path, m.secrets
	return func() tea.Msg {
		for k, v := range secrets {
			if vault == nil {
				return savedInternalMsg{err: fmt.Errorf("no keyring available for %s", k)}
			}
			if err := vault.Set(k, v); err != nil {
				return savedInternalMsg{err: err}
			}
		}
		if err := model.SaveConfig(path, &cfg); err != nil {
			return savedInternalMsg{err: err}
		}
		return savedInternalMsg{cfg: cfg, section: s}
	}
}

// --- View ---

// View renders the settings view for the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		if m.form != nil {
			return ui.ViewForm(m.form)
		}
	case ModeValidating:
		return m.viewValidating()
	case ModeValidateResult:
		return m.viewValidateResult()
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Configurações"))
	b.WriteString("\n")
	b.WriteString(theme.DimmedStyle.Render(m.path))
	b.WriteString("\n\n")

	for i, s := range sections {
		line := fmt.Sprintf("%-18s %s", sectionNames[s], theme.DimmedStyle.Render(m.summary(s)))
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.DimmedStyle.Render("enter edit | t test connection | esc back"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) summary(s Section) string {
	c := m.cfg
	switch s {
	case SectionDisplay:
		return fmt.Sprintf("%s, zoom %.1fx, %s", c.Display.ViewMode, c.Display.Zoom, c.Display.Timezone)
	case SectionNotifications:
		var on []string
		if c.Notifications.EventNotifications {
			on = append(on, "eventos")
		}
		if c.Notifications.EmailNotifications {
			on = append(on, "e-mail")
		}
		if c.Notifications.PushNotifications {
			on = append(on, "push")
		}
		if len(on) == 0 {
			on = append(on, "desligadas")
		}
		return fmt.Sprintf("%s, resumo às %s", strings.Join(on, ", "), c.Notifications.DigestTime)
	case SectionBackend:
		return onOff(c.Backend.Enabled) + " " + c.Backend.BaseURL + m.secretMark(credential.KeyBackendToken)
	case SectionMail:
		return onOff(c.Mail.Enabled) + " " + c.Mail.Username + m.secretMark(credential.KeyMailPassword)
	case SectionGCal:
		return c.GCal.CalendarID + m.secretMark(credential.KeyGoogleToken)
	default:
		return c.Assistant.Mode
	}
}

func (m Model) secretMark(key string) string {
	if m.secrets == nil {
		return ""
	}
	if v, err := m.secrets.Lookup(key); err == nil && v != "" {
		return "  [credencial salva]"
	}
	return ""
}

func onOff(b bool) string {
	if b {
		return "[ligado]"
	}
	return "[desligado]"
}

func (m Model) viewValidating() string {
	content := fmt.Sprintf(
		"%s Testing connection to %s...\n\nPress esc to cancel.",
		m.spinner.View(), sectionNames[m.editing],
	)
	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(content)
}

func (m Model) viewValidateResult() string {
	hint := lipgloss.NewStyle().Foreground(theme.ColorGray)
	var content string
	if m.validError != nil {
		content = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed).Render("Connection failed") +
			"\n\n" + m.validError.Error() + "\n\n" + hint.Render("r retry | enter/esc back")
	} else {
		name := m.validResult
		if name == "" {
			name = "OK"
		}
		content = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render("Connection successful") +
			"\n\n" + name + "\n\n" + hint.Render("enter/esc back")
	}
	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// --- Validators ---

var validate = validator.New()

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://127.0.0.1:5000)")
	}
	return nil
}

func validatePort(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}

func validatePositive(fieldName string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number", fieldName)
		}
		return nil
	}
}

func validateZoom(s string) error {
	z, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || z < schedule.MinZoom || z > schedule.MaxZoom {
		return fmt.Errorf("zoom must be between %.1f and %.1f", schedule.MinZoom, schedule.MaxZoom)
	}
	return nil
}

func validateTimezone(s string) error {
	if _, err := time.LoadLocation(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("unknown timezone %q", s)
	}
	return nil
}

func validateChatID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return fmt.Errorf("chat id must be a number")
	}
	return nil
}

func validateDigestTime(s string) error {
	_, err := jobs.DailySpec(s)
	return err
}

// validateEmails accepts an empty value or a comma separated list.
func validateEmails(s string) error {
	for _, addr := range strings.Split(s, ",") {
		if err := validate.Var(strings.TrimSpace(addr), "omitempty,email"); err != nil {
			return fmt.Errorf("invalid e-mail %q", strings.TrimSpace(addr))
		}
	}
	return nil
}
