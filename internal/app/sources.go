package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nhle/cronograma/internal/credential"
	"github.com/nhle/cronograma/internal/gcal"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/notify"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/source/backend"
	"github.com/nhle/cronograma/internal/source/mail"
	"github.com/nhle/cronograma/internal/store"
	appsync "github.com/nhle/cronograma/internal/sync"
	configview "github.com/nhle/cronograma/internal/ui/config"
)

// Secrets reads and writes keyring entries.
type Secrets interface {
	Lookup(key string) (string, error)
	Set(key, value string) error
}

func lookup(secrets Secrets, key string) string {
	if secrets == nil {
		return ""
	}
	val, err := secrets.Lookup(key)
	if err != nil {
		log.Printf("reading credential %s: %v", key, err)
		return ""
	}
	return val
}

// NewBackend builds the backend adapter, or returns nil when the backend
// is disabled or no token is stored.
func NewBackend(cfg model.BackendConfig, secrets Secrets, loc *time.Location) *backend.Adapter {
	if !cfg.Enabled || cfg.BaseURL == "" {
		return nil
	}
	token := lookup(secrets, credential.KeyBackendToken)
	if token == "" {
		log.Printf("skipping backend source: no %s stored (set %s or use the settings view)",
			credential.KeyBackendToken, credential.EnvName(credential.KeyBackendToken))
		return nil
	}
	return backend.NewAdapter(cfg.BaseURL, token, loc)
}

// NewMailWatcher builds the inbox watcher, or returns nil when mail is
// disabled or incomplete. Only numbers of stored tasks are matched.
func NewMailWatcher(cfg model.MailConfig, secrets Secrets, st store.Store) *mail.Watcher {
	if !cfg.Enabled || cfg.IMAPHost == "" || cfg.Username == "" {
		return nil
	}
	password := lookup(secrets, credential.KeyMailPassword)
	if password == "" {
		log.Printf("skipping mail source: no %s stored", credential.KeyMailPassword)
		return nil
	}
	return mail.NewWatcher(cfg.IMAPHost, cfg.IMAPPort, cfg.Username, password, cfg.TLS, knownNumbers(st))
}

func knownNumbers(st store.Store) mail.KnownNumbersFunc {
	return func(ctx context.Context) (map[int]bool, error) {
		tasks, err := st.GetTasks(ctx, store.TaskFilter{})
		if err != nil {
			return nil, err
		}
		known := make(map[int]bool, len(tasks))
		for _, t := range tasks {
			known[t.Number] = true
		}
		return known, nil
	}
}

// NewSinks builds the delivery channels that have what they need
// configured. Channels are gated again at send time by the settings.
func NewSinks(cfg *model.AppConfig, secrets Secrets) notify.Sinks {
	var sinks notify.Sinks

	if cfg.Notifications.TelegramChatID != 0 {
		if token := lookup(secrets, credential.KeyTelegramToken); token != "" {
			tg, err := notify.NewTelegramSink(token, cfg.Notifications.TelegramChatID)
			if err != nil {
				log.Printf("telegram sink disabled: %v", err)
			} else {
				sinks.Push = tg
			}
		}
	}

	if cfg.Mail.SMTPHost != "" && cfg.Notifications.EmailTo != "" {
		sender := mail.NewSender(mail.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.Username,
			Password: lookup(secrets, credential.KeyMailPassword),
			TLS:      cfg.Mail.TLS,
		})
		sinks.Email = notify.NewEmailSink(sender, cfg.Notifications.EmailTo)
	}

	return sinks
}

// RegisterSources adds every configured source to p and returns the
// backend adapter, which is nil when the backend is not in use.
func RegisterSources(p *appsync.Poller, cfg *model.AppConfig, secrets Secrets, st store.Store, loc *time.Location) (*backend.Adapter, int) {
	count := 0
	be := NewBackend(cfg.Backend, secrets, loc)
	if be != nil {
		p.RegisterSource(be, time.Duration(cfg.Backend.PollIntervalSec)*time.Second)
		count++
	}
	if w := NewMailWatcher(cfg.Mail, secrets, st); w != nil {
		p.RegisterSource(w, time.Duration(cfg.Mail.PollIntervalSec)*time.Second)
		count++
	}
	return be, count
}

// ConnectionTester checks the backend or mail settings being edited,
// whether or not they are enabled yet.
func ConnectionTester(secrets Secrets, st store.Store, loc *time.Location) configview.Tester {
	return func(ctx context.Context, cfg model.AppConfig, s configview.Section) (string, error) {
		switch s {
		case configview.SectionBackend:
			cfg.Backend.Enabled = true
			be := NewBackend(cfg.Backend, secrets, loc)
			if be == nil {
				return "", fmt.Errorf("backend token is not set")
			}
			return be.ValidateConnection(ctx)
		case configview.SectionMail:
			cfg.Mail.Enabled = true
			w := NewMailWatcher(cfg.Mail, secrets, st)
			if w == nil {
				return "", fmt.Errorf("IMAP host, user and password are required")
			}
			return w.ValidateConnection(ctx)
		}
		return "", fmt.Errorf("nothing to test")
	}
}

// PushCalendar sends the stored events and the task-derived events of
// sheetID (every sheet when empty) to Google Calendar.
func PushCalendar(
	ctx context.Context,
	cfg model.GCalConfig,
	tokens gcal.TokenStore,
	st store.Store,
	sheetID string,
	loc *time.Location,
) (gcal.PushResult, error) {
	oauthCfg, err := gcal.LoadConfig(cfg.CredentialsFile)
	if err != nil {
		return gcal.PushResult{}, err
	}
	srv, err := gcal.NewService(ctx, oauthCfg, tokens)
	if err != nil {
		return gcal.PushResult{}, err
	}

	events, err := st.GetEvents(ctx)
	if err != nil {
		return gcal.PushResult{}, fmt.Errorf("loading events: %w", err)
	}
	filter := store.TaskFilter{}
	if sheetID != "" {
		filter.SheetID = &sheetID
	}
	tasks, err := st.GetTasks(ctx, filter)
	if err != nil {
		return gcal.PushResult{}, fmt.Errorf("loading tasks: %w", err)
	}
	today := schedule.StartOfDay(time.Now().In(loc))
	events = append(events, schedule.TasksToEvents(tasks, today)...)

	return gcal.NewExporter(srv, cfg.CalendarID, loc).Push(ctx, events)
}
