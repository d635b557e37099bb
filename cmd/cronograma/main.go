package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nhle/cronograma/internal/app"
	"github.com/nhle/cronograma/internal/assistant"
	"github.com/nhle/cronograma/internal/credential"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/notify"
	"github.com/nhle/cronograma/internal/store"
	appsync "github.com/nhle/cronograma/internal/sync"
)

var configPath string

func main() {
	// .env is optional; it only seeds CRONOGRAMA_* variables.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "cronograma",
		Short:         "Cronograma de projetos no terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}
	root.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "config file")
	root.AddCommand(serveCmd(), importCmd(), exportCmd(), sweepCmd(), digestCmd(), gcalCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env holds what every command needs.
type env struct {
	cfg    *model.AppConfig
	store  *store.SQLiteStore
	vault  *credential.Vault
	loc    *time.Location
	center *notify.Center
}

// secrets returns the vault as an interface, nil when the keyring could
// not be opened.
func (e *env) secrets() app.Secrets {
	if e.vault == nil {
		return nil
	}
	return e.vault
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		log.Printf("closing database: %v", err)
	}
}

func setup() (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if cfg.Display.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Display.Timezone)
		if err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", cfg.Display.Timezone, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, store: st, loc: loc}
	vault, err := credential.Open()
	if err != nil {
		log.Printf("credentials unavailable, remote sources disabled: %v", err)
	} else {
		e.vault = vault
	}

	e.center = notify.NewCenter(st, cfg.Notifications.NotificationSettings, app.NewSinks(cfg, e.secrets()))
	e.center.OnSettingsChange = func(s model.NotificationSettings) error {
		cfg.Notifications.NotificationSettings = s
		return model.SaveConfig(configPath, cfg)
	}
	return e, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if err := os.MkdirAll(model.ConfigDir(), 0o755); err != nil {
		return err
	}
	logFile, err := tea.LogToFile(filepath.Join(model.ConfigDir(), "cronograma.log"), "cronograma")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	poller := appsync.New(e.store, e.center)
	be, n := app.RegisterSources(poller, e.cfg, e.secrets(), e.store, e.loc)
	log.Printf("starting with %d remote sources", n)

	deps := app.Deps{
		Config:     e.cfg,
		ConfigPath: configPath,
		Store:      e.store,
		Secrets:    e.secrets(),
		Center:     e.center,
		Poller:     poller,
		Assistant:  assistant.New(assistant.NewLocalResponder(e.store)),
	}
	if be != nil {
		deps.Rows = be
		if e.cfg.Assistant.Mode == "remote" {
			deps.Assistant = assistant.New(assistant.NewRemoteResponder(be))
		}
	}

	m, err := app.New(deps)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	poller.Stop()
	return err
}
