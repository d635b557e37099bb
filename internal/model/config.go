package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig locates the local SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// ViewMode is the Gantt/timeline mode, "week" or "month".
	ViewMode string `mapstructure:"view_mode" yaml:"view_mode"`

	// Zoom is the initial zoom factor, clamped to [0.5, 3].
	Zoom float64 `mapstructure:"zoom" yaml:"zoom"`

	// Timezone is an IANA zone name used to decide what "today" is.
	Timezone string `mapstructure:"timezone" yaml:"timezone"`

	Theme string `mapstructure:"theme" yaml:"theme"`
}

// NotificationConfig holds channel toggles and delivery targets.
type NotificationConfig struct {
	NotificationSettings `mapstructure:",squash" yaml:",inline"`

	// TelegramChatID receives push notifications.
	TelegramChatID int64 `mapstructure:"telegram_chat_id" yaml:"telegram_chat_id"`

	// EmailTo receives e-mail notifications and the daily digest.
	EmailTo string `mapstructure:"email_to" yaml:"email_to"`

	// SweepIntervalMin is how often overdue tasks are checked.
	SweepIntervalMin int `mapstructure:"sweep_interval_min" yaml:"sweep_interval_min"`

	// DigestTime is the HH:MM at which the daily digest is sent.
	DigestTime string `mapstructure:"digest_time" yaml:"digest_time"`
}

// BackendConfig points at the REST backend that owns the schedules.
type BackendConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	BaseURL         string `mapstructure:"base_url" yaml:"base_url"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// MailConfig configures the inbox watcher and the SMTP sender.
type MailConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	IMAPHost        string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort        string `mapstructure:"imap_port" yaml:"imap_port"`
	SMTPHost        string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort        string `mapstructure:"smtp_port" yaml:"smtp_port"`
	Username        string `mapstructure:"username" yaml:"username"`
	TLS             bool   `mapstructure:"tls" yaml:"tls"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// APIConfig configures the local HTTP API.
type APIConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// GCalConfig configures the Google Calendar export.
type GCalConfig struct {
	CalendarID      string `mapstructure:"calendar_id" yaml:"calendar_id"`
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
}

// AssistantConfig selects how the chat assistant answers.
type AssistantConfig struct {
	// Mode is "local" (answers from the store) or "remote" (backend chat).
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database      DatabaseConfig     `mapstructure:"database" yaml:"database"`
	Display       DisplayConfig      `mapstructure:"display" yaml:"display"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Backend       BackendConfig      `mapstructure:"backend" yaml:"backend"`
	Mail          MailConfig         `mapstructure:"mail" yaml:"mail"`
	API           APIConfig          `mapstructure:"api" yaml:"api"`
	GCal          GCalConfig         `mapstructure:"gcal" yaml:"gcal"`
	Assistant     AssistantConfig    `mapstructure:"assistant" yaml:"assistant"`
}

// ConfigDir returns ~/.config/cronograma, or the working directory when
// the home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "cronograma")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/cronograma/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Path: filepath.Join(ConfigDir(), "cronograma.db"),
		},
		Display: DisplayConfig{
			ViewMode: "week",
			Zoom:     1,
			Timezone: "America/Sao_Paulo",
			Theme:    "default",
		},
		Notifications: NotificationConfig{
			NotificationSettings: NotificationSettings{
				EventNotifications: true,
			},
			SweepIntervalMin: 30,
			DigestTime:       "08:00",
		},
		Backend: BackendConfig{
			BaseURL:         "http://127.0.0.1:5000",
			PollIntervalSec: 120,
		},
		Mail: MailConfig{
			IMAPPort:        "993",
			SMTPPort:        "587",
			TLS:             true,
			PollIntervalSec: 300,
		},
		API: APIConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"*"},
		},
		GCal: GCalConfig{
			CalendarID:      "primary",
			CredentialsFile: filepath.Join(ConfigDir(), "credentials.json"),
		},
		Assistant: AssistantConfig{
			Mode: "local",
		},
	}
}

// setDefaults registers every default with viper so that missing keys and
// CRONOGRAMA_* environment variables resolve the same way.
func setDefaults(v *viper.Viper, d *AppConfig) {
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("display.view_mode", d.Display.ViewMode)
	v.SetDefault("display.zoom", d.Display.Zoom)
	v.SetDefault("display.timezone", d.Display.Timezone)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("notifications.event", d.Notifications.EventNotifications)
	v.SetDefault("notifications.email", d.Notifications.EmailNotifications)
	v.SetDefault("notifications.push", d.Notifications.PushNotifications)
	v.SetDefault("notifications.telegram_chat_id", d.Notifications.TelegramChatID)
	v.SetDefault("notifications.email_to", d.Notifications.EmailTo)
	v.SetDefault("notifications.sweep_interval_min", d.Notifications.SweepIntervalMin)
	v.SetDefault("notifications.digest_time", d.Notifications.DigestTime)
	v.SetDefault("backend.enabled", d.Backend.Enabled)
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.poll_interval_sec", d.Backend.PollIntervalSec)
	v.SetDefault("mail.enabled", d.Mail.Enabled)
	v.SetDefault("mail.imap_host", d.Mail.IMAPHost)
	v.SetDefault("mail.imap_port", d.Mail.IMAPPort)
	v.SetDefault("mail.smtp_host", d.Mail.SMTPHost)
	v.SetDefault("mail.smtp_port", d.Mail.SMTPPort)
	v.SetDefault("mail.username", d.Mail.Username)
	v.SetDefault("mail.tls", d.Mail.TLS)
	v.SetDefault("mail.poll_interval_sec", d.Mail.PollIntervalSec)
	v.SetDefault("api.addr", d.API.Addr)
	v.SetDefault("api.allowed_origins", d.API.AllowedOrigins)
	v.SetDefault("gcal.calendar_id", d.GCal.CalendarID)
	v.SetDefault("gcal.credentials_file", d.GCal.CredentialsFile)
	v.SetDefault("assistant.mode", d.Assistant.Mode)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error; defaults and environment overrides apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("cronograma")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Display.ViewMode != "week" && cfg.Display.ViewMode != "month" {
		cfg.Display.ViewMode = "week"
	}
	if cfg.Notifications.SweepIntervalMin <= 0 {
		cfg.Notifications.SweepIntervalMin = 30
	}
	if cfg.Backend.PollIntervalSec <= 0 {
		cfg.Backend.PollIntervalSec = 120
	}
	if cfg.Mail.PollIntervalSec <= 0 {
		cfg.Mail.PollIntervalSec = 300
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("display", cfg.Display)
	v.Set("notifications", map[string]interface{}{
		"event":              cfg.Notifications.EventNotifications,
		"email":              cfg.Notifications.EmailNotifications,
		"push":               cfg.Notifications.PushNotifications,
		"telegram_chat_id":   cfg.Notifications.TelegramChatID,
		"email_to":           cfg.Notifications.EmailTo,
		"sweep_interval_min": cfg.Notifications.SweepIntervalMin,
		"digest_time":        cfg.Notifications.DigestTime,
	})
	v.Set("backend", cfg.Backend)
	v.Set("mail", cfg.Mail)
	v.Set("api", cfg.API)
	v.Set("gcal", cfg.GCal)
	v.Set("assistant", cfg.Assistant)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
