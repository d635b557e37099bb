package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	def := DefaultAppConfig()
	assert.Equal(t, def.Display, cfg.Display)
	assert.Equal(t, def.Backend, cfg.Backend)
	assert.True(t, cfg.Notifications.EventNotifications)
	assert.Equal(t, "08:00", cfg.Notifications.DigestTime)
}

func TestLoadConfig_ReadsFileAndSanitizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
display:
  view_mode: fortnight
  zoom: 2
notifications:
  push: true
  telegram_chat_id: 42
  sweep_interval_min: -1
backend:
  enabled: true
  base_url: http://backend:5000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "week", cfg.Display.ViewMode)
	assert.Equal(t, 2.0, cfg.Display.Zoom)
	assert.True(t, cfg.Notifications.PushNotifications)
	assert.True(t, cfg.Notifications.EventNotifications)
	assert.Equal(t, int64(42), cfg.Notifications.TelegramChatID)
	assert.Equal(t, 30, cfg.Notifications.SweepIntervalMin)
	assert.True(t, cfg.Backend.Enabled)
	assert.Equal(t, "http://backend:5000", cfg.Backend.BaseURL)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("CRONOGRAMA_DISPLAY_VIEW_MODE", "month")
	t.Setenv("CRONOGRAMA_API_ADDR", ":9999")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "month", cfg.Display.ViewMode)
	assert.Equal(t, ":9999", cfg.API.Addr)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultAppConfig()
	cfg.Display.ViewMode = "month"
	cfg.Notifications.EmailNotifications = true
	cfg.Notifications.EmailTo = "pcp@example.com"
	cfg.Mail.IMAPHost = "imap.example.com"

	require.NoError(t, SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "month", got.Display.ViewMode)
	assert.True(t, got.Notifications.EmailNotifications)
	assert.Equal(t, "pcp@example.com", got.Notifications.EmailTo)
	assert.Equal(t, "imap.example.com", got.Mail.IMAPHost)
}
