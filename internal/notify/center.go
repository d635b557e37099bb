// Package notify keeps the notification inbox and fans new notifications
// out to the enabled delivery channels.
package notify

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/nhle/cronograma/internal/model"
)

// Store is the persistence the Center needs.
type Store interface {
	AddNotification(ctx context.Context, n model.Notification) (*model.Notification, error)
	GetNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	ClearNotifications(ctx context.Context) error
	UnreadNotificationCount(ctx context.Context) (int, error)
	NotificationRefExists(ctx context.Context, ref string) (bool, error)
}

// Sink delivers a notification outside the application.
type Sink interface {
	Name() string
	Send(ctx context.Context, n model.Notification) error
}

// Sinks are the optional delivery channels. Push is gated by
// PushNotifications and Email by EmailNotifications.
type Sinks struct {
	Push  Sink
	Email Sink
}

// Center is the notification inbox shared by the TUI, the API and the
// background jobs.
type Center struct {
	store Store
	sinks Sinks

	mu       sync.RWMutex
	settings model.NotificationSettings

	// OnSettingsChange, when set, persists settings after UpdateSettings.
	OnSettingsChange func(model.NotificationSettings) error
}

// NewCenter creates a notification center.
func NewCenter(st Store, settings model.NotificationSettings, sinks Sinks) *Center {
	return &Center{store: st, settings: settings, sinks: sinks}
}

// Add stores a notification and delivers it to the enabled sinks. Sink
// failures are logged and do not fail the call.
func (c *Center) Add(ctx context.Context, n model.Notification) (*model.Notification, error) {
	saved, err := c.store.AddNotification(ctx, n)
	if err != nil {
		return nil, err
	}
	c.Deliver(ctx, *saved)
	return saved, nil
}

// AddOnce is Add for notifications carrying a Ref. It reports false when a
// notification with the same Ref is still kept.
func (c *Center) AddOnce(ctx context.Context, n model.Notification) (*model.Notification, bool, error) {
	if n.Ref != "" {
		exists, err := c.store.NotificationRefExists(ctx, n.Ref)
		if err != nil {
			return nil, false, err
		}
		if exists {
			return nil, false, nil
		}
	}
	saved, err := c.Add(ctx, n)
	if err != nil {
		return nil, false, err
	}
	return saved, true, nil
}

// AddEvent records a calendar notification. It does nothing and returns
// nil when event notifications are disabled.
func (c *Center) AddEvent(ctx context.Context, title, message string) (*model.Notification, error) {
	if !c.Settings().EventNotifications {
		return nil, nil
	}
	return c.Add(ctx, model.Notification{
		Title:    title,
		Message:  message,
		Type:     model.NotificationInfo,
		Category: model.CategoryEvent,
	})
}

// Deliver sends n to the enabled sinks without storing it.
func (c *Center) Deliver(ctx context.Context, n model.Notification) {
	settings := c.Settings()
	if settings.PushNotifications && c.sinks.Push != nil {
		c.send(ctx, c.sinks.Push, n)
	}
	if settings.EmailNotifications && c.sinks.Email != nil {
		c.send(ctx, c.sinks.Email, n)
	}
}

func (c *Center) send(ctx context.Context, s Sink, n model.Notification) {
	if err := s.Send(ctx, n); err != nil {
		log.Printf("notify: %s delivery of %q failed: %v", s.Name(), n.Title, err)
	}
}

// List returns the kept notifications, newest first.
func (c *Center) List(ctx context.Context) ([]model.Notification, error) {
	return c.store.GetNotifications(ctx)
}

// UnreadCount returns how many notifications are unread.
func (c *Center) UnreadCount(ctx context.Context) (int, error) {
	return c.store.UnreadNotificationCount(ctx)
}

func (c *Center) MarkRead(ctx context.Context, id string) error {
	return c.store.MarkNotificationRead(ctx, id)
}

func (c *Center) MarkAllRead(ctx context.Context) error {
	return c.store.MarkAllNotificationsRead(ctx)
}

// Clear removes a single notification.
func (c *Center) Clear(ctx context.Context, id string) error {
	return c.store.DeleteNotification(ctx, id)
}

// ClearAll removes every notification.
func (c *Center) ClearAll(ctx context.Context) error {
	return c.store.ClearNotifications(ctx)
}

// Settings returns the current channel toggles.
func (c *Center) Settings() model.NotificationSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// UpdateSettings replaces the channel toggles and persists them through
// OnSettingsChange.
func (c *Center) UpdateSettings(s model.NotificationSettings) error {
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()

	if c.OnSettingsChange != nil {
		if err := c.OnSettingsChange(s); err != nil {
			return fmt.Errorf("saving notification settings: %w", err)
		}
	}
	return nil
}
