package model

import "time"

// NotificationType is the severity of a notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// NotificationCategory groups notifications by what produced them.
type NotificationCategory string

const (
	CategoryEvent  NotificationCategory = "event"
	CategorySystem NotificationCategory = "system"
	CategoryTask   NotificationCategory = "task"
)

// MaxNotifications is the number of notifications kept; older ones are pruned.
const MaxNotifications = 50

// Notification represents an alert surfaced to the user.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// Title is the short headline.
	Title string `json:"title" db:"title"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Type is the severity used for coloring.
	Type NotificationType `json:"type" db:"type"`

	// Category tells which subsystem produced the notification.
	Category NotificationCategory `json:"category" db:"category"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read" db:"read"`

	// Ref is an optional deduplication key (e.g. "overdue:<task>:<day>").
	Ref string `json:"ref,omitempty" db:"ref"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"timestamp" db:"created_at"`
}

// NotificationSettings toggles the notification channels.
type NotificationSettings struct {
	EventNotifications bool `mapstructure:"event" yaml:"event" json:"event_notifications"`
	EmailNotifications bool `mapstructure:"email" yaml:"email" json:"email_notifications"`
	PushNotifications  bool `mapstructure:"push" yaml:"push" json:"push_notifications"`
}
