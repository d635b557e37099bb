package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/cronograma/internal/model"
)

// AddNotification inserts a notification and prunes everything beyond the
// newest model.MaxNotifications.
func (s *SQLiteStore) AddNotification(
	ctx context.Context,
	n model.Notification,
) (*model.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.CreatedAt = n.CreatedAt.UTC()
	if n.Type == "" {
		n.Type = model.NotificationInfo
	}
	if n.Category == "" {
		n.Category = model.CategorySystem
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notifications (id, title, message, type, category, read, ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Message, n.Type, n.Category,
		boolToInt(n.Read), n.Ref, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM notifications WHERE id NOT IN (
			SELECT id FROM notifications
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)`, model.MaxNotifications)
	if err != nil {
		return nil, fmt.Errorf("pruning notifications: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing notification: %w", err)
	}
	return &n, nil
}

// GetNotifications returns all kept notifications, newest first.
func (s *SQLiteStore) GetNotifications(ctx context.Context) ([]model.Notification, error) {
	var list []model.Notification
	err := s.db.SelectContext(ctx, &list,
		"SELECT * FROM notifications ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	return list, nil
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return mustAffect(result, "notification", id)
}

// MarkAllNotificationsRead marks every notification as read.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE read = 0"); err != nil {
		return fmt.Errorf("marking notifications as read: %w", err)
	}
	return nil
}

// DeleteNotification removes one notification.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	return mustAffect(result, "notification", id)
}

// ClearNotifications removes every notification.
func (s *SQLiteStore) ClearNotifications(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}
	return nil
}

// UnreadNotificationCount returns the number of unread notifications.
func (s *SQLiteStore) UnreadNotificationCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM notifications WHERE read = 0"); err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return n, nil
}

// NotificationRefExists reports whether a notification with the given
// deduplication key is still kept.
func (s *SQLiteStore) NotificationRefExists(ctx context.Context, ref string) (bool, error) {
	if ref == "" {
		return false, nil
	}
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM notifications WHERE ref = ?", ref); err != nil {
		return false, fmt.Errorf("checking notification ref %s: %w", ref, err)
	}
	return n > 0, nil
}
