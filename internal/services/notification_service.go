package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/database"
	"github.com/isdelr/haulboard-be/internal/models"
)

// NotificationServiceProvider defines the interface for notification services.
// Every method takes the owning user's id; rows belonging to someone else are
// reported as not found.
type NotificationServiceProvider interface {
	List(ctx context.Context, userID string, filter models.NotificationFilter) (models.NotificationPage, error)
	Get(ctx context.Context, userID, id string) (models.Notification, error)
	MarkRead(ctx context.Context, userID, id string, read bool) (models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	Create(ctx context.Context, input NewNotification) (models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	PurgeReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Publisher pushes freshly created notifications to connected clients.
type Publisher interface {
	PublishNotification(n models.Notification)
}

// NewNotification is the input for creating a notification.
type NewNotification struct {
	UserID  string
	Title   string
	Message string
	Type    models.NotificationType
}

// NotificationService stores per-user notifications.
type NotificationService struct {
	db        *database.DB
	publisher Publisher
	now       func() time.Time
}

// NewNotificationService creates a new NotificationService. publisher may be nil.
func NewNotificationService(db *database.DB, publisher Publisher) *NotificationService {
	return &NotificationService{db: db, publisher: publisher, now: time.Now}
}

const notificationColumns = "id, user_id, title, message, type, is_read, created_at"

func (s *NotificationService) List(ctx context.Context, userID string, filter models.NotificationFilter) (models.NotificationPage, error) {
	where := "user_id = ?"
	args := []any{userID}
	if filter.Read != nil {
		where += " AND is_read = ?"
		args = append(args, *filter.Read)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications WHERE "+where, args...).Scan(&total); err != nil {
		return models.NotificationPage{}, apperr.Internal("count notifications", err)
	}
	unread, err := s.CountUnread(ctx, userID)
	if err != nil {
		return models.NotificationPage{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE "+where+" ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		append(args, filter.Limit, (filter.Page-1)*filter.Limit)...)
	if err != nil {
		return models.NotificationPage{}, apperr.Internal("list notifications", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return models.NotificationPage{}, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return models.NotificationPage{}, apperr.Internal("list notifications", err)
	}

	return models.NotificationPage{
		Notifications: notifications,
		Pagination:    models.NewPagination(filter.Page, filter.Limit, total),
		UnreadCount:   unread,
	}, nil
}

func (s *NotificationService) Get(ctx context.Context, userID, id string) (models.Notification, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE id = ? AND user_id = ?", id, userID)
	return scanNotification(row)
}

// MarkRead sets the read flag on one of the user's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string, read bool) (models.Notification, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?", read, id, userID)
	if err != nil {
		return models.Notification{}, apperr.Internal("update notification", err)
	}
	if err := requireAffected(res, "notification not found"); err != nil {
		return models.Notification{}, err
	}
	return s.Get(ctx, userID, id)
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?", true, userID, false)
	if err != nil {
		return 0, apperr.Internal("mark all notifications read", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Internal("rows affected", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return apperr.Internal("delete notification", err)
	}
	return requireAffected(res, "notification not found")
}

// Create stores a notification for an existing user and publishes it.
func (s *NotificationService) Create(ctx context.Context, input NewNotification) (models.Notification, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return models.Notification{}, apperr.Validation("userId is required")
	}
	title, err := requireText("title", input.Title)
	if err != nil {
		return models.Notification{}, err
	}
	message, err := requireText("message", input.Message)
	if err != nil {
		return models.Notification{}, err
	}
	kind := input.Type
	if kind == "" {
		kind = models.NotificationInfo
	}
	if !kind.Valid() {
		return models.Notification{}, apperr.Validation("type is invalid")
	}

	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Notification{}, apperr.NotFound("user not found")
		}
		return models.Notification{}, apperr.Internal("look up notification recipient", err)
	}

	n := models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		CreatedAt: s.now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO notifications ("+notificationColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		n.ID, n.UserID, n.Title, n.Message, string(n.Type), n.Read, n.CreatedAt)
	if err != nil {
		return models.Notification{}, apperr.Internal("insert notification", err)
	}

	if s.publisher != nil {
		s.publisher.PublishNotification(n)
	}
	return n, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	var unread int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?", userID, false).Scan(&unread)
	if err != nil {
		return 0, apperr.Internal("count unread notifications", err)
	}
	return unread, nil
}

// PurgeReadOlderThan deletes read notifications created before cutoff. Unread ones are kept.
func (s *NotificationService) PurgeReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE is_read = ? AND created_at < ?", true, cutoff.UTC())
	if err != nil {
		return 0, apperr.Internal("purge notifications", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Internal("rows affected", err)
	}
	return n, nil
}

func scanNotification(scanner interface{ Scan(...any) error }) (models.Notification, error) {
	var n models.Notification
	var kind string
	if err := scanner.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &kind, &n.Read, &n.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Notification{}, apperr.NotFound("notification not found")
		}
		return models.Notification{}, apperr.Internal("scan notification", err)
	}
	n.Type = models.NotificationType(kind)
	return n, nil
}
