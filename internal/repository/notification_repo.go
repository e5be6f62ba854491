package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batilink/internal/model"
)

type NotificationRepository struct {
	db   DBTX
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: pool, pool: pool}
}

// CreateFor inserts a notification and fans it out to the given recipients
// in a single transaction.
func (r *NotificationRepository) CreateFor(ctx context.Context, n model.Notification, userIDs []int64) (model.Notification, error) {
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO notifications (title, body, kind) VALUES ($1, $2, $3)
			 RETURNING id, created_at, updated_at`,
			n.Title, n.Body, n.Kind).
			Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		for _, userID := range userIDs {
			_, err := tx.Exec(ctx,
				`INSERT INTO user_receives_notifications (user_id, notification_id)
				 VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, n.ID)
			if err != nil {
				return fmt.Errorf("deliver notification: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64) ([]model.UserNotification, error) {
	rows, err := r.db.Query(ctx,
		`SELECT n.id, n.title, n.body, n.kind, n.created_at, n.updated_at, urn.user_id, urn.read_at
		 FROM notifications n
		 JOIN user_receives_notifications urn ON urn.notification_id = n.id
		 WHERE urn.user_id = $1
		 ORDER BY n.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]model.UserNotification, 0)
	for rows.Next() {
		var n model.UserNotification
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Kind, &n.CreatedAt, &n.UpdatedAt, &n.UserID, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE user_receives_notifications SET read_at = now()
		 WHERE user_id = $1 AND notification_id = $2 AND read_at IS NULL`,
		userID, notificationID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM user_receives_notifications WHERE user_id = $1 AND notification_id = $2)`,
			userID, notificationID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check notification: %w", err)
		}
		if !exists {
			return model.ErrNotFound
		}
	}
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, userID, notificationID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM user_receives_notifications WHERE user_id = $1 AND notification_id = $2`,
		userID, notificationID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
