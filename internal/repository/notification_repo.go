package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ssonotify/internal/model"
)

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Insert persists an in-app notification row. sent_at defaults to now()
// in the schema, which is what the dedup window check reads back.
func (r *NotificationRepository) Insert(ctx context.Context, memberID string, category model.Category, title, body string) (int, error) {
	query := `
        INSERT INTO notifications (member_id, type, title, body, channel, is_read)
        VALUES ($1, $2, $3, $4, 'push', FALSE)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, memberID, string(category), title, body).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert notification",
			zap.String("member_id", memberID),
			zap.String("type", string(category)),
			zap.Error(err),
		)
		return 0, err
	}
	return id, nil
}

// SentWithin reports whether a notification of the same category was sent
// to the member within the given window, measured from the current wall
// clock at query time.
func (r *NotificationRepository) SentWithin(ctx context.Context, memberID string, category model.Category, window time.Duration) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM notifications
            WHERE member_id = $1
              AND type = $2
              AND sent_at >= $3
        )
    `
	since := time.Now().Add(-window)

	var exists bool
	err := r.db.QueryRow(ctx, query, memberID, string(category), since).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id int) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
