package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/event-service/internal/domain"
)

// NotificationRepository encapsulates notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	// CreateIfAbsent inserts unless an unread notification already exists for
	// the same (user, event) pair. Returns whether a row was inserted.
	CreateIfAbsent(ctx context.Context, notification *domain.Notification) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) (*domain.Notification, error)
	// DeleteByEvent removes every notification tied to the event and returns
	// how many rows went away.
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, event_id, message)
        VALUES ($1, $2, $3)
        RETURNING id, read, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.UserID,
		notification.EventID,
		notification.Message,
	).Scan(&notification.ID, &notification.Read, &notification.CreatedAt)
}

func (r *notificationRepository) CreateIfAbsent(ctx context.Context, notification *domain.Notification) (bool, error) {
	const query = `
        INSERT INTO notifications (user_id, event_id, message)
        SELECT $1, $2, $3
        WHERE NOT EXISTS (
            SELECT 1 FROM notifications
            WHERE user_id = $1 AND event_id = $2 AND read = FALSE
        )`
	cmd, err := r.pool.Exec(ctx, query,
		notification.UserID,
		notification.EventID,
		notification.Message,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, event_id, message, read, created_at
         FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE event_id=$1`, eventID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	const query = `
        UPDATE notifications SET read=TRUE
        WHERE id=$1
        RETURNING id, user_id, event_id, message, read, created_at`
	var n domain.Notification
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.EventID, &n.Message, &n.Read, &n.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}
