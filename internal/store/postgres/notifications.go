package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sportsreg/sportsreg/internal/notifications"
)

// NotificationRepository stores the communication log.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// InsertLog records a delivered message.
func (r *NotificationRepository) InsertLog(ctx context.Context, entry notifications.Log) (*notifications.Log, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO communication_logs (user_id, message_type, message_content, sent_date)
VALUES ($1, $2, $3, $4)
RETURNING id`, entry.UserID, entry.MessageType, entry.MessageContent, entry.SentDate).Scan(&entry.ID)
	if err != nil {
		return nil, mapError(err, "communication log")
	}
	return &entry, nil
}

// ListLogs returns the messages sent to userID, newest first.
func (r *NotificationRepository) ListLogs(ctx context.Context, userID int64) ([]notifications.Log, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, message_type, message_content, sent_date
FROM communication_logs
WHERE user_id = $1
ORDER BY sent_date DESC, id DESC`, userID)
	if err != nil {
		return nil, mapError(err, "communication logs")
	}
	defer rows.Close()
	var out []notifications.Log
	for rows.Next() {
		var entry notifications.Log
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.MessageType, &entry.MessageContent, &entry.SentDate); err != nil {
			return nil, mapError(err, "communication logs")
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "communication logs")
	}
	return out, nil
}
