package memory

import (
	"context"

	"github.com/sportsreg/sportsreg/internal/notifications"
)

// NotificationRepository stores the communication log.
type NotificationRepository struct {
	db *DB
}

// InsertLog records a delivered message.
func (r *NotificationRepository) InsertLog(_ context.Context, entry notifications.Log) (*notifications.Log, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[entry.UserID]; !ok {
		return nil, notFound("user")
	}
	entry.ID = r.db.nextID()
	r.db.logs = append(r.db.logs, entry)
	return &entry, nil
}

// ListLogs returns the messages sent to userID, newest first.
func (r *NotificationRepository) ListLogs(_ context.Context, userID int64) ([]notifications.Log, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []notifications.Log
	for i := len(r.db.logs) - 1; i >= 0; i-- {
		if r.db.logs[i].UserID == userID {
			out = append(out, r.db.logs[i])
		}
	}
	return out, nil
}
