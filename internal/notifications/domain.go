package notifications

import (
	"context"
	"time"
)

// Kind classifies a notification.
type Kind string

const (
	KindRegistrationCreated Kind = "registration_created"
	KindRegistrationStatus  Kind = "registration_status"
)

// Notice describes a registration change the participant should hear about.
type Notice struct {
	UserID         int64  `json:"user_id"`
	RegistrationID int64  `json:"registration_id"`
	EventID        int64  `json:"event_id"`
	Kind           Kind   `json:"kind"`
	Status         string `json:"status"`
}

// Log is a delivered message as recorded in communication_logs.
type Log struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	MessageType    string    `json:"message_type"`
	MessageContent string    `json:"message_content"`
	SentDate       time.Time `json:"sent_date"`
}

// Repository persists delivered messages.
type Repository interface {
	InsertLog(ctx context.Context, entry Log) (*Log, error)
	ListLogs(ctx context.Context, userID int64) ([]Log, error)
}

// Notifier hands a notice off for delivery. Implementations may deliver
// asynchronously.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}
