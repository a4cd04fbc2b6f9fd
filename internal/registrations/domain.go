package registrations

import (
	"time"
)

// Status is the review state of a registration.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Registration records a participant's entry into an event, optionally on
// behalf of a team.
type Registration struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	TeamID           *int64    `json:"team_id"`
	EventID          int64     `json:"event_id"`
	EventName        string    `json:"event_name,omitempty"`
	Status           Status    `json:"registration_status"`
	RegistrationDate time.Time `json:"registration_date"`
}

// Input is the request to register the caller for an event.
type Input struct {
	EventID int64
	TeamID  *int64
}

// Team groups participants under a manager.
type Team struct {
	ID        int64     `json:"id"`
	TeamName  string    `json:"team_name"`
	EventID   *int64    `json:"event_id"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	Members   []Member  `json:"members"`
}

// Member is a user belonging to a team.
type Member struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// TeamInput is the request to create a team.
type TeamInput struct {
	TeamName string
	EventID  *int64
}
