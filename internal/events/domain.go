package events

import (
	"time"

	"github.com/sportsreg/sportsreg/internal/shared"
)

// Status is the lifecycle state of an event.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Event is a sports event open for registration until its deadline.
type Event struct {
	ID                   int64       `json:"id"`
	Name                 string      `json:"name"`
	EventDate            shared.Date `json:"event_date"`
	Venue                string      `json:"venue"`
	Category             string      `json:"category"`
	Description          string      `json:"description"`
	Image                string      `json:"image"`
	Status               Status      `json:"status"`
	RegistrationDeadline shared.Date `json:"registration_deadline"`
	Fee                  float64     `json:"fee"`
	OrganizerID          int64       `json:"organizer_id"`
	OrganizerName        string      `json:"organizer_name,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
}

// RegistrationOpen reports whether registrations are accepted on day today.
// The deadline day itself is still open.
func (e Event) RegistrationOpen(today shared.Date) bool {
	return !e.RegistrationDeadline.Before(today)
}

// Input carries the mutable fields of an event. Image and Status are optional;
// on update a nil value keeps the stored one.
type Input struct {
	Name                 string
	EventDate            shared.Date
	Venue                string
	Category             string
	Description          string
	Image                *string
	Status               *Status
	RegistrationDeadline shared.Date
	Fee                  float64
}

// Filter narrows event listings.
type Filter struct {
	Status      Status
	Category    string
	OrganizerID int64
	Page        int
	PerPage     int
}

// ListResult is one page of events.
type ListResult struct {
	Events     []Event           `json:"events"`
	Pagination shared.Pagination `json:"pagination"`
}
