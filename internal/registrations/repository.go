package registrations

import "context"

// Repository persists registrations. Get and UpdateStatus return
// shared.ErrNotFound for unknown ids; Create returns shared.ErrConflict when
// the user already holds a registration for the event.
type Repository interface {
	// AlreadyRegistered reports whether userID is registered for eventID
	// directly or through any team they belong to.
	AlreadyRegistered(ctx context.Context, userID, eventID int64) (bool, error)
	Create(ctx context.Context, reg Registration) (*Registration, error)
	Get(ctx context.Context, id int64) (*Registration, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Registration, error)
	ListByUser(ctx context.Context, userID int64) ([]Registration, error)
	ListByEvent(ctx context.Context, eventID int64) ([]Registration, error)
}

// TeamRepository persists teams and their membership. CreateTeam stores the
// creator as the first member in the same unit of work. AddMember returns
// shared.ErrNotFound for an unknown team or user and shared.ErrConflict for
// an existing member.
type TeamRepository interface {
	CreateTeam(ctx context.Context, team Team) (*Team, error)
	GetTeam(ctx context.Context, id int64) (*Team, error)
	IsMember(ctx context.Context, teamID, userID int64) (bool, error)
	AddMember(ctx context.Context, teamID, userID int64) error
}
