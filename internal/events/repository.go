package events

import "context"

// Repository defines persistence for events. Get, Update and Delete return
// shared.ErrNotFound when the event does not exist.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Event, int, error)
	Get(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, event Event) (*Event, error)
	Update(ctx context.Context, event Event) (*Event, error)
	Delete(ctx context.Context, id int64) error
}
