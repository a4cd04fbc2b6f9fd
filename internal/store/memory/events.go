package memory

import (
	"context"
	"sort"

	"github.com/sportsreg/sportsreg/internal/events"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// EventRepository stores events.
type EventRepository struct {
	db *DB
}

// List returns one page of events matching filter and the total match count.
func (r *EventRepository) List(_ context.Context, filter events.Filter) ([]events.Event, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var all []events.Event
	for _, event := range r.db.events {
		if filter.Status != "" && event.Status != filter.Status {
			continue
		}
		if filter.Category != "" && event.Category != filter.Category {
			continue
		}
		if filter.OrganizerID > 0 && event.OrganizerID != filter.OrganizerID {
			continue
		}
		all = append(all, r.withOrganizer(event))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].EventDate.Equal(all[j].EventDate.Time) {
			return all[i].EventDate.Before(all[j].EventDate)
		}
		return all[i].ID < all[j].ID
	})
	page := shared.NewPagination(filter.Page, filter.PerPage, len(all))
	return paginate(all, page), len(all), nil
}

// Get loads an event by id.
func (r *EventRepository) Get(_ context.Context, id int64) (*events.Event, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	event, ok := r.db.events[id]
	if !ok {
		return nil, notFound("event")
	}
	event = r.withOrganizer(event)
	return &event, nil
}

// Create inserts an event. The organizer must exist.
func (r *EventRepository) Create(_ context.Context, event events.Event) (*events.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[event.OrganizerID]; !ok {
		return nil, notFound("organizer")
	}
	event.ID = r.db.nextID()
	event.CreatedAt = r.db.now().UTC()
	r.db.events[event.ID] = event
	event = r.withOrganizer(event)
	return &event, nil
}

// Update overwrites the mutable fields of an event.
func (r *EventRepository) Update(_ context.Context, event events.Event) (*events.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.events[event.ID]
	if !ok {
		return nil, notFound("event")
	}
	event.OrganizerID = stored.OrganizerID
	event.CreatedAt = stored.CreatedAt
	event.OrganizerName = ""
	r.db.events[event.ID] = event
	event = r.withOrganizer(event)
	return &event, nil
}

// Delete removes an event and its registrations.
func (r *EventRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.events[id]; !ok {
		return notFound("event")
	}
	delete(r.db.events, id)
	for regID, reg := range r.db.registrations {
		if reg.EventID == id {
			delete(r.db.registrations, regID)
		}
	}
	for _, row := range r.db.teams {
		if row.team.EventID != nil && *row.team.EventID == id {
			row.team.EventID = nil
		}
	}
	return nil
}

// withOrganizer must be called with mu held.
func (r *EventRepository) withOrganizer(event events.Event) events.Event {
	if user, ok := r.db.users[event.OrganizerID]; ok {
		event.OrganizerName = user.Name
	}
	return event
}
