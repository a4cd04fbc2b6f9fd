package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sportsreg/sportsreg/internal/events"
	"github.com/sportsreg/sportsreg/internal/shared"
)

const eventColumns = `e.id, e.name, e.event_date, e.venue, e.category, e.description, e.image, e.status,
e.registration_deadline, e.fee, e.organizer_id, COALESCE(u.name, ''), e.created_at`

const eventFrom = ` FROM events e LEFT JOIN users u ON u.id = e.organizer_id`

// EventRepository stores events.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// List returns one page of events matching filter and the total match count.
func (r *EventRepository) List(ctx context.Context, filter events.Filter) ([]events.Event, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("e.status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("e.category = $%d", len(args)))
	}
	if filter.OrganizerID > 0 {
		args = append(args, filter.OrganizerID)
		conds = append(conds, fmt.Sprintf("e.organizer_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events e`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "events")
	}

	page := shared.NewPagination(filter.Page, filter.PerPage, total)
	args = append(args, page.PerPage, page.Offset())
	query := `SELECT ` + eventColumns + eventFrom + where +
		fmt.Sprintf(" ORDER BY e.event_date, e.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err, "events")
	}
	defer rows.Close()
	var items []events.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, mapError(err, "events")
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, "events")
	}
	return items, total, nil
}

// Get loads an event by id.
func (r *EventRepository) Get(ctx context.Context, id int64) (*events.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+eventFrom+` WHERE e.id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		return nil, mapError(err, "event")
	}
	return event, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event events.Event) (*events.Event, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO events
(name, event_date, venue, category, description, image, status, registration_deadline, fee, organizer_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`,
		event.Name, event.EventDate.Time, event.Venue, event.Category, event.Description, event.Image,
		string(event.Status), event.RegistrationDeadline.Time, event.Fee, event.OrganizerID,
	).Scan(&id)
	if err != nil {
		return nil, mapError(err, "event")
	}
	return r.Get(ctx, id)
}

// Update overwrites the mutable columns of an event.
func (r *EventRepository) Update(ctx context.Context, event events.Event) (*events.Event, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE events SET
name = $2, event_date = $3, venue = $4, category = $5, description = $6, image = $7,
status = $8, registration_deadline = $9, fee = $10
WHERE id = $1`,
		event.ID, event.Name, event.EventDate.Time, event.Venue, event.Category, event.Description,
		event.Image, string(event.Status), event.RegistrationDeadline.Time, event.Fee,
	)
	if err != nil {
		return nil, mapError(err, "event")
	}
	if tag.RowsAffected() == 0 {
		return nil, mapError(pgx.ErrNoRows, "event")
	}
	return r.Get(ctx, event.ID)
}

// Delete removes an event and, by cascade, its registrations.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "event")
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "event")
	}
	return nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var (
		event  events.Event
		status string
	)
	if err := row.Scan(
		&event.ID, &event.Name, &event.EventDate.Time, &event.Venue, &event.Category, &event.Description,
		&event.Image, &status, &event.RegistrationDeadline.Time, &event.Fee, &event.OrganizerID,
		&event.OrganizerName, &event.CreatedAt,
	); err != nil {
		return nil, err
	}
	event.Status = events.Status(status)
	event.EventDate = shared.NewDate(event.EventDate.Time)
	event.RegistrationDeadline = shared.NewDate(event.RegistrationDeadline.Time)
	return &event, nil
}
