// Package memory implements the storage ports on mutex-guarded maps. It keeps
// the relational rules of the postgres schema: unique emails, foreign keys and
// one registration per user and event.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/events"
	"github.com/sportsreg/sportsreg/internal/notifications"
	"github.com/sportsreg/sportsreg/internal/registrations"
	"github.com/sportsreg/sportsreg/internal/shared"
)

type teamRow struct {
	team    registrations.Team
	members []int64
}

// DB holds every table. The repository views share it.
type DB struct {
	mu            sync.RWMutex
	now           func() time.Time
	seq           int64
	users         map[int64]auth.User
	emails        map[string]int64
	events        map[int64]events.Event
	teams         map[int64]*teamRow
	registrations map[int64]registrations.Registration
	logs          []notifications.Log
}

// New returns an empty database.
func New() *DB {
	return &DB{
		now:           time.Now,
		users:         make(map[int64]auth.User),
		emails:        make(map[string]int64),
		events:        make(map[int64]events.Event),
		teams:         make(map[int64]*teamRow),
		registrations: make(map[int64]registrations.Registration),
	}
}

// Users returns the user repository view.
func (db *DB) Users() *UserRepository { return &UserRepository{db: db} }

// Events returns the event repository view.
func (db *DB) Events() *EventRepository { return &EventRepository{db: db} }

// Registrations returns the registration repository view.
func (db *DB) Registrations() *RegistrationRepository { return &RegistrationRepository{db: db} }

// Teams returns the team repository view.
func (db *DB) Teams() *TeamRepository { return &TeamRepository{db: db} }

// Notifications returns the communication log view.
func (db *DB) Notifications() *NotificationRepository { return &NotificationRepository{db: db} }

// nextID must be called with mu held for writing.
func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", shared.ErrNotFound, what)
}
