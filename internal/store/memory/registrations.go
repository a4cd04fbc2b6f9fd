package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/sportsreg/sportsreg/internal/registrations"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// RegistrationRepository stores registrations.
type RegistrationRepository struct {
	db *DB
}

// AlreadyRegistered reports whether userID holds a registration for eventID
// either directly or through one of their teams.
func (r *RegistrationRepository) AlreadyRegistered(_ context.Context, userID, eventID int64) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.registered(userID, eventID), nil
}

func (r *RegistrationRepository) registered(userID, eventID int64) bool {
	for _, reg := range r.db.registrations {
		if reg.EventID != eventID {
			continue
		}
		if reg.UserID == userID {
			return true
		}
		if reg.TeamID != nil {
			if row, ok := r.db.teams[*reg.TeamID]; ok && slices.Contains(row.members, userID) {
				return true
			}
		}
	}
	return false
}

// Create inserts a registration. The duplicate rule of AlreadyRegistered is
// re-checked under the write lock.
func (r *RegistrationRepository) Create(_ context.Context, reg registrations.Registration) (*registrations.Registration, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[reg.UserID]; !ok {
		return nil, notFound("user")
	}
	event, ok := r.db.events[reg.EventID]
	if !ok {
		return nil, notFound("event")
	}
	if reg.TeamID != nil {
		if _, ok := r.db.teams[*reg.TeamID]; !ok {
			return nil, notFound("team")
		}
	}
	if r.registered(reg.UserID, reg.EventID) {
		return nil, fmt.Errorf("%w: registration already exists", shared.ErrConflict)
	}
	reg.ID = r.db.nextID()
	r.db.registrations[reg.ID] = reg
	reg.EventName = event.Name
	return &reg, nil
}

// Get loads a registration by id.
func (r *RegistrationRepository) Get(_ context.Context, id int64) (*registrations.Registration, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	reg, ok := r.db.registrations[id]
	if !ok {
		return nil, notFound("registration")
	}
	reg = r.withEvent(reg)
	return &reg, nil
}

// UpdateStatus changes the status of a registration.
func (r *RegistrationRepository) UpdateStatus(_ context.Context, id int64, status registrations.Status) (*registrations.Registration, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	reg, ok := r.db.registrations[id]
	if !ok {
		return nil, notFound("registration")
	}
	reg.Status = status
	r.db.registrations[id] = reg
	reg = r.withEvent(reg)
	return &reg, nil
}

// ListByUser returns the registrations held by userID, newest first.
func (r *RegistrationRepository) ListByUser(_ context.Context, userID int64) ([]registrations.Registration, error) {
	out := r.filter(func(reg registrations.Registration) bool { return reg.UserID == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ListByEvent returns the registrations of eventID in arrival order.
func (r *RegistrationRepository) ListByEvent(_ context.Context, eventID int64) ([]registrations.Registration, error) {
	out := r.filter(func(reg registrations.Registration) bool { return reg.EventID == eventID })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RegistrationRepository) filter(keep func(registrations.Registration) bool) []registrations.Registration {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []registrations.Registration
	for _, reg := range r.db.registrations {
		if keep(reg) {
			out = append(out, r.withEvent(reg))
		}
	}
	return out
}

// withEvent must be called with mu held.
func (r *RegistrationRepository) withEvent(reg registrations.Registration) registrations.Registration {
	if event, ok := r.db.events[reg.EventID]; ok {
		reg.EventName = event.Name
	}
	return reg
}

// TeamRepository stores teams and memberships.
type TeamRepository struct {
	db *DB
}

// CreateTeam inserts a team with its creator as the first member.
func (r *TeamRepository) CreateTeam(_ context.Context, team registrations.Team) (*registrations.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[team.CreatedBy]; !ok {
		return nil, notFound("user")
	}
	if team.EventID != nil {
		if _, ok := r.db.events[*team.EventID]; !ok {
			return nil, notFound("event")
		}
	}
	team.ID = r.db.nextID()
	team.Members = nil
	r.db.teams[team.ID] = &teamRow{team: team, members: []int64{team.CreatedBy}}
	return r.snapshot(team.ID), nil
}

// GetTeam loads a team with its members.
func (r *TeamRepository) GetTeam(_ context.Context, id int64) (*registrations.Team, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if _, ok := r.db.teams[id]; !ok {
		return nil, notFound("team")
	}
	return r.snapshot(id), nil
}

// IsMember reports whether userID belongs to teamID.
func (r *TeamRepository) IsMember(_ context.Context, teamID, userID int64) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	row, ok := r.db.teams[teamID]
	if !ok {
		return false, nil
	}
	return slices.Contains(row.members, userID), nil
}

// AddMember adds userID to teamID.
func (r *TeamRepository) AddMember(_ context.Context, teamID, userID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.teams[teamID]
	if !ok {
		return notFound("team")
	}
	if _, ok := r.db.users[userID]; !ok {
		return notFound("user")
	}
	if slices.Contains(row.members, userID) {
		return fmt.Errorf("%w: team member already exists", shared.ErrConflict)
	}
	row.members = append(row.members, userID)
	return nil
}

// snapshot must be called with mu held.
func (r *TeamRepository) snapshot(id int64) *registrations.Team {
	row := r.db.teams[id]
	team := row.team
	team.Members = make([]registrations.Member, 0, len(row.members))
	for _, userID := range row.members {
		user := r.db.users[userID]
		team.Members = append(team.Members, registrations.Member{UserID: user.ID, Name: user.Name, Email: user.Email})
	}
	sort.Slice(team.Members, func(i, j int) bool { return team.Members[i].UserID < team.Members[j].UserID })
	return &team
}
