package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sportsreg/sportsreg/internal/platform/db"
	"github.com/sportsreg/sportsreg/internal/registrations"
	"github.com/sportsreg/sportsreg/internal/shared"
)

const registrationColumns = `r.id, r.user_id, r.team_id, r.event_id, COALESCE(e.name, ''), r.registration_status, r.registration_date`

const registrationFrom = ` FROM registrations r LEFT JOIN events e ON e.id = r.event_id`

// RegistrationRepository stores registrations.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// AlreadyRegistered reports whether userID holds a registration for eventID
// either directly or through one of their teams.
func (r *RegistrationRepository) AlreadyRegistered(ctx context.Context, userID, eventID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (
    SELECT 1 FROM registrations r
    WHERE r.event_id = $2
      AND (r.user_id = $1 OR r.team_id IN (SELECT team_id FROM team_members WHERE user_id = $1))
)`, userID, eventID).Scan(&exists)
	if err != nil {
		return false, mapError(err, "registration")
	}
	return exists, nil
}

// Create inserts a registration unless userID already holds one for the
// event directly or through a team. A skipped insert is reported as a
// conflict.
func (r *RegistrationRepository) Create(ctx context.Context, reg registrations.Registration) (*registrations.Registration, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO registrations (user_id, team_id, event_id, registration_status, registration_date)
SELECT $1, $2, $3, $4, $5
WHERE NOT EXISTS (
    SELECT 1 FROM registrations r
    WHERE r.event_id = $3
      AND (r.user_id = $1 OR r.team_id IN (SELECT team_id FROM team_members WHERE user_id = $1))
)
RETURNING id`,
		reg.UserID, reg.TeamID, reg.EventID, string(reg.Status), reg.RegistrationDate,
	).Scan(&reg.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: registration already exists", shared.ErrConflict)
	}
	if err != nil {
		return nil, mapError(err, "registration")
	}
	return &reg, nil
}

// Get loads a registration by id.
func (r *RegistrationRepository) Get(ctx context.Context, id int64) (*registrations.Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx, `SELECT `+registrationColumns+registrationFrom+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "registration")
	}
	return reg, nil
}

// UpdateStatus changes the status of a registration.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id int64, status registrations.Status) (*registrations.Registration, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE registrations SET registration_status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return nil, mapError(err, "registration")
	}
	if tag.RowsAffected() == 0 {
		return nil, mapError(pgx.ErrNoRows, "registration")
	}
	return r.Get(ctx, id)
}

// ListByUser returns the registrations held by userID, newest first.
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID int64) ([]registrations.Registration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+registrationFrom+` WHERE r.user_id = $1 ORDER BY r.registration_date DESC, r.id DESC`, userID)
}

// ListByEvent returns the registrations of eventID in arrival order.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID int64) ([]registrations.Registration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+registrationFrom+` WHERE r.event_id = $1 ORDER BY r.registration_date, r.id`, eventID)
}

func (r *RegistrationRepository) list(ctx context.Context, query string, args ...any) ([]registrations.Registration, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "registrations")
	}
	defer rows.Close()
	var out []registrations.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, mapError(err, "registrations")
		}
		out = append(out, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "registrations")
	}
	return out, nil
}

func scanRegistration(row pgx.Row) (*registrations.Registration, error) {
	var (
		reg    registrations.Registration
		status string
	)
	if err := row.Scan(&reg.ID, &reg.UserID, &reg.TeamID, &reg.EventID, &reg.EventName, &status, &reg.RegistrationDate); err != nil {
		return nil, err
	}
	reg.Status = registrations.Status(status)
	return &reg, nil
}

// TeamRepository stores teams and memberships.
type TeamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs a TeamRepository.
func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

// CreateTeam inserts a team and its creator's membership atomically.
func (r *TeamRepository) CreateTeam(ctx context.Context, team registrations.Team) (*registrations.Team, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO teams (team_name, event_id, created_by, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`, team.TeamName, team.EventID, team.CreatedBy, team.CreatedAt).Scan(&team.ID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`, team.ID, team.CreatedBy)
		return err
	})
	if err != nil {
		return nil, mapError(err, "team")
	}
	return r.GetTeam(ctx, team.ID)
}

// GetTeam loads a team with its members.
func (r *TeamRepository) GetTeam(ctx context.Context, id int64) (*registrations.Team, error) {
	var team registrations.Team
	err := r.pool.QueryRow(ctx, `SELECT id, team_name, event_id, created_by, created_at FROM teams WHERE id = $1`, id).
		Scan(&team.ID, &team.TeamName, &team.EventID, &team.CreatedBy, &team.CreatedAt)
	if err != nil {
		return nil, mapError(err, "team")
	}
	rows, err := r.pool.Query(ctx, `SELECT u.id, u.name, u.email
FROM team_members m JOIN users u ON u.id = m.user_id
WHERE m.team_id = $1
ORDER BY u.id`, id)
	if err != nil {
		return nil, mapError(err, "team members")
	}
	defer rows.Close()
	team.Members = []registrations.Member{}
	for rows.Next() {
		var m registrations.Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email); err != nil {
			return nil, mapError(err, "team members")
		}
		team.Members = append(team.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "team members")
	}
	return &team, nil
}

// IsMember reports whether userID belongs to teamID.
func (r *TeamRepository) IsMember(ctx context.Context, teamID, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`, teamID, userID).Scan(&exists)
	if err != nil {
		return false, mapError(err, "team member")
	}
	return exists, nil
}

// AddMember adds userID to teamID.
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID int64) error {
	if _, err := r.pool.Exec(ctx, `INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`, teamID, userID); err != nil {
		return mapError(err, "team member")
	}
	return nil
}
