package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/shared"
)

const userColumns = `id, name, email, password, phone, age, gender, role, created_at`

// UserRepository stores principals.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// FindByID loads a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user")
	}
	return user, nil
}

// FindByEmail loads a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user")
	}
	return user, nil
}

// Insert creates a user. A taken email is reported as a conflict.
func (r *UserRepository) Insert(ctx context.Context, in auth.NewUser) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO users (name, email, password, phone, age, gender, role)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+userColumns,
		in.Name, in.Email, in.PasswordHash, in.Phone, in.Age, in.Gender, string(in.Role))
	user, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user")
	}
	return user, nil
}

// ListUsers returns one page of users, optionally filtered by role.
func (r *UserRepository) ListUsers(ctx context.Context, role auth.Role, page shared.Pagination) ([]auth.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE ($1::text = '' OR role = $1::text)`, string(role)).Scan(&total); err != nil {
		return nil, 0, mapError(err, "users")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users
WHERE ($1::text = '' OR role = $1::text)
ORDER BY id
LIMIT $2 OFFSET $3`, string(role), page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, mapError(err, "users")
	}
	defer rows.Close()
	var users []auth.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, mapError(err, "users")
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, "users")
	}
	return users, total, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		user auth.User
		role string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Phone, &user.Age, &user.Gender, &role, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Role = auth.Role(role)
	return &user, nil
}
