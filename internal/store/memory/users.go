package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// UserRepository stores principals.
type UserRepository struct {
	db *DB
}

// FindByID loads a user by id.
func (r *UserRepository) FindByID(_ context.Context, id int64) (*auth.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	user, ok := r.db.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &user, nil
}

// FindByEmail loads a user by email.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	id, ok := r.db.emails[email]
	if !ok {
		return nil, notFound("user")
	}
	user := r.db.users[id]
	return &user, nil
}

// Insert creates a user. A taken email is reported as a conflict.
func (r *UserRepository) Insert(_ context.Context, in auth.NewUser) (*auth.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, taken := r.db.emails[in.Email]; taken {
		return nil, fmt.Errorf("%w: user already exists", shared.ErrConflict)
	}
	user := auth.User{
		ID:           r.db.nextID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Phone:        in.Phone,
		Age:          in.Age,
		Gender:       in.Gender,
		Role:         in.Role,
		CreatedAt:    r.db.now().UTC(),
	}
	r.db.users[user.ID] = user
	r.db.emails[user.Email] = user.ID
	return &user, nil
}

// ListUsers returns one page of users, optionally filtered by role.
func (r *UserRepository) ListUsers(_ context.Context, role auth.Role, page shared.Pagination) ([]auth.User, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var all []auth.User
	for _, user := range r.db.users {
		if role != "" && user.Role != role {
			continue
		}
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), len(all), nil
}

func paginate[T any](items []T, page shared.Pagination) []T {
	start := page.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + page.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
