package auth

import "time"

// Role is the coarse permission class of a principal.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleOrganizer   Role = "organizer"
	RoleParticipant Role = "participant"
	RoleTeamManager Role = "team_manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleParticipant, RoleTeamManager:
		return true
	}
	return false
}

// User represents an authenticated principal. PasswordHash never leaves the
// server: it is excluded from JSON encoding.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Age          int       `json:"age,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser carries the fields persisted on registration.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Age          int
	Gender       string
	Role         Role
}

// Session is returned after a successful login or registration.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
