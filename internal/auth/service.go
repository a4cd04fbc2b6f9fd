package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/sportsreg/sportsreg/internal/shared"
)

// RegisterInput carries the fields accepted on signup.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Age      int
	Gender   string
	Role     Role
}

// Service wraps authentication business rules.
type Service struct {
	repo             Repository
	tokens           *TokenService
	logger           *slog.Logger
	allowAdminSignup bool
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithAdminSignup allows principals to self-register with the admin role.
func WithAdminSignup(allow bool) ServiceOption {
	return func(s *Service) { s.allowAdminSignup = allow }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenService, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tokens exposes the token service used to mint sessions.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Register creates a principal and returns a fresh session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(norm.NFKC.String(in.Name))
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, shared.ErrMissingFields
	}
	if in.Role == "" {
		in.Role = RoleParticipant
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, in.Role)
	}
	if in.Role == RoleAdmin && !s.allowAdminSignup {
		return nil, fmt.Errorf("%w: admin accounts cannot self-register", shared.ErrForbidden)
	}

	existing, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, fmt.Errorf("%w: user already exists", shared.ErrConflict)
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	hashed, err := Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: password: %v", shared.ErrValidation, err)
	}
	user, err := s.repo.Insert(ctx, NewUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		Phone:        strings.TrimSpace(in.Phone),
		Age:          in.Age,
		Gender:       strings.TrimSpace(in.Gender),
		Role:         in.Role,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("principal registered", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	return s.session(user)
}

// Login validates email/password credentials and returns a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, shared.ErrMissingFields
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !Verify(password, user.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *Service) session(user *User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
