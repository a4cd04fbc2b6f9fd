package users

import (
	"context"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, role auth.Role, page shared.Pagination) ([]auth.User, int, error)
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListResult is one page of users.
type ListResult struct {
	Users      []auth.User       `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

// ListUsers returns users, optionally restricted to one role.
func (s *Service) ListUsers(ctx context.Context, role auth.Role, page, perPage int) (*ListResult, error) {
	p := shared.NewPagination(page, perPage, 0)
	items, total, err := s.repo.ListUsers(ctx, role, p)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []auth.User{}
	}
	return &ListResult{Users: items, Pagination: shared.NewPagination(p.Page, p.PerPage, total)}, nil
}
