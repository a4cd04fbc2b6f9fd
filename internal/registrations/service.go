package registrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/events"
	"github.com/sportsreg/sportsreg/internal/notifications"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// ErrRegistrationClosed is returned for absent events and events past their
// registration deadline alike.
var ErrRegistrationClosed = fmt.Errorf("%w: event not found or registration closed", shared.ErrNotFound)

// EventFinder loads events.
type EventFinder interface {
	Get(ctx context.Context, id int64) (*events.Event, error)
}

// UserFinder loads principals.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*auth.User, error)
}

// Service implements registration and team workflows.
type Service struct {
	repo     Repository
	teams    TeamRepository
	events   EventFinder
	users    UserFinder
	notifier notifications.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for the registration deadline.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a Service. notifier may be nil.
func NewService(repo Repository, teams TeamRepository, eventsRepo EventFinder, users UserFinder, notifier notifications.Notifier, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		teams:    teams,
		events:   eventsRepo,
		users:    users,
		notifier: notifier,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register enters principal into an event, optionally as a member of a team.
func (s *Service) Register(ctx context.Context, principal *auth.User, in Input) (*Registration, error) {
	if principal == nil {
		return nil, shared.ErrUnauthorized
	}
	event, err := s.events.Get(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrRegistrationClosed
		}
		return nil, err
	}
	if !event.RegistrationOpen(shared.NewDate(s.now())) {
		return nil, ErrRegistrationClosed
	}
	if in.TeamID != nil {
		member, err := s.teams.IsMember(ctx, *in.TeamID, principal.ID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, fmt.Errorf("%w: not a member of team %d", shared.ErrForbidden, *in.TeamID)
		}
	}
	exists, err := s.repo.AlreadyRegistered(ctx, principal.ID, event.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: already registered for this event", shared.ErrConflict)
	}
	reg, err := s.repo.Create(ctx, Registration{
		UserID:           principal.ID,
		TeamID:           in.TeamID,
		EventID:          event.ID,
		Status:           StatusPending,
		RegistrationDate: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	reg.EventName = event.Name
	s.logger.Info("registration created", slog.Int64("registration_id", reg.ID), slog.Int64("event_id", event.ID), slog.Int64("user_id", principal.ID))
	s.notify(ctx, notifications.KindRegistrationCreated, reg)
	return reg, nil
}

// UpdateStatus moves a registration to status.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) (*Registration, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", shared.ErrValidation, status)
	}
	reg, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("registration status updated", slog.Int64("registration_id", id), slog.String("status", string(status)))
	s.notify(ctx, notifications.KindRegistrationStatus, reg)
	return reg, nil
}

// Mine lists the registrations held by principal.
func (s *Service) Mine(ctx context.Context, principal *auth.User) ([]Registration, error) {
	if principal == nil {
		return nil, shared.ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, principal.ID)
}

// ForEvent lists the registrations of an event.
func (s *Service) ForEvent(ctx context.Context, eventID int64) ([]Registration, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListByEvent(ctx, eventID)
}

// CreateTeam creates a team managed by principal, who becomes its first
// member.
func (s *Service) CreateTeam(ctx context.Context, principal *auth.User, in TeamInput) (*Team, error) {
	if principal == nil {
		return nil, shared.ErrUnauthorized
	}
	name := strings.TrimSpace(norm.NFKC.String(in.TeamName))
	if name == "" {
		return nil, fmt.Errorf("%w: team_name", shared.ErrMissingFields)
	}
	if in.EventID != nil {
		if _, err := s.events.Get(ctx, *in.EventID); err != nil {
			return nil, err
		}
	}
	team, err := s.teams.CreateTeam(ctx, Team{
		TeamName:  name,
		EventID:   in.EventID,
		CreatedBy: principal.ID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("team created", slog.Int64("team_id", team.ID), slog.Int64("created_by", principal.ID))
	return team, nil
}

// Team returns a team with its members.
func (s *Service) Team(ctx context.Context, id int64) (*Team, error) {
	if id <= 0 {
		return nil, shared.ErrNotFound
	}
	return s.teams.GetTeam(ctx, id)
}

// TeamOwner returns the creator of a team.
func (s *Service) TeamOwner(ctx context.Context, id int64) (int64, error) {
	team, err := s.Team(ctx, id)
	if err != nil {
		return 0, err
	}
	return team.CreatedBy, nil
}

// AddMember adds userID to a team. Ownership is checked by the caller.
func (s *Service) AddMember(ctx context.Context, teamID, userID int64) (*Team, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", shared.ErrNotFound, userID)
		}
		return nil, err
	}
	member, err := s.teams.IsMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, fmt.Errorf("%w: user already in team", shared.ErrConflict)
	}
	if err := s.teams.AddMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	return s.teams.GetTeam(ctx, teamID)
}

func (s *Service) notify(ctx context.Context, kind notifications.Kind, reg *Registration) {
	if s.notifier == nil {
		return
	}
	notice := notifications.Notice{
		UserID:         reg.UserID,
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		Kind:           kind,
		Status:         string(reg.Status),
	}
	if err := s.notifier.Notify(ctx, notice); err != nil {
		s.logger.Warn("notify registration", slog.Int64("registration_id", reg.ID), slog.Any("error", err))
	}
}
