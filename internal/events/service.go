package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// Service orchestrates event operations. Authorization is enforced by the
// HTTP guard before mutating calls reach it.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
	group  singleflight.Group

	// generation is bumped on every mutation so listings started afterwards
	// never join a fill that began before it.
	generation atomic.Int64
}

// NewService constructs a Service. cache may be nil.
func NewService(repo Repository, cache Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List returns a page of events, served from cache when possible.
func (s *Service) List(ctx context.Context, filter Filter) (*ListResult, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	filter.Page, filter.PerPage = page.Page, page.PerPage

	generation := s.generation.Load()
	useCache := s.cache != nil
	var version int64
	if useCache {
		var err error
		if version, err = s.cache.Version(ctx); err != nil {
			s.logger.Warn("events cache version", slog.Any("error", err))
			useCache = false
		}
	}
	if useCache {
		if cached, ok, err := s.cache.GetList(ctx, version, filter); err != nil {
			s.logger.Warn("events cache read", slog.Any("error", err))
		} else if ok {
			return cached, nil
		}
	}

	// The fill runs detached from ctx; each caller waits on its own ctx.
	fillCtx := context.WithoutCancel(ctx)
	key := fmt.Sprintf("%d:%d:%s", generation, version, filterKey(filter))
	ch := s.group.DoChan(key, func() (any, error) {
		items, total, err := s.repo.List(fillCtx, filter)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []Event{}
		}
		result := &ListResult{Events: items, Pagination: shared.NewPagination(filter.Page, filter.PerPage, total)}
		if useCache {
			if err := s.cache.SetList(fillCtx, version, filter, result); err != nil {
				s.logger.Warn("events cache write", slog.Any("error", err))
			}
		}
		return result, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ListResult), nil
	}
}

// Get fetches an event by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Event, error) {
	if id <= 0 {
		return nil, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// OwnerOf returns the organizer id of an event.
func (s *Service) OwnerOf(ctx context.Context, id int64) (int64, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return event.OrganizerID, nil
}

// Create inserts a new event owned by organizer.
func (s *Service) Create(ctx context.Context, organizer *auth.User, in Input) (*Event, error) {
	if organizer == nil {
		return nil, shared.ErrUnauthorized
	}
	event := Event{
		Status:      StatusUpcoming,
		OrganizerID: organizer.ID,
	}
	if err := apply(&event, in); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("event created", slog.Int64("event_id", created.ID), slog.Int64("organizer_id", organizer.ID))
	return created, nil
}

// Update replaces the mutable fields of an event. Omitted image and status
// keep their stored values.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(event, in); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, *event)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes an event.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("event deleted", slog.Int64("event_id", id))
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("events cache invalidate", slog.Any("error", err))
	}
}

func apply(event *Event, in Input) error {
	if err := validate(in); err != nil {
		return err
	}
	event.Name = strings.TrimSpace(in.Name)
	event.EventDate = in.EventDate
	event.Venue = strings.TrimSpace(in.Venue)
	event.Category = strings.TrimSpace(in.Category)
	event.Description = in.Description
	event.RegistrationDeadline = in.RegistrationDeadline
	event.Fee = in.Fee
	if in.Image != nil {
		event.Image = *in.Image
	}
	if in.Status != nil {
		event.Status = *in.Status
	}
	return nil
}

func validate(in Input) error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if in.EventDate.IsZero() {
		missing = append(missing, "event_date")
	}
	if strings.TrimSpace(in.Venue) == "" {
		missing = append(missing, "venue")
	}
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}
	if in.RegistrationDeadline.IsZero() {
		missing = append(missing, "registration_deadline")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", shared.ErrMissingFields, strings.Join(missing, ", "))
	}
	if in.Fee < 0 {
		return fmt.Errorf("%w: fee must not be negative", shared.ErrValidation)
	}
	if in.Status != nil && !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *in.Status)
	}
	return nil
}
