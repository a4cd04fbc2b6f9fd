package events

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/platform/httpx"
	"github.com/sportsreg/sportsreg/internal/rbac"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// Handler exposes the event endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: guard, validator: httpx.NewValidator()}
}

// MountRoutes registers event routes. Reads are public.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.With(h.rbac.RequireAny(auth.RoleAdmin, auth.RoleOrganizer)).Post("/", h.create)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(
			rbac.AnyRole(auth.RoleAdmin, auth.RoleOrganizer),
			rbac.OwnerOrAdmin(h.OwnerLookup()),
		))
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

// OwnerLookup resolves the organizer of the event addressed by the {id} URL
// parameter.
func (h *Handler) OwnerLookup() rbac.OwnerLookup {
	return func(r *http.Request) (int64, error) {
		id, err := EventID(r)
		if err != nil {
			return 0, err
		}
		return h.service.OwnerOf(r.Context(), id)
	}
}

// EventID parses the {id} URL parameter. Non-numeric ids are reported as not
// found.
func EventID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: event", shared.ErrNotFound)
	}
	return id, nil
}

type eventRequest struct {
	Name                 string   `json:"name" validate:"required,max=100"`
	EventDate            string   `json:"event_date" validate:"required,datetime=2006-01-02"`
	Venue                string   `json:"venue" validate:"required,max=100"`
	Category             string   `json:"category" validate:"required,max=50"`
	Description          string   `json:"description" validate:"required"`
	Image                *string  `json:"image" validate:"omitempty,max=255"`
	Status               *Status  `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
	RegistrationDeadline string   `json:"registration_deadline" validate:"required,datetime=2006-01-02"`
	Fee                  *float64 `json:"fee" validate:"required,gte=0"`
}

func (req eventRequest) input() (Input, error) {
	eventDate, err := shared.ParseDate(req.EventDate)
	if err != nil {
		return Input{}, err
	}
	deadline, err := shared.ParseDate(req.RegistrationDeadline)
	if err != nil {
		return Input{}, err
	}
	return Input{
		Name:                 req.Name,
		EventDate:            eventDate,
		Venue:                req.Venue,
		Category:             req.Category,
		Description:          req.Description,
		Image:                req.Image,
		Status:               req.Status,
		RegistrationDeadline: deadline,
		Fee:                  *req.Fee,
	}, nil
}

func (h *Handler) decode(r *http.Request) (Input, error) {
	var req eventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return Input{}, err
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		return Input{}, err
	}
	return req.input()
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{Status: Status(q.Get("status")), Category: q.Get("category")}
	filter.Page, filter.PerPage = shared.PageFromQuery(q)
	if filter.Status != "" && !filter.Status.Valid() {
		httpx.RespondError(w, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, filter.Status))
		return
	}
	if raw := q.Get("organizer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: organizer_id", shared.ErrValidation))
			return
		}
		filter.OrganizerID = id
	}
	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, "list events", err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(result.Pagination.Total))
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := EventID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	event, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get event", err)
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	in, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	event, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, "create event", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, event)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := EventID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	in, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	event, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, "update event", err)
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := EventID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete event", err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.MessageResponse{Message: "Event deleted successfully"})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
