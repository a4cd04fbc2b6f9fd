package registrations

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/events"
	"github.com/sportsreg/sportsreg/internal/platform/httpx"
	"github.com/sportsreg/sportsreg/internal/rbac"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// Handler exposes registration and team endpoints.
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

// MountRoutes registers /api/registrations routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Authenticate).Post("/", h.register)
	r.With(h.rbac.Authenticate).Get("/mine", h.mine)
	r.With(h.rbac.RequireAny(auth.RoleAdmin, auth.RoleOrganizer)).Put("/{id}", h.updateStatus)
}

// MountEventRoutes registers registration routes nested under an event.
// owner resolves the organizer of the addressed event.
func (h *Handler) MountEventRoutes(r chi.Router, owner rbac.OwnerLookup) {
	r.With(h.rbac.Require(
		rbac.AnyRole(auth.RoleAdmin, auth.RoleOrganizer),
		rbac.OwnerOrAdmin(owner),
	)).Get("/{id}/registrations", h.forEvent)
}

// MountTeamRoutes registers /api/teams routes.
func (h *Handler) MountTeamRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(auth.RoleTeamManager, auth.RoleAdmin)).Post("/", h.createTeam)
	r.With(h.rbac.Authenticate).Get("/{id}", h.getTeam)
	r.With(h.rbac.Require(rbac.OwnerOrAdmin(h.teamOwner))).Post("/{id}/members", h.addMember)
}

type registerRequest struct {
	EventID int64  `json:"event_id" validate:"required,gt=0"`
	TeamID  *int64 `json:"team_id" validate:"omitempty,gt=0"`
}

type statusRequest struct {
	Status Status `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

type teamRequest struct {
	TeamName string `json:"team_name" validate:"required,max=100"`
	EventID  *int64 `json:"event_id" validate:"omitempty,gt=0"`
}

type memberRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	reg, err := h.service.Register(r.Context(), rbac.PrincipalFromContext(r.Context()), Input{EventID: req.EventID, TeamID: req.TeamID})
	if err != nil {
		h.fail(w, "register for event", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, reg)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "registration")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	reg, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.fail(w, "update registration status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, reg)
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	regs, err := h.service.Mine(r.Context(), rbac.PrincipalFromContext(r.Context()))
	if err != nil {
		h.fail(w, "list own registrations", err)
		return
	}
	if regs == nil {
		regs = []Registration{}
	}
	httpx.JSON(w, http.StatusOK, regs)
}

func (h *Handler) forEvent(w http.ResponseWriter, r *http.Request) {
	id, err := events.EventID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	regs, err := h.service.ForEvent(r.Context(), id)
	if err != nil {
		h.fail(w, "list event registrations", err)
		return
	}
	if regs == nil {
		regs = []Registration{}
	}
	httpx.JSON(w, http.StatusOK, regs)
}

func (h *Handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if !h.decode(w, r, &req) {
		return
	}
	team, err := h.service.CreateTeam(r.Context(), rbac.PrincipalFromContext(r.Context()), TeamInput{TeamName: req.TeamName, EventID: req.EventID})
	if err != nil {
		h.fail(w, "create team", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, team)
}

func (h *Handler) getTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "team")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	team, err := h.service.Team(r.Context(), id)
	if err != nil {
		h.fail(w, "get team", err)
		return
	}
	httpx.JSON(w, http.StatusOK, team)
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "team")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req memberRequest
	if !h.decode(w, r, &req) {
		return
	}
	team, err := h.service.AddMember(r.Context(), id, req.UserID)
	if err != nil {
		h.fail(w, "add team member", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, team)
}

func (h *Handler) teamOwner(r *http.Request) (int64, error) {
	id, err := pathID(r, "team")
	if err != nil {
		return 0, err
	}
	return h.service.TeamOwner(r.Context(), id)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if err := httpx.Validate(h.validator, dst); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func pathID(r *http.Request, resource string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s", shared.ErrNotFound, resource)
	}
	return id, nil
}
