package notifications

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sportsreg/sportsreg/internal/platform/httpx"
	"github.com/sportsreg/sportsreg/internal/rbac"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// Handler exposes the caller's communication log.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: guard}
}

// MountRoutes registers notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Authenticate).Get("/mine", h.mine)
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	principal := rbac.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	logs, err := h.service.History(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if logs == nil {
		logs = []Log{}
	}
	httpx.JSON(w, http.StatusOK, logs)
}
