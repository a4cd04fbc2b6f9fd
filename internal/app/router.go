package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/events"
	"github.com/sportsreg/sportsreg/internal/notifications"
	"github.com/sportsreg/sportsreg/internal/observability"
	"github.com/sportsreg/sportsreg/internal/platform/httpx"
	"github.com/sportsreg/sportsreg/internal/registrations"
	"github.com/sportsreg/sportsreg/internal/users"
	"github.com/sportsreg/sportsreg/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	EventsHandler        *events.Handler
	RegistrationsHandler *registrations.Handler
	NotificationsHandler *notifications.Handler
	JobHandler           *jobs.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, http.StatusText(http.StatusNotFound), "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), "")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			authLimit := 10
			if params.Config != nil && params.Config.AuthRateLimitPerMinute > 0 {
				authLimit = params.Config.AuthRateLimitPerMinute
			}
			r.With(RateLimit(authLimit)).Route("/auth", params.AuthHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.EventsHandler != nil {
			r.Route("/events", func(r chi.Router) {
				params.EventsHandler.MountRoutes(r)
				if params.RegistrationsHandler != nil {
					params.RegistrationsHandler.MountEventRoutes(r, params.EventsHandler.OwnerLookup())
				}
			})
		}
		if params.RegistrationsHandler != nil {
			r.Route("/registrations", params.RegistrationsHandler.MountRoutes)
			r.Route("/teams", params.RegistrationsHandler.MountTeamRoutes)
		}
		if params.NotificationsHandler != nil {
			r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
