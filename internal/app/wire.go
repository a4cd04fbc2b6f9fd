package app

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/events"
	"github.com/sportsreg/sportsreg/internal/notifications"
	"github.com/sportsreg/sportsreg/internal/observability"
	"github.com/sportsreg/sportsreg/internal/rbac"
	"github.com/sportsreg/sportsreg/internal/registrations"
	"github.com/sportsreg/sportsreg/internal/store"
	"github.com/sportsreg/sportsreg/internal/users"
	"github.com/sportsreg/sportsreg/jobs"
)

// APIDeps carries the infrastructure the HTTP API is assembled from. Redis,
// Notifier and Inspector are optional.
type APIDeps struct {
	Config    *Config
	Logger    *slog.Logger
	Store     *store.Store
	Redis     *redis.Client
	Notifier  notifications.Notifier
	Inspector *asynq.Inspector
	Metrics   *observability.Metrics
	Clock     func() time.Time
}

// API is the assembled HTTP surface together with the services behind it.
type API struct {
	Handler       http.Handler
	Auth          *auth.Service
	Events        *events.Service
	Registrations *registrations.Service
	Notifications *notifications.Service
}

// NewAPI wires services, guard and handlers into a router.
func NewAPI(deps APIDeps) (*API, error) {
	if deps.Config == nil || deps.Store == nil {
		return nil, errors.New("app: config and store are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	tokenOpts := []auth.TokenOption{auth.WithIssuer(cfg.JWTIssuer)}
	if deps.Clock != nil {
		tokenOpts = append(tokenOpts, auth.WithClock(deps.Clock))
	}
	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTTTL, tokenOpts...)
	if err != nil {
		return nil, err
	}
	authService := auth.NewService(deps.Store.Users, tokens,
		auth.WithAdminSignup(cfg.AuthAllowAdminSignup),
		auth.WithLogger(logger),
	)

	guard := rbac.Middleware{
		Tokens:     tokens,
		Principals: deps.Store.Users,
		Logger:     logger,
	}
	if deps.Metrics != nil {
		guard.Failures = deps.Metrics
	}

	var eventsCache events.Cache
	if deps.Redis != nil {
		eventsCache = events.NewRedisCache(deps.Redis, cfg.EventsCacheTTL)
	}
	eventsService := events.NewService(deps.Store.Events, eventsCache, logger)

	notificationsService := notifications.NewService(deps.Store.Notifications, logger)
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.Inline{Service: notificationsService}
	}

	regOpts := []registrations.Option{registrations.WithLogger(logger)}
	if deps.Clock != nil {
		regOpts = append(regOpts, registrations.WithClock(deps.Clock))
	}
	registrationsService := registrations.NewService(
		deps.Store.Registrations,
		deps.Store.Teams,
		deps.Store.Events,
		deps.Store.Users,
		notifier,
		regOpts...,
	)

	router := NewRouter(RouterParams{
		Logger:               logger,
		Config:               cfg,
		AuthHandler:          auth.NewHandler(logger, authService),
		UsersHandler:         users.NewHandler(logger, users.NewService(deps.Store.Users), guard),
		EventsHandler:        events.NewHandler(logger, eventsService, guard),
		RegistrationsHandler: registrations.NewHandler(logger, registrationsService, guard),
		NotificationsHandler: notifications.NewHandler(logger, notificationsService, guard),
		JobHandler:           jobs.NewHandler(deps.Inspector, logger),
		Metrics:              deps.Metrics,
	})

	return &API{
		Handler:       router,
		Auth:          authService,
		Events:        eventsService,
		Registrations: registrationsService,
		Notifications: notificationsService,
	}, nil
}
