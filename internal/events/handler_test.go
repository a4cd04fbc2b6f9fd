package events_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/events"
	"github.com/sportsreg/sportsreg/internal/rbac"
	"github.com/sportsreg/sportsreg/internal/store/memory"
	_ "github.com/sportsreg/sportsreg/testing"
)

type harness struct {
	t      *testing.T
	router http.Handler
	db     *memory.DB
	tokens *auth.TokenService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tokens, err := auth.NewTokenService([]byte("events-secret"), time.Hour)
	require.NoError(t, err)
	db := memory.New()
	guard := rbac.Middleware{Tokens: tokens, Principals: db.Users()}
	handler := events.NewHandler(nil, events.NewService(db.Events(), nil, nil), guard)
	r := chi.NewRouter()
	r.Route("/api/events", handler.MountRoutes)
	return &harness{t: t, router: r, db: db, tokens: tokens}
}

func (h *harness) user(email string, role auth.Role) string {
	h.t.Helper()
	u, err := h.db.Users().Insert(context.Background(), auth.NewUser{Name: email, Email: email, PasswordHash: "x", Role: role})
	require.NoError(h.t, err)
	token, _, err := h.tokens.Issue(u.ID)
	require.NoError(h.t, err)
	return token
}

func (h *harness) do(method, path, token, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

const eventBody = `{"name":"River Run","event_date":"2026-09-12","venue":"Riverside","category":"running","description":"10k","registration_deadline":"2026-09-01","fee":15}`

func (h *harness) createEvent(token string) int64 {
	h.t.Helper()
	rr := h.do(http.MethodPost, "/api/events", token, eventBody)
	require.Equal(h.t, http.StatusCreated, rr.Code, rr.Body.String())
	var created events.Event
	require.NoError(h.t, json.Unmarshal(rr.Body.Bytes(), &created))
	return created.ID
}

func TestHandlerCreateRequiresOrganizerOrAdmin(t *testing.T) {
	h := newHarness(t)
	participant := h.user("pat@example.com", auth.RoleParticipant)
	organizer := h.user("olga@example.com", auth.RoleOrganizer)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/api/events", "", eventBody).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/events", participant, eventBody).Code)

	rr := h.do(http.MethodPost, "/api/events", organizer, eventBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "upcoming", created["status"])
	assert.Equal(t, "2026-09-12", created["event_date"])
	assert.Equal(t, "olga@example.com", created["organizer_name"])
}

func TestHandlerCreateValidation(t *testing.T) {
	h := newHarness(t)
	organizer := h.user("olga@example.com", auth.RoleOrganizer)

	cases := map[string]string{
		"missing name":  `{"event_date":"2026-09-12","venue":"v","category":"c","description":"d","registration_deadline":"2026-09-01","fee":1}`,
		"bad date":      `{"name":"n","event_date":"12/09/2026","venue":"v","category":"c","description":"d","registration_deadline":"2026-09-01","fee":1}`,
		"negative fee":  `{"name":"n","event_date":"2026-09-12","venue":"v","category":"c","description":"d","registration_deadline":"2026-09-01","fee":-5}`,
		"missing fee":   `{"name":"n","event_date":"2026-09-12","venue":"v","category":"c","description":"d","registration_deadline":"2026-09-01"}`,
		"unknown state": `{"name":"n","event_date":"2026-09-12","venue":"v","category":"c","description":"d","registration_deadline":"2026-09-01","fee":1,"status":"postponed"}`,
		"not json":      `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := h.do(http.MethodPost, "/api/events", organizer, body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestHandlerPublicReads(t *testing.T) {
	h := newHarness(t)
	organizer := h.user("olga@example.com", auth.RoleOrganizer)
	id := h.createEvent(organizer)

	rr := h.do(http.MethodGet, "/api/events", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("X-Total-Count"))

	rr = h.do(http.MethodGet, fmt.Sprintf("/api/events/%d", id), "", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/events/999", "", "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/events/abc", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/events?status=postponed", "", "").Code)
}

func TestHandlerOwnershipRules(t *testing.T) {
	h := newHarness(t)
	owner := h.user("olga@example.com", auth.RoleOrganizer)
	rival := h.user("otto@example.com", auth.RoleOrganizer)
	admin := h.user("root@example.com", auth.RoleAdmin)
	participant := h.user("pat@example.com", auth.RoleParticipant)
	id := h.createEvent(owner)
	path := fmt.Sprintf("/api/events/%d", id)
	update := strings.Replace(eventBody, "River Run", "River Run II", 1)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, path, participant, update).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, path, rival, update).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPut, "/api/events/999", rival, update).Code)
	// Admins pass the guard without an owner lookup; the service reports the miss.
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPut, "/api/events/999", admin, update).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/events/999", admin, "").Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodDelete, path, rival, "").Code)

	rr := h.do(http.MethodPut, path, owner, update)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "River Run II")

	rr = h.do(http.MethodPut, path, admin, eventBody)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = h.do(http.MethodDelete, path, admin, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Event deleted successfully")
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, "", "").Code)
}
