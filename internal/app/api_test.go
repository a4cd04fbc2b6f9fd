package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/observability"
	"github.com/sportsreg/sportsreg/internal/store"
	"github.com/sportsreg/sportsreg/internal/store/memory"
	_ "github.com/sportsreg/sportsreg/testing"
)

func init() {
	auth.HashCost = bcrypt.MinCost
}

type client struct {
	t       *testing.T
	handler http.Handler
	db      *memory.DB
}

func testConfig() *Config {
	return &Config{
		AppEnv:                 "test",
		AppRequestTimeout:      5 * time.Second,
		StoreBackend:           store.BackendMemory,
		JWTSecret:              "app-test-secret",
		JWTTTL:                 time.Hour,
		JWTIssuer:              "sportsreg",
		EventsCacheTTL:         time.Minute,
		RateLimitPerMinute:     10000,
		AuthRateLimitPerMinute: 10000,
	}
}

func newClient(t *testing.T, cfg *Config) *client {
	t.Helper()
	db := memory.New()
	api, err := NewAPI(APIDeps{
		Config:  cfg,
		Store:   store.NewMemory(db),
		Metrics: observability.NewMetrics(),
		Clock:   func() time.Time { return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return &client{t: t, handler: api.Handler, db: db}
}

func (c *client) do(method, path, token, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	return rr
}

func (c *client) register(name, email, role string) (int64, string) {
	c.t.Helper()
	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":"secret","phone":"0812","age":28,"gender":"female","role":%q}`, name, email, role)
	rr := c.do(http.MethodPost, "/api/auth/register", "", body)
	require.Equal(c.t, http.StatusCreated, rr.Code, rr.Body.String())
	var sess struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(c.t, json.Unmarshal(rr.Body.Bytes(), &sess))
	return sess.User.ID, sess.Token
}

func (c *client) admin() string {
	c.t.Helper()
	hash, err := auth.Hash("rootpw")
	require.NoError(c.t, err)
	_, err = c.db.Users().Insert(context.Background(), auth.NewUser{Name: "Root", Email: "root@example.com", PasswordHash: hash, Role: auth.RoleAdmin})
	require.NoError(c.t, err)
	rr := c.do(http.MethodPost, "/api/auth/login", "", `{"email":"root@example.com","password":"rootpw"}`)
	require.Equal(c.t, http.StatusOK, rr.Code, rr.Body.String())
	var sess struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(rr.Body.Bytes(), &sess))
	return sess.Token
}

const lakeSwim = `{"name":"Lake Swim","event_date":"2026-09-12","venue":"North Lake","category":"swimming","description":"1500m open water","registration_deadline":"2026-09-01","fee":25}`

func TestEventLifecycleAcrossRoles(t *testing.T) {
	c := newClient(t, testConfig())
	_, participant := c.register("Pat", "pat@example.com", "")
	_, organizer := c.register("Olga", "olga@example.com", "organizer")
	_, rival := c.register("Otto", "otto@example.com", "organizer")
	admin := c.admin()

	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/api/events", participant, lakeSwim).Code)

	rr := c.do(http.MethodPost, "/api/events", organizer, lakeSwim)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var event struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &event))
	path := fmt.Sprintf("/api/events/%d", event.ID)

	renamed := strings.Replace(lakeSwim, "Lake Swim", "Lake Swim 2026", 1)
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPut, path, rival, renamed).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodPut, path, admin, renamed).Code)

	rr = c.do(http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Lake Swim 2026")
}

func TestRegistrationFlowRecordsNotifications(t *testing.T) {
	c := newClient(t, testConfig())
	_, participant := c.register("Pat", "pat@example.com", "participant")
	_, organizer := c.register("Olga", "olga@example.com", "organizer")

	rr := c.do(http.MethodPost, "/api/events", organizer, lakeSwim)
	require.Equal(t, http.StatusCreated, rr.Code)
	var event struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &event))

	rr = c.do(http.MethodPost, "/api/registrations", participant, fmt.Sprintf(`{"event_id":%d}`, event.ID))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var reg struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reg))

	rr = c.do(http.MethodPut, fmt.Sprintf("/api/registrations/%d", reg.ID), organizer, `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = c.do(http.MethodGet, "/api/notifications/mine", participant, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var logs []struct {
		MessageType string `json:"message_type"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &logs))
	require.Len(t, logs, 2)
	assert.Equal(t, "registration_status", logs[0].MessageType)
	assert.Equal(t, "registration_created", logs[1].MessageType)

	rr = c.do(http.MethodGet, "/api/notifications/mine", organizer, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestAdminSignupIsGated(t *testing.T) {
	c := newClient(t, testConfig())
	body := `{"name":"Eve","email":"eve@example.com","password":"pw","phone":"1","age":30,"gender":"f","role":"admin"}`
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/api/auth/register", "", body).Code)

	cfg := testConfig()
	cfg.AuthAllowAdminSignup = true
	c = newClient(t, cfg)
	assert.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/auth/register", "", body).Code)
}

func TestUsersEndpoints(t *testing.T) {
	c := newClient(t, testConfig())
	patID, participant := c.register("Pat", "pat@example.com", "")
	c.register("Olga", "olga@example.com", "organizer")
	admin := c.admin()

	rr := c.do(http.MethodGet, "/api/users/me", participant, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), fmt.Sprintf(`"id":%d`, patID))
	assert.NotContains(t, rr.Body.String(), "password")

	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/api/users", participant, "").Code)
	rr = c.do(http.MethodGet, "/api/users?role=organizer", admin, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "olga@example.com")
	assert.NotContains(t, rr.Body.String(), "pat@example.com")
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/users?role=wizard", admin, "").Code)
}

func TestRouterDefaults(t *testing.T) {
	c := newClient(t, testConfig())

	rr := c.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = c.do(http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	rr = c.do(http.MethodGet, "/jobs/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/users/me", "", "").Code)
	rr = c.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "sportsreg_auth_failures_total")
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRateLimitPerMinute = 2
	c := newClient(t, cfg)

	login := `{"email":"nobody@example.com","password":"x"}`
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/auth/login", "", login).Code)
	}
	rr := c.do(http.MethodPost, "/api/auth/login", "", login)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/events", "", "").Code)
}
