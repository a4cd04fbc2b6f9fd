package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/sportsreg/sportsreg/testing"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	handler := NewHandler(nil, newTestService(t, newStubRepository()))
	r := chi.NewRouter()
	r.Route("/api/auth", handler.MountRoutes)
	return r
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const registerBody = `{"name":"Ada","email":"ada@example.com","password":"pw","phone":"0812","age":30,"gender":"female"}`

func TestHandlerRegisterAndLogin(t *testing.T) {
	router := newTestRouter(t)

	rr := post(t, router, "/api/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var sess struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sess))
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "participant", sess.User["role"])
	assert.NotContains(t, rr.Body.String(), "password")

	rr = post(t, router, "/api/auth/register", registerBody)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	rr = post(t, router, "/api/auth/login", `{"email":"ada@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = post(t, router, "/api/auth/login", `{"email":"ada@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid email or password")
}

func TestHandlerRegisterValidation(t *testing.T) {
	router := newTestRouter(t)

	cases := map[string]struct {
		body string
		code int
	}{
		"empty body":     {"", http.StatusBadRequest},
		"malformed":      {"{", http.StatusBadRequest},
		"missing age":    {`{"name":"A","email":"a@example.com","password":"pw","phone":"1","gender":"m"}`, http.StatusBadRequest},
		"bad email":      {`{"name":"A","email":"nope","password":"pw","phone":"1","age":3,"gender":"m"}`, http.StatusBadRequest},
		"unknown role":   {`{"name":"A","email":"a@example.com","password":"pw","phone":"1","age":3,"gender":"m","role":"root"}`, http.StatusBadRequest},
		"admin rejected": {`{"name":"A","email":"a@example.com","password":"pw","phone":"1","age":3,"gender":"m","role":"admin"}`, http.StatusForbidden},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr := post(t, router, "/api/auth/register", tc.body)
			assert.Equal(t, tc.code, rr.Code, rr.Body.String())
		})
	}
}
