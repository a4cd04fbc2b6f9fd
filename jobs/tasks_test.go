package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsreg/sportsreg/internal/auth"
	jobmetrics "github.com/sportsreg/sportsreg/internal/jobs"
	"github.com/sportsreg/sportsreg/internal/notifications"
	"github.com/sportsreg/sportsreg/internal/store/memory"
)

func newNotifyJob(t *testing.T) (*NotifyJob, *memory.DB, *prometheus.Registry) {
	t.Helper()
	db := memory.New()
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	return NewNotifyJob(notifications.NewService(db.Notifications(), nil), nil, metrics), db, reg
}

func TestNewRegistrationNotifyTask(t *testing.T) {
	notice := notifications.Notice{UserID: 3, RegistrationID: 8, EventID: 2, Kind: notifications.KindRegistrationCreated, Status: "pending"}
	task, err := NewRegistrationNotifyTask(notice)
	require.NoError(t, err)
	assert.Equal(t, TaskRegistrationNotify, task.Type())

	var decoded notifications.Notice
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, notice, decoded)
}

func TestNotifyJobDeliversNotice(t *testing.T) {
	job, db, reg := newNotifyJob(t)
	ctx := context.Background()
	user, err := db.Users().Insert(ctx, auth.NewUser{Name: "Pat", Email: "pat@example.com", PasswordHash: "x", Role: auth.RoleParticipant})
	require.NoError(t, err)

	task, err := NewRegistrationNotifyTask(notifications.Notice{UserID: user.ID, RegistrationID: 1, EventID: 1, Kind: notifications.KindRegistrationStatus, Status: "confirmed"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(ctx, task))

	logs, err := db.Notifications().ListLogs(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].MessageContent, "confirmed")
	count, err := testutil.GatherAndCount(reg, "sportsreg_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotifyJobSkipsRetryForPoisonTasks(t *testing.T) {
	job, _, _ := newNotifyJob(t)
	ctx := context.Background()

	err := job.Handle(ctx, asynq.NewTask(TaskRegistrationNotify, []byte("{not json")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	unknown, err := NewRegistrationNotifyTask(notifications.Notice{UserID: 1, Kind: "carrier_pigeon"})
	require.NoError(t, err)
	err = job.Handle(ctx, unknown)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	anonymous, err := NewRegistrationNotifyTask(notifications.Notice{Kind: notifications.KindRegistrationCreated})
	require.NoError(t, err)
	err = job.Handle(ctx, anonymous)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestNotifyJobNotConfigured(t *testing.T) {
	var job *NotifyJob
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskRegistrationNotify, nil)))
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{})
	require.Error(t, err)
}

func TestHealthWithoutBroker(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, nil).MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"retry":0,"broker":false}`, rr.Body.String())
}
