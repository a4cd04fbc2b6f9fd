package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/sportsreg/sportsreg/internal/jobs"
	"github.com/sportsreg/sportsreg/internal/notifications"
	"github.com/sportsreg/sportsreg/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRegistrationNotify delivers a registration notice to a participant.
	TaskRegistrationNotify = "registration:notify"
)

// NewRegistrationNotifyTask constructs an Asynq task for notice.
func NewRegistrationNotifyTask(notice notifications.Notice) (*asynq.Task, error) {
	data, err := json.Marshal(notice)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRegistrationNotify, data, asynq.MaxRetry(5)), nil
}

// NotifyJob writes queued notices to the communication log.
type NotifyJob struct {
	Notifications *notifications.Service
	Logger        *slog.Logger
	Metrics       *jobmetrics.Metrics
}

// NewNotifyJob wires dependencies for the notify handler.
func NewNotifyJob(service *notifications.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *NotifyJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifyJob{Notifications: service, Logger: logger, Metrics: metrics}
}

// Handle processes TaskRegistrationNotify tasks. Payloads that can never
// succeed are not retried.
func (j *NotifyJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Notifications == nil {
		return errors.New("registration notify: handler not configured")
	}
	tracker := j.Metrics.Track(TaskRegistrationNotify)
	defer func() { err = tracker.End(err) }()

	var notice notifications.Notice
	if err := json.Unmarshal(t.Payload(), &notice); err != nil {
		j.Logger.Warn("registration notify: bad payload", slog.Any("error", err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if _, err := j.Notifications.Deliver(ctx, notice); err != nil {
		if errors.Is(err, shared.ErrValidation) || errors.Is(err, shared.ErrNotFound) {
			j.Logger.Warn("registration notify: dropped", slog.Any("error", err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}
