package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sportsreg/sportsreg/internal/shared"
)

// Service renders notices and records them in the communication log.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Deliver records notice for its user.
func (s *Service) Deliver(ctx context.Context, notice Notice) (*Log, error) {
	if notice.UserID <= 0 {
		return nil, fmt.Errorf("%w: notice without user", shared.ErrValidation)
	}
	content, err := Render(notice)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.InsertLog(ctx, Log{
		UserID:         notice.UserID,
		MessageType:    string(notice.Kind),
		MessageContent: content,
		SentDate:       s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("notification delivered",
		slog.Int64("user_id", notice.UserID),
		slog.Int64("registration_id", notice.RegistrationID),
		slog.String("kind", string(notice.Kind)))
	return entry, nil
}

// History returns the messages recorded for a user, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]Log, error) {
	return s.repo.ListLogs(ctx, userID)
}

// Render produces the message body for notice.
func Render(notice Notice) (string, error) {
	switch notice.Kind {
	case KindRegistrationCreated:
		return fmt.Sprintf("Your registration #%d for event #%d was received and is %s.",
			notice.RegistrationID, notice.EventID, notice.Status), nil
	case KindRegistrationStatus:
		return fmt.Sprintf("Your registration #%d for event #%d is now %s.",
			notice.RegistrationID, notice.EventID, notice.Status), nil
	default:
		return "", fmt.Errorf("%w: unknown notice kind %q", shared.ErrValidation, notice.Kind)
	}
}

// Inline delivers notices synchronously. It stands in for the queue when no
// broker is configured.
type Inline struct {
	Service *Service
}

// Notify implements Notifier.
func (n Inline) Notify(ctx context.Context, notice Notice) error {
	if n.Service == nil {
		return nil
	}
	_, err := n.Service.Deliver(ctx, notice)
	return err
}

var _ Notifier = Inline{}
