package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsreg/sportsreg/internal/shared"
)

type stubRepository struct {
	mu   sync.Mutex
	logs []Log
	err  error
}

func (r *stubRepository) InsertLog(_ context.Context, entry Log) (*Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	entry.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, entry)
	return &entry, nil
}

func (r *stubRepository) ListLogs(_ context.Context, userID int64) ([]Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Log
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].UserID == userID {
			out = append(out, r.logs[i])
		}
	}
	return out, nil
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestRender(t *testing.T) {
	created, err := Render(Notice{Kind: KindRegistrationCreated, RegistrationID: 7, EventID: 3, Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, "Your registration #7 for event #3 was received and is pending.", created)

	status, err := Render(Notice{Kind: KindRegistrationStatus, RegistrationID: 7, EventID: 3, Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "Your registration #7 for event #3 is now confirmed.", status)

	_, err = Render(Notice{Kind: "sms_blast"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeliverRecordsLog(t *testing.T) {
	repo := &stubRepository{}
	svc := newTestService(repo)

	entry, err := svc.Deliver(context.Background(), Notice{UserID: 5, RegistrationID: 9, EventID: 2, Kind: KindRegistrationStatus, Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), entry.UserID)
	assert.Equal(t, "registration_status", entry.MessageType)
	assert.Contains(t, entry.MessageContent, "cancelled")
	assert.Equal(t, time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC), entry.SentDate)

	history, err := svc.History(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestDeliverRejectsBadNotices(t *testing.T) {
	repo := &stubRepository{}
	svc := newTestService(repo)

	_, err := svc.Deliver(context.Background(), Notice{Kind: KindRegistrationCreated})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Deliver(context.Background(), Notice{UserID: 1, Kind: "unknown"})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, repo.logs)
}

func TestInlineNotifier(t *testing.T) {
	repo := &stubRepository{}
	notifier := Inline{Service: newTestService(repo)}

	require.NoError(t, notifier.Notify(context.Background(), Notice{UserID: 1, Kind: KindRegistrationCreated, Status: "pending"}))
	assert.Len(t, repo.logs, 1)

	repo.err = errors.New("disk full")
	require.Error(t, notifier.Notify(context.Background(), Notice{UserID: 1, Kind: KindRegistrationCreated}))

	require.NoError(t, Inline{}.Notify(context.Background(), Notice{UserID: 1}))
}
