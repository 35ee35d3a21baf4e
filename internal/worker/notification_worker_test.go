package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontimely/admin-portal/internal/service"
)

type flakySender struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []service.EmailMessage
}

func (f *flakySender) Send(_ context.Context, msg service.EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("provider unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *flakySender) snapshot() (int, []service.EmailMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]service.EmailMessage(nil), f.sent...)
}

func TestEmailQueueDeliversWithRetry(t *testing.T) {
	sender := &flakySender{failures: 2}
	q := NewEmailQueue(sender, 4, nil)
	q.backoff = time.Millisecond
	q.Start(context.Background(), 1)

	require.NoError(t, q.Send(context.Background(), service.EmailMessage{To: "a@x.com"}))
	q.Stop()

	calls, sent := sender.snapshot()
	assert.Equal(t, 3, calls)
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].To)
}

func TestEmailQueueGivesUpAfterAttempts(t *testing.T) {
	sender := &flakySender{failures: 10}
	q := NewEmailQueue(sender, 1, nil)
	q.backoff = time.Millisecond
	q.Start(context.Background(), 1)

	require.NoError(t, q.Send(context.Background(), service.EmailMessage{To: "a@x.com"}))
	q.Stop()

	calls, sent := sender.snapshot()
	assert.Equal(t, 3, calls)
	assert.Empty(t, sent)
}

func TestEmailQueueFullAndClosed(t *testing.T) {
	q := NewEmailQueue(&flakySender{}, 1, nil)

	require.NoError(t, q.Send(context.Background(), service.EmailMessage{To: "a@x.com"}))
	assert.ErrorIs(t, q.Send(context.Background(), service.EmailMessage{To: "b@x.com"}), ErrQueueFull)

	q.Stop()
	assert.ErrorIs(t, q.Send(context.Background(), service.EmailMessage{To: "c@x.com"}), ErrQueueClosed)
}
