package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/service"
)

// ErrQueueFull is returned when the email queue cannot accept another message.
var ErrQueueFull = errors.New("email queue full")

// ErrQueueClosed is returned by Send after Stop.
var ErrQueueClosed = errors.New("email queue closed")

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// EmailQueue decouples request handling from the email provider. It satisfies
// service.EmailSender; messages are delivered by background workers with a
// linear backoff between attempts.
type EmailQueue struct {
	next     service.EmailSender
	jobs     chan service.EmailMessage
	logger   *zap.Logger
	attempts int
	backoff  time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewEmailQueue buffers up to size messages for next.
func NewEmailQueue(next service.EmailSender, size int, logger *zap.Logger) *EmailQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailQueue{
		next:     next,
		jobs:     make(chan service.EmailMessage, size),
		logger:   logger,
		attempts: 3,
		backoff:  2 * time.Second,
	}
}

// Send enqueues msg without waiting for delivery.
func (q *EmailQueue) Send(_ context.Context, msg service.EmailMessage) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches workers that drain the queue until Stop is called or ctx ends.
func (q *EmailQueue) Start(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-q.jobs:
					if !ok {
						return
					}
					q.deliver(ctx, msg)
				}
			}
		}()
	}
}

// Stop refuses new messages, lets workers drain what is queued and waits for them.
func (q *EmailQueue) Stop() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *EmailQueue) deliver(ctx context.Context, msg service.EmailMessage) {
	for attempt := 1; ; attempt++ {
		err := q.next.Send(ctx, msg)
		if err == nil {
			return
		}
		if attempt >= q.attempts {
			q.logger.Error("email delivery failed", zap.String("to", msg.To), zap.Int("attempts", attempt), zap.Error(err))
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * q.backoff):
		}
	}
}
