// internal/services/callback_queue.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type CallbackHandler func(ctx context.Context, event CallbackEvent) error

// CallbackQueue applies verified IPN events off the request path. The HTTP
// response never waits for the order update.
type CallbackQueue struct {
	events  chan CallbackEvent
	handler CallbackHandler
	workers int
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func NewCallbackQueue(size, workers int, handler CallbackHandler) *CallbackQueue {
	if size < 1 {
		size = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &CallbackQueue{
		events:  make(chan CallbackEvent, size),
		handler: handler,
		workers: workers,
		timeout: 30 * time.Second,
	}
}

func (q *CallbackQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(i)
	}
	logrus.WithField("workers", q.workers).Info("Payment callback queue started")
}

// Enqueue never blocks; a full or closed queue returns ErrUnavailable.
func (q *CallbackQueue) Enqueue(event CallbackEvent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return fmt.Errorf("%w: callback queue is closed", ErrUnavailable)
	}

	select {
	case q.events <- event:
		return nil
	default:
		return fmt.Errorf("%w: callback queue is full", ErrUnavailable)
	}
}

// Close stops accepting events and waits until queued ones are applied.
func (q *CallbackQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.events)
	started := q.started
	q.mu.Unlock()

	if !started {
		for event := range q.events {
			q.apply(event)
		}
		return
	}
	q.wg.Wait()
	logrus.Info("Payment callback queue drained")
}

func (q *CallbackQueue) work(id int) {
	defer q.wg.Done()
	for event := range q.events {
		q.apply(event)
	}
	logrus.WithField("worker", id).Debug("Payment callback worker stopped")
}

func (q *CallbackQueue) apply(event CallbackEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("order_id", event.OrderID).Errorf("Payment callback handler panicked: %v", r)
		}
	}()

	if err := q.handler(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"order_id":       event.OrderID,
			"payment_status": event.PaymentStatus,
		}).Warn("Failed to apply payment callback")
	}
}
