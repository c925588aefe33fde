package notifier

import (
	"context"
	"log"
	"sync"
	"time"

	"scholarship-backend/internal/domain/notification"
)

var _ notification.Sink = (*Async)(nil)

// Async hands messages to a single background worker. Notify never blocks:
// when the queue is full the message is dropped and logged.
type Async struct {
	next    notification.Sink
	queue   chan notification.Message
	timeout time.Duration

	once sync.Once
	done chan struct{}
}

func NewAsync(next notification.Sink, size int) *Async {
	if size <= 0 {
		size = 256
	}
	a := &Async{
		next:    next,
		queue:   make(chan notification.Message, size),
		timeout: 3 * time.Second,
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) Notify(_ context.Context, m notification.Message) error {
	select {
	case a.queue <- m:
	default:
		log.Printf("notifier: queue full, dropping %q for user %d", m.Title, m.UserID)
	}
	return nil
}

// Close drains what is queued and stops the worker.
func (a *Async) Close() {
	a.once.Do(func() { close(a.queue) })
	<-a.done
}

func (a *Async) run() {
	defer close(a.done)
	for m := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Notify(ctx, m); err != nil {
			log.Printf("notifier: deliver to user %d: %v", m.UserID, err)
		}
		cancel()
	}
}

// Discard drops everything; used when no Redis is configured.
type Discard struct{}

func (Discard) Notify(context.Context, notification.Message) error { return nil }

func (Discard) Recent(context.Context, uint64, int) ([]notification.Message, error) {
	return []notification.Message{}, nil
}
