package notify

import (
	"context"
	"log/slog"
	"time"
)

// Message is a human-facing alert (payment received, document signed).
type Message struct {
	Subject string
	Body    string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher delivers messages asynchronously. Delivery failure is logged
// and dropped: notifications must never roll back or delay a payment or
// document state change.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
}

func NewDispatcher(notifier Notifier, timeout time.Duration) *Dispatcher {
	return &Dispatcher{notifier: notifier, timeout: timeout}
}

func (d *Dispatcher) Dispatch(msg Message) {
	if d == nil || d.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.Send(ctx, msg); err != nil {
			slog.Error("notification dispatch failed", "subject", msg.Subject, "error", err)
		}
	}()
}
