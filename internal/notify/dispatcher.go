package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Message is one queued notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Dispatcher queues notification mail and delivers it on a background
// goroutine, so callers never block on SMTP. When the queue is full the
// message is dropped and logged; notifications carry no delivery guarantee.
type Dispatcher struct {
	mailer Mailer
	logger *slog.Logger

	mu     sync.Mutex
	queue  chan Message
	done   chan struct{}
	closed bool
}

// NewDispatcher starts a dispatcher with the given queue capacity. A nil
// mailer turns the dispatcher into a log-only sink.
func NewDispatcher(mailer Mailer, buffer int, logger *slog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		mailer: mailer,
		logger: logger,
		queue:  make(chan Message, buffer),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Send enqueues a notification. It never returns a delivery error; the
// reservation mutation must not depend on mail.
func (d *Dispatcher) Send(_ context.Context, to, subject, htmlBody string) error {
	if d == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Warn("notification dropped, dispatcher closed", "to", to, "subject", subject)
		return nil
	}

	select {
	case d.queue <- Message{To: to, Subject: subject, Body: htmlBody}:
	default:
		d.logger.Warn("notification dropped, queue full", "to", to, "subject", subject)
	}
	return nil
}

// Close stops accepting messages, drains the queue and waits for the worker.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for msg := range d.queue {
		if d.mailer == nil {
			d.logger.Info("notification suppressed, no mailer configured", "to", msg.To, "subject", msg.Subject)
			continue
		}
		if err := d.mailer.Deliver(msg.To, msg.Subject, msg.Body); err != nil {
			d.logger.Warn("notification delivery failed", "to", msg.To, "error", err)
		}
	}
}
