// Package effects runs the side effects of committed rental transitions:
// the client's rental summary and the audit record. Effects are delivered by
// background workers and their failures are logged, never returned to the
// request that produced them.
package effects

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"boxrental-backend/internal/audit"
	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"
	"boxrental-backend/internal/metrics"
	"boxrental-backend/internal/notify"
	"boxrental-backend/internal/repository"

	"github.com/google/uuid"
)

type Config struct {
	Workers      int
	QueueSize    int
	MaxRetries   int
	RetryBackoff time.Duration
	// Timeout bounds the work done for one event.
	Timeout time.Duration
}

type job struct {
	id    string
	event domain.Event
}

type Runner struct {
	clients  repository.ClientRepository
	notifier notify.Notifier
	audit    audit.Sink
	cfg      Config

	jobs    chan job
	stop    chan struct{}
	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func NewRunner(clients repository.ClientRepository, notifier notify.Notifier, sink audit.Sink, cfg Config) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Runner{
		clients:  clients,
		notifier: notifier,
		audit:    sink,
		cfg:      cfg,
		jobs:     make(chan job, cfg.QueueSize),
		stop:     make(chan struct{}),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true
	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

// Dispatch queues events without blocking. When the queue is full or the
// runner is closed the event is dropped and logged.
func (r *Runner) Dispatch(events ...domain.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ev := range events {
		j := job{id: uuid.NewString(), event: ev}
		if r.closed {
			metrics.EffectQueueDropped.Inc()
			logger.Warn("Effect runner closed, dropping event", "job", j.id, "kind", ev.Kind, "rentalID", ev.RentalID)
			continue
		}
		select {
		case r.jobs <- j:
		default:
			metrics.EffectQueueDropped.Inc()
			logger.Warn("Effect queue is full, dropping event", "job", j.id, "kind", ev.Kind, "rentalID", ev.RentalID)
		}
	}
}

// Close stops accepting events, lets the workers drain the queue and waits
// for them to finish. Pending retry backoffs are cut short.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.jobs)
	close(r.stop)
	started := r.started
	r.mu.Unlock()

	if !started {
		// Nobody will drain the queue; handle what is left inline.
		for j := range r.jobs {
			r.process(j)
		}
		return
	}
	r.wg.Wait()
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()
	logger.Debug("Effect worker started", "worker", id)
	for j := range r.jobs {
		r.process(j)
	}
	logger.Debug("Effect worker stopped", "worker", id)
}

func (r *Runner) process(j job) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Effect job panicked", "job", j.id, "panic", rec)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()
	r.Handle(ctx, j.event)
}

// Handle delivers every effect of one event synchronously. Failures are
// logged and counted; the returned error joins them for callers that care.
func (r *Runner) Handle(ctx context.Context, ev domain.Event) error {
	var errs []error

	if ev.Kind == domain.EventRentalOpened {
		if err := r.notifyClient(ctx, ev); err != nil {
			metrics.EffectDeliveryFailures.WithLabelValues("notification").Inc()
			logger.DeliveryFailed("notification", err, "rentalID", ev.RentalID, "clientID", ev.ClientID)
			errs = append(errs, err)
		}
	}

	if r.audit != nil {
		if err := r.audit.Record(ctx, ev.ActorID, ev.AuditAction()); err != nil {
			metrics.EffectDeliveryFailures.WithLabelValues("audit").Inc()
			logger.DeliveryFailed("audit", err, "rentalID", ev.RentalID, "kind", ev.Kind)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// notifyClient sends the client its active rentals, retrying with quadratic
// backoff. A client that no longer exists is not an error.
func (r *Runner) notifyClient(ctx context.Context, ev domain.Event) error {
	if r.notifier == nil {
		return nil
	}
	client, err := r.clients.GetWithActiveRentals(ctx, ev.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%w: load client: %v", domain.ErrDeliveryFailure, err)
	}

	for attempt := 0; ; attempt++ {
		err = r.notifier.NotifyRentalSummary(ctx, client, client.Rentals)
		if err == nil || attempt >= r.cfg.MaxRetries {
			return err
		}
		backoff := time.Duration((attempt+1)*(attempt+1)) * r.cfg.RetryBackoff
		logger.Info("Retrying rental summary", "clientID", client.ID, "attempt", attempt+1, "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return err
		case <-r.stop:
			return err
		}
	}
}
