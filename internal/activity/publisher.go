package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultSinkTimeout = 5 * time.Second

// Publisher journals events and fans them out to sinks. Delivery is
// best-effort: failures are logged and never reach the caller.
type Publisher struct {
	store  Store
	sinks       []Sink
	sinkTimeout time.Duration
	logger      *slog.Logger

	buffer    chan queued
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type queued struct {
	ctx   context.Context
	event Event
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithSinks adds downstream receivers. Nil sinks are ignored.
func WithSinks(sinks ...Sink) Option {
	return func(p *Publisher) {
		for _, s := range sinks {
			if s != nil {
				p.sinks = append(p.sinks, s)
			}
		}
	}
}

// WithSinkTimeout bounds each sink publish.
func WithSinkTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.sinkTimeout = d
		}
	}
}

// WithAsyncBuffer delivers events from a background worker. Events emitted
// while the buffer is full are dropped.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan queued, size)
		}
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, sinkTimeout: defaultSinkTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit assigns an id and timestamp when missing and delivers the event.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.buffer == nil {
		p.deliver(ctx, event)
		return
	}
	select {
	case p.buffer <- queued{ctx: context.WithoutCancel(ctx), event: event}:
	default:
		p.logger.WarnContext(ctx, "activity buffer full, dropping event",
			"claim_id", event.ClaimID,
			"action", event.Action,
		)
	}
}

// List returns a claim's journal, optionally filtered by action.
func (p *Publisher) List(ctx context.Context, claimID string, actions ...Action) ([]Event, error) {
	return p.store.ListByClaim(ctx, claimID, actions...)
}

// Close drains buffered events and stops the worker.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for q := range p.buffer {
		p.deliver(q.ctx, q.event)
	}
}

func (p *Publisher) deliver(ctx context.Context, event Event) {
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to journal claim activity",
			"claim_id", event.ClaimID,
			"action", event.Action,
			"error", err,
		)
	}
	for _, sink := range p.sinks {
		if err := p.publish(ctx, sink, event); err != nil {
			p.logger.WarnContext(ctx, "failed to publish claim activity",
				"claim_id", event.ClaimID,
				"action", event.Action,
				"error", err,
			)
		}
	}
	p.logger.InfoContext(ctx, "claim activity",
		"claim_id", event.ClaimID,
		"action", event.Action,
		"actor", event.Actor,
		"request_id", event.RequestID,
	)
}

func (p *Publisher) publish(ctx context.Context, sink Sink, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, p.sinkTimeout)
	defer cancel()
	return sink.Publish(ctx, event)
}
