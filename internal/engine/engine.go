package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/router"
)

// Envelope is an inbound event plus the transport context needed to answer
// it.
type Envelope struct {
	// ID and Seq are stamped by Enqueue.
	ID  string
	Seq int64

	Event router.Event

	// Chat is the conversation to answer in.
	Chat int64

	// MessageID is the message whose button was pressed; Edit directives
	// target it. Zero for commands and text.
	MessageID int

	// CallbackID identifies the button press to acknowledge.
	CallbackID string
}

// Handler turns an event into a response. *router.Router implements it.
type Handler interface {
	Handle(ctx context.Context, ev router.Event) (router.Response, error)
}

// Sender delivers responses through a transport.
type Sender interface {
	// Deliver shows msg in env's chat, editing env's message when msg asks
	// for it. Returns ErrNotModified when the edit would change nothing.
	Deliver(ctx context.Context, env Envelope, msg router.Message) error

	// Acknowledge answers a button press, showing notice as a toast when it
	// is not empty.
	Acknowledge(ctx context.Context, env Envelope, notice string) error
}

// Engine is the single-writer event loop.
//
// Thread-safety model:
//   - Enqueue: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//   - Process: for direct synchronous use when Run is not running
type Engine struct {
	handler Handler
	sender  Sender
	clock   *Clock
	ids     IDGenerator
	queue   *envelopeQueue
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the logical clock.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithIDGenerator sets the envelope id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine.
func New(h Handler, s Sender, opts ...Option) *Engine {
	e := &Engine{
		handler: h,
		sender:  s,
		clock:   NewClock(),
		ids:     UUIDv7Generator{},
		queue:   newEnvelopeQueue(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stamp assigns the next id and sequence number to env.
func (e *Engine) Stamp(env Envelope) Envelope {
	env.ID = e.ids.Generate()
	env.Seq = e.clock.Next()
	return env
}

// Enqueue stamps env and submits it to the Run loop. Returns false once the
// engine has stopped.
func (e *Engine) Enqueue(env Envelope) bool {
	return e.queue.Enqueue(e.Stamp(env))
}

// Pending returns the number of queued envelopes.
func (e *Engine) Pending() int {
	return e.queue.Len()
}

// Run processes envelopes until ctx is cancelled or Stop is called.
//
// A failing envelope is logged with its id and seq and the loop moves on.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting")

	for {
		if env, ok := e.queue.TryDequeue(); ok {
			if err := e.Process(ctx, env); err != nil {
				e.logger.Error("delivery failed",
					"error", err,
					"event_id", env.ID,
					"seq", env.Seq,
					"kind", env.Event.Kind.String(),
					"chat", env.Chat,
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case _, open := <-e.queue.Wait():
			if !open && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue; Run returns once it has drained.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Process handles one envelope and delivers the response. The returned
// error covers delivery only; handler rejections are logged.
func (e *Engine) Process(ctx context.Context, env Envelope) error {
	log := e.logger.With("event_id", env.ID, "seq", env.Seq, "caller", int64(env.Event.Caller))
	log.Debug("processing event", "kind", env.Event.Kind.String())

	resp, err := e.handler.Handle(ctx, env.Event)
	if err != nil {
		logHandlerError(log, err)
	}

	var errs []error
	for i, msg := range resp.Messages {
		err := e.sender.Deliver(ctx, env, msg)
		switch {
		case err == nil:
		case IsNotModified(err):
			log.Debug("message not modified", "index", i)
		default:
			errs = append(errs, fmt.Errorf("deliver message %d: %w", i, err))
		}
	}

	if env.Event.Kind == router.KindAction {
		if err := e.sender.Acknowledge(ctx, env, resp.Notice); err != nil && !IsNotModified(err) {
			errs = append(errs, fmt.Errorf("acknowledge: %w", err))
		}
	}

	return errors.Join(errs...)
}

func logHandlerError(log *slog.Logger, err error) {
	switch {
	case catalog.IsPersistFailure(err):
		log.Error("catalog change not persisted", "error", err)
	case router.IsUnauthorized(err):
		log.Warn("unauthorized request", "error", err)
	default:
		log.Info("request rejected", "error", err)
	}
}
