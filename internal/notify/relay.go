package notify

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nerrad567/schematic-core/internal/circuit"
	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
	"github.com/nerrad567/schematic-core/internal/project"
)

const (
	defaultBufferSize      = 256
	defaultDeliveryTimeout = 5 * time.Second
)

// Sink receives notifications from a Relay.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

// Logger defines the logging interface used by the Relay.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Relay is a circuit.Observer that queues events for asynchronous delivery.
type Relay struct {
	queue   chan Message
	sinks   []Sink
	timeout time.Duration
	dropped atomic.Uint64
	now     func() time.Time
	logger  Logger
}

// NewRelay creates a relay delivering to sinks. Zero config values fall
// back to a 256 message queue and a 5 second delivery timeout.
func NewRelay(cfg config.NotifyConfig, sinks ...Sink) *Relay {
	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	timeout := cfg.DeliveryTimeout.Duration()
	if timeout <= 0 {
		timeout = defaultDeliveryTimeout
	}
	return &Relay{
		queue:   make(chan Message, size),
		sinks:   sinks,
		timeout: timeout,
		now:     time.Now,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for delivery failures. Call before Run.
func (r *Relay) SetLogger(logger Logger) {
	r.logger = logger
}

// OnCircuitEvent queues a copy of ev. It never blocks.
func (r *Relay) OnCircuitEvent(ev circuit.Event) {
	r.enqueue(Message{
		Type:      string(ev.Type),
		Element:   ev.Element.Clone(),
		Timestamp: r.now().UTC(),
	})
}

// ProjectSaved queues a project save notification. Its signature matches
// the editor's save hook.
func (r *Relay) ProjectSaved(p project.Project) {
	r.enqueue(Message{
		Type:      TypeProjectSaved,
		Project:   p.Name,
		Elements:  p.ElementCount,
		Timestamp: r.now().UTC(),
	})
}

func (r *Relay) enqueue(msg Message) {
	select {
	case r.queue <- msg:
	default:
		if n := r.dropped.Add(1); n == 1 || n%100 == 0 {
			r.logger.Warn("notification queue full, dropping", "type", msg.Type, "dropped", n)
		}
	}
}

// Dropped returns how many messages were discarded because the queue was full.
func (r *Relay) Dropped() uint64 {
	return r.dropped.Load()
}

// Pending returns the number of queued messages.
func (r *Relay) Pending() int {
	return len(r.queue)
}

// Run delivers queued messages until ctx is cancelled. Messages still queued
// at cancellation are delivered with a fresh timeout before Run returns.
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case msg := <-r.queue:
			r.deliver(ctx, msg)
		}
	}
}

func (r *Relay) drain() {
	for {
		select {
		case msg := <-r.queue:
			r.deliver(context.Background(), msg)
		default:
			return
		}
	}
}

// deliver hands msg to every sink. A failing sink does not stop the others.
func (r *Relay) deliver(ctx context.Context, msg Message) {
	for _, sink := range r.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := sink.Deliver(sinkCtx, msg)
		cancel()
		if err != nil {
			r.logger.Warn("notification delivery failed",
				"sink", sink.Name(),
				"type", msg.Type,
				"error", err,
			)
		}
	}
}
