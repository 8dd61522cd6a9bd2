package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultQueueSize and DefaultPublishTimeout tune NewAsyncPublisher when
// zero values are passed.
const (
	DefaultQueueSize      = 256
	DefaultPublishTimeout = 2 * time.Second
)

var (
	// ErrQueueFull is returned when the buffer is full and the event is dropped
	ErrQueueFull = errors.New("event queue full")
	// ErrClosed is returned after Close
	ErrClosed = errors.New("publisher closed")
)

// AsyncPublisher hands events to a buffered queue drained by one goroutine,
// so a slow broker never blocks the caller.
type AsyncPublisher struct {
	next    Publisher
	queue   chan ToolCallEvent
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	once   sync.Once
	err    error
}

// NewAsyncPublisher starts the drain goroutine in front of next
func NewAsyncPublisher(next Publisher, size int, timeout time.Duration, logger *slog.Logger) *AsyncPublisher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &AsyncPublisher{
		next:    next,
		queue:   make(chan ToolCallEvent, size),
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues event without waiting. ctx is not used past this call.
func (p *AsyncPublisher) Publish(_ context.Context, event ToolCallEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.next.Publish(ctx, event); err != nil {
			p.logger.Warn("publish call event", "tool", event.Tool, "id", event.ID, "error", err)
		}
		cancel()
	}
}

// Close drains queued events, then closes the wrapped publisher
func (p *AsyncPublisher) Close() error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		<-p.done
		p.err = p.next.Close()
	})
	return p.err
}
