package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingPublisher holds every Publish until release is closed
type blockingPublisher struct {
	mu       sync.Mutex
	release  chan struct{}
	received []ToolCallEvent
	deadline bool
	closed   bool
}

func (b *blockingPublisher) Publish(ctx context.Context, event ToolCallEvent) error {
	<-b.release
	_, hasDeadline := ctx.Deadline()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.received = append(b.received, event)
	b.deadline = hasDeadline
	return nil
}

func (b *blockingPublisher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func TestAsyncPublisherDoesNotBlock(t *testing.T) {
	next := &blockingPublisher{release: make(chan struct{})}
	p := NewAsyncPublisher(next, 2, time.Second, nil)

	start := time.Now()
	// one event is taken by the drain goroutine, two fill the buffer
	require.NoError(t, p.Publish(context.Background(), ToolCallEvent{ID: "1", Tool: "content.find"}))
	require.Eventually(t, func() bool { return len(p.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, p.Publish(context.Background(), ToolCallEvent{ID: "2", Tool: "content.find"}))
	require.NoError(t, p.Publish(context.Background(), ToolCallEvent{ID: "3", Tool: "content.find"}))
	assert.ErrorIs(t, p.Publish(context.Background(), ToolCallEvent{ID: "4", Tool: "content.find"}), ErrQueueFull)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	close(next.release)
	require.NoError(t, p.Close())

	next.mu.Lock()
	defer next.mu.Unlock()
	require.Len(t, next.received, 3)
	assert.Equal(t, "3", next.received[2].ID)
	assert.True(t, next.deadline)
	assert.True(t, next.closed)
}

func TestAsyncPublisherSurvivesCancelledCaller(t *testing.T) {
	next := &blockingPublisher{release: make(chan struct{})}
	close(next.release)
	p := NewAsyncPublisher(next, 0, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Publish(ctx, ToolCallEvent{ID: "1"}))
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Publish(context.Background(), ToolCallEvent{ID: "2"}), ErrClosed)
	next.mu.Lock()
	defer next.mu.Unlock()
	assert.Len(t, next.received, 1)
}
