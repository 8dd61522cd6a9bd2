// Package events publishes one audit record per tool call.
package events

import (
	"context"
	"time"
)

// ToolCallEvent describes a finished tool call
type ToolCallEvent struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Tool       string    `json:"tool"`
	Success    bool      `json:"success"`
	StatusCode int       `json:"status_code,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher delivers call events to some sink
type Publisher interface {
	Publish(ctx context.Context, event ToolCallEvent) error
	Close() error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ToolCallEvent) error { return nil }
func (NopPublisher) Close() error                                  { return nil }
