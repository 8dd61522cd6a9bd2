// Package gateway translates tool calls into Strapi REST requests.
package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/providentiaww/strapi-mcp/internal/events"
	"github.com/providentiaww/strapi-mcp/internal/strapi"
	"github.com/providentiaww/strapi-mcp/pkg/mcp"
)

// Backend is the content API the gateway calls.
type Backend interface {
	Do(ctx context.Context, req strapi.Request) (*strapi.Response, error)
	Ping(ctx context.Context) (int, error)
	FiltersEncoding() strapi.FiltersEncoding
}

// Gateway dispatches named tools to the backend. It holds no mutable state
// and is safe for concurrent use.
type Gateway struct {
	backend   Backend
	registry  *mcp.Server
	routes    map[string]route
	publisher events.Publisher
	logger    *slog.Logger
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger used for per-call records.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithPublisher sets the sink for call events.
func WithPublisher(p events.Publisher) Option {
	return func(g *Gateway) {
		if p != nil {
			g.publisher = p
		}
	}
}

// New builds the tool registry and returns a gateway bound to backend.
func New(backend Backend, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		backend:   backend,
		registry:  mcp.NewServer(),
		routes:    make(map[string]route, len(routes)),
		publisher: events.NopPublisher{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, r := range routes {
		if err := g.registry.RegisterTool(r.tool); err != nil {
			return nil, fmt.Errorf("register %s: %w", r.tool.Name, err)
		}
		g.routes[r.tool.Name] = r
	}
	return g, nil
}

// Registry exposes the tool catalog.
func (g *Gateway) Registry() *mcp.Server {
	return g.registry
}

// ListTools returns the catalog in its fixed order.
func (g *Gateway) ListTools() []mcp.Tool {
	return g.registry.ListTools()
}

// CallTool performs exactly one outbound request for a known tool whose
// required arguments are present, and returns the decoded response body.
// Failures are always *Error.
func (g *Gateway) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (interface{}, error) {
	start := time.Now()
	result, err := g.dispatch(ctx, name, arguments)
	g.record(ctx, name, start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *Gateway) dispatch(ctx context.Context, name string, arguments map[string]interface{}) (interface{}, *Error) {
	r, ok := g.routes[name]
	if !ok {
		return nil, unknownTool(name)
	}
	if arguments == nil {
		arguments = map[string]interface{}{}
	}

	if missing := missingFields(r.tool.RequiredParameters(), arguments); len(missing) > 0 {
		return nil, invalidArgument(requiredDetail(missing))
	}

	a := callArgs{
		contentType: stringArg(arguments["contentType"]),
		id:          stringArg(arguments["id"]),
		raw:         arguments,
	}

	req := strapi.Request{Method: r.method, Path: r.path(a)}
	if r.query != nil {
		q, err := r.query(a, g.backend.FiltersEncoding())
		if err != nil {
			return nil, transport(err)
		}
		req.Query = q
	}
	if r.body != nil {
		req.Body = r.body(a)
	}

	resp, err := g.backend.Do(ctx, req)
	if err != nil {
		return nil, transport(err)
	}
	if !r.succeeded(resp.StatusCode) {
		return nil, upstream(resp.StatusCode, r.failure(a))
	}

	out, err := resp.JSON()
	if err != nil {
		return nil, transport(err)
	}
	return out, nil
}

func (g *Gateway) record(ctx context.Context, name string, start time.Time, gerr *Error) {
	elapsed := time.Since(start)
	event := events.ToolCallEvent{
		ID:         uuid.NewString(),
		RequestID:  mcp.RequestID(ctx),
		Tool:       name,
		Success:    gerr == nil,
		StatusCode: http.StatusOK,
		DurationMS: elapsed.Milliseconds(),
		Timestamp:  start.UTC(),
	}

	if gerr != nil {
		event.StatusCode = gerr.Status
		event.ErrorKind = string(gerr.Kind)
		event.Detail = gerr.Detail
		g.logger.WarnContext(ctx, "tool call failed",
			"request_id", event.RequestID,
			"tool", name,
			"kind", gerr.Kind,
			"status", gerr.Status,
			"detail", gerr.Detail,
			"duration", elapsed)
	} else {
		g.logger.InfoContext(ctx, "tool call",
			"request_id", event.RequestID,
			"tool", name,
			"duration", elapsed)
	}

	if err := g.publisher.Publish(ctx, event); err != nil {
		g.logger.WarnContext(ctx, "publish call event", "tool", name, "error", err)
	}
}

// Health probes the backend once.
func (g *Gateway) Health(ctx context.Context) mcp.HealthStatus {
	status, err := g.backend.Ping(ctx)
	if err != nil {
		return mcp.HealthStatus{Status: mcp.StatusUnhealthy, Error: err.Error()}
	}
	connected := status == http.StatusOK
	if connected {
		return mcp.HealthStatus{Status: mcp.StatusHealthy, StrapiConnected: &connected}
	}
	return mcp.HealthStatus{Status: mcp.StatusDegraded, StrapiConnected: &connected}
}
