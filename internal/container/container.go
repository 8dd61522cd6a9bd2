// Package container wires the gateway services using go.uber.org/dig.
package container

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.uber.org/dig"

	"github.com/providentiaww/strapi-mcp/internal/config"
	"github.com/providentiaww/strapi-mcp/internal/events"
	"github.com/providentiaww/strapi-mcp/internal/gateway"
	"github.com/providentiaww/strapi-mcp/internal/logging"
	"github.com/providentiaww/strapi-mcp/internal/strapi"
	"github.com/providentiaww/strapi-mcp/pkg/mcp"
)

// ServiceName is announced to MCP clients in initialize.
const ServiceName = "strapi-mcp-server"

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg        config.Config
	logger     *slog.Logger
	client     *strapi.Client
	publisher  events.Publisher
	gateway    *gateway.Gateway
	httpServer *mcp.HTTPServer
	dispatcher *mcp.Dispatcher
}

func (c *Container) Config() config.Config       { return c.cfg }
func (c *Container) Logger() *slog.Logger        { return c.logger }
func (c *Container) Client() *strapi.Client      { return c.client }
func (c *Container) Gateway() *gateway.Gateway   { return c.gateway }
func (c *Container) HTTPServer() *mcp.HTTPServer { return c.httpServer }
func (c *Container) Dispatcher() *mcp.Dispatcher { return c.dispatcher }
func (c *Container) Publisher() events.Publisher { return c.publisher }

// Close releases the event publisher connection.
func (c *Container) Close() error {
	return c.publisher.Close()
}

// Options tune process-level wiring that is not part of Config.
type Options struct {
	// LogWriter receives log output. Defaults to os.Stderr so stdout stays
	// free for the stdio transport.
	LogWriter io.Writer
	Version   string
}

// New builds and wires all services from cfg.
func New(cfg config.Config, opts Options) (*Container, error) {
	if opts.LogWriter == nil {
		opts.LogWriter = os.Stderr
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	d := dig.New()
	providers := []interface{}{
		func() config.Config { return cfg },
		func() Options { return opts },
		newLogger,
		newClient,
		newPublisher,
		newGateway,
		newServerInfo,
		newHTTPServer,
		newDispatcher,
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		logger *slog.Logger,
		client *strapi.Client,
		publisher events.Publisher,
		gw *gateway.Gateway,
		httpServer *mcp.HTTPServer,
		dispatcher *mcp.Dispatcher,
	) {
		result = &Container{
			cfg:        cfg,
			logger:     logger,
			client:     client,
			publisher:  publisher,
			gateway:    gw,
			httpServer: httpServer,
			dispatcher: dispatcher,
		}
	})
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return result, nil
}

func newLogger(cfg config.Config, opts Options) *slog.Logger {
	return logging.New(opts.LogWriter, cfg.Log.Level, cfg.Log.Format)
}

func newClient(cfg config.Config) *strapi.Client {
	return strapi.NewClient(cfg.Strapi.BaseURL(), cfg.Strapi.Timeout,
		strapi.WithFiltersEncoding(strapi.FiltersEncoding(cfg.Strapi.FiltersEncoding)))
}

// newPublisher falls back to a no-op sink when AMQP is unset or unreachable.
// A reachable broker is fed through a buffered queue off the request path.
func newPublisher(cfg config.Config, logger *slog.Logger) events.Publisher {
	if cfg.Events.AMQPURL == "" {
		return events.NopPublisher{}
	}
	p, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		logger.Warn("call events disabled", "error", err)
		return events.NopPublisher{}
	}
	logger.Info("publishing call events", "exchange", cfg.Events.Exchange)
	return events.NewAsyncPublisher(p, events.DefaultQueueSize, events.DefaultPublishTimeout,
		logging.Component(logger, "events"))
}

func newGateway(client *strapi.Client, publisher events.Publisher, logger *slog.Logger) (*gateway.Gateway, error) {
	gw, err := gateway.New(client,
		gateway.WithLogger(logging.Component(logger, "gateway")),
		gateway.WithPublisher(publisher))
	if err != nil {
		return nil, fmt.Errorf("build gateway: %w", err)
	}
	return gw, nil
}

func newServerInfo(opts Options) mcp.ServerInfo {
	return mcp.ServerInfo{Name: ServiceName, Version: opts.Version}
}

func newHTTPServer(gw *gateway.Gateway, info mcp.ServerInfo, logger *slog.Logger) *mcp.HTTPServer {
	return mcp.NewHTTPServer(gw.Registry(), gw, info, logging.Component(logger, "http"))
}

func newDispatcher(gw *gateway.Gateway, info mcp.ServerInfo) *mcp.Dispatcher {
	return mcp.NewDispatcher(gw.Registry(), gw, info)
}
