package oml

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/One-Minute-Stack/oneminutelogs-next/internal/buffer"
	"github.com/One-Minute-Stack/oneminutelogs-next/internal/config"
	"github.com/One-Minute-Stack/oneminutelogs-next/internal/filter"
	"github.com/One-Minute-Stack/oneminutelogs-next/internal/livestream"
	"github.com/One-Minute-Stack/oneminutelogs-next/internal/model"
	"github.com/One-Minute-Stack/oneminutelogs-next/internal/querycache"
	"github.com/One-Minute-Stack/oneminutelogs-next/internal/shutdown"
	"github.com/One-Minute-Stack/oneminutelogs-next/internal/transport"
	logpkg "github.com/One-Minute-Stack/oneminutelogs-next/pkg/log"
)

// Re-exported core types so callers need only this package.
type (
	// Config is the client configuration.
	Config = config.Config
	// Event is one structured log record.
	Event = model.Event
	// Kind discriminates event categories.
	Kind = model.Kind
	// Filters parameterize queries and streams.
	Filters = filter.Filters
	// Subscription is a live record stream.
	Subscription = livestream.Subscriber
	// Record is one normalized stream record.
	Record = livestream.Record
)

// Event kinds
const (
	KindInfo    = model.KindInfo
	KindWarning = model.KindWarning
	KindError   = model.KindError
	KindAudit   = model.KindAudit
	KindMetric  = model.KindMetric
	KindDebug   = model.KindDebug
	KindSuccess = model.KindSuccess
)

// DefaultConfig returns built-in defaults.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads a YAML configuration file layered over defaults and
// overlays OML_* environment variables.
func LoadConfig(path string) (Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return Config{}, err
	}
	config.FromEnv(&cfg)
	return cfg, nil
}

// Option configures a Client under construction.
type Option func(*Client)

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger logpkg.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient overrides the transport's HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTerminate installs a hook run once after Close's final flush settles.
func WithTerminate(fn func()) Option {
	return func(c *Client) { c.terminate = fn }
}

// Client is the SDK entry point. All methods are safe for concurrent use.
type Client struct {
	cfg     config.Config
	appName string
	env     string

	logger     logpkg.Logger
	httpClient *http.Client
	terminate  func()

	transport *transport.Client
	buffer    *buffer.Buffer
	cache     *querycache.Cache
	coord     *shutdown.Coordinator
}

// New constructs a Client from cfg. The configuration must name a collector
// URL; everything else falls back to defaults.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("oml: %w", err)
	}
	c := &Client{
		cfg:     cfg,
		appName: cfg.ResolvedAppName(),
		env:     cfg.ResolvedEnvironment(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = newConfiguredLogger(cfg)
	}

	c.transport = transport.New(transport.Options{
		BaseURL:     cfg.ServerURL,
		APIKey:      cfg.APIKey,
		AppName:     c.appName,
		Environment: c.env,
		HTTPClient:  c.httpClient,
		Logger:      c.logger.With(logpkg.Component("transport")),
	})
	c.buffer = buffer.New(c.transport, cfg.FlushInterval(),
		c.logger.With(logpkg.Component("buffer")))
	c.cache = querycache.New(c.transport.Query)
	c.coord = shutdown.New(c.buffer, shutdown.Options{
		Terminate: c.terminate,
		Logger:    c.logger.With(logpkg.Component("shutdown")),
	})
	return c, nil
}

// newConfiguredLogger builds the SDK logger from LogLevel and LogFormat.
// Unknown values fall back to info/text.
func newConfiguredLogger(cfg Config) logpkg.Logger {
	level, err := logpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logpkg.InfoLevel
	}
	opts := []logpkg.LoggerOption{logpkg.WithLevel(level)}
	if cfg.LogFormat == "json" {
		opts = append(opts, logpkg.WithFormatter(&logpkg.JSONFormatter{}))
	}
	return logpkg.NewLogger(opts...).With(logpkg.Str("sdk", "oml"))
}

// Send buffers ev for the next delivery cycle. The event is stamped with the
// client's application identity when it carries none, and with the current
// time at append. An unknown kind is coerced to info. Send never blocks on
// network I/O and is a no-op once Close has begun.
func (c *Client) Send(ev Event) {
	if !ev.Type.Valid() {
		ev.Type = model.KindInfo
	}
	if ev.AppName == "" {
		ev.AppName = c.appName
	}
	if ev.Environment == "" {
		ev.Environment = c.env
	}
	c.buffer.Append(ev)
}

// EventOption decorates an event built by the typed helpers.
type EventOption func(*Event)

// WithImportance sets the event importance.
func WithImportance(v string) EventOption { return func(e *Event) { e.Importance = v } }

// WithSubsystem sets the originating subsystem.
func WithSubsystem(v string) EventOption { return func(e *Event) { e.Subsystem = v } }

// WithOperation sets the operation name.
func WithOperation(v string) EventOption { return func(e *Event) { e.Operation = v } }

// WithTrack attaches tracking payload.
func WithTrack(v map[string]any) EventOption { return func(e *Event) { e.Track = v } }

// WithSecurity attaches security payload.
func WithSecurity(v map[string]any) EventOption { return func(e *Event) { e.Security = v } }

// WithMetrics attaches metrics payload.
func WithMetrics(v map[string]any) EventOption { return func(e *Event) { e.Metrics = v } }

func (c *Client) log(kind Kind, message string, opts []EventOption) {
	ev := Event{Type: kind, Message: message}
	for _, opt := range opts {
		opt(&ev)
	}
	c.Send(ev)
}

// Info buffers an info event.
func (c *Client) Info(message string, opts ...EventOption) { c.log(model.KindInfo, message, opts) }

// Warn buffers a warning event.
func (c *Client) Warn(message string, opts ...EventOption) { c.log(model.KindWarning, message, opts) }

// Error buffers an error event.
func (c *Client) Error(message string, opts ...EventOption) { c.log(model.KindError, message, opts) }

// Debug buffers a debug event.
func (c *Client) Debug(message string, opts ...EventOption) { c.log(model.KindDebug, message, opts) }

// Success buffers a success event.
func (c *Client) Success(message string, opts ...EventOption) {
	c.log(model.KindSuccess, message, opts)
}

// Audit buffers an audit event.
func (c *Client) Audit(message string, opts ...EventOption) { c.log(model.KindAudit, message, opts) }

// Metric buffers a metric event carrying values.
func (c *Client) Metric(message string, values map[string]any, opts ...EventOption) {
	opts = append(opts, WithMetrics(values))
	c.log(model.KindMetric, message, opts)
}

// Flush drains the buffer and delivers the batch now. Single-flight: a call
// while a flush is already executing returns immediately.
func (c *Client) Flush(ctx context.Context) { c.buffer.Flush(ctx) }

// Pending returns the number of buffered, not-yet-delivered events.
func (c *Client) Pending() int { return c.buffer.Len() }

// Get returns the records matching f, served from cache when a previous call
// already resolved the same canonical filter set. Concurrent identical calls
// share one round-trip.
func (c *Client) Get(ctx context.Context, f Filters) ([]json.RawMessage, error) {
	return c.cache.Fetch(ctx, f)
}

// Refetch evicts any cached result for f and queries again.
func (c *Client) Refetch(ctx context.Context, f Filters) ([]json.RawMessage, error) {
	return c.cache.Refetch(ctx, f)
}

// Invalidate evicts the cached result for f, if any.
func (c *Client) Invalidate(f Filters) { c.cache.Invalidate(f) }

// ResetCache drops every cached query result.
func (c *Client) ResetCache() { c.cache.Reset() }

// StreamOptions configures a live subscription.
type StreamOptions struct {
	// Filters parameterize the stream endpoint.
	Filters Filters
	// Filter is an optional CEL expression evaluated client-side against
	// each record, e.g. `level == "error"`.
	Filter string
	// WindowSize caps the retained record window. Non-positive selects the
	// configured StreamWindowSize.
	WindowSize int
}

// Stream opens a live subscription. The subscription reconnects on failure
// until Disconnect is called or ctx ends.
func (c *Client) Stream(ctx context.Context, opts StreamOptions) (*Subscription, error) {
	size := opts.WindowSize
	if size <= 0 {
		size = c.cfg.StreamWindowSize
	}
	return livestream.Subscribe(ctx, c.transport, livestream.Options{
		Filters:    opts.Filters,
		WindowSize: size,
		Filter:     opts.Filter,
		Logger:     c.logger.With(logpkg.Component("livestream")),
	})
}

// Close shuts the client down: appends become no-ops, one final flush drains
// whatever is buffered, then the terminate hook (if any) runs. Idempotent;
// concurrent callers all wait for the same completion.
func (c *Client) Close(ctx context.Context) { c.coord.Shutdown(ctx) }
