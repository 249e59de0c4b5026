package livestream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valyala/fastjson"

	"github.com/One-Minute-Stack/oneminutelogs-next/internal/filter"
	logpkg "github.com/One-Minute-Stack/oneminutelogs-next/pkg/log"
)

// Reconnect backoff bounds.
const (
	reconnectInitial = 500 * time.Millisecond
	reconnectMax     = 30 * time.Second
)

// Dialer opens the long-lived stream connection. The transport client
// implements it.
type Dialer interface {
	NewStreamRequest(ctx context.Context, f filter.Filters) (*http.Request, error)
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a subscription.
type Options struct {
	// Filters parameterize the stream endpoint, canonicalized the same way
	// as the query path.
	Filters filter.Filters
	// WindowSize caps the retained record window. Non-positive selects
	// DefaultWindowSize.
	WindowSize int
	// Filter is an optional CEL expression evaluated client-side against
	// each normalized record before it enters the window.
	Filter string
	// Logger receives stream diagnostics.
	Logger logpkg.Logger
}

// Subscriber consumes the collector's server-push stream, normalizes inbound
// messages, and maintains the bounded record window. The connection
// reconnects with exponential backoff; transient errors surface as values
// via Err, never by closing the window.
type Subscriber struct {
	dialer Dialer
	opts   Options
	expr   filter.Expr
	window *Window
	norm   *Normalizer
	parser fastjson.Parser
	logger logpkg.Logger

	ctx    context.Context
	cancel context.CancelFunc
	bo     *backoff.ExponentialBackOff

	connected atomic.Bool
	loaded    atomic.Bool

	errMu   sync.Mutex
	lastErr error

	closeOnce sync.Once
	done      chan struct{}
}

// Subscribe compiles the optional filter expression, opens the stream, and
// starts consuming. The subscription lives until Disconnect or ctx
// cancellation.
func Subscribe(ctx context.Context, dialer Dialer, opts Options) (*Subscriber, error) {
	expr, err := filter.NewExpr(opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("compile stream filter: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("livestream"))
	}
	sctx, cancel := context.WithCancel(ctx)
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = reconnectInitial
	bo.MaxInterval = reconnectMax
	bo.MaxElapsedTime = 0

	s := &Subscriber{
		dialer: dialer,
		opts:   opts,
		expr:   expr,
		window: NewWindow(opts.WindowSize),
		norm:   NewNormalizer(),
		logger: logger,
		ctx:    sctx,
		cancel: cancel,
		bo:     bo,
		done:   make(chan struct{}),
	}
	go s.run()
	return s, nil
}

func (s *Subscriber) run() {
	defer close(s.done)
	defer s.connected.Store(false)
	for {
		err := s.consume()
		s.connected.Store(false)
		if s.ctx.Err() != nil {
			return
		}
		if err != nil {
			s.setErr(fmt.Errorf("stream connection: %w", err))
			s.logger.Warn("stream connection lost, reconnecting", logpkg.Err(err))
		}
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(s.bo.NextBackOff()):
		}
	}
}

// consume runs one connection lifetime: open, read SSE events, dispatch.
// Returns when the connection fails or the subscription context ends.
func (s *Subscriber) consume() error {
	req, err := s.dialer.NewStreamRequest(s.ctx, s.opts.Filters)
	if err != nil {
		return err
	}
	resp, err := s.dialer.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return fmt.Errorf("collector returned status %d", resp.StatusCode)
	}

	s.connected.Store(true)
	s.bo.Reset()

	reader := bufio.NewReader(resp.Body)
	var data []byte
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if len(data) > 0 {
				s.handleMessage(data)
				data = nil
			}
		case strings.HasPrefix(line, "data:"):
			chunk := strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
			if len(data) > 0 {
				data = append(data, '\n')
			}
			data = append(data, chunk...)
		default:
			// event/id/retry fields and comments are ignored
		}
	}
}

// handleMessage decodes one stream payload and applies it to the window. A
// malformed message sets the error value and leaves the window and the
// connection untouched.
func (s *Subscriber) handleMessage(data []byte) {
	msg, err := s.norm.DecodeMessage(&s.parser, data)
	if err != nil {
		s.setErr(err)
		s.logger.Warn("dropping malformed stream message", logpkg.Err(err))
		return
	}
	records := msg.records
	if s.expr.Enabled() {
		kept := records[:0:0]
		for _, rec := range records {
			if s.expr.Match(rec.Level, rec.Source, rec.Message, rec.TimestampMs(), rec.Raw) {
				kept = append(kept, rec)
			}
		}
		records = kept
	}
	if msg.initial {
		s.window.Replace(records)
		s.loaded.Store(true)
		return
	}
	s.window.Append(records...)
}

// Records returns the current window in arrival order.
func (s *Subscriber) Records() []Record { return s.window.Snapshot() }

// Connected reports whether the underlying connection is currently open.
func (s *Subscriber) Connected() bool { return s.connected.Load() }

// Loaded reports whether the initial batch has been applied.
func (s *Subscriber) Loaded() bool { return s.loaded.Load() }

// Err returns the most recent stream error value, if any. Errors are
// non-fatal: buffered records and the connection survive them.
func (s *Subscriber) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr
}

func (s *Subscriber) setErr(err error) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}

// Disconnect aborts the underlying connection exactly once and stops
// reconnecting. Safe to call multiple times and concurrently.
func (s *Subscriber) Disconnect() {
	s.closeOnce.Do(func() { s.cancel() })
	<-s.done
}

// Done is closed once the consume loop has fully stopped.
func (s *Subscriber) Done() <-chan struct{} { return s.done }
