package buffer

import (
	"context"
	"sync"
	"time"

	"github.com/One-Minute-Stack/oneminutelogs-next/internal/model"
	logpkg "github.com/One-Minute-Stack/oneminutelogs-next/pkg/log"
)

// DefaultFlushInterval is the buffering window armed by the first append.
const DefaultFlushInterval = 2000 * time.Millisecond

// now is overridable in tests.
var now = time.Now

// Sender delivers one drained batch to the collector. One call, one attempt.
type Sender interface {
	Send(ctx context.Context, batch []model.Event) error
}

// Buffer is an append-only staging area for not-yet-sent events, flushed on a
// timer. Appends are strictly ordered and batches drain in append order. At
// most one flush is in flight per Buffer.
type Buffer struct {
	mu           sync.Mutex
	events       []model.Event
	timer        *time.Timer
	flushing     bool
	shuttingDown bool

	interval time.Duration
	sender   Sender
	logger   logpkg.Logger
}

// New constructs a Buffer flushing to sender every interval. A non-positive
// interval selects DefaultFlushInterval.
func New(sender Sender, interval time.Duration, logger logpkg.Logger) *Buffer {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("buffer"))
	}
	return &Buffer{interval: interval, sender: sender, logger: logger}
}

// Append stamps ev with the current time and adds it at the tail. It never
// blocks on I/O. The first append with no flush scheduled arms exactly one
// timer for the flush interval; appends before it fires coalesce into the
// same cycle. After shutdown has begun, Append is a no-op.
func (b *Buffer) Append(ev model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shuttingDown {
		return
	}
	ev.Timestamp = now()
	b.events = append(b.events, ev)
	if b.timer == nil {
		b.timer = time.AfterFunc(b.interval, func() {
			b.Flush(context.Background())
		})
	}
}

// Flush drains the buffer and delivers the batch. Single-flight: if a flush
// is already executing, a concurrent call returns immediately. The whole
// buffer is drained atomically before the network call, so events appended
// during delivery accumulate for the next cycle. An empty batch
// short-circuits with no request. Delivery failure is logged and the batch
// dropped; Flush never surfaces the error to its caller.
func (b *Buffer) Flush(ctx context.Context) {
	b.mu.Lock()
	if b.flushing {
		b.mu.Unlock()
		return
	}
	b.flushing = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	batch := b.events
	b.events = nil
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.flushing = false
		b.mu.Unlock()
	}()

	if len(batch) == 0 {
		return
	}
	if err := b.sender.Send(ctx, batch); err != nil {
		b.logger.Error("batch dropped after failed delivery",
			logpkg.Err(err), logpkg.Int("batch_size", len(batch)))
	}
}

// MarkShuttingDown makes all subsequent Appends no-ops and disarms any
// pending flush timer. Already-buffered events stay put for the final Flush.
func (b *Buffer) MarkShuttingDown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shuttingDown = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Len returns the number of buffered, not-yet-drained events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
