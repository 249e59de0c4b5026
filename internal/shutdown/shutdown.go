package shutdown

import (
	"context"
	"sync"
	"time"

	logpkg "github.com/One-Minute-Stack/oneminutelogs-next/pkg/log"
)

// DefaultTimeout bounds the final flush during teardown.
const DefaultTimeout = 5 * time.Second

// Flusher is the buffer surface the coordinator drives at teardown.
type Flusher interface {
	MarkShuttingDown()
	Flush(ctx context.Context)
}

// Options configures a Coordinator.
type Options struct {
	// Terminate runs after the final flush settles. Hosts may inject os.Exit
	// here; the library default is a no-op.
	Terminate func()
	// Timeout bounds the final flush. Zero selects DefaultTimeout.
	Timeout time.Duration
	// Logger receives teardown diagnostics.
	Logger logpkg.Logger
}

// Coordinator runs the Running -> ShuttingDown -> Terminated sequence exactly
// once: mark the buffer so appends become no-ops, await one final synchronous
// flush, then invoke the terminate hook. Signal registration is the host's
// job; the coordinator only exposes Shutdown for the host to call.
type Coordinator struct {
	flusher   Flusher
	terminate func()
	timeout   time.Duration
	logger    logpkg.Logger

	once sync.Once
	done chan struct{}
}

// New constructs a Coordinator around flusher.
func New(flusher Flusher, opts Options) *Coordinator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("shutdown"))
	}
	return &Coordinator{
		flusher:   flusher,
		terminate: opts.Terminate,
		timeout:   timeout,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Shutdown is idempotent: the first caller performs the sequence, every later
// or concurrent caller waits for the same completion. Termination proceeds
// whether the final flush succeeds or fails.
func (c *Coordinator) Shutdown(ctx context.Context) {
	c.once.Do(func() {
		c.flusher.MarkShuttingDown()
		// The final flush gets its own detached deadline so an
		// already-canceled signal context cannot abort delivery mid-teardown.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		c.flusher.Flush(fctx)
		c.logger.Debug("final flush settled")
		close(c.done)
		if c.terminate != nil {
			c.terminate()
		}
	})
	<-c.done
}

// Done is closed once the final flush has settled.
func (c *Coordinator) Done() <-chan struct{} { return c.done }
