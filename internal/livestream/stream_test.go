package livestream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/One-Minute-Stack/oneminutelogs-next/internal/filter"
	logpkg "github.com/One-Minute-Stack/oneminutelogs-next/pkg/log"
)

type httpDialer struct{ base string }

func (d httpDialer) NewStreamRequest(ctx context.Context, f filter.Filters) (*http.Request, error) {
	u := d.base
	if enc := filter.Values(f).Encode(); enc != "" {
		u += "?" + enc
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
}

func (d httpDialer) Do(req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req)
}

func quietLogger() logpkg.Logger {
	return logpkg.NewLogger(logpkg.WithOutput(logpkg.NewWriterOutput(io.Discard)))
}

func sseWrite(w http.ResponseWriter, payload string) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func testSubscriber(t *testing.T, expr string) *Subscriber {
	t.Helper()
	compiled, err := filter.NewExpr(expr)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return &Subscriber{
		expr:   compiled,
		window: NewWindow(0),
		norm:   NewNormalizer(),
		logger: quietLogger(),
	}
}

func TestSubscribeReceivesInitialAndIncremental(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "error" {
			t.Errorf("filters not encoded: %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		sseWrite(w, `{"type":"initial","logs":[{"type":"ERROR","message":"old","timestamp":1700000000}]}`)
		sseWrite(w, `{"type":"error","message":"fresh","timestamp":1700000001}`)
		<-r.Context().Done()
	}))
	defer srv.Close()

	s, err := Subscribe(context.Background(), httpDialer{base: srv.URL}, Options{
		Filters: filter.Filters{"type": "error"},
		Logger:  quietLogger(),
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer s.Disconnect()

	waitFor(t, func() bool { return s.Loaded() && len(s.Records()) == 2 }, "initial+incremental records")
	if !s.Connected() {
		t.Fatalf("expected connected after open")
	}
	records := s.Records()
	if records[0].Message != "old" || records[1].Message != "fresh" {
		t.Fatalf("arrival order lost: %+v", records)
	}

	s.Disconnect()
	if s.Connected() {
		t.Fatalf("expected disconnected after Disconnect")
	}
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatalf("consume loop did not stop")
	}
}

func TestReconnectAfterServerClose(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := conns.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		sseWrite(w, fmt.Sprintf(`{"message":"conn-%d"}`, n))
		if n == 1 {
			return // server drops the first connection
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	s, err := Subscribe(context.Background(), httpDialer{base: srv.URL}, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer s.Disconnect()

	waitFor(t, func() bool { return conns.Load() >= 2 }, "reconnect")
	waitFor(t, func() bool { return len(s.Records()) == 2 }, "records across reconnect")
	if s.Err() == nil {
		t.Fatalf("dropped connection should surface as an error value")
	}
	// Records from before the drop survive the reconnect.
	if s.Records()[0].Message != "conn-1" {
		t.Fatalf("pre-drop record lost: %+v", s.Records())
	}
}

func TestMalformedMessageLeavesWindowIntact(t *testing.T) {
	s := testSubscriber(t, "")
	s.connected.Store(true)
	s.handleMessage([]byte(`{"type":"info","message":"kept"}`))
	s.handleMessage([]byte(`{definitely not json`))

	if s.Err() == nil {
		t.Fatalf("malformed message should set the error value")
	}
	if got := s.Records(); len(got) != 1 || got[0].Message != "kept" {
		t.Fatalf("window must be untouched by malformed input: %+v", got)
	}
	if !s.Connected() {
		t.Fatalf("malformed message must not close the connection")
	}
}

func TestClientSideFilterExpression(t *testing.T) {
	s := testSubscriber(t, `level == "error"`)
	s.handleMessage([]byte(`[{"type":"ERROR","message":"keep"},{"type":"info","message":"skip"}]`))
	got := s.Records()
	if len(got) != 1 || got[0].Message != "keep" {
		t.Fatalf("filter should keep only matching records: %+v", got)
	}
}

func TestOversizedInitialBatchCapped(t *testing.T) {
	s := testSubscriber(t, "")
	s.window = NewWindow(3)
	payload := `{"type":"initial","logs":[{"message":"r1"},{"message":"r2"},{"message":"r3"},{"message":"r4"},{"message":"r5"}]}`
	s.handleMessage([]byte(payload))
	got := s.Records()
	if len(got) != 3 || got[0].Message != "r3" || got[2].Message != "r5" {
		t.Fatalf("initial batch should be capped to the last entries: %+v", got)
	}
	if !s.Loaded() {
		t.Fatalf("initial batch should mark loaded")
	}
}
