package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/One-Minute-Stack/oneminutelogs-next/internal/filter"
	"github.com/One-Minute-Stack/oneminutelogs-next/internal/model"
)

func newTestClient(url string) *Client {
	return New(Options{
		BaseURL:     url,
		APIKey:      "sk-test",
		AppName:     "checkout",
		Environment: "staging",
		InstanceID:  "inst-1",
	})
}

func TestSendPostsGzippedLogsEnvelope(t *testing.T) {
	var gotPath, gotAuth, gotApp, gotEnv, gotInstance, gotEncoding string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotApp = r.Header.Get("X-App-Name")
		gotEnv = r.Header.Get("X-Environment")
		gotInstance = r.Header.Get("X-Instance-ID")
		gotEncoding = r.Header.Get("Content-Encoding")
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			t.Errorf("gzip reader: %v", err)
			return
		}
		gotBody, _ = io.ReadAll(zr)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	batch := []model.Event{
		{Type: model.KindError, Message: "first", Timestamp: time.Unix(1700000000, 0).UTC()},
		{Type: model.KindInfo, Message: "second", Timestamp: time.Unix(1700000001, 0).UTC()},
	}
	if err := c.Send(context.Background(), batch); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != IngestPath {
		t.Fatalf("wrong path: %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" || gotApp != "checkout" || gotEnv != "staging" || gotInstance != "inst-1" {
		t.Fatalf("identity headers wrong: %q %q %q %q", gotAuth, gotApp, gotEnv, gotInstance)
	}
	if gotEncoding != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", gotEncoding)
	}
	var envelope struct {
		Logs []model.Event `json:"logs"`
	}
	if err := json.Unmarshal(gotBody, &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(envelope.Logs) != 2 || envelope.Logs[0].Message != "first" || envelope.Logs[1].Message != "second" {
		t.Fatalf("batch order lost: %+v", envelope.Logs)
	}
}

func TestSendNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Send(context.Background(), []model.Event{{Type: model.KindInfo}})
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("want StatusError 502, got %v", err)
	}
}

func TestQueryBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != QueryPath {
			t.Errorf("wrong path %q", r.URL.Path)
		}
		if r.URL.Query().Get("type") != "error" {
			t.Errorf("missing filter param: %v", r.URL.Query())
		}
		_, _ = w.Write([]byte(`[{"message":"a"},{"message":"b"}]`))
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL).Query(context.Background(), filter.Filters{"type": "error"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}
}

func TestQueryLogsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"logs":[{"message":"a"}]}`))
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL).Query(context.Background(), nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("want 1 record, got %d", len(records))
	}
}

func TestQueryStatusErrorTruncatesBody(t *testing.T) {
	big := make([]byte, 2048)
	for i := range big {
		big[i] = 'x'
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(big)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Query(context.Background(), nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("want StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("wrong status: %d", se.StatusCode)
	}
	if len(se.Body) > maxErrorBody {
		t.Fatalf("body not truncated: %d bytes", len(se.Body))
	}
}

func TestQueryContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := newTestClient(srv.URL).Query(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestStreamRequestEncoding(t *testing.T) {
	c := newTestClient("http://collector")
	req, err := c.NewStreamRequest(context.Background(), filter.Filters{"type": "error", "app": ""})
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if req.URL.Path != StreamPath {
		t.Fatalf("wrong path: %q", req.URL.Path)
	}
	if req.URL.Query().Get("type") != "error" {
		t.Fatalf("filter not encoded: %q", req.URL.RawQuery)
	}
	if _, ok := req.URL.Query()["app"]; ok {
		t.Fatalf("empty filter value should be omitted")
	}
	if req.Header.Get("Accept") != "text/event-stream" {
		t.Fatalf("missing SSE accept header")
	}
	if req.Header.Get("X-Instance-ID") != "inst-1" {
		t.Fatalf("missing identity header")
	}
}
