package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/One-Minute-Stack/oneminutelogs-next/internal/filter"
	"github.com/One-Minute-Stack/oneminutelogs-next/internal/model"
	logpkg "github.com/One-Minute-Stack/oneminutelogs-next/pkg/log"
)

// Collector endpoints, relative to the configured base URL.
const (
	IngestPath = "/api/ingest"
	QueryPath  = "/api/logs"
	StreamPath = "/api/logs/stream"
)

const defaultTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL is the collector base URL (required).
	BaseURL string
	// APIKey is sent as a bearer credential when non-empty.
	APIKey string
	// AppName and Environment identify the sending application.
	AppName     string
	Environment string
	// InstanceID overrides the persisted per-host instance identity.
	InstanceID string
	// HTTPClient overrides the default client (10s timeout).
	HTTPClient *http.Client
	// Logger receives transport-level diagnostics.
	Logger logpkg.Logger
}

// Client issues ingest and query requests against the collector. One Send is
// one attempt: failures are returned to the flush layer, never retried here.
type Client struct {
	base       string
	apiKey     string
	appName    string
	env        string
	instanceID string
	hc         *http.Client
	logger     logpkg.Logger
}

// New constructs a Client. The instance ID is loaded from (or persisted to)
// the user config directory unless overridden.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("transport"))
	}
	instanceID := opts.InstanceID
	if instanceID == "" {
		instanceID = loadInstanceID()
	}
	return &Client{
		base:       strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		appName:    opts.AppName,
		env:        opts.Environment,
		instanceID: instanceID,
		hc:         hc,
		logger:     logger,
	}
}

// Send serializes the batch as one JSON document under a "logs" key and
// issues a single gzip-compressed POST to the ingest endpoint. No retry.
func (c *Client) Send(ctx context.Context, batch []model.Event) error {
	payload := struct {
		Logs []model.Event `json:"logs"`
	}{Logs: batch}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	var body bytes.Buffer
	zw := gzip.NewWriter(&body)
	if _, err := zw.Write(raw); err != nil {
		return fmt.Errorf("compress batch: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+IngestPath, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	c.setIdentityHeaders(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// Query issues a GET with URL-encoded filter parameters and returns the raw
// records. A 2xx body may be a bare array or an object with a "logs" array;
// non-2xx yields a StatusError carrying status and truncated body text.
func (c *Client) Query(ctx context.Context, f filter.Filters) ([]json.RawMessage, error) {
	u := c.base + QueryPath
	if enc := filter.Values(f).Encode(); enc != "" {
		u += "?" + enc
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.setIdentityHeaders(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("query: read body: %w", err)
	}
	return decodeRecords(body)
}

// NewStreamRequest builds an authorized long-lived GET against the stream
// endpoint with the same filter encoding as Query.
func (c *Client) NewStreamRequest(ctx context.Context, f filter.Filters) (*http.Request, error) {
	u := c.base + StreamPath
	if enc := filter.Values(f).Encode(); enc != "" {
		u += "?" + enc
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.setIdentityHeaders(req)
	return req, nil
}

// Do executes a stream request without the client timeout: the connection is
// long-lived and bounded only by its context.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	streamClient := &http.Client{Transport: c.hc.Transport}
	return streamClient.Do(req)
}

func (c *Client) setIdentityHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.appName != "" {
		req.Header.Set("X-App-Name", c.appName)
	}
	if c.env != "" {
		req.Header.Set("X-Environment", c.env)
	}
	req.Header.Set("X-Instance-ID", c.instanceID)
}

// decodeRecords accepts either a bare array or a {"logs": [...]} envelope.
func decodeRecords(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("query: decode array: %w", err)
		}
		return records, nil
	}
	var envelope struct {
		Logs []json.RawMessage `json:"logs"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("query: decode envelope: %w", err)
	}
	return envelope.Logs, nil
}
