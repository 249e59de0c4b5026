package livestream

import (
	"strings"
	"testing"

	"github.com/valyala/fastjson"
)

func decode(t *testing.T, payload string) message {
	t.Helper()
	var p fastjson.Parser
	msg, err := NewNormalizer().DecodeMessage(&p, []byte(payload))
	if err != nil {
		t.Fatalf("decode %q: %v", payload, err)
	}
	return msg
}

func TestInitialEnvelope(t *testing.T) {
	msg := decode(t, `{"type":"initial","logs":[{"type":"ERROR","message":"m","timestamp":1700000000}]}`)
	if !msg.initial {
		t.Fatalf("expected initial message")
	}
	if len(msg.records) != 1 {
		t.Fatalf("want 1 record, got %d", len(msg.records))
	}
	rec := msg.records[0]
	if rec.Level != "error" {
		t.Fatalf("want level error, got %q", rec.Level)
	}
	if rec.TS != "2023-11-14T22:13:20Z" {
		t.Fatalf("want ISO form of epoch second, got %q", rec.TS)
	}
	if rec.Message != "m" {
		t.Fatalf("message lost: %q", rec.Message)
	}
	if rec.ID == "" {
		t.Fatalf("missing local identity")
	}
}

func TestLogsEnvelopeBareArrayAndSingleAreEquivalent(t *testing.T) {
	payloads := []string{
		`{"logs":[{"type":"warning","message":"w"}]}`,
		`[{"type":"warning","message":"w"}]`,
		`{"type":"warning","message":"w"}`,
	}
	for _, payload := range payloads {
		msg := decode(t, payload)
		if msg.initial {
			t.Fatalf("%q should be incremental", payload)
		}
		if len(msg.records) != 1 || msg.records[0].Level != "warning" || msg.records[0].Message != "w" {
			t.Fatalf("%q normalized wrong: %+v", payload, msg.records)
		}
	}
}

func TestLevelNormalization(t *testing.T) {
	cases := map[string]string{
		`{"type":"ERROR"}`:   "error",
		`{"type":"Success"}`: "success",
		`{"type":"AUDIT"}`:   "audit",
		`{"type":"metric"}`:  "metric",
		`{"type":"verbose"}`: "info",
		`{}`:                 "info",
	}
	for payload, want := range cases {
		msg := decode(t, payload)
		if got := msg.records[0].Level; got != want {
			t.Fatalf("%q: want level %q, got %q", payload, want, got)
		}
	}
}

func TestTimestampForms(t *testing.T) {
	numeric := decode(t, `{"timestamp":1700000000}`).records[0]
	if numeric.TS != "2023-11-14T22:13:20Z" {
		t.Fatalf("numeric epoch seconds: got %q", numeric.TS)
	}
	if numeric.TimestampMs() != 1700000000000 {
		t.Fatalf("numeric ts_ms: got %d", numeric.TimestampMs())
	}

	spaced := decode(t, `{"timestamp":"2023-11-14 22:13:20"}`).records[0]
	if spaced.TS != "2023-11-14T22:13:20Z" {
		t.Fatalf("space-separated string should be treated as UTC: got %q", spaced.TS)
	}

	opaque := decode(t, `{"timestamp":"yesterday"}`).records[0]
	if opaque.TS != "yesterday" {
		t.Fatalf("unparseable string should pass through: got %q", opaque.TS)
	}

	missing := decode(t, `{"message":"m"}`).records[0]
	if missing.TS == "" {
		t.Fatalf("missing timestamp should fall back to current time")
	}
}

func TestSourceFallback(t *testing.T) {
	withSource := decode(t, `{"source":"api","appName":"checkout"}`).records[0]
	if withSource.Source != "api" {
		t.Fatalf("want source api, got %q", withSource.Source)
	}
	fromApp := decode(t, `{"appName":"checkout"}`).records[0]
	if fromApp.Source != "checkout" {
		t.Fatalf("want appName fallback, got %q", fromApp.Source)
	}
}

func TestRawPayloadPreserved(t *testing.T) {
	msg := decode(t, `{"type":"error","message":"m","userId":"u-1"}`)
	raw := string(msg.records[0].Raw)
	if raw == "" || !strings.Contains(raw, `"userId"`) {
		t.Fatalf("raw payload lost: %q", raw)
	}
}

func TestMalformedAndScalarMessages(t *testing.T) {
	var p fastjson.Parser
	n := NewNormalizer()
	if _, err := n.DecodeMessage(&p, []byte(`{not json`)); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := n.DecodeMessage(&p, []byte(`42`)); err == nil {
		t.Fatalf("expected shape error for scalar")
	}
}

func TestRecordIdentitiesAreOrdered(t *testing.T) {
	msg := decode(t, `[{"message":"a"},{"message":"b"},{"message":"c"}]`)
	for i := 1; i < len(msg.records); i++ {
		if !(msg.records[i-1].ID < msg.records[i].ID) {
			t.Fatalf("identities not in arrival order: %q vs %q", msg.records[i-1].ID, msg.records[i].ID)
		}
	}
}
