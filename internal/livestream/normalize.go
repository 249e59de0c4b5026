package livestream

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/One-Minute-Stack/oneminutelogs-next/pkg/id"
)

// Record is the canonical live-stream entry: a locally generated identity, a
// normalized ISO timestamp, a canonical severity level, a source tag, the
// message text, and the original raw payload preserved for detail
// inspection.
type Record struct {
	ID      string          `json:"id"`
	TS      string          `json:"ts"`
	Level   string          `json:"level"`
	Source  string          `json:"source"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"raw"`

	tsMs int64
}

// TimestampMs returns the normalized timestamp as epoch milliseconds, or 0
// when the raw timestamp could not be interpreted.
func (r Record) TimestampMs() int64 { return r.tsMs }

var canonicalLevels = map[string]struct{}{
	"info": {}, "warning": {}, "error": {}, "debug": {},
	"success": {}, "audit": {}, "metric": {},
}

// message is one decoded stream payload: either an initial snapshot that
// replaces the window, or incremental records appended to it.
type message struct {
	initial bool
	records []Record
}

// Normalizer reshapes heterogeneous wire messages into Records.
type Normalizer struct {
	gen *id.Generator
}

// NewNormalizer returns a Normalizer with a fresh identity generator.
func NewNormalizer() *Normalizer { return &Normalizer{gen: id.NewGenerator()} }

// DecodeMessage parses one inbound stream message and dispatches by shape:
// an envelope tagged "initial", an envelope carrying a "logs" array, a bare
// array, or a single record object. Anything else is a parse error; the
// caller reports it without touching the window or the connection.
func (n *Normalizer) DecodeMessage(p *fastjson.Parser, data []byte) (message, error) {
	v, err := p.ParseBytes(data)
	if err != nil {
		return message{}, fmt.Errorf("parse stream message: %w", err)
	}
	switch v.Type() {
	case fastjson.TypeArray:
		return message{records: n.normalizeAll(v.GetArray())}, nil
	case fastjson.TypeObject:
		if string(v.GetStringBytes("type")) == "initial" {
			return message{initial: true, records: n.normalizeAll(v.GetArray("logs"))}, nil
		}
		if logs := v.GetArray("logs"); logs != nil {
			return message{records: n.normalizeAll(logs)}, nil
		}
		return message{records: []Record{n.normalize(v)}}, nil
	default:
		return message{}, fmt.Errorf("unexpected stream message shape: %s", v.Type())
	}
}

func (n *Normalizer) normalizeAll(values []*fastjson.Value) []Record {
	out := make([]Record, 0, len(values))
	for _, v := range values {
		out = append(out, n.normalize(v))
	}
	return out
}

// normalize maps one raw record to the canonical shape. The raw payload is
// copied, so the fastjson parser may be reused for the next message.
func (n *Normalizer) normalize(v *fastjson.Value) Record {
	rec := Record{
		ID:      n.gen.Next().String(),
		Level:   normalizeLevel(v.GetStringBytes("type")),
		Source:  recordSource(v),
		Message: string(v.GetStringBytes("message")),
		Raw:     v.MarshalTo(nil),
	}
	rec.TS, rec.tsMs = normalizeTimestamp(v.Get("timestamp"))
	return rec
}

// normalizeLevel lower-cases the raw type and maps it onto the canonical
// levels, defaulting to "info" for unrecognized or missing values.
func normalizeLevel(raw []byte) string {
	level := strings.ToLower(string(raw))
	if _, ok := canonicalLevels[level]; ok {
		return level
	}
	return "info"
}

func recordSource(v *fastjson.Value) string {
	if s := v.GetStringBytes("source"); len(s) > 0 {
		return string(s)
	}
	if s := v.GetStringBytes("appName"); len(s) > 0 {
		return string(s)
	}
	return ""
}

// normalizeTimestamp converts the raw timestamp to ISO form. A numeric value
// is epoch seconds; a "YYYY-MM-DD HH:mm:ss" string is treated as UTC by
// substituting the separator and appending a UTC marker. Unparseable values
// pass through verbatim; a missing timestamp uses the current time.
func normalizeTimestamp(v *fastjson.Value) (string, int64) {
	if v == nil {
		t := time.Now().UTC()
		return t.Format(time.RFC3339), t.UnixMilli()
	}
	switch v.Type() {
	case fastjson.TypeNumber:
		sec, _ := v.Float64()
		t := time.Unix(int64(sec), int64((sec-float64(int64(sec)))*float64(time.Second))).UTC()
		return t.Format(time.RFC3339), t.UnixMilli()
	case fastjson.TypeString:
		s := string(v.GetStringBytes())
		iso := s
		if len(s) == 19 && s[10] == ' ' {
			iso = s[:10] + "T" + s[11:] + "Z"
		}
		if t, err := time.Parse(time.RFC3339, iso); err == nil {
			return t.UTC().Format(time.RFC3339), t.UnixMilli()
		}
		return s, 0
	default:
		t := time.Now().UTC()
		return t.Format(time.RFC3339), t.UnixMilli()
	}
}
