package id

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"
)

// ID is a 128-bit, lexicographically sortable identifier encoded as 16 bytes
// big-endian: [8 bytes ms_timestamp][8 bytes sequence].
type ID [16]byte

// String returns the lowercase hex form.
func (i ID) String() string { return hex.EncodeToString(i[:]) }

// Compare returns -1, 0, 1 based on lexical comparison.
func (i ID) Compare(other ID) int { return bytes.Compare(i[:], other[:]) }

// NowMs returns current time in milliseconds since Unix epoch. Overridable in
// tests.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Generator produces strictly increasing IDs per process. Live-stream records
// are stamped with these so a consuming list has a stable, arrival-ordered
// identity per entry.
type Generator struct {
	mu     sync.Mutex
	lastMs int64
	seq    uint64
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator { return &Generator{} }

// Next returns a new ID. If the clock regresses, the generator pins to the
// last observed millisecond and keeps incrementing the sequence so ordering
// never reverses.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := NowMs()
	if ms <= g.lastMs {
		ms = g.lastMs
		g.seq++
	} else {
		g.seq = 0
	}
	g.lastMs = ms

	var out ID
	binary.BigEndian.PutUint64(out[0:8], uint64(ms))
	binary.BigEndian.PutUint64(out[8:16], g.seq)
	return out
}
