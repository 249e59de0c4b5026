// Package livestream implements the live read path: a persistent
// server-push connection to the collector's stream endpoint, shape-based
// decoding of heterogeneous wire messages into one canonical record form,
// and a bounded, order-preserving retention window with FIFO eviction.
//
// The connection reconnects with exponential backoff. Errors are observable
// state rather than exceptions: a malformed message or dropped connection
// sets the subscription's error value without discarding buffered records.
package livestream
