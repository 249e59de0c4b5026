// Package oml is the public client SDK: buffered, batched event delivery to
// a collector, cached point-in-time queries, and a live record stream.
//
// A Client never blocks the caller on network I/O. Events accumulate in an
// in-process buffer and drain on a timer, on an explicit Flush, or once
// during Close. Delivery is at most once: a batch that fails to send is
// logged and dropped, never re-queued.
package oml
