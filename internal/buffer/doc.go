// Package buffer implements the append-only event staging area and its flush
// scheduling: interval-based batching with timer coalescing, single-flight
// flush execution, atomic drain, and at-most-once delivery (a failed send
// drops the batch rather than re-queueing it).
package buffer
