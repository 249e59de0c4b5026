// Package id provides a 128-bit, lexicographically sortable identifier used
// to give live-stream records a stable local identity.
//
// The ID is 16 bytes big-endian: [8 bytes ms_timestamp][8 bytes sequence],
// so byte-wise comparison preserves generation order, and IDs generated
// within the same millisecond remain strictly increasing by sequence. The
// Generator guards against clock regression by pinning to the last observed
// millisecond.
package id
