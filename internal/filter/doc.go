// Package filter provides the canonical filter-parameter handling shared by
// the query and stream paths: a stable cache key, URL encoding, and an
// optional client-side CEL expression evaluated against normalized records.
package filter
