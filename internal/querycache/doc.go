// Package querycache provides the read-path memoization layer: resolved
// query results keyed by canonicalized filter parameters, with singleflight
// de-duplication of concurrent identical requests and explicit refetch
// eviction.
package querycache
