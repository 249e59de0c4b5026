// Package transport converts event batches into single outbound requests to
// the collector and interprets responses. It covers the three collector
// endpoints: ingest (gzip-compressed POST of {"logs": [...]}), query
// (URL-encoded GET), and the long-lived stream request used by the live
// subscriber. Credential and app/environment identity headers are attached
// to every request.
package transport
