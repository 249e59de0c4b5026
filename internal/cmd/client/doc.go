// Package client provides the `oml` command-line client.
//
// The CLI talks to the collector's HTTP API to send events, run queries,
// and tail the live stream from a terminal.
//
// # Configuration
//
// Commands read an optional YAML file via --config, overlay OML_*
// environment variables, then apply flags. The collector URL is required,
// from --server, OML_SERVER_URL, or the config file.
//
// Usage
//
//	oml send --server http://127.0.0.1:8080 \
//	    --type error --message "payment declined" \
//	    --subsystem payments --operation charge
//
//	oml query --server http://127.0.0.1:8080 type=error subsystem=payments
//
//	# Follow the live stream; --filter is a CEL expression evaluated
//	# client-side against each record
//	oml tail --server http://127.0.0.1:8080 --filter 'level == "error"'
package client
