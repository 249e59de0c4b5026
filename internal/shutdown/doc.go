// Package shutdown coordinates process teardown: one final synchronous flush
// of buffered events, executed exactly once no matter how many signals or
// Close calls race, followed by an injected terminate hook. The package
// registers no global signal handlers itself; hosts wire their own (the CLI
// uses signal.NotifyContext).
package shutdown
