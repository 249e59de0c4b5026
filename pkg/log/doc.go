// Package log provides the structured logging facade used by the SDK.
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Internally it is backed by Go's
// standard library slog via a custom handler that routes records through a
// formatter/output pipeline, so the SDK's internal error reporting stays
// consistent whether a host application injects its own Logger or relies on
// the default console logger.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("buffer"))
//	l.Error("flush failed", log.Err(err), log.Int("batch_size", n))
package log
