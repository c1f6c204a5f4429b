// Package log provides a thin, concurrency-safe wrapper over [log/slog]
// with functional options for output format, minimum level, and writer.
//
// The zero value of [Logger] is usable and silently discards all messages,
// so packages may carry a Logger field without nil checks. A package-level
// default logger backs the top-level Trace, Debug, Info, Warn, and Error
// functions; it is reconfigured with [Config].
package log
