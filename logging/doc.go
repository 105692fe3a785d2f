// Package logging provides a minimal logging interface and adapters for the
// agentic module.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the runner, providers and tools use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - ErrorAttrs for turning coded errors into structured attributes
//
// Usage:
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "text"})
//	r := runner.New(runner.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
