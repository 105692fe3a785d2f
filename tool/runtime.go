package tool

import "github.com/lunarhue/agentic/logging"

// Runtime is the per-run context handed to every tool handler. It is built
// by the runner, never by the tool itself; handlers that don't need it can
// ignore the parameter. The zero value is usable.
type Runtime struct {
	// Logger is the run's logger. Use Log to read it nil-safely.
	Logger logging.Logger

	// Values carries caller-supplied request-scoped data, such as user or
	// tenant identifiers, set via runner.WithRuntimeValues.
	Values map[string]any
}

// Log returns the runtime logger, or a no-op logger when none was set.
func (r Runtime) Log() logging.Logger {
	if r.Logger == nil {
		return logging.NoOpLogger{}
	}
	return r.Logger
}

// Value looks up a request-scoped entry by key.
func (r Runtime) Value(key string) (any, bool) {
	v, ok := r.Values[key]
	return v, ok
}
