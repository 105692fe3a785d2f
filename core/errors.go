package core

import (
	"errors"
	"fmt"
)

// Code identifies a stable error category for programmatic handling and logs.
type Code string

const (
	// CodeUnknown is the fallback category for unclassified failures.
	CodeUnknown Code = "unknown"
	// CodeInput marks malformed caller input.
	CodeInput Code = "agent.input.invalid"
	// CodeSerialization marks a canonical conversation that cannot be
	// translated into a provider wire format.
	CodeSerialization Code = "agent.serialization.failed"
	// CodeParsing marks a provider payload the adapter cannot interpret.
	CodeParsing Code = "agent.parsing.failed"
	// CodeExecution marks an unexpected fault during loop orchestration.
	CodeExecution Code = "agent.execution.failed"
	// CodeMaxIterations marks a loop that exhausted its bound without a
	// terminal turn.
	CodeMaxIterations Code = "agent.max_iterations"
	// CodeToolCall marks an unknown tool name or malformed arguments.
	CodeToolCall Code = "tool.call.invalid"
	// CodeToolExecution marks a failure reported by tool logic.
	CodeToolExecution Code = "tool.execution.failed"
	// CodeConnection marks a network/timeout failure calling a provider.
	CodeConnection Code = "api.connection.failed"
	// CodeStatus marks a generic provider API status failure.
	CodeStatus Code = "api.status.error"
	// CodeInvalidRequest marks request parameters the provider rejected.
	CodeInvalidRequest Code = "api.invalid_request"
	// CodeAuthentication marks an authentication or authorization failure.
	CodeAuthentication Code = "api.auth.failed"
	// CodeRateLimit marks a provider rate-limit rejection.
	CodeRateLimit Code = "api.rate_limited"
)

// Error is the structured error type shared by every layer of the module.
// Connection and rate-limit failures are retryable; everything else is not
// unless a caller opts in explicitly.
type Error struct {
	Code      Code
	Message   string
	Retryable bool
	Context   map[string]any
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// With attaches a context key/value pair and returns the error for chaining.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = map[string]any{}
	}
	e.Context[key] = value
	return e
}

// Wrap records the underlying cause and returns the error for chaining.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func newError(code Code, retryable bool, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Retryable: retryable}
}

// NewInputError reports malformed caller input.
func NewInputError(format string, args ...any) *Error {
	return newError(CodeInput, false, format, args...)
}

// NewSerializationError reports a wire translation failure.
func NewSerializationError(format string, args ...any) *Error {
	return newError(CodeSerialization, false, format, args...)
}

// NewParsingError reports an uninterpretable provider payload.
func NewParsingError(format string, args ...any) *Error {
	return newError(CodeParsing, false, format, args...)
}

// NewExecutionError reports an unexpected orchestration fault.
func NewExecutionError(format string, args ...any) *Error {
	return newError(CodeExecution, false, format, args...)
}

// NewMaxIterationsError reports loop bound exhaustion.
func NewMaxIterationsError(format string, args ...any) *Error {
	return newError(CodeMaxIterations, false, format, args...)
}

// NewToolCallError reports an invalid tool call shape. Recoverable: the
// runner feeds it back to the model as the tool's output.
func NewToolCallError(format string, args ...any) *Error {
	return newError(CodeToolCall, false, format, args...)
}

// NewToolExecutionError reports a failure raised by tool logic. Recoverable
// in the same way as NewToolCallError.
func NewToolExecutionError(format string, args ...any) *Error {
	return newError(CodeToolExecution, false, format, args...)
}

// NewConnectionError reports a transport failure. Retryable.
func NewConnectionError(format string, args ...any) *Error {
	return newError(CodeConnection, true, format, args...)
}

// NewStatusError reports a generic provider status failure.
func NewStatusError(format string, args ...any) *Error {
	return newError(CodeStatus, false, format, args...)
}

// NewInvalidRequestError reports provider-rejected request parameters.
func NewInvalidRequestError(format string, args ...any) *Error {
	return newError(CodeInvalidRequest, false, format, args...)
}

// NewAuthenticationError reports an authentication failure.
func NewAuthenticationError(format string, args ...any) *Error {
	return newError(CodeAuthentication, false, format, args...)
}

// NewRateLimitError reports a rate-limit rejection. Retryable.
func NewRateLimitError(format string, args ...any) *Error {
	return newError(CodeRateLimit, true, format, args...)
}

// AsError unwraps err to the structured Error type.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the error's code, or CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return CodeUnknown
}

// IsRetryable reports whether the error is safe to retry.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// IsRecoverableToolError reports whether a dispatch failure should be fed
// back to the model as the tool's output instead of aborting the run.
func IsRecoverableToolError(err error) bool {
	switch CodeOf(err) {
	case CodeToolCall, CodeToolExecution:
		return true
	default:
		return false
	}
}
