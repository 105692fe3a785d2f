package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodes_StableStrings(t *testing.T) {
	cases := map[Code]string{
		CodeUnknown:        "unknown",
		CodeInput:          "agent.input.invalid",
		CodeSerialization:  "agent.serialization.failed",
		CodeParsing:        "agent.parsing.failed",
		CodeExecution:      "agent.execution.failed",
		CodeMaxIterations:  "agent.max_iterations",
		CodeToolCall:       "tool.call.invalid",
		CodeToolExecution:  "tool.execution.failed",
		CodeConnection:     "api.connection.failed",
		CodeStatus:         "api.status.error",
		CodeInvalidRequest: "api.invalid_request",
		CodeAuthentication: "api.auth.failed",
		CodeRateLimit:      "api.rate_limited",
	}
	for code, want := range cases {
		if string(code) != want {
			t.Errorf("code %q, want %q", code, want)
		}
	}
}

func TestErrorRetryability(t *testing.T) {
	if !IsRetryable(NewConnectionError("dial failed")) {
		t.Error("connection errors should be retryable")
	}
	if !IsRetryable(NewRateLimitError("slow down")) {
		t.Error("rate limit errors should be retryable")
	}
	for _, err := range []error{
		NewInputError("bad input"),
		NewStatusError("boom"),
		NewAuthenticationError("denied"),
		NewExecutionError("fatal"),
	} {
		if IsRetryable(err) {
			t.Errorf("%v should not be retryable", err)
		}
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors should not be retryable")
	}
}

func TestError_WrapAndContext(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewConnectionError("request failed").Wrap(cause).With("endpoint", "/v1/chat")

	if got := err.Error(); got != "request failed: connection reset" {
		t.Fatalf("rendered message %q", got)
	}
	if !errors.Is(err, cause) {
		t.Fatal("Unwrap chain broken")
	}
	if err.Context["endpoint"] != "/v1/chat" {
		t.Fatalf("context not recorded: %+v", err.Context)
	}
}

func TestAsError_ThroughWrapping(t *testing.T) {
	inner := NewToolCallError("bad arguments")
	wrapped := fmt.Errorf("dispatch: %w", inner)

	got, ok := AsError(wrapped)
	if !ok || got.Code != CodeToolCall {
		t.Fatalf("AsError through fmt wrap: %v %v", got, ok)
	}
	if CodeOf(wrapped) != CodeToolCall {
		t.Fatalf("CodeOf through fmt wrap: %s", CodeOf(wrapped))
	}
	if CodeOf(errors.New("plain")) != CodeUnknown {
		t.Fatal("plain error should map to unknown code")
	}
}

func TestIsRecoverableToolError(t *testing.T) {
	if !IsRecoverableToolError(NewToolCallError("bad args")) {
		t.Error("tool.call.invalid is recoverable")
	}
	if !IsRecoverableToolError(NewToolExecutionError("logic failed")) {
		t.Error("tool.execution.failed is recoverable")
	}
	if IsRecoverableToolError(NewExecutionError("fatal")) {
		t.Error("agent.execution.failed is not recoverable")
	}
	if IsRecoverableToolError(errors.New("plain")) {
		t.Error("plain errors are not recoverable tool errors")
	}
}
