package anthropic

import (
	"errors"
	"fmt"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunarhue/agentic/core"
)

func TestMapErrorClassifiesByStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		code      core.Code
		retryable bool
	}{
		{"unauthorized", 401, core.CodeAuthentication, false},
		{"forbidden", 403, core.CodeAuthentication, false},
		{"rate limited", 429, core.CodeRateLimit, true},
		{"bad request", 400, core.CodeInvalidRequest, false},
		{"unprocessable", 422, core.CodeInvalidRequest, false},
		{"overloaded", 529, core.CodeStatus, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sdkErr := &anthropic.Error{StatusCode: tt.status}

			err := mapError(sdkErr)

			assert.Equal(t, tt.code, core.CodeOf(err))
			assert.Equal(t, tt.retryable, core.IsRetryable(err))
			assert.True(t, errors.Is(err, sdkErr))
		})
	}
}

func TestMapErrorStatusCarriesStatusCode(t *testing.T) {
	err := mapError(&anthropic.Error{StatusCode: 500})

	coreErr, ok := core.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 500, coreErr.Context["status_code"])
}

func TestMapErrorTransportFailureIsRetryableConnection(t *testing.T) {
	cause := errors.New("context deadline exceeded")

	err := mapError(cause)

	assert.Equal(t, core.CodeConnection, core.CodeOf(err))
	assert.True(t, core.IsRetryable(err))
	assert.True(t, errors.Is(err, cause))
}

func TestMapErrorSeesWrappedAPIError(t *testing.T) {
	sdkErr := &anthropic.Error{StatusCode: 429}

	err := mapError(fmt.Errorf("messages call: %w", sdkErr))

	assert.Equal(t, core.CodeRateLimit, core.CodeOf(err))
}
