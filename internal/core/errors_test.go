package core

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *GatewayError
		expected string
	}{
		{
			name:     "upstream error with status",
			err:      NewUpstreamError(http.StatusUnauthorized, []byte(`{"type":"error"}`)),
			expected: `upstream_error (status 401): {"type":"error"}`,
		},
		{
			name:     "configuration error",
			err:      NewConfigurationError(MessageAPIKeyNotSet),
			expected: "configuration_error: API key not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGatewayError_Unwrap(t *testing.T) {
	originalErr := errors.New("connection refused")

	transportErr := NewTransportError(originalErr)
	assert.ErrorIs(t, transportErr, originalErr)

	decodeErr := NewDecodeError(originalErr)
	assert.Same(t, originalErr, decodeErr.Unwrap())
}

func TestGatewayError_HTTPStatusCode(t *testing.T) {
	errs := []*GatewayError{
		NewConfigurationError(MessageAPIKeyNotSet),
		NewTransportError(errors.New("dial tcp: no such host")),
		NewUpstreamError(http.StatusTooManyRequests, []byte("slow down")),
		NewUpstreamError(http.StatusBadRequest, []byte("bad")),
		NewDecodeError(errors.New("unexpected EOF")),
		{Type: "unknown"},
	}

	for _, err := range errs {
		t.Run(string(err.Type), func(t *testing.T) {
			assert.Equal(t, http.StatusInternalServerError, err.HTTPStatusCode())
		})
	}
}

func TestNewUpstreamError_KeepsRawBody(t *testing.T) {
	body := []byte(`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens: field required"}}`)

	err := NewUpstreamError(http.StatusBadRequest, body)

	assert.Equal(t, ErrorTypeUpstream, err.Type)
	assert.Equal(t, http.StatusBadRequest, err.UpstreamStatus)
	assert.Equal(t, ErrorResponse{Error: string(body)}, err.ToResponse())
}

func TestNewTransportError_UsesCauseDescription(t *testing.T) {
	err := NewTransportError(errors.New(`Post "https://api.anthropic.com/v1/messages": dial tcp: lookup api.anthropic.com: no such host`))

	assert.Equal(t, ErrorTypeTransport, err.Type)
	assert.Contains(t, err.ToResponse().Error, "no such host")
}

func TestNewDecodeError(t *testing.T) {
	err := NewDecodeError(errors.New("invalid character 'x' looking for beginning of value"))

	require.Equal(t, ErrorTypeDecode, err.Type)
	assert.Equal(t, "failed to decode upstream response: invalid character 'x' looking for beginning of value", err.Message)
}
