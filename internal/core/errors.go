// Package core provides core types and the error taxonomy for the LLM gateway.
package core

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeConfiguration indicates the gateway is missing a required setting
	ErrorTypeConfiguration ErrorType = "configuration_error"
	// ErrorTypeTransport indicates the upstream could not be reached
	ErrorTypeTransport ErrorType = "transport_error"
	// ErrorTypeUpstream indicates the upstream answered with a non-success status
	ErrorTypeUpstream ErrorType = "upstream_error"
	// ErrorTypeDecode indicates a success response body that could not be parsed
	ErrorTypeDecode ErrorType = "decode_error"
)

// MessageAPIKeyNotSet is returned to callers when no upstream credential is configured.
const MessageAPIKeyNotSet = "API key not set"

// GatewayError is the base error type for all gateway errors
type GatewayError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	// UpstreamStatus is the provider's HTTP status for upstream errors.
	// It is kept for logs and metrics only and never sent to clients.
	UpstreamStatus int `json:"upstream_status,omitempty"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.UpstreamStatus != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Type, e.UpstreamStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the status reported to the caller.
// Every kind currently collapses to 500; refine here if callers ever need to
// tell configuration, transport, upstream and decode failures apart.
func (e *GatewayError) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeConfiguration, ErrorTypeTransport, ErrorTypeUpstream, ErrorTypeDecode:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ToResponse converts the error to the client-facing error body
func (e *GatewayError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

// NewConfigurationError creates an error for a missing or invalid gateway setting
func NewConfigurationError(message string) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeConfiguration,
		Message: message,
	}
}

// NewTransportError creates an error for a failed round trip to the upstream
func NewTransportError(err error) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeTransport,
		Message: err.Error(),
		Err:     err,
	}
}

// NewUpstreamError creates an error for a non-success upstream response.
// The raw body becomes the message untouched.
func NewUpstreamError(statusCode int, body []byte) *GatewayError {
	return &GatewayError{
		Type:           ErrorTypeUpstream,
		Message:        string(body),
		UpstreamStatus: statusCode,
	}
}

// NewDecodeError creates an error for a success body that could not be parsed
func NewDecodeError(err error) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeDecode,
		Message: "failed to decode upstream response: " + err.Error(),
		Err:     err,
	}
}
