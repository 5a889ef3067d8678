// Package server provides HTTP handlers and server setup for the LLM gateway.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"llmgateway/internal/core"
	"llmgateway/internal/providers/anthropic"
)

// Upstream sends a translated request to the provider
type Upstream interface {
	Send(ctx context.Context, req *anthropic.MessagesRequest, apiKey string) (*anthropic.MessagesResponse, error)
}

// HandlerConfig holds the values the chat handler reads per request.
// It is fixed at construction and never mutated.
type HandlerConfig struct {
	APIKey string
}

// Handler holds the HTTP handlers
type Handler struct {
	upstream Upstream
	config   HandlerConfig
}

// NewHandler creates a new handler with the given upstream and configuration
func NewHandler(upstream Upstream, cfg HandlerConfig) *Handler {
	return &Handler{
		upstream: upstream,
		config:   cfg,
	}
}

// Chat handles POST /ai/chat
func (h *Handler) Chat(c echo.Context) error {
	var req core.ChatRequest
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, core.ErrorResponse{Error: bindErrorMessage(err)})
	}

	if h.config.APIKey == "" {
		return handleError(c, core.NewConfigurationError(core.MessageAPIKeyNotSet))
	}

	upstreamReq := anthropic.BuildRequest(&req)

	upstreamResp, err := h.upstream.Send(c.Request().Context(), upstreamReq, h.config.APIKey)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(http.StatusOK, anthropic.ParseResponse(upstreamResp))
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Root handles GET /
func (h *Handler) Root(c echo.Context) error {
	return c.String(http.StatusOK, Greet("World"))
}

// GreetName handles GET /greet/:name
func (h *Handler) GreetName(c echo.Context) error {
	return c.String(http.StatusOK, Greet(c.Param("name")))
}

// Greet returns the greeting for name
func Greet(name string) string {
	return "Hello, " + name + "!"
}

// handleError converts gateway errors to HTTP responses.
// This is the only place that decides the status a failure is reported with.
func handleError(c echo.Context, err error) error {
	var gatewayErr *core.GatewayError
	if errors.As(err, &gatewayErr) {
		slog.Error("chat request failed",
			"error_type", gatewayErr.Type,
			"upstream_status", gatewayErr.UpstreamStatus,
			"request_id", core.RequestID(c.Request().Context()),
			"error", err,
		)
		return c.JSON(gatewayErr.HTTPStatusCode(), gatewayErr.ToResponse())
	}

	slog.Error("chat request failed", "error", err)
	return c.JSON(http.StatusInternalServerError, core.ErrorResponse{Error: err.Error()})
}

func bindErrorMessage(err error) string {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Internal != nil {
			return httpErr.Internal.Error()
		}
		if msg, ok := httpErr.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}
