package core

import (
	"encoding/json"
	"errors"
)

// ChatRequest represents the incoming chat request
type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// UnmarshalJSON requires the message field to be present. An empty string is
// accepted and forwarded as-is.
func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message *string `json:"message"`
		Model   *string `json:"model"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Message == nil {
		return errors.New("missing field `message`")
	}
	r.Message = *raw.Message
	r.Model = ""
	if raw.Model != nil {
		r.Model = *raw.Model
	}
	return nil
}

// ChatResponse represents the normalized chat response
type ChatResponse struct {
	Response string `json:"response"`
	// Model is the identifier the upstream reports, which may differ from the
	// requested alias.
	Model string `json:"model"`
}

// ErrorResponse is returned in place of ChatResponse on failure
type ErrorResponse struct {
	Error string `json:"error"`
}
