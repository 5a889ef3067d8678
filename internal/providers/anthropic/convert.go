package anthropic

import "llmgateway/internal/core"

const (
	// DefaultModel is used when a chat request carries no model hint.
	DefaultModel = "claude-3-5-sonnet-20241022"
	// MaxTokens is the fixed output budget sent with every request.
	MaxTokens = 1024
)

const (
	roleUser        = "user"
	contentTypeText = "text"
)

// MessagesRequest is the Messages API request body
type MessagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
}

// Message is a single turn in a Messages API request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessagesResponse is the subset of the Messages API response the gateway reads
type MessagesResponse struct {
	ID      string         `json:"id,omitempty"`
	Model   string         `json:"model"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is a tagged unit of response content
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// BuildRequest converts a gateway chat request into a single-turn Messages API request.
// The message text is forwarded untouched, including the empty string.
func BuildRequest(req *core.ChatRequest) *MessagesRequest {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	return &MessagesRequest{
		Model:     model,
		MaxTokens: MaxTokens,
		Messages: []Message{
			{Role: roleUser, Content: req.Message},
		},
	}
}

// ParseResponse extracts the first text block from a Messages API response.
// A response without any text block yields an empty reply rather than an error.
// The model is always the one reported upstream.
func ParseResponse(resp *MessagesResponse) *core.ChatResponse {
	text := ""
	for _, block := range resp.Content {
		if block.Type == contentTypeText {
			text = block.Text
			break
		}
	}

	return &core.ChatResponse{
		Response: text,
		Model:    resp.Model,
	}
}
