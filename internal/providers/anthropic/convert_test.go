package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmgateway/internal/core"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name      string
		input     *core.ChatRequest
		wantModel string
	}{
		{
			name:      "absent model uses default",
			input:     &core.ChatRequest{Message: "Hello"},
			wantModel: DefaultModel,
		},
		{
			name:      "explicit model is kept verbatim",
			input:     &core.ChatRequest{Message: "Hello", Model: "claude-3-haiku-20240307"},
			wantModel: "claude-3-haiku-20240307",
		},
		{
			name:      "unknown model is not rewritten",
			input:     &core.ChatRequest{Message: "Hello", Model: "not-a-claude-model"},
			wantModel: "not-a-claude-model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := BuildRequest(tt.input)

			assert.Equal(t, tt.wantModel, req.Model)
			assert.Equal(t, 1024, req.MaxTokens)
			require.Len(t, req.Messages, 1)
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, tt.input.Message, req.Messages[0].Content)
		})
	}
}

func TestBuildRequest_MessageUnmodified(t *testing.T) {
	messages := []string{
		"",
		"  leading and trailing spaces  ",
		"line one\nline two\ttabbed",
		`quotes " and backslashes \ and <html>`,
		"unicode: héllo wörld 你好 🎉",
	}

	for _, msg := range messages {
		t.Run(msg, func(t *testing.T) {
			req := BuildRequest(&core.ChatRequest{Message: msg})

			require.Len(t, req.Messages, 1)
			assert.Equal(t, msg, req.Messages[0].Content)
		})
	}
}

func TestBuildRequest_WireFormat(t *testing.T) {
	req := BuildRequest(&core.ChatRequest{Message: "Hi there"})

	data, err := json.Marshal(req)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"model": "claude-3-5-sonnet-20241022",
		"max_tokens": 1024,
		"messages": [{"role": "user", "content": "Hi there"}]
	}`, string(data))
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name string
		resp *MessagesResponse
		want *core.ChatResponse
	}{
		{
			name: "single text block",
			resp: &MessagesResponse{
				Model:   "claude-3-5-sonnet-20241022",
				Content: []ContentBlock{{Type: "text", Text: "Hello!"}},
			},
			want: &core.ChatResponse{Response: "Hello!", Model: "claude-3-5-sonnet-20241022"},
		},
		{
			name: "first text block wins",
			resp: &MessagesResponse{
				Model: "claude-3-opus-20240229",
				Content: []ContentBlock{
					{Type: "tool_use"},
					{Type: "text", Text: "first"},
					{Type: "text", Text: "second"},
				},
			},
			want: &core.ChatResponse{Response: "first", Model: "claude-3-opus-20240229"},
		},
		{
			name: "no text block yields empty response",
			resp: &MessagesResponse{
				Model:   "claude-3-haiku-20240307",
				Content: []ContentBlock{{Type: "tool_use"}, {Type: "thinking"}},
			},
			want: &core.ChatResponse{Response: "", Model: "claude-3-haiku-20240307"},
		},
		{
			name: "empty content",
			resp: &MessagesResponse{Model: "claude-3-haiku-20240307"},
			want: &core.ChatResponse{Response: "", Model: "claude-3-haiku-20240307"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseResponse(tt.resp))
		})
	}
}

func TestParseResponse_EchoesUpstreamModel(t *testing.T) {
	// The request asked for an alias; upstream reports the resolved identifier.
	req := BuildRequest(&core.ChatRequest{Message: "Hi", Model: "claude-3-5-sonnet-latest"})
	resp := &MessagesResponse{
		Model:   "claude-3-5-sonnet-20241022",
		Content: []ContentBlock{{Type: "text", Text: "Hi!"}},
	}

	got := ParseResponse(resp)

	assert.NotEqual(t, req.Model, got.Model)
	assert.Equal(t, "claude-3-5-sonnet-20241022", got.Model)
}
