package providers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/docsentinel/llm"
)

func TestOllamaBuildURL(t *testing.T) {
	o := &OllamaProvider{}
	assert.Equal(t, "http://localhost:11434/v1/chat/completions", o.BuildURL(""))
	assert.Equal(t, "http://host:8000/v1/chat/completions", o.BuildURL("http://host:8000/v1/"))
	assert.Equal(t, "http://host/v1/chat/completions", o.BuildURL("http://host/v1/chat/completions"))
}

func TestOllamaBuildRequestBodyPlainText(t *testing.T) {
	o := &OllamaProvider{}
	body, err := o.BuildRequestBody("llama3.2", []llm.Message{
		{Role: "user", Content: "hello"},
	}, nil, 0)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, "llama3.2", req["model"])
	assert.NotContains(t, req, "max_tokens")

	messages := req["messages"].([]any)
	first := messages[0].(map[string]any)
	assert.Equal(t, "hello", first["content"], "text-only messages stay plain strings")
}

func TestOllamaBuildRequestBodyWithImage(t *testing.T) {
	o := &OllamaProvider{}
	body, err := o.BuildRequestBody("llama3.2-vision", []llm.Message{
		{Role: "user", Content: "inspect", Images: []string{"data:image/png;base64,aGk="}},
	}, nil, 0)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))
	messages := req["messages"].([]any)
	first := messages[0].(map[string]any)

	parts, ok := first["content"].([]any)
	require.True(t, ok)
	require.Len(t, parts, 2)
	text := parts[0].(map[string]any)
	assert.Equal(t, "text", text["type"])
	image := parts[1].(map[string]any)
	assert.Equal(t, "image_url", image["type"])
	assert.Equal(t, "data:image/png;base64,aGk=", image["image_url"].(map[string]any)["url"])
}

func TestAnthropicBuildRequestBody(t *testing.T) {
	a := &AnthropicProvider{}
	body, err := a.BuildRequestBody("claude-sonnet-4-20250514", []llm.Message{
		{Role: "system", Content: "you are an analyst"},
		{Role: "user", Content: "inspect", Images: []string{"data:image/jpeg;base64,aGk="}},
	}, nil, 0)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, "you are an analyst", req["system"], "system messages move to the system field")
	assert.Equal(t, float64(4096), req["max_tokens"], "default max_tokens applies")

	messages := req["messages"].([]any)
	require.Len(t, messages, 1)
	blocks := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, blocks, 2)

	image := blocks[1].(map[string]any)
	assert.Equal(t, "image", image["type"])
	source := image["source"].(map[string]any)
	assert.Equal(t, "base64", source["type"])
	assert.Equal(t, "image/jpeg", source["media_type"])
	assert.Equal(t, "aGk=", source["data"])
}

func TestSplitDataURL(t *testing.T) {
	mediaType, data, err := splitDataURL("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
	assert.Equal(t, "aGVsbG8=", data)

	_, _, err = splitDataURL("https://example.com/image.png")
	require.Error(t, err)

	_, _, err = splitDataURL("data:image/png,rawdata")
	require.Error(t, err)
}

func TestAnthropicParseResponse(t *testing.T) {
	a := &AnthropicProvider{}
	resp, err := a.ParseResponse([]byte(`{
		"id": "msg_1",
		"content": [{"type": "text", "text": "looks authentic"}],
		"model": "claude-sonnet-4-20250514",
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 20, "output_tokens": 8}
	}`), "")
	require.NoError(t, err)
	assert.Equal(t, "looks authentic", resp.Content)
	assert.Equal(t, 28, resp.Usage.TotalTokens)
	assert.Equal(t, "end_turn", resp.FinishReason)
}

func TestOllamaParseResponseNoChoices(t *testing.T) {
	o := &OllamaProvider{}
	_, err := o.ParseResponse([]byte(`{"choices": []}`), "")
	require.Error(t, err)
}

func TestProviderRegistration(t *testing.T) {
	for _, name := range []string{"ollama", "openai", "anthropic"} {
		if llm.GetProvider(name) == nil {
			t.Errorf("provider %q not registered", name)
		}
	}
}
