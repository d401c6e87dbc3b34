package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/aihub-dashboard/internal/domain/chat"
	"github.com/target/aihub-dashboard/internal/ports"
)

func captureServer(t *testing.T, status int, reply string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		if got != nil {
			assert.NoError(t, json.Unmarshal(body, got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

var history = []chat.Message{
	{Speaker: chat.SpeakerUser, Content: "earlier question"},
	{Speaker: chat.SpeakerAssistant, Content: "earlier answer"},
}

func TestAnthropic_Complete(t *testing.T) {
	var got map[string]any
	srv := captureServer(t, http.StatusOK, `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
		"content": [{"type": "text", "text": "Hello "}, {"type": "text", "text": "there"}],
		"stop_reason": "end_turn", "usage": {"input_tokens": 3, "output_tokens": 2}
	}`, &got)

	p, err := NewAnthropic(AnthropicConfig{
		APIKey:  "test-key",
		Model:   "claude-test",
		Options: []anthropicoption.RequestOption{anthropicoption.WithBaseURL(srv.URL), anthropicoption.WithMaxRetries(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	reply, err := p.Complete(context.Background(), ports.CompletionRequest{Message: "hi", History: history})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)

	assert.Equal(t, "claude-test", got["model"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 3)
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[2].(map[string]any)["role"])
	assert.NotNil(t, got["system"])
}

func TestAnthropic_UpstreamError(t *testing.T) {
	srv := captureServer(t, http.StatusInternalServerError,
		`{"type":"error","error":{"type":"api_error","message":"boom"}}`, nil)

	p, err := NewAnthropic(AnthropicConfig{
		APIKey:  "test-key",
		Model:   "claude-test",
		Options: []anthropicoption.RequestOption{anthropicoption.WithBaseURL(srv.URL), anthropicoption.WithMaxRetries(0)},
	})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), ports.CompletionRequest{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic messages")
}

func TestNewAnthropic_Validation(t *testing.T) {
	_, err := NewAnthropic(AnthropicConfig{Model: "m"})
	require.Error(t, err)
	_, err = NewAnthropic(AnthropicConfig{APIKey: "k"})
	require.Error(t, err)
}

func TestOpenAI_Complete(t *testing.T) {
	var got map[string]any
	srv := captureServer(t, http.StatusOK, `{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-test",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": " Hi! "}}]
	}`, &got)

	p, err := NewOpenAI(OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-test",
		Options: []openaioption.RequestOption{openaioption.WithBaseURL(srv.URL), openaioption.WithMaxRetries(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	reply, err := p.Complete(context.Background(), ports.CompletionRequest{Message: "hi", History: history})
	require.NoError(t, err)
	assert.Equal(t, "Hi!", reply)

	assert.Equal(t, "gpt-test", got["model"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "assistant", msgs[2].(map[string]any)["role"])
}

func TestOpenAI_NoChoices(t *testing.T) {
	srv := captureServer(t, http.StatusOK,
		`{"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-test", "choices": []}`, nil)

	p, err := NewOpenAI(OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-test",
		Options: []openaioption.RequestOption{openaioption.WithBaseURL(srv.URL), openaioption.WithMaxRetries(0)},
	})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), ports.CompletionRequest{Message: "hi"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no choices"))
}

func TestEcho(t *testing.T) {
	reply, err := Echo{}.Complete(context.Background(), ports.CompletionRequest{Message: "ping", History: history})
	require.NoError(t, err)
	assert.Equal(t, "echo (2 earlier messages): ping", reply)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Echo{}.Complete(ctx, ports.CompletionRequest{Message: "ping"})
	assert.ErrorIs(t, err, context.Canceled)
}
