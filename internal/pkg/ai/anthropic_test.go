package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
)

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]interface{}
}

func newAnthropicTestServer(t *testing.T, status int, response string) (*AnthropicProvider, *capturedRequest, *int32) {
	t.Helper()

	var hits int32
	captured := &capturedRequest{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Header = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&captured.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(ProviderConfig{
		APIKey:   "sk-ant-test",
		Endpoint: server.URL,
		Timeout:  2 * time.Second,
	})
	require.NoError(t, err)
	return p, captured, &hits
}

func TestNewAnthropicProvider_MissingAPIKey(t *testing.T) {
	_, err := NewAnthropicProvider(ProviderConfig{APIKey: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrMissingAPIKey))
}

func TestAnthropicGenerate_RequestShape(t *testing.T) {
	p, req, _ := newAnthropicTestServer(t, http.StatusOK,
		`{"id":"msg_1","type":"message","content":[{"type":"text","text":"<thinking>plan</thinking>feat(cli): add focus flag"}]}`)

	got, err := p.Generate(context.Background(), "the prompt", ModelClaude35Haiku)
	require.NoError(t, err)
	assert.Equal(t, "feat(cli): add focus flag", got)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/messages", req.Path)
	assert.Equal(t, "sk-ant-test", req.Header.Get("x-api-key"))
	assert.Equal(t, AnthropicVersion, req.Header.Get("anthropic-version"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Empty(t, req.Header.Get("Authorization"))

	b := req.Body
	assert.Equal(t, "claude-3-5-haiku-20241022", b["model"])
	assert.EqualValues(t, 1024, b["max_tokens"])
	assert.InDelta(t, 0.5, b["temperature"], 1e-9)
	assert.Equal(t, SystemPrompt, b["system"])

	messages, ok := b["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]interface{})
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "the prompt", msg["content"])
}

func TestAnthropicGenerate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		code     apperrors.ErrorCode
	}{
		{
			name:     "api error keeps body",
			status:   http.StatusBadRequest,
			response: `{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens too large"}}`,
			code:     apperrors.ErrAPIError,
		},
		{
			name:     "overloaded",
			status:   529,
			response: `overloaded`,
			code:     apperrors.ErrAPIError,
		},
		{
			name:     "malformed json",
			status:   http.StatusOK,
			response: `{"content":[`,
			code:     apperrors.ErrResponseParse,
		},
		{
			name:     "empty content",
			status:   http.StatusOK,
			response: `{"content":[]}`,
			code:     apperrors.ErrEmptyResponse,
		},
		{
			name:     "missing content",
			status:   http.StatusOK,
			response: `{"id":"msg_1"}`,
			code:     apperrors.ErrEmptyResponse,
		},
		{
			name:     "text is not a string",
			status:   http.StatusOK,
			response: `{"content":[{"type":"text","text":42}]}`,
			code:     apperrors.ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newAnthropicTestServer(t, tt.status, tt.response)

			_, err := p.Generate(context.Background(), "prompt", ModelClaudeSonnet4)
			require.Error(t, err)

			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code, "got %v", err)

			if tt.code == apperrors.ErrAPIError {
				assert.Equal(t, tt.status, appErr.StatusCode)
				assert.Contains(t, appErr.Message, tt.response)
			}
		})
	}
}

func TestAnthropicGenerate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	p, err := NewAnthropicProvider(ProviderConfig{
		APIKey:   "sk-ant-test",
		Endpoint: server.URL,
		Timeout:  50 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "prompt", ModelClaude3Haiku)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrTimeout), "got %v", err)
	assert.Equal(t, 3, apperrors.GetExitCode(err))
}

func TestAnthropicGenerate_RejectsGroqModel(t *testing.T) {
	p, _, hits := newAnthropicTestServer(t, http.StatusOK, `{"content":[{"type":"text","text":"x"}]}`)

	_, err := p.Generate(context.Background(), "prompt", DefaultModel)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrUnsupportedModel))
	assert.Contains(t, err.Error(), "anthropic")
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}
