package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
	"github.com/convcom/convcom/internal/pkg/security"
	"github.com/sashabaranov/go-openai"
)

// DefaultGroqEndpoint is the OpenAI-compatible base URL of the Groq API.
const DefaultGroqEndpoint = "https://api.groq.com/openai/v1"

// GroqProvider implements the Provider interface for Groq.
type GroqProvider struct {
	client   *openai.Client
	endpoint string
}

// NewGroqProvider creates a new Groq provider.
func NewGroqProvider(config ProviderConfig) (*GroqProvider, error) {
	if err := security.ValidateAPIKey(config.APIKey); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrMissingAPIKey, "invalid Groq API key")
	}

	endpoint := strings.TrimRight(config.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultGroqEndpoint
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = endpoint
	clientConfig.HTTPClient = withErrorBodyCapture(config.httpClient())

	return &GroqProvider{
		client:   openai.NewClientWithConfig(clientConfig),
		endpoint: endpoint,
	}, nil
}

// Name returns the provider name.
func (p *GroqProvider) Name() ProviderID {
	return ProviderGroq
}

// Generate sends the prompt as a chat completion and returns the sanitized reply.
func (p *GroqProvider) Generate(ctx context.Context, prompt string, model Model) (string, error) {
	if err := checkModel(ProviderGroq, model); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model: model.String(),
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}

	apperrors.LogAPIRequest(ProviderGroq.String(), p.endpoint, model.String(), len(prompt))
	start := time.Now()

	captured := &errorBody{}
	resp, err := p.client.CreateChatCompletion(context.WithValue(ctx, errorBodyKey{}, captured), req)
	if err != nil {
		return "", p.wrapError(err, captured.text)
	}

	if len(resp.Choices) == 0 {
		apperrors.LogAPIResponse(ProviderGroq.String(), 200, 0, time.Since(start))
		return "", apperrors.NewEmptyResponseError(ProviderGroq.String())
	}

	content := resp.Choices[0].Message.Content
	apperrors.LogAPIResponse(ProviderGroq.String(), 200, len(content), time.Since(start))

	return p.Sanitize(content), nil
}

// Sanitize strips <think> reasoning spans and stray tags.
func (p *GroqProvider) Sanitize(raw string) string {
	return thinkStripper.strip(raw)
}

// wrapError maps client failures onto the error taxonomy. rawBody is the
// non-2xx response body as received, or "" when none was captured.
func (p *GroqProvider) wrapError(err error, rawBody string) error {
	name := ProviderGroq.String()

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		body := rawBody
		if body == "" {
			body = apiErr.Message
		}
		return apperrors.NewAPIError(name, apiErr.HTTPStatusCode, body)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := rawBody
		if body == "" {
			body = string(reqErr.Body)
		}
		if strings.TrimSpace(body) == "" && reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return apperrors.NewAPIError(name, reqErr.HTTPStatusCode, body)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return classifyTransportError(name, err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperrors.NewResponseParseError(name, err)
	}

	return classifyTransportError(name, err)
}

// errorBodyKey carries an *errorBody through the request context.
type errorBodyKey struct{}

// errorBody receives the raw body of a non-2xx response. go-openai decodes
// error bodies into APIError and drops the original text.
type errorBody struct {
	text string
}

// errorBodyTransport buffers non-2xx bodies into the request's errorBody and
// hands an identical body on to the client.
type errorBodyTransport struct {
	next http.RoundTripper
}

func (t *errorBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err == nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		captureErrorBody(req, resp)
	}
	return resp, err
}

func captureErrorBody(req *http.Request, resp *http.Response) {
	holder, ok := req.Context().Value(errorBodyKey{}).(*errorBody)
	if !ok || resp.Body == nil {
		return
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	if readErr == nil {
		holder.text = string(raw)
	}
}

// withErrorBodyCapture returns a copy of client whose transport records error bodies.
func withErrorBodyCapture(client *http.Client) *http.Client {
	wrapped := *client
	next := wrapped.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	wrapped.Transport = &errorBodyTransport{next: next}
	return &wrapped
}
