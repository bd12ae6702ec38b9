package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
	"github.com/convcom/convcom/internal/pkg/security"
	"github.com/tidwall/gjson"
)

const (
	// DefaultAnthropicEndpoint is the base URL of the Anthropic API.
	DefaultAnthropicEndpoint = "https://api.anthropic.com/v1"

	// AnthropicVersion is sent in the anthropic-version header.
	AnthropicVersion = "2023-06-01"

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 4 << 20
)

// AnthropicProvider implements the Provider interface for Anthropic.
type AnthropicProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(config ProviderConfig) (*AnthropicProvider, error) {
	if err := security.ValidateAPIKey(config.APIKey); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrMissingAPIKey, "invalid Anthropic API key")
	}

	endpoint := strings.TrimRight(config.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultAnthropicEndpoint
	}

	return &AnthropicProvider{
		apiKey:     config.APIKey,
		endpoint:   endpoint,
		httpClient: config.httpClient(),
	}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() ProviderID {
	return ProviderAnthropic
}

// Generate posts the prompt to the messages endpoint and returns the sanitized reply.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, model Model) (string, error) {
	if err := checkModel(ProviderAnthropic, model); err != nil {
		return "", err
	}
	name := ProviderAnthropic.String()

	payload, err := json.Marshal(anthropicRequest{
		Model:       model.String(),
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		System:      SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := p.endpoint + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", AnthropicVersion)

	apperrors.LogAPIRequest(name, url, model.String(), len(prompt))
	start := time.Now()

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", classifyTransportError(name, err)
	}
	apperrors.LogAPIResponse(name, resp.StatusCode, len(body), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.NewAPIError(name, resp.StatusCode, string(body))
	}

	if !gjson.ValidBytes(body) {
		return "", apperrors.NewResponseParseError(name, errors.New("response is not valid JSON"))
	}

	text := gjson.GetBytes(body, "content.0.text")
	if !text.Exists() || text.Type != gjson.String {
		return "", apperrors.NewEmptyResponseError(name)
	}

	return p.Sanitize(text.String()), nil
}

// Sanitize strips <thinking> reasoning spans and stray tags.
func (p *AnthropicProvider) Sanitize(raw string) string {
	return thinkingStripper.strip(raw)
}

func classifyTransportError(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewTimeoutError(err)
	}
	return apperrors.NewNetworkError(provider, err)
}
