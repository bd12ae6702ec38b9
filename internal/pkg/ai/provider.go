package ai

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
)

const (
	// DefaultTemperature is the sampling temperature sent to every provider.
	DefaultTemperature = 0.5

	// DefaultMaxTokens caps the generated message length.
	DefaultMaxTokens = 1024

	// DefaultTimeout bounds one API round trip.
	DefaultTimeout = 30 * time.Second

	// SystemPrompt is the fixed system instruction.
	SystemPrompt = "You are a helpful AI assistant that generates conventional commit messages."
)

// ProviderConfig contains configuration for an AI provider.
type ProviderConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Provider defines the interface for AI providers.
type Provider interface {
	// Name returns the provider identity.
	Name() ProviderID
	// Generate performs one round trip and returns sanitized text.
	Generate(ctx context.Context, prompt string, model Model) (string, error)
	// Sanitize strips the provider's reasoning markup.
	Sanitize(raw string) string
}

func (c ProviderConfig) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// checkModel rejects a model owned by a different provider.
func checkModel(id ProviderID, model Model) error {
	if model.Provider() != id {
		return apperrors.NewUnsupportedModelError(model.String(), id.String())
	}
	return nil
}
