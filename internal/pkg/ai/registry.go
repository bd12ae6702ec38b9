package ai

import (
	"context"
	"strings"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
)

// Credentials holds the per-provider API keys. Blank keys leave a provider inactive.
type Credentials struct {
	GroqAPIKey      string
	AnthropicAPIKey string
}

func (c Credentials) forProvider(id ProviderID) string {
	switch id {
	case ProviderGroq:
		return strings.TrimSpace(c.GroqAPIKey)
	case ProviderAnthropic:
		return strings.TrimSpace(c.AnthropicAPIKey)
	default:
		return ""
	}
}

// providerOrder is the stable order used for construction and introspection.
var providerOrder = []ProviderID{ProviderGroq, ProviderAnthropic}

// ProviderConstructor builds a provider from its configuration.
type ProviderConstructor func(id ProviderID, cfg ProviderConfig) (Provider, error)

type registryOptions struct {
	endpoints   map[ProviderID]string
	constructor ProviderConstructor
	config      ProviderConfig
}

// RegistryOption customizes NewRegistry.
type RegistryOption func(*registryOptions)

// WithEndpoint overrides the base URL of one provider.
func WithEndpoint(id ProviderID, endpoint string) RegistryOption {
	return func(o *registryOptions) {
		if endpoint != "" {
			o.endpoints[id] = endpoint
		}
	}
}

// WithProviderConstructor replaces NewProvider, mostly for tests.
func WithProviderConstructor(fn ProviderConstructor) RegistryOption {
	return func(o *registryOptions) {
		o.constructor = fn
	}
}

// WithProviderConfig sets the shared timeout and HTTP client for every provider.
func WithProviderConfig(cfg ProviderConfig) RegistryOption {
	return func(o *registryOptions) {
		o.config = cfg
	}
}

// Registry holds the providers that have credentials and routes requests to them.
// It is built once per invocation and only read afterwards.
type Registry struct {
	providers map[ProviderID]Provider
}

// NewRegistry creates one provider per non-empty credential.
// At least one credential is required.
func NewRegistry(creds Credentials, opts ...RegistryOption) (*Registry, error) {
	o := &registryOptions{
		endpoints:   make(map[ProviderID]string),
		constructor: NewProvider,
	}
	for _, opt := range opts {
		opt(o)
	}

	r := &Registry{providers: make(map[ProviderID]Provider)}
	for _, id := range providerOrder {
		key := creds.forProvider(id)
		if key == "" {
			continue
		}
		cfg := o.config
		cfg.APIKey = key
		cfg.Endpoint = o.endpoints[id]

		p, err := o.constructor(id, cfg)
		if err != nil {
			return nil, err
		}
		r.providers[id] = p
		apperrors.Debug("provider %s active", id)
	}

	if len(r.providers) == 0 {
		return nil, apperrors.NewMissingAPIKeyError()
	}
	return r, nil
}

// Generate routes the prompt to the provider that owns model.
func (r *Registry) Generate(ctx context.Context, prompt string, model Model) (string, error) {
	provider, err := r.providerFor(model)
	if err != nil {
		return "", err
	}
	return provider.Generate(ctx, prompt, model)
}

// Validate reports whether model can be served without touching the network.
func (r *Registry) Validate(model Model) error {
	_, err := r.providerFor(model)
	return err
}

func (r *Registry) providerFor(model Model) (Provider, error) {
	id := model.Provider()
	if id == "" {
		return nil, apperrors.NewUnsupportedModelError(model.String(), "")
	}
	p, ok := r.providers[id]
	if !ok {
		return nil, apperrors.NewProviderNotConfiguredError(id.String(), id.EnvVar())
	}
	return p, nil
}

// ActiveProviders returns the configured providers in a stable order.
func (r *Registry) ActiveProviders() []ProviderID {
	var out []ProviderID
	for _, id := range providerOrder {
		if _, ok := r.providers[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// HasProvider reports whether id has a credential.
func (r *Registry) HasProvider(id ProviderID) bool {
	_, ok := r.providers[id]
	return ok
}

// AvailableModels returns the catalog models whose provider is active.
func (r *Registry) AvailableModels() []Model {
	var out []Model
	for _, m := range Models() {
		if r.HasProvider(m.Provider()) {
			out = append(out, m)
		}
	}
	return out
}
