package ai

import (
	"fmt"
)

// NewProvider creates the provider identified by id.
func NewProvider(id ProviderID, cfg ProviderConfig) (Provider, error) {
	switch id {
	case ProviderGroq:
		return NewGroqProvider(cfg)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s", id)
	}
}
