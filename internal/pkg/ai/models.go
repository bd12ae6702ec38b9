// Package ai provides the model catalog, the hosted text-generation providers
// and the registry that routes a prompt to the right one.
package ai

import (
	"strings"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
)

// ProviderID identifies a hosted text-generation backend.
type ProviderID string

// Supported providers.
const (
	ProviderGroq      ProviderID = "groq"
	ProviderAnthropic ProviderID = "anthropic"
)

// String returns the provider identifier.
func (p ProviderID) String() string {
	return string(p)
}

// EnvVar returns the environment variable that carries the provider credential.
func (p ProviderID) EnvVar() string {
	switch p {
	case ProviderGroq:
		return "GROQ_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// Model is a wire-format model identifier from the catalog.
type Model string

// Groq models.
const (
	ModelAllam2_7B              Model = "allam-2-7b"
	ModelCompoundBeta           Model = "compound-beta"
	ModelCompoundBetaMini       Model = "compound-beta-mini"
	ModelDeepseekR1DistillLlama Model = "deepseek-r1-distill-llama-70b"
	ModelGemma2_9B              Model = "gemma2-9b-it"
	ModelLlama31_8BInstant      Model = "llama-3.1-8b-instant"
	ModelLlama33_70BVersatile   Model = "llama-3.3-70b-versatile"
	ModelLlama3_70B             Model = "llama3-70b-8192"
	ModelLlama3_8B              Model = "llama3-8b-8192"
	ModelLlama4Maverick         Model = "meta-llama/llama-4-maverick-17b-128e-instruct"
	ModelLlama4Scout            Model = "meta-llama/llama-4-scout-17b-16e-instruct"
	ModelLlamaGuard4            Model = "meta-llama/llama-guard-4-12b"
	ModelLlamaPromptGuard22M    Model = "meta-llama/llama-prompt-guard-2-22m"
	ModelLlamaPromptGuard86M    Model = "meta-llama/llama-prompt-guard-2-86m"
	ModelMistralSaba24B         Model = "mistral-saba-24b"
	ModelQwenQwq32B             Model = "qwen-qwq-32b"
	ModelQwen3_32B              Model = "qwen/qwen3-32b"
)

// Anthropic models.
const (
	ModelClaudeSonnet4  Model = "claude-sonnet-4-20250514"
	ModelClaude35Sonnet Model = "claude-3-5-sonnet-20241022"
	ModelClaude35Haiku  Model = "claude-3-5-haiku-20241022"
	ModelClaude3Opus    Model = "claude-3-opus-20240229"
	ModelClaude3Sonnet  Model = "claude-3-sonnet-20240229"
	ModelClaude3Haiku   Model = "claude-3-haiku-20240307"
)

// DefaultModel is used when neither a flag nor the config names a model.
const DefaultModel = ModelLlama33_70BVersatile

type catalogEntry struct {
	model    Model
	provider ProviderID
}

var catalog = []catalogEntry{
	{ModelAllam2_7B, ProviderGroq},
	{ModelCompoundBeta, ProviderGroq},
	{ModelCompoundBetaMini, ProviderGroq},
	{ModelDeepseekR1DistillLlama, ProviderGroq},
	{ModelGemma2_9B, ProviderGroq},
	{ModelLlama31_8BInstant, ProviderGroq},
	{ModelLlama33_70BVersatile, ProviderGroq},
	{ModelLlama3_70B, ProviderGroq},
	{ModelLlama3_8B, ProviderGroq},
	{ModelLlama4Maverick, ProviderGroq},
	{ModelLlama4Scout, ProviderGroq},
	{ModelLlamaGuard4, ProviderGroq},
	{ModelLlamaPromptGuard22M, ProviderGroq},
	{ModelLlamaPromptGuard86M, ProviderGroq},
	{ModelMistralSaba24B, ProviderGroq},
	{ModelQwenQwq32B, ProviderGroq},
	{ModelQwen3_32B, ProviderGroq},

	{ModelClaudeSonnet4, ProviderAnthropic},
	{ModelClaude35Sonnet, ProviderAnthropic},
	{ModelClaude35Haiku, ProviderAnthropic},
	{ModelClaude3Opus, ProviderAnthropic},
	{ModelClaude3Sonnet, ProviderAnthropic},
	{ModelClaude3Haiku, ProviderAnthropic},
}

var providerByModel = func() map[Model]ProviderID {
	m := make(map[Model]ProviderID, len(catalog))
	for _, e := range catalog {
		m[e.model] = e.provider
	}
	return m
}()

// String returns the wire-format identifier.
func (m Model) String() string {
	return string(m)
}

// Provider returns the backend that serves m, or "" when m is not in the catalog.
func (m Model) Provider() ProviderID {
	return providerByModel[m]
}

// Known reports whether m is part of the catalog.
func (m Model) Known() bool {
	_, ok := providerByModel[m]
	return ok
}

// Models returns the full catalog in declaration order.
func Models() []Model {
	out := make([]Model, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e.model)
	}
	return out
}

// ModelsFor returns the catalog entries served by provider.
func ModelsFor(provider ProviderID) []Model {
	var out []Model
	for _, e := range catalog {
		if e.provider == provider {
			out = append(out, e.model)
		}
	}
	return out
}

// ParseModel validates a user supplied model name against the catalog.
func ParseModel(name string) (Model, error) {
	m := Model(strings.TrimSpace(name))
	if !m.Known() {
		return "", apperrors.NewUnsupportedModelError(name, "")
	}
	return m, nil
}
