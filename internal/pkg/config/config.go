// Package config provides configuration management for convcom.
package config

import "strings"

// Keys as they appear in the config file and the environment.
const (
	KeyGroqAPIKey        = "GROQ_API_KEY"
	KeyAnthropicAPIKey   = "ANTHROPIC_API_KEY"
	KeyModel             = "CONVCOM_MODEL"
	KeyGroqEndpoint      = "CONVCOM_GROQ_ENDPOINT"
	KeyAnthropicEndpoint = "CONVCOM_ANTHROPIC_ENDPOINT"
)

// Keys lists every supported key in display order.
var Keys = []string{
	KeyGroqAPIKey,
	KeyAnthropicAPIKey,
	KeyModel,
	KeyGroqEndpoint,
	KeyAnthropicEndpoint,
}

// aliases maps short names accepted by `config set/get` to full keys.
var aliases = map[string]string{
	"groq":               KeyGroqAPIKey,
	"anthropic":          KeyAnthropicAPIKey,
	"model":              KeyModel,
	"groq_endpoint":      KeyGroqEndpoint,
	"anthropic_endpoint": KeyAnthropicEndpoint,
}

// Config represents the complete convcom configuration.
type Config struct {
	GroqAPIKey        string `mapstructure:"groq_api_key"`
	AnthropicAPIKey   string `mapstructure:"anthropic_api_key"`
	Model             string `mapstructure:"convcom_model"`
	GroqEndpoint      string `mapstructure:"convcom_groq_endpoint"`
	AnthropicEndpoint string `mapstructure:"convcom_anthropic_endpoint"`
}

// Source tells where an effective value came from.
type Source string

const (
	SourceUnset Source = ""
	SourceEnv   Source = "env"
	SourceFile  Source = "file"
)

// Entry is one key in a listing.
type Entry struct {
	Key    string
	Value  string
	Source Source
}

// Manager defines the interface for configuration management.
type Manager interface {
	Load() (*Config, error)
	Set(key string, value string) error
	Get(key string) (string, error)
	Init(values map[string]string) error
	List() ([]Entry, error)
	ConfigExists() bool
	GetConfigPath() string
}

// NormalizeKey resolves an alias or a key in any case to its canonical form.
// It returns "" for unsupported keys.
func NormalizeKey(key string) string {
	k := strings.TrimSpace(key)
	if full, ok := aliases[strings.ToLower(k)]; ok {
		return full
	}
	k = strings.ToUpper(k)
	for _, known := range Keys {
		if k == known {
			return known
		}
	}
	return ""
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	return key == KeyGroqAPIKey || key == KeyAnthropicAPIKey
}
