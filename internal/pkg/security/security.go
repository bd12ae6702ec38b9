// Package security provides credential validation and masking for convcom.
package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyAPIKey is returned for a blank credential.
var ErrEmptyAPIKey = errors.New("API key is empty")

// APIKeyFormat defines the expected format patterns for different providers.
var APIKeyFormat = map[string]*regexp.Regexp{
	"groq":      regexp.MustCompile(`^gsk_[a-zA-Z0-9]{20,}$`),
	"anthropic": regexp.MustCompile(`^sk-ant-[a-zA-Z0-9_-]{20,}$`),
}

// APIKeyPrefix is the leading marker of each provider's keys.
var APIKeyPrefix = map[string]string{
	"groq":      "gsk_",
	"anthropic": "sk-ant-",
}

// MaskAPIKey masks an API key, showing only the last 4 characters.
// This should be used when logging or displaying API keys.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// ValidateAPIKey rejects credentials that cannot possibly authenticate.
func ValidateAPIKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return ErrEmptyAPIKey
	}
	if strings.ContainsAny(apiKey, " \t\r\n") {
		return fmt.Errorf("API key contains whitespace")
	}
	return nil
}

// ValidateAPIKeyFormat checks a key against the provider's usual shape.
// A mismatch is advisory; callers only warn.
func ValidateAPIKeyFormat(provider, apiKey string) error {
	if err := ValidateAPIKey(apiKey); err != nil {
		return fmt.Errorf("%s: %w", provider, err)
	}

	pattern, exists := APIKeyFormat[provider]
	if exists && !pattern.MatchString(apiKey) {
		return fmt.Errorf("API key format appears unusual for %s provider (expected format: %s...)", provider, APIKeyPrefix[provider])
	}

	return nil
}

// SanitizeForLogging sanitizes a string for safe logging by masking potential secrets.
// It looks for common patterns like API keys, passwords, and tokens.
func SanitizeForLogging(s string) string {
	result := s
	for _, p := range sensitivePatterns {
		result = p.regex.ReplaceAllString(result, p.replacement)
	}
	return result
}

var sensitivePatterns = []struct {
	regex       *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`gsk_[a-zA-Z0-9]{20,}`), "gsk_****"},
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{20,}`), "sk-ant-****"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`), "sk-****"},
	{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`), "Bearer ****"},
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9._-]+["']?`), "$1=****"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?[^\s"']+["']?`), "$1=****"},
}

// PrivacyNotice is shown once by the setup wizard.
const PrivacyNotice = `convcom sends your staged git diff to the selected hosted model provider
(Groq or Anthropic) to generate a commit message.

Do not stage secrets, and review your staged changes before running convcom.`
