// Package errors provides error types, handling utilities, and logging for convcom.
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrorCode represents the category of an error.
type ErrorCode int

// Configuration errors (Exit Code 1)
const (
	ErrInvalidConfig ErrorCode = iota + 100
	ErrMissingAPIKey
	ErrInvalidArguments
	ErrUnsupportedModel
	ErrProviderNotConfigured
)

// Repository errors (Exit Code 2)
const (
	ErrNotRepository ErrorCode = iota + 200
	ErrNoStagedChanges
	ErrGitCommandFailed
	ErrFileSystemError
)

// Network errors (Exit Code 3)
const (
	ErrNetworkError ErrorCode = iota + 300
	ErrTimeout
	ErrAPIError
	ErrResponseParse
	ErrEmptyResponse
)

// Template errors (Exit Code 4)
const (
	ErrTemplate ErrorCode = iota + 400
)

// Category names the error family a code belongs to.
type Category string

const (
	CategoryConfiguration Category = "configuration"
	CategoryRepository    Category = "repository"
	CategoryNetwork       Category = "network"
	CategoryTemplate      Category = "template"
	CategoryUnknown       Category = "unknown"
)

// Category returns the family of the error code.
func (c ErrorCode) Category() Category {
	switch {
	case c >= 100 && c < 200:
		return CategoryConfiguration
	case c >= 200 && c < 300:
		return CategoryRepository
	case c >= 300 && c < 400:
		return CategoryNetwork
	case c >= 400 && c < 500:
		return CategoryTemplate
	default:
		return CategoryUnknown
	}
}

// ExitCode returns the appropriate exit code for an error code.
func (c ErrorCode) ExitCode() int {
	switch c.Category() {
	case CategoryConfiguration:
		return 1
	case CategoryRepository:
		return 2
	case CategoryNetwork:
		return 3
	case CategoryTemplate:
		return 4
	default:
		return 1
	}
}

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrMissingAPIKey:
		return "MissingAPIKey"
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrUnsupportedModel:
		return "UnsupportedModel"
	case ErrProviderNotConfigured:
		return "ProviderNotConfigured"
	case ErrNotRepository:
		return "NotRepository"
	case ErrNoStagedChanges:
		return "NoStagedChanges"
	case ErrGitCommandFailed:
		return "GitCommandFailed"
	case ErrFileSystemError:
		return "FileSystemError"
	case ErrNetworkError:
		return "NetworkError"
	case ErrTimeout:
		return "Timeout"
	case ErrAPIError:
		return "APIError"
	case ErrResponseParse:
		return "ResponseParse"
	case ErrEmptyResponse:
		return "EmptyResponse"
	case ErrTemplate:
		return "Template"
	default:
		return "Unknown"
	}
}

// AppError represents an application error with context.
type AppError struct {
	Code       ErrorCode
	Message    string
	Cause      error
	Context    map[string]interface{}
	Suggestion string
	StatusCode int // HTTP status for API errors
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same code.
// This lets callers write errors.Is(err, errors.New(ErrNoStagedChanges, "")).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with context.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether any AppError in the chain carries code.
func HasCode(err error, code ErrorCode) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code == code
	}
	return false
}

// GetExitCode returns the appropriate exit code for an error.
func GetExitCode(err error) int {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code.ExitCode()
	}
	return 1
}

// Common error constructors with suggestions

// NewNoStagedChangesError creates an error for no staged changes.
func NewNoStagedChangesError() *AppError {
	return &AppError{
		Code:       ErrNoStagedChanges,
		Message:    "no staged files found",
		Suggestion: "Use 'git add <files>' to stage changes before generating a commit message",
	}
}

// NewNotRepositoryError creates an error for a directory outside any git repository.
func NewNotRepositoryError(err error) *AppError {
	return &AppError{
		Code:       ErrNotRepository,
		Message:    "not in a git repository",
		Cause:      err,
		Suggestion: "Run convcom from inside a git working copy",
	}
}

// NewMissingAPIKeyError creates an error for a process started without any credential.
func NewMissingAPIKeyError() *AppError {
	return &AppError{
		Code:       ErrMissingAPIKey,
		Message:    "at least one API key must be provided. Set GROQ_API_KEY and/or ANTHROPIC_API_KEY",
		Suggestion: "Get a key from console.groq.com or console.anthropic.com, export it, or run 'convcom config init'",
	}
}

// NewInvalidConfigError creates an error for invalid configuration.
func NewInvalidConfigError(message string) *AppError {
	return &AppError{
		Code:       ErrInvalidConfig,
		Message:    message,
		Suggestion: "Run 'convcom config list' to inspect the loaded configuration",
	}
}

// NewUnsupportedModelError creates an error for a model the provider cannot serve.
func NewUnsupportedModelError(model, provider string) *AppError {
	msg := fmt.Sprintf("model %s is not supported", model)
	if provider != "" {
		msg = fmt.Sprintf("model %s is not supported by %s provider", model, provider)
	}
	return &AppError{
		Code:       ErrUnsupportedModel,
		Message:    msg,
		Suggestion: "Run 'convcom models' to see the supported models",
	}
}

// NewProviderNotConfiguredError creates an error for a model whose provider has no credential.
func NewProviderNotConfiguredError(provider, envVar string) *AppError {
	return &AppError{
		Code:       ErrProviderNotConfigured,
		Message:    fmt.Sprintf("provider %s is not configured", provider),
		Suggestion: fmt.Sprintf("Set %s or choose a model from a configured provider", envVar),
	}
}

// NewGitError creates an error for git command failures.
func NewGitError(err error, output string) *AppError {
	appErr := &AppError{
		Code:    ErrGitCommandFailed,
		Message: "git command failed",
		Cause:   err,
	}
	if output != "" {
		appErr.Context = map[string]interface{}{
			"output": output,
		}
	}
	return appErr
}

// NewNetworkError creates an error for transport failures.
func NewNetworkError(provider string, err error) *AppError {
	return &AppError{
		Code:       ErrNetworkError,
		Message:    fmt.Sprintf("%s request failed", provider),
		Cause:      err,
		Suggestion: "Please check your network connection and try again",
	}
}

// NewTimeoutError creates an error for timeouts.
func NewTimeoutError(err error) *AppError {
	return &AppError{
		Code:       ErrTimeout,
		Message:    "request timed out",
		Cause:      err,
		Suggestion: "Please check your network connection or try again later",
	}
}

// NewAPIError creates an error for a non-success HTTP response. The body is kept verbatim.
func NewAPIError(provider string, statusCode int, body string) *AppError {
	appErr := &AppError{
		Code:       ErrAPIError,
		Message:    fmt.Sprintf("%s API error %d: %s", provider, statusCode, body),
		StatusCode: statusCode,
	}
	switch statusCode {
	case 401, 403:
		appErr.Suggestion = "Please check your API key is valid and has not expired"
	case 429:
		appErr.Suggestion = "The provider is rate limiting requests; wait and run again"
	}
	return appErr.WithContext("provider", provider)
}

// NewResponseParseError creates an error for a response body that is not valid JSON.
func NewResponseParseError(provider string, err error) *AppError {
	return &AppError{
		Code:    ErrResponseParse,
		Message: fmt.Sprintf("failed to parse %s API response", provider),
		Cause:   err,
	}
}

// NewEmptyResponseError creates an error for a well-formed response without generated text.
func NewEmptyResponseError(provider string) *AppError {
	return &AppError{
		Code:       ErrEmptyResponse,
		Message:    fmt.Sprintf("%s API returned empty response", provider),
		Suggestion: "Try again or pick a different model with --model",
	}
}

// NewTemplateError creates an error for a malformed prompt template.
func NewTemplateError(message string) *AppError {
	return &AppError{
		Code:    ErrTemplate,
		Message: message,
	}
}

// FormatError formats an error for user display.
// API keys and other sensitive data are automatically masked.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(appErr.Message))

		if appErr.Cause != nil {
			sb.WriteString("\n  Cause: ")
			sb.WriteString(SanitizeErrorMessage(appErr.Cause.Error()))
		}

		if appErr.Suggestion != "" {
			sb.WriteString("\n  Suggestion: ")
			sb.WriteString(appErr.Suggestion)
		}
	} else {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(err.Error()))
	}

	return sb.String()
}

// FormatErrorVerbose formats an error with full details for verbose mode.
// API keys and other sensitive data are automatically masked.
func FormatErrorVerbose(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString(fmt.Sprintf("Error [%s/%s]: %s\n", appErr.Code.Category(), appErr.Code.String(), SanitizeErrorMessage(appErr.Message)))

		if appErr.Cause != nil {
			sb.WriteString(fmt.Sprintf("  Cause: %v\n", SanitizeErrorMessage(appErr.Cause.Error())))
			sb.WriteString("  Error chain:\n")
			printErrorChain(&sb, appErr.Cause, 2)
		}

		if len(appErr.Context) > 0 {
			sb.WriteString("  Context:\n")
			for k, v := range appErr.Context {
				sb.WriteString(fmt.Sprintf("    %s: %v\n", k, SanitizeErrorMessage(fmt.Sprintf("%v", v))))
			}
		}

		if appErr.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", appErr.Suggestion))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %v\n", SanitizeErrorMessage(err.Error())))
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, err, 2)
	}

	return sb.String()
}

// printErrorChain prints the error chain with indentation.
func printErrorChain(sb *strings.Builder, err error, indent int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	errMsg := SanitizeErrorMessage(err.Error())
	sb.WriteString(fmt.Sprintf("%s- %T: %v\n", prefix, err, errMsg))

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		printErrorChain(sb, unwrapped, indent+1)
	}
}

// SanitizeErrorMessage masks any API keys or sensitive data in error messages.
func SanitizeErrorMessage(msg string) string {
	return apiKeyPattern.ReplaceAllStringFunc(msg, func(match string) string {
		if len(match) <= 4 {
			return "****"
		}
		return strings.Repeat("*", len(match)-4) + match[len(match)-4:]
	})
}

// apiKeyPattern matches Groq (gsk_), Anthropic (sk-ant-) and OpenAI-style (sk-) keys.
var apiKeyPattern = regexp.MustCompile(`(gsk_[a-zA-Z0-9]{20,}|sk-ant-[a-zA-Z0-9_-]{20,}|sk-[a-zA-Z0-9]{20,})`)
