// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/convcom/convcom/internal/pkg/ai"
	apperrors "github.com/convcom/convcom/internal/pkg/errors"
	"github.com/convcom/convcom/internal/pkg/message"
	"github.com/convcom/convcom/internal/pkg/processor"
	"github.com/convcom/convcom/internal/pkg/security"
	"github.com/convcom/convcom/internal/pkg/ui"
)

// previewLength bounds the prompt excerpt written to the debug log.
const previewLength = 300

// PromptBuilder assembles the prompt from a diff report and an optional focus.
type PromptBuilder interface {
	Build(diff, focus string) string
}

// Generator sends a prompt to the provider owning model.
type Generator interface {
	Generate(ctx context.Context, prompt string, model ai.Model) (string, error)
}

// SpinnerFactory creates the progress indicator shown while waiting on the API.
type SpinnerFactory interface {
	ShowSpinner(text string) ui.Spinner
}

// Options contains options for one generation.
type Options struct {
	Model ai.Model
	Focus string
}

// Service orchestrates collect, assemble and generate.
type Service struct {
	collector processor.DiffCollector
	builder   PromptBuilder
	generator Generator
	spinner   SpinnerFactory
}

// NewService creates a new Service with the given dependencies.
func NewService(
	collector processor.DiffCollector,
	builder PromptBuilder,
	generator Generator,
	spinner SpinnerFactory,
) *Service {
	return &Service{
		collector: collector,
		builder:   builder,
		generator: generator,
		spinner:   spinner,
	}
}

// Generate produces a commit message for the staged changes.
// Workflow: collect → build prompt → generate → lint
func (s *Service) Generate(ctx context.Context, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = ai.DefaultModel
	}

	// Step 1: Render staged changes
	report, err := s.collector.Collect(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(report) == "" {
		// Only mode or metadata changes are staged.
		return "", apperrors.NewNoStagedChangesError()
	}

	// Step 2: Assemble the prompt
	prompt := s.builder.Build(report, opts.Focus)
	apperrors.Debug("Prompt assembled: %d bytes, diff report %d lines", len(prompt), strings.Count(report, "\n")+1)
	if apperrors.IsVerbose() {
		apperrors.Debug("Diff report preview: %s", preview(report))
	}

	// Step 3: Generate
	spinner := s.spinner.ShowSpinner(fmt.Sprintf("Generating commit message with %s...", model))
	spinner.Start()
	start := time.Now()
	msg, err := s.generator.Generate(ctx, prompt, model)
	spinner.Stop()
	if err != nil {
		return "", err
	}
	apperrors.Debug("Generation finished in %s", time.Since(start).Round(time.Millisecond))

	if strings.TrimSpace(msg) == "" {
		return "", apperrors.NewEmptyResponseError(model.Provider().String())
	}

	// Step 4: Lint, never rewrite
	s.lint(msg)

	return msg, nil
}

func (s *Service) lint(msg string) {
	result := message.Validate(msg)
	if result.OK() {
		apperrors.Debug("Commit message passed conventional commit checks (type=%s scope=%s)",
			result.Message.Type, result.Message.Scope)
		return
	}
	for _, w := range result.Warnings {
		apperrors.Debug("Commit message lint: %s", w)
	}
}

// preview returns a single-line, secret-masked excerpt of s.
func preview(s string) string {
	s = security.SanitizeForLogging(s)
	s = strings.ReplaceAll(s, "\n", `\n`)
	if len(s) > previewLength {
		s = s[:previewLength] + "..."
	}
	return s
}
