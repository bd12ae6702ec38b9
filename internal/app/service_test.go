package app

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/convcom/convcom/internal/pkg/ai"
	apperrors "github.com/convcom/convcom/internal/pkg/errors"
	"github.com/convcom/convcom/internal/pkg/prompt"
	"github.com/convcom/convcom/internal/pkg/ui"
)

// MockCollector is a mock implementation of processor.DiffCollector
type MockCollector struct {
	mock.Mock
}

func (m *MockCollector) Collect(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, model ai.Model) (string, error) {
	args := m.Called(ctx, prompt, model)
	return args.String(0), args.Error(1)
}

// MockSpinner is a mock implementation of ui.Spinner
type MockSpinner struct {
	mock.Mock
}

func (m *MockSpinner) Start() {
	m.Called()
}

func (m *MockSpinner) Stop() {
	m.Called()
}

func (m *MockSpinner) UpdateText(text string) {
	m.Called(text)
}

// MockSpinnerFactory is a mock implementation of SpinnerFactory
type MockSpinnerFactory struct {
	mock.Mock
}

func (m *MockSpinnerFactory) ShowSpinner(text string) ui.Spinner {
	args := m.Called(text)
	return args.Get(0).(ui.Spinner)
}

type fixture struct {
	collector *MockCollector
	generator *MockGenerator
	spinners  *MockSpinnerFactory
	spinner   *MockSpinner
	service   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	builder, err := prompt.NewBuilder()
	require.NoError(t, err)

	f := &fixture{
		collector: new(MockCollector),
		generator: new(MockGenerator),
		spinners:  new(MockSpinnerFactory),
		spinner:   new(MockSpinner),
	}
	f.service = NewService(f.collector, builder, f.generator, f.spinners)
	return f
}

func (f *fixture) expectSpinner() {
	f.spinners.On("ShowSpinner", mock.Anything).Return(f.spinner)
	f.spinner.On("Start").Return()
	f.spinner.On("Stop").Return()
}

func TestGenerate_ReadmeScenario(t *testing.T) {
	f := newFixture(t)
	report := "MODIFIED: README.md\n+ # New feature added\n"

	f.collector.On("Collect", mock.Anything).Return(report, nil)
	f.expectSpinner()
	f.generator.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "MODIFIED: README.md\n+ # New feature added") &&
			!strings.Contains(p, prompt.CriticalMarker) &&
			!strings.Contains(p, prompt.ReminderMarker)
	}), ai.DefaultModel).Return("docs: add new feature heading", nil)

	msg, err := f.service.Generate(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "docs: add new feature heading", msg)
	f.collector.AssertExpectations(t)
	f.generator.AssertExpectations(t)
	f.spinner.AssertExpectations(t)
}

func TestGenerate_FocusReachesPrompt(t *testing.T) {
	f := newFixture(t)
	focus := "mention the parser rewrite"

	f.collector.On("Collect", mock.Anything).Return("MODIFIED: parser.go\n+ x\n", nil)
	f.expectSpinner()
	f.generator.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Count(p, focus) >= 2
	}), ai.Model("claude-3-5-haiku-20241022")).Return("refactor(parser): rewrite parser", nil)

	_, err := f.service.Generate(context.Background(), Options{
		Model: "claude-3-5-haiku-20241022",
		Focus: focus,
	})
	require.NoError(t, err)
	f.generator.AssertExpectations(t)
}

func TestGenerate_CollectorError(t *testing.T) {
	f := newFixture(t)
	f.collector.On("Collect", mock.Anything).Return("", apperrors.NewNoStagedChangesError())

	_, err := f.service.Generate(context.Background(), Options{})

	assert.True(t, apperrors.HasCode(err, apperrors.ErrNoStagedChanges))
	f.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	f.spinners.AssertNotCalled(t, "ShowSpinner", mock.Anything)
}

func TestGenerate_BlankReportIsNoStagedChanges(t *testing.T) {
	f := newFixture(t)
	f.collector.On("Collect", mock.Anything).Return("  \n", nil)

	_, err := f.service.Generate(context.Background(), Options{})

	assert.True(t, apperrors.HasCode(err, apperrors.ErrNoStagedChanges))
	f.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_GeneratorErrorStopsSpinner(t *testing.T) {
	f := newFixture(t)
	apiErr := apperrors.NewAPIError("groq", 401, `{"error":"invalid key"}`)

	f.collector.On("Collect", mock.Anything).Return("DELETED: a.go", nil)
	f.expectSpinner()
	f.generator.On("Generate", mock.Anything, mock.Anything, ai.DefaultModel).Return("", apiErr)

	_, err := f.service.Generate(context.Background(), Options{})

	assert.Same(t, apiErr, err)
	f.spinner.AssertCalled(t, "Stop")
}

func TestGenerate_EmptyAfterSanitizing(t *testing.T) {
	f := newFixture(t)

	f.collector.On("Collect", mock.Anything).Return("DELETED: a.go", nil)
	f.expectSpinner()
	f.generator.On("Generate", mock.Anything, mock.Anything, ai.DefaultModel).Return("", nil)

	_, err := f.service.Generate(context.Background(), Options{})

	assert.True(t, apperrors.HasCode(err, apperrors.ErrEmptyResponse))
	assert.Equal(t, 3, apperrors.GetExitCode(err))
}

func TestGenerate_LintNeverRewrites(t *testing.T) {
	f := newFixture(t)
	raw := "Updated stuff.\nno blank line"

	var logs bytes.Buffer
	apperrors.SetOutput(&logs)
	apperrors.SetVerbose(true)
	defer func() {
		apperrors.SetVerbose(false)
		apperrors.SetOutput(os.Stderr)
	}()

	f.collector.On("Collect", mock.Anything).Return("DELETED: a.go", nil)
	f.expectSpinner()
	f.generator.On("Generate", mock.Anything, mock.Anything, ai.DefaultModel).Return(raw, nil)

	msg, err := f.service.Generate(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, raw, msg)
	assert.Contains(t, logs.String(), "header-format")
	assert.Contains(t, logs.String(), "body-separator")
}

func TestPreview(t *testing.T) {
	got := preview("NEW FILE: .env\nCOMPLETE CONTENT:\nGROQ_API_KEY=gsk_abcdefghijklmnopqrstuvwxyz\n")
	assert.NotContains(t, got, "gsk_abcdefghijklmnopqrstuvwxyz")
	assert.NotContains(t, got, "\n")

	long := preview(strings.Repeat("a", previewLength*2))
	assert.Len(t, long, previewLength+len("..."))
}
