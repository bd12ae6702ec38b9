package prompt

import (
	"strings"
	"testing"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
)

func TestNewBuilder(t *testing.T) {
	b, err := NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	tmpl := b.Template()
	for _, want := range []string{
		"CONVENTIONAL COMMITS v1.0.0",
		"GIT DIFF FORMAT",
		"OUTPUT FORMAT REQUIREMENTS",
		PlaceholderDiff,
		PlaceholderFocusSection,
		PlaceholderFocusReminder,
	} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("template should contain %q", want)
		}
	}
}

func TestNewBuilderFromTemplate_MissingPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		template string
		missing  []string
	}{
		{
			name:     "no placeholders",
			template: "write a commit message",
			missing:  []string{PlaceholderDiff, PlaceholderFocusSection, PlaceholderFocusReminder},
		},
		{
			name:     "missing reminder",
			template: "$focus_section\n$diff_content",
			missing:  []string{PlaceholderFocusReminder},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilderFromTemplate(tt.template)
			if err == nil {
				t.Fatal("NewBuilderFromTemplate() should fail")
			}
			if !apperrors.HasCode(err, apperrors.ErrTemplate) {
				t.Errorf("error code = %v, want ErrTemplate", apperrors.GetAppError(err))
			}
			if apperrors.GetExitCode(err) != 4 {
				t.Errorf("exit code = %d, want 4", apperrors.GetExitCode(err))
			}
			for _, p := range tt.missing {
				if !strings.Contains(err.Error(), p) {
					t.Errorf("error %q should name %s", err.Error(), p)
				}
			}
		})
	}
}

func TestBuild_WithoutFocus(t *testing.T) {
	b, err := NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	diff := "MODIFIED: test.py\n+ print('hello')"
	result := b.Build(diff, "")

	if !strings.Contains(result, "CONVENTIONAL COMMITS v1.0.0") {
		t.Error("prompt should keep the template body")
	}
	if !strings.Contains(result, diff) {
		t.Error("prompt should contain the diff verbatim")
	}
	if strings.Contains(result, "🚨") {
		t.Error("prompt without focus should not contain emphasis markers")
	}
	for _, p := range requiredPlaceholders {
		if strings.Contains(result, p) {
			t.Errorf("prompt should not contain placeholder %s", p)
		}
	}
}

func TestBuild_WithFocus(t *testing.T) {
	b, err := NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	diff := "MODIFIED: test.py\n+ print('hello')"
	focus := "keep it concise"
	result := b.Build(diff, focus)

	if !strings.Contains(result, diff) {
		t.Error("prompt should contain the diff verbatim")
	}
	if !strings.Contains(result, CriticalMarker) {
		t.Error("prompt should contain the critical requirement marker")
	}
	if !strings.Contains(result, ReminderMarker) {
		t.Error("prompt should contain the reminder marker")
	}
	if got := strings.Count(result, focus); got < 2 {
		t.Errorf("focus should appear at least twice, got %d", got)
	}
	if strings.Index(result, CriticalMarker) > strings.Index(result, diff) {
		t.Error("focus preamble should come before the diff")
	}
	if strings.Index(result, ReminderMarker) < strings.Index(result, diff) {
		t.Error("focus reminder should come after the diff")
	}
}

func TestBuild_BlankFocusIsAbsent(t *testing.T) {
	b, err := NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	if got, want := b.Build("x", "   \n"), b.Build("x", ""); got != want {
		t.Error("a blank focus should render like no focus")
	}
}

func TestBuild_PlaceholdersInDiffAreLiteral(t *testing.T) {
	b, err := NewBuilderFromTemplate("[$focus_section][$diff_content][$focus_reminder]")
	if err != nil {
		t.Fatalf("NewBuilderFromTemplate() error = %v", err)
	}

	diff := "+ echo $focus_section $diff_content"
	got := b.Build(diff, "")
	want := "[][" + diff + "][]"
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestFocusBlocks(t *testing.T) {
	if FocusSection("") != "" || FocusReminder("") != "" {
		t.Error("empty focus should render empty blocks")
	}

	section := FocusSection("test focus")
	want := "\n🚨 CRITICAL USER REQUIREMENT 🚨\ntest focus\n🚨 THIS MUST BE APPLIED TO YOUR OUTPUT 🚨\n\n"
	if section != want {
		t.Errorf("FocusSection() = %q, want %q", section, want)
	}

	reminder := FocusReminder("test focus")
	want = "\n\n🚨 REMINDER: APPLY THIS REQUIREMENT TO YOUR COMMIT MESSAGE 🚨\ntest focus\n🚨 THIS IS MANDATORY - DO NOT IGNORE 🚨"
	if reminder != want {
		t.Errorf("FocusReminder() = %q, want %q", reminder, want)
	}
}
