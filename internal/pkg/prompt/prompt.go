// Package prompt merges the diff report and an optional focus directive into
// the commit-message instruction template.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
)

// Template placeholders.
const (
	PlaceholderDiff          = "$diff_content"
	PlaceholderFocusSection  = "$focus_section"
	PlaceholderFocusReminder = "$focus_reminder"
)

// CriticalMarker opens the focus preamble.
const CriticalMarker = "🚨 CRITICAL USER REQUIREMENT 🚨"

// ReminderMarker opens the focus reminder.
const ReminderMarker = "🚨 REMINDER: APPLY THIS REQUIREMENT TO YOUR COMMIT MESSAGE 🚨"

//go:embed template.txt
var defaultTemplate string

// requiredPlaceholders must all appear in a template.
var requiredPlaceholders = []string{
	PlaceholderDiff,
	PlaceholderFocusSection,
	PlaceholderFocusReminder,
}

// Builder renders prompts from a validated template.
type Builder struct {
	template string
}

// NewBuilder returns a Builder over the embedded template.
func NewBuilder() (*Builder, error) {
	return NewBuilderFromTemplate(defaultTemplate)
}

// NewBuilderFromTemplate validates tmpl and returns a Builder over it.
func NewBuilderFromTemplate(tmpl string) (*Builder, error) {
	var missing []string
	for _, p := range requiredPlaceholders {
		if !strings.Contains(tmpl, p) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewTemplateError(
			fmt.Sprintf("template missing required placeholders: %s", strings.Join(missing, ", ")))
	}
	return &Builder{template: tmpl}, nil
}

// Template returns the raw template text.
func (b *Builder) Template() string {
	return b.template
}

// Build substitutes the diff and focus directive into the template.
// A blank focus leaves both focus placeholders empty. Substitution is a single
// pass, so placeholder text inside the diff or focus is kept literally.
func (b *Builder) Build(diff, focus string) string {
	r := strings.NewReplacer(
		PlaceholderDiff, diff,
		PlaceholderFocusSection, FocusSection(focus),
		PlaceholderFocusReminder, FocusReminder(focus),
	)
	return r.Replace(b.template)
}

// FocusSection renders the high-emphasis preamble for focus, or "" when focus is blank.
func FocusSection(focus string) string {
	if strings.TrimSpace(focus) == "" {
		return ""
	}
	return "\n" + CriticalMarker + "\n" + focus + "\n🚨 THIS MUST BE APPLIED TO YOUR OUTPUT 🚨\n\n"
}

// FocusReminder renders the closing reminder for focus, or "" when focus is blank.
func FocusReminder(focus string) string {
	if strings.TrimSpace(focus) == "" {
		return ""
	}
	return "\n\n" + ReminderMarker + "\n" + focus + "\n🚨 THIS IS MANDATORY - DO NOT IGNORE 🚨"
}
