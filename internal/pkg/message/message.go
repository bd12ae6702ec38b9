// Package message checks generated text against the Conventional Commits format.
// Checks only produce warnings; the text printed to the user is never altered.
package message

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// ValidCommitTypes contains the commit types the prompt asks the model to use.
var ValidCommitTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"test", "chore", "perf", "ci", "build", "revert",
}

// MaxSubjectLength is the recommended maximum length for commit subject lines.
const MaxSubjectLength = 72

// headerRegex matches <type>(<scope>)!: <description>.
var headerRegex = regexp.MustCompile(`^([A-Za-z]+)(?:\(([^()\s][^()]*)\))?(!)?:\s*(.*)$`)

// Rule identifies a lint check.
type Rule string

const (
	RuleEmpty         Rule = "empty"
	RuleHeaderFormat  Rule = "header-format"
	RuleUnknownType   Rule = "unknown-type"
	RuleEmptySubject  Rule = "empty-subject"
	RuleSubjectLength Rule = "subject-length"
	RuleSubjectPeriod Rule = "subject-period"
	RuleBodySeparator Rule = "body-separator"
	RuleLeadingSpace  Rule = "leading-whitespace"
)

// Warning is one lint finding.
type Warning struct {
	Rule    Rule
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Rule, w.Message)
}

// CommitMessage represents a parsed conventional commit.
type CommitMessage struct {
	Type     string
	Scope    string
	Breaking bool
	Subject  string
	Header   string
	Body     string
	Footer   string

	// separated reports whether a blank line follows the header.
	separated bool
}

// ValidationResult contains the parsed message and every warning raised for it.
type ValidationResult struct {
	Message  *CommitMessage
	Warnings []Warning
}

// OK reports whether no warning was raised.
func (r *ValidationResult) OK() bool {
	return len(r.Warnings) == 0
}

// Parse parses raw text into a CommitMessage. It never fails; fields that
// cannot be recognised are left empty.
func Parse(rawText string) *CommitMessage {
	cm := &CommitMessage{}

	text := strings.TrimSpace(strings.ReplaceAll(rawText, "\r\n", "\n"))
	if text == "" {
		return cm
	}

	lines := strings.Split(text, "\n")
	cm.Header = strings.TrimSpace(lines[0])
	if m := headerRegex.FindStringSubmatch(cm.Header); m != nil {
		cm.Type = m[1]
		cm.Scope = m[2]
		cm.Breaking = m[3] == "!"
		cm.Subject = strings.TrimSpace(m[4])
	}

	rest := lines[1:]
	if len(rest) == 0 {
		cm.separated = true
		return cm
	}
	cm.separated = strings.TrimSpace(rest[0]) == ""

	var body, footer []string
	inFooter := false
	for _, line := range rest {
		if isFooterLine(strings.TrimSpace(line)) {
			inFooter = true
		}
		if inFooter {
			footer = append(footer, line)
		} else {
			body = append(body, line)
		}
	}
	cm.Body = strings.TrimSpace(strings.Join(body, "\n"))
	cm.Footer = strings.TrimSpace(strings.Join(footer, "\n"))
	if strings.HasPrefix(cm.Footer, "BREAKING CHANGE:") || strings.HasPrefix(cm.Footer, "BREAKING-CHANGE:") {
		cm.Breaking = true
	}
	return cm
}

// footerRegex matches git trailers such as "Refs: #12" or "Reviewed-by: Name".
var footerRegex = regexp.MustCompile(`^(BREAKING CHANGE|[A-Za-z][A-Za-z-]*)(?:: | #)`)

// footerTokens are single-word trailers; hyphenated tokens are always trailers.
var footerTokens = []string{"breaking change", "refs", "closes", "fixes", "resolves", "see"}

func isFooterLine(line string) bool {
	m := footerRegex.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	return strings.Contains(m[1], "-") || slices.Contains(footerTokens, strings.ToLower(m[1]))
}

// Validate lints rawText and returns every warning raised.
func Validate(rawText string) *ValidationResult {
	cm := Parse(rawText)
	result := &ValidationResult{Message: cm}
	warn := func(rule Rule, format string, args ...interface{}) {
		result.Warnings = append(result.Warnings, Warning{Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(rawText) == "" {
		warn(RuleEmpty, "message is empty")
		return result
	}

	if rawText != strings.TrimLeft(rawText, " \t\r\n") {
		warn(RuleLeadingSpace, "message starts with whitespace")
	}

	if cm.Type == "" {
		warn(RuleHeaderFormat, "header %q does not match <type>(<scope>): <subject>", cm.Header)
	} else {
		if !IsValidCommitType(cm.Type) {
			warn(RuleUnknownType, "unknown commit type %q (valid types: %s)", cm.Type, strings.Join(ValidCommitTypes, ", "))
		}
		if cm.Subject == "" {
			warn(RuleEmptySubject, "missing commit subject")
		}
	}

	if n := utf8.RuneCountInString(cm.Header); n > MaxSubjectLength {
		warn(RuleSubjectLength, "subject line exceeds %d characters (%d chars)", MaxSubjectLength, n)
	}
	if strings.HasSuffix(cm.Header, ".") {
		warn(RuleSubjectPeriod, "subject line ends with a period")
	}
	if !cm.separated {
		warn(RuleBodySeparator, "missing blank line between subject and body")
	}

	return result
}

// IsValidCommitType checks if the given type is a valid Conventional Commits type.
func IsValidCommitType(commitType string) bool {
	return slices.Contains(ValidCommitTypes, strings.ToLower(commitType))
}
