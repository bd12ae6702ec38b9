// Package processor renders staged changes into the diff report sent to the model.
package processor

import (
	"context"
	"strings"
	"unicode/utf8"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
	"github.com/convcom/convcom/internal/pkg/git"
)

// MaxChangedLines caps the changed lines rendered for one modified file.
const MaxChangedLines = 100

// Report headers.
const (
	NewFilePrefix       = "NEW FILE: "
	ModifiedPrefix      = "MODIFIED: "
	DeletedPrefix       = "DELETED: "
	UnknownStatusPrefix = "UNKNOWN STATUS: "
	CompleteContent     = "COMPLETE CONTENT:"
	UnreadableContent   = "Could not read file content"
	DiffUnavailable     = " (could not get diff)"
)

// DiffCollector defines the interface for building a diff report.
type DiffCollector interface {
	Collect(ctx context.Context) (string, error)
}

// Collector builds the diff report from a git.Client.
type Collector struct {
	client git.Client
}

// NewCollector creates a Collector reading from client.
func NewCollector(client git.Client) *Collector {
	return &Collector{client: client}
}

// Collect renders every staged change in the order git reports them.
// It fails with ErrNoStagedChanges when the index matches HEAD.
func (c *Collector) Collect(ctx context.Context) (string, error) {
	changes, err := c.client.StagedChanges(ctx)
	if err != nil {
		return "", err
	}
	if len(changes) == 0 {
		return "", apperrors.NewNoStagedChangesError()
	}

	apperrors.Debug("Collecting %d staged file(s)", len(changes))

	var lines []string
	for _, change := range changes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		lines = append(lines, c.render(ctx, change)...)
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Collector) render(ctx context.Context, change git.StagedChange) []string {
	switch change.Status {
	case git.StatusAdded:
		return c.renderAdded(ctx, change.Path)
	case git.StatusModified:
		return c.renderModified(ctx, change.Path)
	case git.StatusDeleted:
		return []string{DeletedPrefix + change.Path}
	default:
		return []string{UnknownStatusPrefix + change.Path}
	}
}

func (c *Collector) renderAdded(ctx context.Context, path string) []string {
	content, ok := c.fileContent(ctx, path)
	if !ok {
		return []string{NewFilePrefix + path, UnreadableContent, ""}
	}
	return []string{NewFilePrefix + path, CompleteContent, content, ""}
}

// fileContent prefers the staged blob and falls back to the working tree.
// Content that is not valid UTF-8 counts as unreadable.
func (c *Collector) fileContent(ctx context.Context, path string) (string, bool) {
	blob, err := c.client.IndexBlob(ctx, path)
	if err == nil && utf8.Valid(blob) {
		return string(blob), true
	}
	if err != nil {
		apperrors.Debug("Index read failed for %s: %v", path, err)
	} else {
		apperrors.Debug("Index content of %s is not UTF-8", path)
	}

	data, err := c.client.WorkingFile(path)
	if err != nil {
		apperrors.Debug("Working tree read failed for %s: %v", path, err)
		return "", false
	}
	if !utf8.Valid(data) {
		apperrors.Debug("Working tree content of %s is not UTF-8", path)
		return "", false
	}
	return string(data), true
}

func (c *Collector) renderModified(ctx context.Context, path string) []string {
	patch, err := c.client.StagedPatch(ctx, path)
	if err != nil {
		apperrors.Debug("Diff failed for %s: %v", path, err)
		return []string{ModifiedPrefix + path + DiffUnavailable, ""}
	}

	changed := git.ChangedLines(patch)
	if len(changed) == 0 {
		return nil
	}
	if len(changed) > MaxChangedLines {
		apperrors.Debug("Truncating %s from %d to %d changed lines", path, len(changed), MaxChangedLines)
		changed = changed[:MaxChangedLines]
	}

	lines := make([]string, 0, len(changed)+2)
	lines = append(lines, ModifiedPrefix+path)
	for _, l := range changed {
		lines = append(lines, l.String())
	}
	return append(lines, "")
}
