// Package git provides read-only Git queries for convcom.
package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
)

const (
	// GitCommandTimeout is the default timeout for git commands.
	GitCommandTimeout = 10 * time.Second
)

// FileStatus is the index status of a staged path.
type FileStatus int

const (
	StatusAdded FileStatus = iota
	StatusModified
	StatusDeleted
	StatusUnknown
)

// String returns the string representation of FileStatus.
func (s FileStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusModified:
		return "modified"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// parseStatus maps a --name-status letter to a FileStatus.
func parseStatus(code string) FileStatus {
	if code == "" {
		return StatusUnknown
	}
	switch code[0] {
	case 'A':
		return StatusAdded
	case 'M':
		return StatusModified
	case 'D':
		return StatusDeleted
	default:
		return StatusUnknown
	}
}

// StagedChange is one path recorded in the index.
type StagedChange struct {
	Path   string
	Status FileStatus
}

// ChangedLine is an added or removed line from a hunk body.
type ChangedLine struct {
	Added bool
	Text  string
}

// String renders the line as "+ text" or "- text".
func (l ChangedLine) String() string {
	if l.Added {
		return "+ " + l.Text
	}
	return "- " + l.Text
}

// Client defines the interface for Git operations.
type Client interface {
	Discover(ctx context.Context) (string, error)
	StagedChanges(ctx context.Context) ([]StagedChange, error)
	StagedPatch(ctx context.Context, path string) (string, error)
	IndexBlob(ctx context.Context, path string) ([]byte, error)
	WorkingFile(path string) ([]byte, error)
}

// DefaultClient implements the Client interface using exec.CommandContext.
type DefaultClient struct {
	// workDir is where discovery starts. If empty, uses the current directory.
	workDir string
	// root is the repository top level once Discover has run.
	root string
}

// NewClient creates a new DefaultClient.
func NewClient() *DefaultClient {
	return &DefaultClient{}
}

// NewClientWithWorkDir creates a new DefaultClient with a specific working directory.
func NewClientWithWorkDir(workDir string) *DefaultClient {
	return &DefaultClient{workDir: workDir}
}

// Root returns the discovered repository root, or "" before Discover.
func (c *DefaultClient) Root() string {
	return c.root
}

func (c *DefaultClient) dir() string {
	if c.root != "" {
		return c.root
	}
	return c.workDir
}

// run executes git with the per-command timeout and returns stdout.
func (c *DefaultClient) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, GitCommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	if dir := c.dir(); dir != "" {
		cmd.Dir = dir
	}

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.Wrap(ctx.Err(), apperrors.ErrGitCommandFailed, "git command timed out").
				WithContext("command", "git "+strings.Join(args, " "))
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, apperrors.NewGitError(err, strings.TrimSpace(string(exitErr.Stderr))).
				WithContext("command", "git "+strings.Join(args, " "))
		}
		return nil, apperrors.NewGitError(err, "")
	}
	return output, nil
}

// Discover locates the repository containing the working directory.
func (c *DefaultClient) Discover(ctx context.Context) (string, error) {
	c.root = ""
	output, err := c.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", err
		}
		return "", apperrors.NewNotRepositoryError(err)
	}

	root := strings.TrimSpace(string(output))
	if root == "" {
		return "", apperrors.NewNotRepositoryError(errors.New("empty repository root"))
	}
	c.root = root
	return root, nil
}

// StagedChanges lists the paths recorded in the index, in the order git reports them.
// Renames are reported as a deletion plus an addition.
func (c *DefaultClient) StagedChanges(ctx context.Context) ([]StagedChange, error) {
	output, err := c.run(ctx, "diff", "--cached", "--name-status", "--no-renames", "-z")
	if err != nil {
		return nil, err
	}
	return parseNameStatus(output), nil
}

// parseNameStatus parses NUL separated "STATUS\0PATH\0" pairs.
func parseNameStatus(output []byte) []StagedChange {
	fields := bytes.Split(bytes.TrimRight(output, "\x00"), []byte{0})

	var changes []StagedChange
	for i := 0; i+1 < len(fields); i += 2 {
		status := strings.TrimSpace(string(fields[i]))
		path := string(fields[i+1])
		if path == "" {
			continue
		}
		changes = append(changes, StagedChange{
			Path:   path,
			Status: parseStatus(status),
		})
	}
	return changes
}

// StagedPatch returns the staged patch for a single path.
func (c *DefaultClient) StagedPatch(ctx context.Context, path string) (string, error) {
	output, err := c.run(ctx, "--literal-pathspecs", "diff", "--cached", "--no-color", "--no-ext-diff", "--no-renames", "--", path)
	if err != nil {
		return "", err
	}
	return string(output), nil
}

// IndexBlob returns the staged content of path.
func (c *DefaultClient) IndexBlob(ctx context.Context, path string) ([]byte, error) {
	return c.run(ctx, "show", ":"+path)
}

// WorkingFile reads path from the working tree, relative to the repository root.
func (c *DefaultClient) WorkingFile(path string) ([]byte, error) {
	base := c.dir()
	if base == "" {
		base = "."
	}
	data, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(path)))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileSystemError, fmt.Sprintf("failed to read %s", path))
	}
	return data, nil
}

// ChangedLines extracts added and removed lines from the hunk bodies of a patch.
// File headers are skipped structurally, so a removed line that itself begins
// with "--" is still reported. Trailing whitespace is trimmed.
func ChangedLines(patch string) []ChangedLine {
	var lines []ChangedLine
	inHunk := false

	scanner := bufio.NewScanner(strings.NewReader(patch))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "diff --git "):
			inHunk = false
			continue
		case strings.HasPrefix(line, "@@"):
			inHunk = true
			continue
		case !inHunk || line == "":
			continue
		}

		switch line[0] {
		case '+':
			lines = append(lines, ChangedLine{Added: true, Text: trimEnd(line[1:])})
		case '-':
			lines = append(lines, ChangedLine{Added: false, Text: trimEnd(line[1:])})
		}
	}
	return lines
}

func trimEnd(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
