// Package ui provides terminal output helpers for convcom.
// Everything here writes to stderr except the model table, so stdout only
// ever carries the generated message.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	apperrors "github.com/convcom/convcom/internal/pkg/errors"
)

// Spinner provides loading animation functionality.
type Spinner interface {
	Start()
	Stop()
	UpdateText(text string)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// styles holds the lipgloss styles for UI rendering.
type styles struct {
	title      lipgloss.Style
	success    lipgloss.Style
	errorStyle lipgloss.Style
	warn       lipgloss.Style
	muted      lipgloss.Style
	spinner    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *styles {
	return &styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		success: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		errorStyle: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		warn: r.NewStyle().
			Foreground(lipgloss.Color("220")),
		muted: r.NewStyle().
			Foreground(lipgloss.Color("245")),
		spinner: r.NewStyle().
			Foreground(lipgloss.Color("205")),
	}
}

// Manager renders status output on a diagnostic stream.
type Manager struct {
	out         io.Writer
	interactive bool
	styles      *styles
}

// NewManager creates a Manager writing to out. When interactive is false the
// spinner is a no-op.
func NewManager(out io.Writer, interactive bool) *Manager {
	return &Manager{
		out:         out,
		interactive: interactive,
		styles:      newStyles(lipgloss.NewRenderer(out)),
	}
}

// Interactive reports whether the spinner animates.
func (m *Manager) Interactive() bool {
	return m.interactive
}

// ShowSpinner creates and returns a spinner for loading states.
func (m *Manager) ShowSpinner(text string) Spinner {
	if !m.interactive {
		return noopSpinner{}
	}
	return newBubbleSpinner(m.out, text, m.styles.spinner)
}

// ShowError displays an error with the category-aware formatting of the errors package.
func (m *Manager) ShowError(err error, verbose bool) {
	if err == nil {
		return
	}
	text := apperrors.FormatError(err)
	if verbose {
		text = apperrors.FormatErrorVerbose(err)
	}

	lines := strings.SplitN(strings.TrimRight(text, "\n"), "\n", 2)
	fmt.Fprintln(m.out, m.styles.errorStyle.Render(lines[0]))
	if len(lines) > 1 {
		fmt.Fprintln(m.out, m.styles.muted.Render(lines[1]))
	}
}

// ShowWarning displays a warning line.
func (m *Manager) ShowWarning(message string) {
	fmt.Fprintln(m.out, m.styles.warn.Render("Warning: "+message))
}

// ShowSuccess displays a success message to the user.
func (m *Manager) ShowSuccess(message string) {
	fmt.Fprintln(m.out, m.styles.success.Render("[OK] "+message))
}

// ModelRow is one line of the model table.
type ModelRow struct {
	Model     string
	Provider  string
	Default   bool
	Available bool
}

// RenderModelTable renders rows as a bordered table.
func RenderModelTable(w io.Writer, rows []ModelRow) string {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	dim := cell.Foreground(lipgloss.Color("245"))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("MODEL", "PROVIDER", "DEFAULT", "AVAILABLE")

	for _, row := range rows {
		t.Row(row.Model, row.Provider, mark(row.Default), mark(row.Available))
	}

	t.StyleFunc(func(i, _ int) lipgloss.Style {
		if i == table.HeaderRow {
			return header
		}
		if i >= 0 && i < len(rows) && !rows[i].Available {
			return dim
		}
		return cell
	})

	return t.String()
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// bubbleSpinner implements Spinner using Bubble Tea.
type bubbleSpinner struct {
	out     io.Writer
	text    string
	style   lipgloss.Style
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
}

// spinnerModel is the Bubble Tea model for simple spinner.
type spinnerModel struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

// spinnerTextMsg is sent to update spinner text from outside.
type spinnerTextMsg struct {
	text string
}

// spinnerQuitMsg signals the spinner to quit.
type spinnerQuitMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTextMsg:
		m.text = msg.text
		return m, nil
	case spinnerQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

func newBubbleSpinner(out io.Writer, text string, style lipgloss.Style) *bubbleSpinner {
	return &bubbleSpinner{
		out:   out,
		text:  text,
		style: style,
	}
}

func (s *bubbleSpinner) model() spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.style
	return spinnerModel{spinner: sp, text: s.text}
}

func (s *bubbleSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		return
	}

	// No input: the spinner must never read from stdin.
	s.program = tea.NewProgram(s.model(),
		tea.WithOutput(s.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	s.done = make(chan struct{})
	go func(p *tea.Program, done chan struct{}) {
		defer close(done)
		_, _ = p.Run()
	}(s.program, s.done)
}

// Stop ends the animation and waits until the line has been cleared.
func (s *bubbleSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program == nil {
		return
	}
	s.program.Send(spinnerQuitMsg{})
	<-s.done
	s.program = nil
}

func (s *bubbleSpinner) UpdateText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	if s.program != nil {
		s.program.Send(spinnerTextMsg{text: text})
	}
}

// noopSpinner is used when stderr is not a terminal.
type noopSpinner struct{}

func (noopSpinner) Start()            {}
func (noopSpinner) Stop()             {}
func (noopSpinner) UpdateText(string) {}
