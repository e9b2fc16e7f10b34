// Package output provides terminal-aware rendering for CLI commands.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Mode controls how command output is rendered.
type Mode string

const (
	// ModeAuto picks text on a terminal and markdown otherwise.
	ModeAuto Mode = "auto"
	// ModeText renders styled tables for interactive use.
	ModeText Mode = "text"
	// ModeMarkdown renders pipe tables for piping into docs.
	ModeMarkdown Mode = "markdown"
	// ModeJSON renders machine-readable JSON.
	ModeJSON Mode = "json"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Renderer writes command output in the configured mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
}

// NewRenderer creates a renderer writing to the given streams.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{out: out, errOut: errOut, mode: mode}
}

// Out returns the primary output stream.
func (r *Renderer) Out() io.Writer { return r.out }

// ErrOut returns the diagnostic output stream.
func (r *Renderer) ErrOut() io.Writer { return r.errOut }

// EffectiveMode resolves ModeAuto by sniffing whether stdout is a terminal.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if f, ok := r.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return ModeText
	}
	return ModeMarkdown
}

func (r *Renderer) styled() bool {
	return r.EffectiveMode() == ModeText
}

// Heading formats a section heading.
func (r *Renderer) Heading(s string) string {
	if r.styled() {
		return headingStyle.Render(s)
	}
	return s
}

// Error formats an error fragment.
func (r *Renderer) Error(s string) string {
	if r.styled() {
		return errorStyle.Render(s)
	}
	return s
}

// Warn formats a warning fragment.
func (r *Renderer) Warn(s string) string {
	if r.styled() {
		return warnStyle.Render(s)
	}
	return s
}

// OK formats a success fragment.
func (r *Renderer) OK(s string) string {
	if r.styled() {
		return okStyle.Render(s)
	}
	return s
}
