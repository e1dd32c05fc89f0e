// Package repl is the interactive line shell.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leengari/primdb/internal/executor"
	"github.com/leengari/primdb/internal/gate"
)

const (
	Banner = "primdb - a primitive record store"
	Prompt = ">>> "
)

type Options struct {
	// Color styles the prompt and results; leave off when out is not a terminal.
	Color bool
	// AssumeYes answers every confirmation with yes, for piped scripts.
	AssumeYes bool
	// Quiet suppresses the banner, help and prompts.
	Quiet bool
}

type styles struct {
	enabled bool
	prompt  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	confirm lipgloss.Style
}

func newStyles(color bool) styles {
	return styles{
		enabled: color,
		prompt:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		confirm: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	}
}

// paint styles each line on its own since lipgloss pads a multi-line block
// to a common width.
func (s styles) paint(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}

// REPL reads commands line by line and prints one result per command. It is
// also the gate.Confirmer for its commands, reading the answer from the same
// input.
type REPL struct {
	exec    *executor.Executor
	scanner *bufio.Scanner
	out     io.Writer
	opts    Options
	styles  styles
}

func New(exec *executor.Executor, in io.Reader, out io.Writer, opts Options) *REPL {
	return &REPL{
		exec:    exec,
		scanner: bufio.NewScanner(in),
		out:     out,
		opts:    opts,
		styles:  newStyles(opts.Color),
	}
}

// Run loops until exit, end of input or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	if !r.opts.Quiet {
		fmt.Fprintln(r.out, r.styles.paint(r.styles.prompt, Banner))
		fmt.Fprintln(r.out, executor.HelpText())
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		r.prompt(Prompt)
		if !r.scanner.Scan() {
			if !r.opts.Quiet {
				fmt.Fprintln(r.out)
			}
			return r.scanner.Err()
		}

		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		res, exit := r.exec.ExecuteLine(ctx, line, r)
		r.print(res)
		if exit {
			return nil
		}
	}
}

// Confirm asks "Are you sure you want to <action>? [y/N]" and reads one line.
func (r *REPL) Confirm(action string) bool {
	if r.opts.AssumeYes {
		return true
	}
	fmt.Fprint(r.out, r.styles.paint(r.styles.confirm, fmt.Sprintf("Are you sure you want to %s? [y/N]", action))+" ")
	if !r.scanner.Scan() {
		fmt.Fprintln(r.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(r.scanner.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

func (r *REPL) prompt(p string) {
	if r.opts.Quiet {
		return
	}
	fmt.Fprint(r.out, r.styles.paint(r.styles.prompt, p))
}

func (r *REPL) print(res gate.Result) {
	if res.Message == "" {
		return
	}
	style := r.styles.success
	if !res.Success {
		style = r.styles.failure
	}
	fmt.Fprintln(r.out, r.styles.paint(style, res.Message))
}

var _ gate.Confirmer = (*REPL)(nil)
