// Package presenter renders user-facing CLI output: status lines with color
// support, quiet mode and aligned tables.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// Presenter defines the interface for CLI output
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Table(headers []string, rows [][]string)
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// ColorMode represents different color output modes
type ColorMode int

const (
	// ColorAuto lets the color package detect terminal support
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output
	ColorAlways
	// ColorNever disables colored output
	ColorNever
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	successStyle = color.New(color.FgGreen, color.Bold)
	warningStyle = color.New(color.FgYellow, color.Bold)
	headerStyle  = color.New(color.Bold)
)

// TerminalPresenter implements Presenter for terminal output
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	colorMode   ColorMode
	quiet       bool
}

// New creates a TerminalPresenter writing to stdout and stderr, with the
// color mode taken from NO_COLOR and SKILLMCP_COLOR
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a TerminalPresenter with custom settings
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
	}

	return &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		colorMode:   colorMode,
	}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	switch os.Getenv("SKILLMCP_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// println writes one line to stdout unless quiet; style may be nil
func (p *TerminalPresenter) println(style *color.Color, line string) {
	if p.quiet {
		return
	}
	if style == nil {
		fmt.Fprintln(p.output, line)
		return
	}
	style.Fprintln(p.output, line)
}

// Error writes an error to stderr, including in quiet mode
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	message := err.Error()
	if context != "" {
		message = context + ": " + message
	}
	errorStyle.Fprintln(p.errorOutput, "[ERROR] "+message)
}

// Success displays a success message
func (p *TerminalPresenter) Success(message string) {
	p.println(successStyle, "✓ "+message)
}

// Warning displays a warning message
func (p *TerminalPresenter) Warning(message string) {
	p.println(warningStyle, "⚠ "+message)
}

// Info displays an informational message
func (p *TerminalPresenter) Info(message string) {
	p.println(nil, message)
}

// Section displays a header underlined to its own width
func (p *TerminalPresenter) Section(title string) {
	p.println(headerStyle, title)
	p.println(headerStyle, strings.Repeat("-", len(title)))
}

// Table renders rows as aligned columns under the given headers. Tables are
// command output, so quiet mode does not suppress them.
func (p *TerminalPresenter) Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(p.output, 0, 0, 2, ' ', 0)
	if len(headers) > 0 {
		fmt.Fprintln(w, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// SetQuiet enables or disables quiet mode
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet returns whether quiet mode is enabled
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

var defaultPresenter Presenter = New()

// Error writes an error using the default presenter
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}
