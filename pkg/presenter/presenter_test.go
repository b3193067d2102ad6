package presenter

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOptions(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, ColorNever)

	assert.Equal(t, &output, presenter.output)
	assert.Equal(t, &errorOutput, presenter.errorOutput)
	assert.Equal(t, ColorNever, presenter.colorMode)
	assert.False(t, presenter.quiet)
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name     string
		noColor  string
		envColor string
		expected ColorMode
	}{
		{"NO_COLOR set", "1", "", ColorNever},
		{"always", "", "always", ColorAlways},
		{"force", "", "force", ColorAlways},
		{"never", "", "never", ColorNever},
		{"off", "", "off", ColorNever},
		{"auto", "", "auto", ColorAuto},
		{"default", "", "", ColorAuto},
		{"unknown value", "", "rainbow", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("SKILLMCP_COLOR", tt.envColor)
			if tt.noColor == "" {
				os.Unsetenv("NO_COLOR")
			}

			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestError(t *testing.T) {
	var errorOutput bytes.Buffer
	presenter := NewWithOptions(nil, &errorOutput, ColorNever)

	presenter.Error(errors.New("skill 'pdf' not found"), "failed to read skill")
	output := errorOutput.String()
	assert.Contains(t, output, "[ERROR]")
	assert.Contains(t, output, "failed to read skill")
	assert.Contains(t, output, "skill 'pdf' not found")

	errorOutput.Reset()
	presenter.Error(errors.New("boom"), "")
	assert.Equal(t, "[ERROR] boom\n", errorOutput.String())

	errorOutput.Reset()
	presenter.Error(nil, "context")
	assert.Empty(t, errorOutput.String())
}

func TestMessagesRespectQuietMode(t *testing.T) {
	tests := []struct {
		name     string
		call     func(p *TerminalPresenter)
		contains string
	}{
		{"success", func(p *TerminalPresenter) { p.Success("server started") }, "✓ server started"},
		{"warning", func(p *TerminalPresenter) { p.Warning("1 manifest skipped") }, "⚠ 1 manifest skipped"},
		{"info", func(p *TerminalPresenter) { p.Info("Skills directory: /srv/skills") }, "Skills directory: /srv/skills"},
		{"section", func(p *TerminalPresenter) { p.Section("pdf") }, "pdf\n---"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer
			presenter := NewWithOptions(&output, nil, ColorNever)

			tt.call(presenter)
			assert.Contains(t, output.String(), tt.contains)

			output.Reset()
			presenter.SetQuiet(true)
			tt.call(presenter)
			assert.Empty(t, output.String())
		})
	}
}

func TestSection(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Section("skill-a")

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "skill-a", lines[0])
	assert.Equal(t, "-------", lines[1])
}

func TestTable(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)
	presenter.SetQuiet(true)

	presenter.Table(
		[]string{"NAME", "DESCRIPTION"},
		[][]string{
			{"pdf", "Work with PDF files"},
			{"spreadsheet", "Edit spreadsheets"},
		},
	)

	lines := strings.Split(strings.TrimRight(output.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "NAME         DESCRIPTION", lines[0])
	assert.Equal(t, "pdf          Work with PDF files", lines[1])
	assert.Equal(t, "spreadsheet  Edit spreadsheets", lines[2])
}

func TestColorModeConfiguration(t *testing.T) {
	oldNoColor := color.NoColor
	t.Cleanup(func() { color.NoColor = oldNoColor })

	NewWithOptions(&bytes.Buffer{}, &bytes.Buffer{}, ColorNever)
	assert.True(t, color.NoColor)

	NewWithOptions(&bytes.Buffer{}, &bytes.Buffer{}, ColorAlways)
	assert.False(t, color.NoColor)
}

func TestGlobalError(t *testing.T) {
	originalPresenter := defaultPresenter
	t.Cleanup(func() { defaultPresenter = originalPresenter })

	var output, errorOutput bytes.Buffer
	defaultPresenter = NewWithOptions(&output, &errorOutput, ColorNever)

	Error(errors.New("test error"), "error context")
	assert.Equal(t, "[ERROR] error context: test error\n", errorOutput.String())
	assert.Empty(t, output.String())
}
