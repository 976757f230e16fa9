package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Exported styles are shared with the explore view.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError     = lipgloss.NewStyle().Foreground(colorRed)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// printStatus renders one line of command output, optionally with a leading
// icon. stdout is the default writer.
func printStatus(icon string, iconStyle, textStyle lipgloss.Style, format string, args ...any) {
	msg := textStyle.Render(fmt.Sprintf(format, args...))
	if icon != "" {
		msg = iconStyle.Render(icon) + " " + msg
	}
	fmt.Fprintln(stdout, msg)
}

var (
	stdout io.Writer = os.Stdout
	plain            = lipgloss.NewStyle()
)

func printSuccess(format string, args ...any) {
	printStatus(iconSuccess, StyleSuccess, plain, format, args...)
}

func printError(format string, args ...any) {
	printStatus(iconError, StyleError, plain, format, args...)
}

func printWarning(format string, args ...any) {
	printStatus(iconWarning, StyleWarning, StyleWarning, format, args...)
}

func printInfo(format string, args ...any) { printStatus(iconInfo, StyleDim, plain, format, args...) }

func printDetail(format string, args ...any) {
	printStatus("", plain, StyleDim, "  "+format, args...)
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Stats
// =============================================================================

// statsLine joins layout statistics into one dimmed line. Zero counts are
// left out.
func statsLine(nodes, edges, hidden int, d time.Duration) string {
	var parts []string
	if nodes > 0 {
		parts = append(parts, fmt.Sprintf("%d nodes", nodes))
	}
	if edges > 0 {
		parts = append(parts, fmt.Sprintf("%d edges", edges))
	}
	if hidden > 0 {
		parts = append(parts, fmt.Sprintf("%d hidden", hidden))
	}
	parts = append(parts, d.Round(time.Millisecond).String())
	return StyleDim.Render(strings.Join(parts, " · "))
}
