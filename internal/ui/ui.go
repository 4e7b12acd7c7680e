package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Out receives status lines. It defaults to stderr so rendered output on
// stdout stays clean.
var Out io.Writer = os.Stderr

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CA8A04"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// FormatError returns a styled multi-line error message.
func FormatError(title, detail, suggestion string) string {
	out := errorStyle.Render("Error: "+title) + "\n"
	if detail != "" {
		out += "  " + detail + "\n"
	}
	if suggestion != "" {
		out += "  " + hintStyle.Render("Hint: "+suggestion) + "\n"
	}
	return out
}

// CollectorDone prints a source that returned instance records. detail is
// shown dimmed after the name, typically the record count.
func CollectorDone(name, detail string) {
	msg := successStyle.Render("  OK ") + " " + name
	if detail != "" {
		msg += " " + dimStyle.Render(detail)
	}
	fmt.Fprintln(Out, msg)
}

// CollectorSkipped prints a source that is not configured.
func CollectorSkipped(name string) {
	fmt.Fprintf(Out, "  %s %s\n", dimStyle.Render("--"), dimStyle.Render(name+" (skipped)"))
}

// FileWritten reports an output file, dimmed when its content did not change.
func FileWritten(path string, changed bool) {
	if changed {
		fmt.Fprintf(Out, "  %s %s\n", successStyle.Render("WROTE"), path)
		return
	}
	fmt.Fprintf(Out, "  %s %s\n", dimStyle.Render("SAME "), dimStyle.Render(path+" (unchanged)"))
}

// Success prints a green success message.
func Success(msg string) {
	fmt.Fprintln(Out, successStyle.Render(msg))
}

// Warn prints a yellow warning message.
func Warn(msg string) {
	fmt.Fprintln(Out, warnStyle.Render("Warning: "+msg))
}

// Bold renders text in bold.
func Bold(s string) string {
	return boldStyle.Render(s)
}

// Hint renders text in dim italic.
func Hint(s string) string {
	return hintStyle.Render(s)
}

// ValidationOK prints a green check for a valid source.
func ValidationOK(field, detail string) {
	fmt.Fprintf(Out, "  %s %s: %s\n", successStyle.Render("OK "), field, detail)
}

// ValidationErr prints a red error for an invalid field.
func ValidationErr(field, message, suggestion string) {
	fmt.Fprintf(Out, "  %s %s: %s\n", errorStyle.Render("ERR"), field, message)
	if suggestion != "" {
		fmt.Fprintf(Out, "      %s\n", hintStyle.Render("Hint: "+suggestion))
	}
}
