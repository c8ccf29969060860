// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"gtodo/internal/service"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [ ] {NAME}\n", with "[x]" for done tasks.
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, Checkbox(task.Done), DisplayName(task.Name))
}

// FormatToggled formats the result of a toggle: "done: {NAME}" or "open: {NAME}".
func FormatToggled(w io.Writer, task service.Task) {
	state := "open"
	if task.Done {
		state = "done"
	}
	fmt.Fprintf(w, "%s: %s\n", state, DisplayName(task.Name))
}

// Checkbox renders the done flag.
func Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// DisplayName normalizes a task name for display.
// - Empty or whitespace-only names become "(untitled)"
// - Newlines are replaced with spaces
func DisplayName(name string) string {
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.ReplaceAll(name, "\n", " ")

	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}
