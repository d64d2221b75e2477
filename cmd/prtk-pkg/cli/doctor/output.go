// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var statusColors = map[Status]lipgloss.Color{
	StatusPass:  lipgloss.Color("2"),
	StatusFail:  lipgloss.Color("1"),
	StatusWarn:  lipgloss.Color("3"),
	StatusSkip:  lipgloss.Color("8"),
	StatusFixed: lipgloss.Color("6"),
}

// statusLabel renders "[PASS ]" and friends, colored when styled.
func statusLabel(status Status, styled bool) string {
	label := fmt.Sprintf("[%-5s]", strings.ToUpper(string(status)))
	if !styled {
		return label
	}
	return lipgloss.NewStyle().Foreground(statusColors[status]).Bold(status == StatusFail).Render(label)
}

// PrintChecklist writes check results as a human-readable checklist
// followed by a one-line summary. It reports whether any check failed;
// the caller turns that into the exit status.
func PrintChecklist(w io.Writer, results []Result, fixMode, styled bool) bool {
	anyFailed := false
	fixableCount := 0
	fixedCount := 0

	for _, result := range results {
		fmt.Fprintf(w, "%s  %-28s  %s\n", statusLabel(result.Status, styled), result.Name, result.Message)

		switch result.Status {
		case StatusFail:
			anyFailed = true
			if result.HasFix() {
				fixableCount++
			}
			if result.FixHint != "" {
				fmt.Fprintf(w, "         %-28s  fix: %s\n", "", result.FixHint)
			}
		case StatusFixed:
			fixedCount++
		}
	}

	fmt.Fprintln(w)

	switch {
	case anyFailed && !fixMode && fixableCount > 0:
		fmt.Fprintf(w, "Run with --fix to repair %d issue(s).\n", fixableCount)
	case anyFailed:
		fmt.Fprintln(w, "Some checks failed.")
	case fixedCount > 0:
		fmt.Fprintf(w, "%d issue(s) repaired.\n", fixedCount)
	default:
		fmt.Fprintln(w, "All checks passed.")
	}
	return anyFailed
}
