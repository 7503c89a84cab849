// Package ui renders resolution cycles and catalog checks for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CA8A04"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

	badgeStyles = map[domain.Status]lipgloss.Style{
		domain.StatusDown:        errorStyle,
		domain.StatusDegraded:    warnStyle.Bold(true),
		domain.StatusOperational: successStyle,
		domain.StatusUnknown:     dimStyle,
	}
)

// statusLabels are the badge texts shown next to each service.
var statusLabels = map[domain.Status]string{
	domain.StatusOperational: "Operational",
	domain.StatusDegraded:    "Degraded",
	domain.StatusDown:        "Incident",
	domain.StatusUnknown:     "Unknown",
}

// Label returns the display label of a status. Unrecognized values read as unknown.
func Label(s domain.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[domain.StatusUnknown]
}

func badge(s domain.Status) string {
	style, ok := badgeStyles[s]
	if !ok {
		style = dimStyle
	}
	return style.Render(fmt.Sprintf("%-11s", Label(s)))
}

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

// Success prints a green success message.
func Success(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render(msg))
}

// Warn prints a yellow warning message.
func Warn(w io.Writer, msg string) {
	fmt.Fprintln(w, warnStyle.Render("Warning: "+msg))
}

// Bold renders text in bold.
func Bold(s string) string {
	return boldStyle.Render(s)
}

// Hint renders text in dim italic.
func Hint(s string) string {
	return hintStyle.Render(s)
}

// ValidationOK prints a green check for a valid entry.
func ValidationOK(w io.Writer, field, detail string) {
	fmt.Fprintf(w, "  %s %s: %s\n", successStyle.Render("OK "), field, detail)
}

// ValidationErr prints a red error for an invalid entry.
func ValidationErr(w io.Writer, field, message, suggestion string) {
	fmt.Fprintf(w, "  %s %s: %s\n", errorStyle.Render("ERR"), field, message)
	if suggestion != "" {
		fmt.Fprintf(w, "      %s\n", hintStyle.Render("Hint: "+suggestion))
	}
}

// Summary renders the counters shown above the board, followed by one pill
// per incident and maintenance.
func Summary(agg *domain.AggregateResult) string {
	s := agg.Summary

	metrics := []string{
		errorStyle.Render(fmt.Sprintf("Incidents: %d", len(s.Down))),
		warnStyle.Render(fmt.Sprintf("Maintenances: %d", len(s.Degraded))),
		successStyle.Render(fmt.Sprintf("Operational: %d", s.Operational)),
		boldStyle.Render(fmt.Sprintf("Total: %d", s.Total)),
	}

	var b strings.Builder
	b.WriteString(strings.Join(metrics, dimStyle.Render("  ·  ")))
	b.WriteString("\n")

	issues := make([]string, 0, len(s.Down)+len(s.Degraded))
	for _, name := range s.Down {
		issues = append(issues, errorStyle.Render(Label(domain.StatusDown)+" · "+name))
	}
	for _, name := range s.Degraded {
		issues = append(issues, warnStyle.Render(Label(domain.StatusDegraded)+" · "+name))
	}
	if len(issues) == 0 {
		b.WriteString(hintStyle.Render("No incidents or maintenance reported."))
	} else {
		b.WriteString(strings.Join(issues, "   "))
	}
	b.WriteString("\n")
	return b.String()
}

// Board renders a full cycle: summary, one line per service in display
// order, then the fetch time in loc.
func Board(agg *domain.AggregateResult, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	b.WriteString(Summary(agg))
	b.WriteString("\n")

	width := 0
	for _, r := range agg.Services {
		width = max(width, len(r.Name))
	}

	for _, r := range agg.Services {
		fmt.Fprintf(&b, "%s %s %s\n",
			badge(r.Status),
			boldStyle.Render(fmt.Sprintf("%-*s", width, r.Name)),
			dimStyle.Render(r.StatusDetails))
	}

	b.WriteString("\n")
	b.WriteString(Hint(fmt.Sprintf("Last updated: %s · cycle %s",
		agg.FetchedAt.In(loc).Format("2006-01-02 15:04:05 MST"), agg.CycleID)))
	b.WriteString("\n")
	return b.String()
}
