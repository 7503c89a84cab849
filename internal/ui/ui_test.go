package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
)

func sample() *domain.AggregateResult {
	results := []domain.ResolutionResult{
		{Name: "Adyen", Status: domain.StatusDown, StatusDetails: "Major outage (via status API)"},
		{Name: "Brevo", Status: domain.StatusDegraded, StatusDetails: "Scheduled maintenance (via status API)"},
		{Name: "Alma", Status: domain.StatusUnknown, StatusDetails: "no status API declared"},
		{Name: "Stripe", Status: domain.StatusOperational, StatusDetails: "All Systems Operational (via status API)"},
	}
	return &domain.AggregateResult{
		Services:  results,
		FetchedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		CycleID:   "cycle-1",
		Summary:   domain.Summarize(results),
	}
}

func TestSummaryCounts(t *testing.T) {
	out := Summary(sample())

	assert.Contains(t, out, "Incidents: 1")
	assert.Contains(t, out, "Maintenances: 1")
	assert.Contains(t, out, "Operational: 1")
	assert.Contains(t, out, "Total: 4")
	assert.Contains(t, out, "Incident · Adyen")
	assert.Contains(t, out, "Degraded · Brevo")
	assert.NotContains(t, out, "No incidents")
}

func TestSummaryWithoutIssues(t *testing.T) {
	results := []domain.ResolutionResult{{Name: "Stripe", Status: domain.StatusOperational}}
	out := Summary(&domain.AggregateResult{Services: results, Summary: domain.Summarize(results)})
	assert.Contains(t, out, "No incidents or maintenance reported.")
}

func TestBoardKeepsDisplayOrder(t *testing.T) {
	out := Board(sample(), time.UTC)

	iAdyen := strings.Index(out, "Adyen")
	iStripe := strings.LastIndex(out, "Stripe")
	assert.True(t, iAdyen >= 0 && iStripe > iAdyen)
	assert.Contains(t, out, "no status API declared")
	assert.Contains(t, out, "2026-03-01 10:30:00 UTC")
	assert.Contains(t, out, "cycle-1")
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Incident", Label(domain.StatusDown))
	assert.Equal(t, "Unknown", Label("bogus"))
}

func TestValidationOutput(t *testing.T) {
	var buf bytes.Buffer
	ValidationOK(&buf, "Stripe", "statuspage")
	ValidationErr(&buf, "services[2]", "name is required", "set a name")
	Warn(&buf, "unknown source type")

	out := buf.String()
	assert.Contains(t, out, "Stripe: statuspage")
	assert.Contains(t, out, "services[2]: name is required")
	assert.Contains(t, out, "Hint: set a name")
	assert.Contains(t, out, "Warning: unknown source type")
}

func TestFormatError(t *testing.T) {
	out := FormatError("catalog unreadable", "open services.yaml: no such file", "check STATUSWALL_SERVICE_FILE")
	assert.Contains(t, out, "Error: catalog unreadable")
	assert.Contains(t, out, "Hint: check STATUSWALL_SERVICE_FILE")
}
