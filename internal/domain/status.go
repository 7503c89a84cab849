package domain

import (
	"fmt"
	"strings"
)

// Status is the canonical status vocabulary reported for every service.
type Status string

const (
	StatusOperational Status = "operational"
	StatusDegraded    Status = "degraded"
	StatusDown        Status = "down"
	StatusUnknown     Status = "unknown"
)

// Statuses lists every canonical status, most urgent first.
var Statuses = []Status{StatusDown, StatusDegraded, StatusUnknown, StatusOperational}

func (s Status) String() string { return string(s) }

// Valid reports whether s is one of the canonical statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOperational, StatusDegraded, StatusDown, StatusUnknown:
		return true
	default:
		return false
	}
}

// Severity returns the sort rank of a status: lower is more urgent.
//
//	down(0) < degraded(1) < unknown(2) < operational(3)
//
// Unrecognized values rank like unknown.
func (s Status) Severity() int {
	switch s {
	case StatusDown:
		return 0
	case StatusDegraded:
		return 1
	case StatusOperational:
		return 3
	default:
		return 2
	}
}

// ParseStatus converts a configuration value into a canonical status.
// An empty string is accepted and returns "" so callers can tell "unset" apart.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" || s.Valid() {
		return s, nil
	}
	return "", fmt.Errorf("invalid status %q (want one of operational, degraded, down, unknown)", raw)
}

// MapIndicator maps a status-page severity indicator to a canonical status.
func MapIndicator(indicator string) Status {
	switch indicator {
	case "none":
		return StatusOperational
	case "maintenance", "minor":
		return StatusDegraded
	case "major", "critical":
		return StatusDown
	default:
		return StatusUnknown
	}
}
