package types

import "fmt"

// FlightPlanStatus represents the workflow state of a flight plan
type FlightPlanStatus string

const (
	FlightPlanStatusDraft     FlightPlanStatus = "draft"
	FlightPlanStatusSubmitted FlightPlanStatus = "submitted"
	FlightPlanStatusApproved  FlightPlanStatus = "approved"
	FlightPlanStatusActive    FlightPlanStatus = "active"
	FlightPlanStatusCompleted FlightPlanStatus = "completed"
	FlightPlanStatusCancelled FlightPlanStatus = "cancelled"
)

// AllFlightPlanStatuses returns all valid flight plan statuses
func AllFlightPlanStatuses() []FlightPlanStatus {
	return []FlightPlanStatus{
		FlightPlanStatusDraft,
		FlightPlanStatusSubmitted,
		FlightPlanStatusApproved,
		FlightPlanStatusActive,
		FlightPlanStatusCompleted,
		FlightPlanStatusCancelled,
	}
}

// IsValid checks if the flight plan status is valid
func (s FlightPlanStatus) IsValid() bool {
	switch s {
	case FlightPlanStatusDraft,
		FlightPlanStatusSubmitted,
		FlightPlanStatusApproved,
		FlightPlanStatusActive,
		FlightPlanStatusCompleted,
		FlightPlanStatusCancelled:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as FlightPlanStatusDraft
func (s FlightPlanStatus) Normalize() FlightPlanStatus {
	if s == "" {
		return FlightPlanStatusDraft
	}
	return s
}

// IsClosed reports whether the plan is read-only (completed or cancelled)
func (s FlightPlanStatus) IsClosed() bool {
	return s == FlightPlanStatusCompleted || s == FlightPlanStatusCancelled
}

// String returns the string representation of the flight plan status
func (s FlightPlanStatus) String() string {
	return string(s)
}

// ParseFlightPlanStatus parses a string into a FlightPlanStatus
func ParseFlightPlanStatus(s string) (FlightPlanStatus, error) {
	status := FlightPlanStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid flight plan status: %s", s)
	}
	return status, nil
}
