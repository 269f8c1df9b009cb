package types

import "fmt"

// MissionStatus represents the lifecycle state of a mission
type MissionStatus string

const (
	MissionStatusPlanning  MissionStatus = "planning"
	MissionStatusApproved  MissionStatus = "approved"
	MissionStatusActive    MissionStatus = "active"
	MissionStatusCompleted MissionStatus = "completed"
	MissionStatusCancelled MissionStatus = "cancelled"
	MissionStatusSuspended MissionStatus = "suspended"
)

// AllMissionStatuses returns all valid mission statuses
func AllMissionStatuses() []MissionStatus {
	return []MissionStatus{
		MissionStatusPlanning,
		MissionStatusApproved,
		MissionStatusActive,
		MissionStatusCompleted,
		MissionStatusCancelled,
		MissionStatusSuspended,
	}
}

// IsValid checks if the mission status is valid
func (s MissionStatus) IsValid() bool {
	switch s {
	case MissionStatusPlanning,
		MissionStatusApproved,
		MissionStatusActive,
		MissionStatusCompleted,
		MissionStatusCancelled,
		MissionStatusSuspended:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as MissionStatusPlanning
func (s MissionStatus) Normalize() MissionStatus {
	if s == "" {
		return MissionStatusPlanning
	}
	return s
}

// IsLocked reports whether planning records of the mission should no longer change
func (s MissionStatus) IsLocked() bool {
	switch s {
	case MissionStatusApproved, MissionStatusActive, MissionStatusCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the mission status
func (s MissionStatus) String() string {
	return string(s)
}

// ParseMissionStatus parses a string into a MissionStatus
func ParseMissionStatus(s string) (MissionStatus, error) {
	status := MissionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid mission status: %s", s)
	}
	return status, nil
}
