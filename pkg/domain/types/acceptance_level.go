package types

import "fmt"

// AcceptanceLevel is the authority that may accept a residual risk
type AcceptanceLevel string

const (
	AcceptanceLevelChiefRemotePilot AcceptanceLevel = "chief_remote_pilot"
	AcceptanceLevelCEO              AcceptanceLevel = "ceo"
)

// AllAcceptanceLevels returns all valid acceptance levels, lowest authority first
func AllAcceptanceLevels() []AcceptanceLevel {
	return []AcceptanceLevel{
		AcceptanceLevelChiefRemotePilot,
		AcceptanceLevelCEO,
	}
}

// IsValid checks if the acceptance level is valid
func (a AcceptanceLevel) IsValid() bool {
	switch a {
	case AcceptanceLevelChiefRemotePilot,
		AcceptanceLevelCEO:
		return true
	default:
		return false
	}
}

// Authority returns the rank of the level. An unknown level has no authority.
func (a AcceptanceLevel) Authority() int {
	switch a {
	case AcceptanceLevelChiefRemotePilot:
		return 1
	case AcceptanceLevelCEO:
		return 2
	default:
		return 0
	}
}

// Covers reports whether a holder of this level may accept a risk requiring the given level
func (a AcceptanceLevel) Covers(required AcceptanceLevel) bool {
	return a.IsValid() && required.IsValid() && a.Authority() >= required.Authority()
}

// Label returns a human readable name
func (a AcceptanceLevel) Label() string {
	switch a {
	case AcceptanceLevelChiefRemotePilot:
		return "Chief Remote Pilot"
	case AcceptanceLevelCEO:
		return "CEO"
	default:
		return string(a)
	}
}

// String returns the string representation of the acceptance level
func (a AcceptanceLevel) String() string {
	return string(a)
}

// ParseAcceptanceLevel parses a string into an AcceptanceLevel
func ParseAcceptanceLevel(s string) (AcceptanceLevel, error) {
	level := AcceptanceLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid acceptance level: %s", s)
	}
	return level, nil
}
