package types

import "fmt"

// RiskTier is the coarse classification derived from likelihood and consequence
type RiskTier string

const (
	RiskTierLow    RiskTier = "low"
	RiskTierMedium RiskTier = "medium"
	RiskTierHigh   RiskTier = "high"
)

// AllRiskTiers returns all valid risk tiers
func AllRiskTiers() []RiskTier {
	return []RiskTier{
		RiskTierLow,
		RiskTierMedium,
		RiskTierHigh,
	}
}

// IsValid checks if the risk tier is valid
func (t RiskTier) IsValid() bool {
	switch t {
	case RiskTierLow,
		RiskTierMedium,
		RiskTierHigh:
		return true
	default:
		return false
	}
}

// Rank orders tiers so that a higher value means a more severe tier
func (t RiskTier) Rank() int {
	switch t {
	case RiskTierLow:
		return 1
	case RiskTierMedium:
		return 2
	case RiskTierHigh:
		return 3
	default:
		return 0
	}
}

// String returns the string representation of the risk tier
func (t RiskTier) String() string {
	return string(t)
}

// ParseRiskTier parses a string into a RiskTier
func ParseRiskTier(s string) (RiskTier, error) {
	tier := RiskTier(s)
	if !tier.IsValid() {
		return "", fmt.Errorf("invalid risk tier: %s", s)
	}
	return tier, nil
}
