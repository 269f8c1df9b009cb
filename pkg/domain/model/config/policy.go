package config

import (
	"github.com/secmon-lab/sortie/pkg/domain/model"
)

// ConflictPolicy tunes flight plan conflict detection
type ConflictPolicy struct {
	GroundElevationFt    int
	VerticalSeparationFt int
}

// ApprovalPolicy holds defaults applied to newly created missions
type ApprovalPolicy struct {
	RequireRiskAssessment bool
	RequireJSA            bool
}

// Policy is the operator-tunable part of mission assessment
type Policy struct {
	Matrix   *model.RiskMatrix
	Conflict ConflictPolicy
	Approval ApprovalPolicy
}

// DefaultPolicy returns the standard matrix, 1000ft ground elevation and separation,
// and requires both assessments.
func DefaultPolicy() *Policy {
	return &Policy{
		Matrix: model.DefaultRiskMatrix(),
		Conflict: ConflictPolicy{
			GroundElevationFt:    1000,
			VerticalSeparationFt: 1000,
		},
		Approval: ApprovalPolicy{
			RequireRiskAssessment: true,
			RequireJSA:            true,
		},
	}
}
