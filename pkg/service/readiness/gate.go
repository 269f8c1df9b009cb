package readiness

import (
	"fmt"

	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

// ConflictResolver is the part of the conflict service the gate depends on
type ConflictResolver interface {
	Resolve(plans []model.FlightPlan) []model.ConflictFinding
}

// ReasonCode identifies why a mission is not ready
type ReasonCode string

const (
	ReasonRiskAssessmentMissing   ReasonCode = "risk_assessment_missing"
	ReasonRiskNotAccepted         ReasonCode = "risk_not_accepted"
	ReasonAcceptanceLevelMismatch ReasonCode = "acceptance_level_mismatch"
	ReasonJSAMissing              ReasonCode = "jsa_missing"
	ReasonJSANotApproved          ReasonCode = "jsa_not_approved"
	ReasonFlightPlanConflict      ReasonCode = "flight_plan_conflict"
)

// Reason is one unmet readiness condition
type Reason struct {
	Code        ReasonCode             `json:"code"`
	Message     string                 `json:"message"`
	RiskEntryID types.RiskEntryID      `json:"risk_entry_id,omitempty"`
	Finding     *model.ConflictFinding `json:"finding,omitempty"`
}

// Decision is the outcome of a readiness evaluation
type Decision struct {
	Ready   bool     `json:"ready"`
	Reasons []Reason `json:"reasons"`
}

// Gate decides whether a mission may be approved. It holds no state between evaluations.
type Gate struct {
	resolver ConflictResolver
}

// New creates a readiness gate
func New(resolver ConflictResolver) *Gate {
	return &Gate{resolver: resolver}
}

// Evaluate checks every readiness rule and reports all unmet conditions
func (g *Gate) Evaluate(snapshot *model.MissionSnapshot) *Decision {
	var reasons []Reason
	m := snapshot.Mission

	if m.RiskAssessmentRequired {
		reasons = append(reasons, evaluateRisks(snapshot.RiskEntries)...)
	}

	if m.JSARequired {
		switch {
		case snapshot.JSA == nil:
			reasons = append(reasons, Reason{
				Code:    ReasonJSAMissing,
				Message: "job safety assessment has not been created",
			})
		case !snapshot.JSA.IsFullyApproved():
			reasons = append(reasons, Reason{
				Code:    ReasonJSANotApproved,
				Message: "job safety assessment is awaiting authorization or signatures",
			})
		}
	}

	for _, f := range g.resolver.Resolve(snapshot.FlightPlans) {
		reasons = append(reasons, Reason{
			Code:    ReasonFlightPlanConflict,
			Message: f.Message,
			Finding: &f,
		})
	}

	return &Decision{
		Ready:   len(reasons) == 0,
		Reasons: reasons,
	}
}

// IsReadyForApproval reports whether Evaluate finds no unmet condition
func (g *Gate) IsReadyForApproval(snapshot *model.MissionSnapshot) bool {
	return g.Evaluate(snapshot).Ready
}

func evaluateRisks(entries []*model.RiskEntry) []Reason {
	if len(entries) == 0 {
		return []Reason{{
			Code:    ReasonRiskAssessmentMissing,
			Message: "risk assessment is required but no risk entries exist",
		}}
	}

	var reasons []Reason
	for _, e := range entries {
		required := model.AcceptanceLevelFor(e.ResidualTier)
		switch {
		case !e.Accepted:
			reasons = append(reasons, Reason{
				Code:        ReasonRiskNotAccepted,
				Message:     fmt.Sprintf("risk %q (%s) has not been accepted", e.Hazard, e.ResidualTier),
				RiskEntryID: e.ID,
			})
		case !e.AcceptanceSatisfied():
			reasons = append(reasons, Reason{
				Code: ReasonAcceptanceLevelMismatch,
				Message: fmt.Sprintf("risk %q (%s) was accepted at %s level but requires %s",
					e.Hazard, e.ResidualTier, e.AcceptedLevel.Label(), required.Label()),
				RiskEntryID: e.ID,
			})
		}
	}
	return reasons
}
