package model

import (
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

// Mission is the unit of approval. Its risk entries, job safety assessment and flight plans are
// stored separately and gathered into a MissionSnapshot for evaluation.
type Mission struct {
	ID          types.MissionID     `json:"id"`
	Name        string              `json:"name"`
	MissionType string              `json:"mission_type"`
	Description string              `json:"description"`
	Status      types.MissionStatus `json:"status"`
	Commander   types.PersonID      `json:"commander,omitempty"`

	PlannedStart time.Time `json:"planned_start"`
	PlannedEnd   time.Time `json:"planned_end"`

	RiskAssessmentRequired bool `json:"risk_assessment_required"`
	JSARequired            bool `json:"jsa_required"`

	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FormatMissionID renders a generated mission identifier such as MSN-2026-000042
func FormatMissionID(year, seq int) types.MissionID {
	return types.MissionID(fmt.Sprintf("MSN-%d-%06d", year, seq))
}

// NewMission returns a mission in planning status with both assessments required
func NewMission(id types.MissionID, name string, start, end time.Time) *Mission {
	return &Mission{
		ID:                     id,
		Name:                   name,
		Status:                 types.MissionStatusPlanning,
		PlannedStart:           start,
		PlannedEnd:             end,
		RiskAssessmentRequired: true,
		JSARequired:            true,
	}
}

// Validate checks the mission record
func (m *Mission) Validate() error {
	if m.Name == "" {
		return invalid(ErrMissingRequired, "name", "mission name is required", goerr.V(MissionIDKey, string(m.ID)))
	}
	if m.Status != "" && !m.Status.IsValid() {
		return invalid(ErrMissingRequired, "status", "unknown mission status",
			goerr.V(MissionIDKey, string(m.ID)), goerr.V("value", string(m.Status)))
	}
	if !m.PlannedStart.IsZero() && !m.PlannedEnd.IsZero() && !m.PlannedEnd.After(m.PlannedStart) {
		return invalid(ErrInvalidMissionSchedule, "planned_end", "end date must be after start date",
			goerr.V(MissionIDKey, string(m.ID)))
	}
	return nil
}

// IsLocked reports whether records under the mission can no longer change
func (m *Mission) IsLocked() bool {
	return m.Status.Normalize().IsLocked()
}

// PlannedDuration returns the planned mission length
func (m *Mission) PlannedDuration() time.Duration {
	if m.PlannedStart.IsZero() || m.PlannedEnd.IsZero() {
		return 0
	}
	return m.PlannedEnd.Sub(m.PlannedStart)
}

// Clone returns a deep copy
func (m *Mission) Clone() *Mission {
	if m == nil {
		return nil
	}
	c := *m
	c.ApprovedAt = clonePtr(m.ApprovedAt)
	return &c
}

// MissionSnapshot is a mission together with everything its readiness depends on
type MissionSnapshot struct {
	Mission     *Mission
	RiskEntries []*RiskEntry
	JSA         *JobSafetyAssessment
	FlightPlans []FlightPlan
}

// OverallRiskLevel is the highest residual tier among entries, or empty when there are none
func OverallRiskLevel(entries []*RiskEntry) types.RiskTier {
	var overall types.RiskTier
	for _, e := range entries {
		if e.ResidualTier.Rank() > overall.Rank() {
			overall = e.ResidualTier
		}
	}
	return overall
}

// RiskAssessmentSummary describes risk register progress for display
func RiskAssessmentSummary(m *Mission, entries []*RiskEntry) string {
	if !m.RiskAssessmentRequired {
		return "Not Required"
	}
	if len(entries) == 0 {
		return "Pending - No Risk Registers"
	}

	accepted := 0
	for _, e := range entries {
		if e.Accepted {
			accepted++
		}
	}
	if accepted == len(entries) {
		return fmt.Sprintf("Complete - %d risks assessed and accepted", len(entries))
	}
	return fmt.Sprintf("Incomplete - %d/%d risks accepted", accepted, len(entries))
}

// JSAStatus describes job safety assessment progress for display
func JSAStatus(m *Mission, jsa *JobSafetyAssessment) string {
	switch {
	case !m.JSARequired:
		return "Not Required"
	case jsa == nil:
		return "Pending - JSA Not Created"
	case jsa.IsFullyApproved():
		return "Complete - JSA Approved"
	default:
		return "Incomplete - Awaiting Approvals"
	}
}
