package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
	"github.com/secmon-lab/sortie/pkg/domain/model"
)

// ValidationIssue represents a single validation issue found during DB consistency check
type ValidationIssue struct {
	MissionID string
	RecordID  string
	Field     string
	Message   string
	Expected  string
	Actual    string
}

// ValidationResult holds the results of DB validation
type ValidationResult struct {
	Missions int
	Issues   []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// ValidateDB checks stored records against the configured risk matrix and the record invariants.
// Derived risk fields written under a different matrix show up as stale. It does NOT modify any data.
func (uc *UseCases) ValidateDB(ctx context.Context) (*ValidationResult, error) {
	result := &ValidationResult{}

	missions, err := uc.repo.Mission().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list missions")
	}
	result.Missions = len(missions)

	for _, mission := range missions {
		missionID := string(mission.ID)
		if err := mission.Validate(); err != nil {
			result.AddIssue(issueFromError(missionID, missionID, err))
		}

		entries, err := uc.repo.RiskEntry().ListByMission(ctx, mission.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list risk entries", goerr.V(MissionIDKey, mission.ID))
		}
		for _, entry := range entries {
			uc.validateRiskEntry(result, entry)
		}

		jsa, err := uc.repo.JSA().GetByMission(ctx, mission.ID)
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
		case err != nil:
			return nil, goerr.Wrap(err, "failed to get job safety assessment", goerr.V(MissionIDKey, mission.ID))
		default:
			if err := jsa.Validate(); err != nil {
				result.AddIssue(issueFromError(missionID, string(jsa.ID), err))
			}
		}

		plans, err := uc.repo.FlightPlan().ListByMission(ctx, mission.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list flight plans", goerr.V(MissionIDKey, mission.ID))
		}
		for _, plan := range plans {
			if err := plan.Validate(); err != nil {
				result.AddIssue(issueFromError(missionID, string(plan.ID()), err))
			}
		}
	}

	return result, nil
}

// validateRiskEntry compares the stored derived fields with a fresh computation.
// Review dates are not checked because stored entries legitimately age past them.
func (uc *UseCases) validateRiskEntry(result *ValidationResult, stored *model.RiskEntry) {
	missionID := string(stored.MissionID)
	fresh := stored.Clone()
	if err := fresh.Recompute(uc.policy.Matrix); err != nil {
		result.AddIssue(issueFromError(missionID, string(stored.ID), err))
		return
	}

	derived := []struct {
		field    string
		expected string
		actual   string
	}{
		{"initial_rating", fresh.InitialRating, stored.InitialRating},
		{"residual_rating", fresh.ResidualRating, stored.ResidualRating},
		{"residual_tier", string(fresh.ResidualTier), string(stored.ResidualTier)},
		{"acceptance_level", string(fresh.AcceptanceLevel), string(stored.AcceptanceLevel)},
		{"actions_required", fresh.ActionsRequired, stored.ActionsRequired},
	}
	for _, d := range derived {
		if d.expected != d.actual {
			result.AddIssue(ValidationIssue{
				MissionID: missionID,
				RecordID:  string(stored.ID),
				Field:     d.field,
				Message:   "stored value differs from the configured risk matrix",
				Expected:  d.expected,
				Actual:    d.actual,
			})
		}
	}

	if stored.Accepted && !fresh.AcceptanceSatisfied() {
		result.AddIssue(ValidationIssue{
			MissionID: missionID,
			RecordID:  string(stored.ID),
			Field:     "accepted_level",
			Message:   "acceptance does not cover the residual tier",
			Expected:  string(fresh.AcceptanceLevel),
			Actual:    string(stored.AcceptedLevel),
		})
	}
}

func issueFromError(missionID, recordID string, err error) ValidationIssue {
	field, rule := model.ValidationDetail(err)
	if rule == "" {
		rule = err.Error()
	}
	return ValidationIssue{
		MissionID: missionID,
		RecordID:  recordID,
		Field:     field,
		Message:   rule,
		Expected:  "valid record",
		Actual:    fmt.Sprintf("%v", err),
	}
}
