package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/model/config"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"github.com/secmon-lab/sortie/pkg/service/readiness"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

type MissionUseCase struct {
	repo   interfaces.Repository
	policy *config.Policy
	gate   *readiness.Gate
	clock  Clock
}

func NewMissionUseCase(repo interfaces.Repository, policy *config.Policy, gate *readiness.Gate, clock Clock) *MissionUseCase {
	return &MissionUseCase{
		repo:   repo,
		policy: policy,
		gate:   gate,
		clock:  clock,
	}
}

// CreateMissionInput describes a new mission. Nil requirement flags fall back to the approval policy.
type CreateMissionInput struct {
	ID          types.MissionID
	Name        string
	MissionType string
	Description string
	Commander   types.PersonID

	PlannedStart time.Time
	PlannedEnd   time.Time

	RiskAssessmentRequired *bool
	JSARequired            *bool
}

func (uc *MissionUseCase) CreateMission(ctx context.Context, input CreateMissionInput) (*model.Mission, error) {
	mission := model.NewMission(input.ID, input.Name, input.PlannedStart, input.PlannedEnd)
	mission.MissionType = input.MissionType
	mission.Description = input.Description
	mission.Commander = input.Commander
	mission.RiskAssessmentRequired = uc.policy.Approval.RequireRiskAssessment
	mission.JSARequired = uc.policy.Approval.RequireJSA
	if input.RiskAssessmentRequired != nil {
		mission.RiskAssessmentRequired = *input.RiskAssessmentRequired
	}
	if input.JSARequired != nil {
		mission.JSARequired = *input.JSARequired
	}

	if err := mission.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid mission")
	}

	created, err := uc.repo.Mission().Create(ctx, mission)
	if err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return nil, goerr.Wrap(ErrMissionAlreadyExists, "mission ID is already taken", goerr.V(MissionIDKey, mission.ID))
		}
		return nil, goerr.Wrap(err, "failed to create mission")
	}

	logging.From(ctx).Info("mission created", "mission_id", created.ID, "name", created.Name)
	return created, nil
}

func (uc *MissionUseCase) GetMission(ctx context.Context, id types.MissionID) (*model.Mission, error) {
	return getMission(ctx, uc.repo, id)
}

func (uc *MissionUseCase) ListMissions(ctx context.Context) ([]*model.Mission, error) {
	missions, err := uc.repo.Mission().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list missions")
	}
	return missions, nil
}

// Snapshot gathers the mission together with its risk entries, assessment and flight plans
func (uc *MissionUseCase) Snapshot(ctx context.Context, id types.MissionID) (*model.MissionSnapshot, error) {
	mission, err := getMission(ctx, uc.repo, id)
	if err != nil {
		return nil, err
	}

	snapshot := &model.MissionSnapshot{Mission: mission}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		entries, err := uc.repo.RiskEntry().ListByMission(egCtx, id)
		if err != nil {
			return goerr.Wrap(err, "failed to list risk entries", goerr.V(MissionIDKey, id))
		}
		snapshot.RiskEntries = entries
		return nil
	})
	eg.Go(func() error {
		jsa, err := uc.repo.JSA().GetByMission(egCtx, id)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil
			}
			return goerr.Wrap(err, "failed to get job safety assessment", goerr.V(MissionIDKey, id))
		}
		snapshot.JSA = jsa
		return nil
	})
	eg.Go(func() error {
		plans, err := uc.repo.FlightPlan().ListByMission(egCtx, id)
		if err != nil {
			return goerr.Wrap(err, "failed to list flight plans", goerr.V(MissionIDKey, id))
		}
		snapshot.FlightPlans = plans
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// EvaluateReadiness runs the readiness gate over the current stored state. Nothing is cached.
func (uc *MissionUseCase) EvaluateReadiness(ctx context.Context, id types.MissionID) (*readiness.Decision, error) {
	snapshot, err := uc.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.gate.Evaluate(snapshot), nil
}

// ApproveMission moves a planning mission to approved when the readiness gate passes.
// The decision is returned with ErrMissionNotReady so callers can show the reasons.
func (uc *MissionUseCase) ApproveMission(ctx context.Context, id types.MissionID) (*model.Mission, *readiness.Decision, error) {
	snapshot, err := uc.Snapshot(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	mission := snapshot.Mission
	if mission.Status.Normalize() != types.MissionStatusPlanning {
		return nil, nil, goerr.Wrap(ErrMissionNotPlanning, "only planning missions can be approved",
			goerr.V(MissionIDKey, id), goerr.V(StatusKey, mission.Status))
	}

	decision := uc.gate.Evaluate(snapshot)
	if !decision.Ready {
		codes := make([]string, 0, len(decision.Reasons))
		for _, r := range decision.Reasons {
			codes = append(codes, string(r.Code))
		}
		return nil, decision, goerr.Wrap(ErrMissionNotReady, "mission failed readiness evaluation",
			goerr.V(MissionIDKey, id), goerr.V("reasons", codes))
	}

	now := uc.clock()
	mission.Status = types.MissionStatusApproved
	mission.ApprovedAt = &now

	updated, err := uc.repo.Mission().Update(ctx, mission)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to approve mission", goerr.V(MissionIDKey, id))
	}

	logging.From(ctx).Info("mission approved", "mission_id", id)
	return updated, decision, nil
}

// MissionSummary is the display-oriented status of a mission's assessments
type MissionSummary struct {
	Mission          *model.Mission    `json:"mission"`
	OverallRiskLevel types.RiskTier    `json:"overall_risk_level,omitempty"`
	RiskAssessment   string            `json:"risk_assessment"`
	JSA              string            `json:"jsa"`
	FlightStatistics *FlightStatistics `json:"flight_statistics"`
}

// FlightStatistics counts a mission's flight plans
type FlightStatistics struct {
	Aircraft       int                            `json:"aircraft"`
	Drone          int                            `json:"drone"`
	ByStatus       map[types.FlightPlanStatus]int `json:"by_status"`
	PlannedMinutes int                            `json:"planned_minutes"`
}

func (uc *MissionUseCase) Summary(ctx context.Context, id types.MissionID) (*MissionSummary, error) {
	snapshot, err := uc.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	return &MissionSummary{
		Mission:          snapshot.Mission,
		OverallRiskLevel: model.OverallRiskLevel(snapshot.RiskEntries),
		RiskAssessment:   model.RiskAssessmentSummary(snapshot.Mission, snapshot.RiskEntries),
		JSA:              model.JSAStatus(snapshot.Mission, snapshot.JSA),
		FlightStatistics: flightStatistics(snapshot.FlightPlans),
	}, nil
}

func (uc *MissionUseCase) RiskAssessmentSummary(ctx context.Context, id types.MissionID) (string, error) {
	summary, err := uc.Summary(ctx, id)
	if err != nil {
		return "", err
	}
	return summary.RiskAssessment, nil
}

func (uc *MissionUseCase) OverallRiskLevel(ctx context.Context, id types.MissionID) (types.RiskTier, error) {
	entries, err := uc.repo.RiskEntry().ListByMission(ctx, id)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list risk entries", goerr.V(MissionIDKey, id))
	}
	return model.OverallRiskLevel(entries), nil
}

func (uc *MissionUseCase) FlightStatistics(ctx context.Context, id types.MissionID) (*FlightStatistics, error) {
	if _, err := getMission(ctx, uc.repo, id); err != nil {
		return nil, err
	}
	plans, err := uc.repo.FlightPlan().ListByMission(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list flight plans", goerr.V(MissionIDKey, id))
	}
	return flightStatistics(plans), nil
}

func flightStatistics(plans []model.FlightPlan) *FlightStatistics {
	stats := &FlightStatistics{ByStatus: map[types.FlightPlanStatus]int{}}
	for _, p := range plans {
		switch p.Variant() {
		case types.PlanVariantAircraft:
			stats.Aircraft++
		case types.PlanVariantDrone:
			stats.Drone++
		}
		stats.ByStatus[p.Status()]++
		stats.PlannedMinutes += int(p.Window().Duration() / time.Minute)
	}
	return stats
}

func getMission(ctx context.Context, repo interfaces.Repository, id types.MissionID) (*model.Mission, error) {
	mission, err := repo.Mission().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrMissionNotFound, "mission not found", goerr.V(MissionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get mission", goerr.V(MissionIDKey, id))
	}
	return mission, nil
}

// getPlanningMission returns the mission only when its records may still change
func getPlanningMission(ctx context.Context, repo interfaces.Repository, id types.MissionID) (*model.Mission, error) {
	mission, err := getMission(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if mission.IsLocked() {
		return nil, goerr.Wrap(model.ErrRecordLocked, "mission records can no longer change",
			goerr.V(MissionIDKey, id), goerr.V(StatusKey, mission.Status),
			goerr.V(model.FieldKey, "mission_id"), goerr.V(model.RuleKey, "mission is no longer in planning"))
	}
	return mission, nil
}
