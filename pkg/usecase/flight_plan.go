package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"github.com/secmon-lab/sortie/pkg/service/conflict"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
)

type FlightPlanUseCase struct {
	repo     interfaces.Repository
	resolver conflict.Service
	clock    Clock
}

func NewFlightPlanUseCase(repo interfaces.Repository, resolver conflict.Service, clock Clock) *FlightPlanUseCase {
	return &FlightPlanUseCase{
		repo:     repo,
		resolver: resolver,
		clock:    clock,
	}
}

// SaveFlightPlan validates and stores a plan. New plans default to draft status.
func (uc *FlightPlanUseCase) SaveFlightPlan(ctx context.Context, plan model.FlightPlan) (model.FlightPlan, error) {
	common := plan.Common()
	if _, err := getPlanningMission(ctx, uc.repo, common.Mission); err != nil {
		return nil, err
	}

	if common.PlanStatus == "" {
		common.PlanStatus = types.FlightPlanStatusDraft
	}
	if err := plan.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid flight plan")
	}

	if common.PlanID == "" {
		created, err := uc.repo.FlightPlan().Create(ctx, plan)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create flight plan", goerr.V(MissionIDKey, common.Mission))
		}
		logging.From(ctx).Info("flight plan created",
			"flight_plan_id", created.ID(), "mission_id", created.MissionID(), "variant", created.Variant())
		return created, nil
	}

	current, err := uc.GetFlightPlan(ctx, common.PlanID)
	if err != nil {
		return nil, err
	}
	if current.MissionID() != common.Mission {
		return nil, goerr.Wrap(model.ErrRecordLocked, "flight plan cannot move to another mission",
			goerr.V(FlightPlanIDKey, common.PlanID),
			goerr.V(model.FieldKey, "mission_id"), goerr.V(model.RuleKey, "mission of a flight plan cannot change"))
	}

	updated, err := uc.repo.FlightPlan().Update(ctx, plan)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update flight plan", goerr.V(FlightPlanIDKey, common.PlanID))
	}
	return updated, nil
}

func (uc *FlightPlanUseCase) GetFlightPlan(ctx context.Context, id types.FlightPlanID) (model.FlightPlan, error) {
	plan, err := uc.repo.FlightPlan().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrFlightPlanNotFound, "flight plan not found", goerr.V(FlightPlanIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get flight plan", goerr.V(FlightPlanIDKey, id))
	}
	return plan, nil
}

func (uc *FlightPlanUseCase) ListFlightPlans(ctx context.Context, missionID types.MissionID) ([]model.FlightPlan, error) {
	if _, err := getMission(ctx, uc.repo, missionID); err != nil {
		return nil, err
	}
	plans, err := uc.repo.FlightPlan().ListByMission(ctx, missionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list flight plans", goerr.V(MissionIDKey, missionID))
	}
	return plans, nil
}

func (uc *FlightPlanUseCase) DeleteFlightPlan(ctx context.Context, id types.FlightPlanID) error {
	plan, err := uc.GetFlightPlan(ctx, id)
	if err != nil {
		return err
	}
	if _, err := getPlanningMission(ctx, uc.repo, plan.MissionID()); err != nil {
		return err
	}
	if err := uc.repo.FlightPlan().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete flight plan", goerr.V(FlightPlanIDKey, id))
	}
	return nil
}

// ValidateMissionPlans returns the conflicts among a mission's flight plans
func (uc *FlightPlanUseCase) ValidateMissionPlans(ctx context.Context, missionID types.MissionID) ([]model.ConflictFinding, error) {
	plans, err := uc.ListFlightPlans(ctx, missionID)
	if err != nil {
		return nil, err
	}

	findings := uc.resolver.Resolve(plans)
	for i := range findings {
		findings[i].Scope = missionID
	}
	return findings, nil
}

// FleetReport holds the conflicts found among plans departing in a window
type FleetReport struct {
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
	Plans int       `json:"plans"`

	// ByMission holds conflicts between plans of the same mission
	ByMission map[types.MissionID][]model.ConflictFinding `json:"by_mission"`

	// CrossMission holds conflicts between plans of different missions
	CrossMission []model.ConflictFinding `json:"cross_mission"`
}

// Count returns the total number of findings
func (r *FleetReport) Count() int {
	n := len(r.CrossMission)
	for _, f := range r.ByMission {
		n += len(f)
	}
	return n
}

// CheckFleet resolves conflicts for every plan whose window intersects [from, to), including plans
// that departed earlier and are still airborne. Missions are resolved in
// parallel, then all plans are compared once more to catch crew and assets shared across missions.
func (uc *FlightPlanUseCase) CheckFleet(ctx context.Context, from, to time.Time) (*FleetReport, error) {
	if !to.After(from) {
		return nil, goerr.Wrap(ErrInvalidWindow, "invalid fleet check window",
			goerr.V("from", from.Format(time.RFC3339)), goerr.V("to", to.Format(time.RFC3339)))
	}

	plans, err := uc.repo.FlightPlan().ListInWindow(ctx, from, to)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list flight plans in window")
	}

	scopes := make(map[types.MissionID][]model.FlightPlan)
	missionOf := make(map[types.FlightPlanID]types.MissionID, len(plans))
	for _, p := range plans {
		scopes[p.MissionID()] = append(scopes[p.MissionID()], p)
		missionOf[p.ID()] = p.MissionID()
	}

	byMission, err := uc.resolver.ResolveMany(ctx, scopes)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve mission conflicts")
	}

	report := &FleetReport{
		From:      from,
		To:        to,
		Plans:     len(plans),
		ByMission: make(map[types.MissionID][]model.ConflictFinding),
	}
	for id, findings := range byMission {
		if len(findings) > 0 {
			report.ByMission[id] = findings
		}
	}
	for _, f := range uc.resolver.Resolve(plans) {
		if missionOf[f.PlanIDs[0]] != missionOf[f.PlanIDs[1]] {
			report.CrossMission = append(report.CrossMission, f)
		}
	}

	logging.From(ctx).Info("fleet conflict check completed",
		"plans", report.Plans, "missions", len(scopes), "findings", report.Count())
	return report, nil
}
