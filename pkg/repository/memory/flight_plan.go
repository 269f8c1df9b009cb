package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

type flightPlanRepository struct {
	mu    sync.RWMutex
	plans map[types.FlightPlanID]model.FlightPlan
}

func newFlightPlanRepository() *flightPlanRepository {
	return &flightPlanRepository{
		plans: make(map[types.FlightPlanID]model.FlightPlan),
	}
}

func (r *flightPlanRepository) Create(ctx context.Context, plan model.FlightPlan) (model.FlightPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := model.CloneFlightPlan(plan)
	common := created.Common()
	if common.PlanID == "" {
		common.PlanID = types.FlightPlanID(uuid.NewString())
	}
	if _, exists := r.plans[common.PlanID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "flight plan already exists", goerr.V("id", common.PlanID))
	}

	now := time.Now().UTC()
	common.PlanStatus = common.PlanStatus.Normalize()
	common.CreatedAt = now
	common.UpdatedAt = now

	r.plans[common.PlanID] = created
	return model.CloneFlightPlan(created), nil
}

func (r *flightPlanRepository) Get(ctx context.Context, id types.FlightPlanID) (model.FlightPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, exists := r.plans[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "flight plan not found", goerr.V("id", id))
	}
	return model.CloneFlightPlan(plan), nil
}

func (r *flightPlanRepository) ListByMission(ctx context.Context, missionID types.MissionID) ([]model.FlightPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var plans []model.FlightPlan
	for _, p := range r.plans {
		if p.MissionID() == missionID {
			plans = append(plans, model.CloneFlightPlan(p))
		}
	}
	sortPlans(plans)
	return plans, nil
}

func (r *flightPlanRepository) ListInWindow(ctx context.Context, from, to time.Time) ([]model.FlightPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var plans []model.FlightPlan
	for _, p := range r.plans {
		if !p.Window().Intersects(from, to) {
			continue
		}
		plans = append(plans, model.CloneFlightPlan(p))
	}
	sortPlans(plans)
	return plans, nil
}

func (r *flightPlanRepository) Update(ctx context.Context, plan model.FlightPlan) (model.FlightPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.plans[plan.ID()]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "flight plan not found", goerr.V("id", plan.ID()))
	}
	if existing.Variant() != plan.Variant() {
		return nil, goerr.New("flight plan variant cannot change",
			goerr.V("id", plan.ID()), goerr.V("from", existing.Variant()), goerr.V("to", plan.Variant()))
	}

	updated := model.CloneFlightPlan(plan)
	updated.Common().CreatedAt = existing.Common().CreatedAt
	updated.Common().UpdatedAt = time.Now().UTC()

	r.plans[updated.ID()] = updated
	return model.CloneFlightPlan(updated), nil
}

func (r *flightPlanRepository) Delete(ctx context.Context, id types.FlightPlanID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plans[id]; !exists {
		return goerr.Wrap(ErrNotFound, "flight plan not found", goerr.V("id", id))
	}

	delete(r.plans, id)
	return nil
}

func sortPlans(plans []model.FlightPlan) {
	slices.SortFunc(plans, func(a, b model.FlightPlan) int {
		if a.ID() < b.ID() {
			return -1
		}
		if a.ID() > b.ID() {
			return 1
		}
		return 0
	})
}
