package conflict

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

type resolver struct {
	groundElevationFt    int
	verticalSeparationFt int
	concurrency          int
}

// Option is a functional option for resolver configuration
type Option func(*resolver)

// WithGroundElevation sets the ground elevation assumed for drone plans
func WithGroundElevation(ft int) Option {
	return func(r *resolver) {
		r.groundElevationFt = ft
	}
}

// WithVerticalSeparation sets the minimum vertical separation. Pairs closer than this conflict.
func WithVerticalSeparation(ft int) Option {
	return func(r *resolver) {
		r.verticalSeparationFt = ft
	}
}

// WithConcurrency limits how many scopes ResolveMany evaluates at once
func WithConcurrency(n int) Option {
	return func(r *resolver) {
		r.concurrency = n
	}
}

// New creates a conflict resolver
func New(opts ...Option) Service {
	r := &resolver{
		groundElevationFt:    DefaultGroundElevationFt,
		verticalSeparationFt: DefaultVerticalSeparationFt,
		concurrency:          8,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve implements Service. See Service.Resolve for which pairs raise an asset conflict.
func (r *resolver) Resolve(plans []model.FlightPlan) []model.ConflictFinding {
	var findings []model.ConflictFinding

	for i := 0; i < len(plans); i++ {
		for j := i + 1; j < len(plans); j++ {
			findings = append(findings, r.comparePair(plans[i], plans[j])...)
		}
	}

	slices.SortFunc(findings, model.ConflictFinding.Compare)
	return slices.CompactFunc(findings, func(a, b model.ConflictFinding) bool {
		return a.Compare(b) == 0
	})
}

func (r *resolver) comparePair(p1, p2 model.FlightPlan) []model.ConflictFinding {
	w1, w2 := p1.Window(), p2.Window()
	if !w1.Complete() || !w2.Complete() {
		return nil
	}
	if !w1.Overlaps(w2) {
		return nil
	}

	pair := orderedPair(p1.ID(), p2.ID())
	findings := []model.ConflictFinding{{
		Kind:    types.ConflictKindTimingOverlap,
		PlanIDs: pair,
		Message: fmt.Sprintf("Flight plans %s and %s have overlapping times", p1.ID(), p2.ID()),
	}}

	if p1.Variant() != p2.Variant() {
		aircraft, drone := p1, p2
		if p1.Variant() == types.PlanVariantDrone {
			aircraft, drone = p2, p1
		}
		a := aircraft.AltitudeEnvelope(r.groundElevationFt).MSLFeet
		d := drone.AltitudeEnvelope(r.groundElevationFt).MSLFeet
		if absInt(a-d) < r.verticalSeparationFt {
			findings = append(findings, model.ConflictFinding{
				Kind:    types.ConflictKindAirspaceConflict,
				PlanIDs: pair,
				Message: fmt.Sprintf("Potential airspace conflict between %s at %dft MSL and %s at approximately %dft MSL",
					aircraft.ID(), a, drone.ID(), d),
			})
		}
	}

	if shared := sharedCrew(p1.CrewIDs(), p2.CrewIDs()); len(shared) > 0 {
		findings = append(findings, model.ConflictFinding{
			Kind:    types.ConflictKindPilotConflict,
			PlanIDs: pair,
			Message: fmt.Sprintf("Pilot conflict between %s and %s: %v assigned to both", p1.ID(), p2.ID(), shared),
		})
	}

	if p1.Variant() == p2.Variant() && p1.AssetID() != "" && p1.AssetID() == p2.AssetID() {
		findings = append(findings, model.ConflictFinding{
			Kind:    types.ConflictKindAssetConflict,
			PlanIDs: pair,
			Message: fmt.Sprintf("%s %s is assigned to both %s and %s", p1.Variant(), p1.AssetID(), p1.ID(), p2.ID()),
		})
	}

	return findings
}

func (r *resolver) ResolveMany(ctx context.Context, scopes map[types.MissionID][]model.FlightPlan) (map[types.MissionID][]model.ConflictFinding, error) {
	var (
		mu     sync.Mutex
		result = make(map[types.MissionID][]model.ConflictFinding, len(scopes))
	)

	eg, ctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		eg.SetLimit(r.concurrency)
	}

	for scope, plans := range scopes {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return goerr.Wrap(err, "conflict resolution cancelled", goerr.V(model.MissionIDKey, string(scope)))
			}

			findings := r.Resolve(plans)
			for i := range findings {
				findings[i].Scope = scope
			}

			mu.Lock()
			result[scope] = findings
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func orderedPair(a, b types.FlightPlanID) [2]types.FlightPlanID {
	if b < a {
		return [2]types.FlightPlanID{b, a}
	}
	return [2]types.FlightPlanID{a, b}
}

func sharedCrew(a, b []types.PersonID) []types.PersonID {
	set := make(map[types.PersonID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}

	var shared []types.PersonID
	for _, id := range b {
		if _, ok := set[id]; ok && !slices.Contains(shared, id) {
			shared = append(shared, id)
		}
	}
	slices.Sort(shared)
	return shared
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
