package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

func runFlightPlanRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	aircraftPlan := func(mission types.MissionID, dep time.Time) *model.AircraftPlan {
		return &model.AircraftPlan{
			PlanCommon: model.PlanCommon{
				Mission:          mission,
				PlannedDeparture: ptr(dep),
				PlannedArrival:   ptr(dep.Add(time.Hour)),
			},
			Aircraft:         "VH-ABC",
			PilotInCommand:   "pilot-1",
			DepartureAirport: "YSSY",
			ArrivalAirport:   "YMML",
			CruiseAltitudeFt: 6500,
			FlightRules:      types.FlightRulesVFR,
			FuelLoadedL:      ptr(150.0),
		}
	}
	dronePlan := func(mission types.MissionID, dep time.Time) *model.DronePlan {
		return &model.DronePlan{
			PlanCommon: model.PlanCommon{
				Mission:          mission,
				PlannedDeparture: ptr(dep),
			},
			Drone:            "RPA-1",
			RemotePilot:      "rp-1",
			VisualObserver:   "vo-1",
			Operation:        types.DroneOperationVLOS,
			MaxAltitudeAGLFt: 100,
		}
	}

	t.Run("both variants round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a, err := repo.FlightPlan().Create(ctx, aircraftPlan("mission-1", base))
		gt.NoError(t, err).Required()
		d, err := repo.FlightPlan().Create(ctx, dronePlan("mission-1", base))
		gt.NoError(t, err).Required()
		gt.Value(t, a.Status()).Equal(types.FlightPlanStatusDraft)

		gotA, err := repo.FlightPlan().Get(ctx, a.ID())
		gt.NoError(t, err).Required()
		aircraft, ok := gotA.(*model.AircraftPlan)
		gt.Bool(t, ok).True()
		gt.Value(t, aircraft.CruiseAltitudeFt).Equal(6500)
		gt.Value(t, *aircraft.FuelLoadedL).Equal(150.0)

		gotD, err := repo.FlightPlan().Get(ctx, d.ID())
		gt.NoError(t, err).Required()
		drone, ok := gotD.(*model.DronePlan)
		gt.Bool(t, ok).True()
		gt.Value(t, drone.CrewIDs()).Equal([]types.PersonID{"rp-1", "vo-1"})
		gt.Value(t, drone.PlannedArrival).Nil()
	})

	t.Run("ListByMission", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.FlightPlan().Create(ctx, aircraftPlan("mission-1", base))
		gt.NoError(t, err).Required()
		_, err = repo.FlightPlan().Create(ctx, dronePlan("mission-1", base))
		gt.NoError(t, err).Required()
		_, err = repo.FlightPlan().Create(ctx, dronePlan("mission-2", base))
		gt.NoError(t, err).Required()

		plans, err := repo.FlightPlan().ListByMission(ctx, "mission-1")
		gt.NoError(t, err).Required()
		gt.Array(t, plans).Length(2)
	})

	t.Run("ListInWindow is half-open", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, dep := range []time.Time{base.Add(-time.Hour), base, base.Add(2 * time.Hour), base.Add(4 * time.Hour)} {
			_, err := repo.FlightPlan().Create(ctx, dronePlan("mission-1", dep))
			gt.NoError(t, err).Required()
		}

		plans, err := repo.FlightPlan().ListInWindow(ctx, base, base.Add(4*time.Hour))
		gt.NoError(t, err).Required()
		gt.Array(t, plans).Length(2)
	})

	t.Run("ListInWindow includes plans still airborne", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		airborne, err := repo.FlightPlan().Create(ctx, aircraftPlan("mission-1", base.Add(-30*time.Minute)))
		gt.NoError(t, err).Required()
		// lands exactly at the start of the window
		_, err = repo.FlightPlan().Create(ctx, aircraftPlan("mission-2", base.Add(-time.Hour)))
		gt.NoError(t, err).Required()

		plans, err := repo.FlightPlan().ListInWindow(ctx, base, base.Add(4*time.Hour))
		gt.NoError(t, err).Required()
		gt.Array(t, plans).Length(1).Required()
		gt.Value(t, plans[0].ID()).Equal(airborne.ID())
	})

	t.Run("Update cannot change variant", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.FlightPlan().Create(ctx, aircraftPlan("mission-1", base))
		gt.NoError(t, err).Required()

		replacement := dronePlan("mission-1", base)
		replacement.PlanID = created.ID()
		_, err = repo.FlightPlan().Update(ctx, replacement)
		gt.Value(t, err).NotNil()

		plan := created.(*model.AircraftPlan)
		plan.PlanStatus = types.FlightPlanStatusApproved
		updated, err := repo.FlightPlan().Update(ctx, plan)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status()).Equal(types.FlightPlanStatusApproved)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.FlightPlan().Create(ctx, dronePlan("mission-1", base))
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.FlightPlan().Delete(ctx, created.ID())).Required()

		_, err = repo.FlightPlan().Get(ctx, created.ID())
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}

func TestFlightPlanRepository(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			runFlightPlanRepositoryTest(t, b.newRepo)
		})
	}
}
