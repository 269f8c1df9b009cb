package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"github.com/secmon-lab/sortie/pkg/repository/memory"
	"github.com/secmon-lab/sortie/pkg/usecase"
)

var testNow = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func setupUseCases(t *testing.T, opts ...usecase.Option) (*memory.Memory, *usecase.UseCases) {
	t.Helper()
	repo := memory.New()
	opts = append([]usecase.Option{usecase.WithClock(func() time.Time { return testNow })}, opts...)
	return repo, usecase.New(repo, opts...)
}

func createMission(t *testing.T, uc *usecase.UseCases) *model.Mission {
	t.Helper()
	m, err := uc.Mission.CreateMission(context.Background(), usecase.CreateMissionInput{
		Name:         "Powerline survey",
		MissionType:  "survey",
		PlannedStart: testNow.Add(24 * time.Hour),
		PlannedEnd:   testNow.Add(48 * time.Hour),
	})
	gt.NoError(t, err).Required()
	return m
}

func newRiskEntry(missionID types.MissionID, l types.Likelihood, c types.Consequence) *model.RiskEntry {
	return &model.RiskEntry{
		MissionID:           missionID,
		Hazard:              "Bird strike",
		InitialLikelihood:   types.LikelihoodFrequent,
		InitialConsequence:  types.ConsequenceCatastrophic,
		ResidualLikelihood:  l,
		ResidualConsequence: c,
		RiskOwner:           "crp-1",
		ReviewDueDate:       testNow.Add(30 * 24 * time.Hour),
	}
}

func newJSA(missionID types.MissionID, class types.OperationClass) *model.JobSafetyAssessment {
	return &model.JobSafetyAssessment{
		MissionID:        missionID,
		OperationClass:   class,
		AirspaceClass:    types.AirspaceClassG,
		FlightTypes:      []types.FlightTypeTag{types.FlightTypeVLOS, types.FlightTypeDay},
		MaxHeightAGLFt:   120,
		SOPAdequate:      true,
		PrimarySignature: model.Signature{Signer: "crp-1", Date: ptr(testNow)},
	}
}

func newDronePlan(missionID types.MissionID, dep time.Time, pilot types.PersonID, drone types.AssetID) *model.DronePlan {
	return &model.DronePlan{
		PlanCommon: model.PlanCommon{
			Mission:          missionID,
			PlannedDeparture: ptr(dep),
			PlannedArrival:   ptr(dep.Add(time.Hour)),
		},
		Drone:            drone,
		RemotePilot:      pilot,
		Operation:        types.DroneOperationVLOS,
		MaxAltitudeAGLFt: 100,
	}
}

func newAircraftPlan(missionID types.MissionID, dep time.Time, pilot types.PersonID, cruiseFt int) *model.AircraftPlan {
	return &model.AircraftPlan{
		PlanCommon: model.PlanCommon{
			Mission:          missionID,
			PlannedDeparture: ptr(dep),
			PlannedArrival:   ptr(dep.Add(2 * time.Hour)),
		},
		Aircraft:         "VH-ABC",
		PilotInCommand:   pilot,
		DepartureAirport: "YSSY",
		ArrivalAirport:   "YMML",
		CruiseAltitudeFt: cruiseFt,
		FlightRules:      types.FlightRulesVFR,
	}
}

func TestNew_Policy(t *testing.T) {
	_, uc := setupUseCases(t)
	gt.Value(t, uc.Policy().Conflict.VerticalSeparationFt).Equal(1000)
	gt.Value(t, uc.Resolver()).NotNil()
	gt.Value(t, uc.Mission).NotNil()
	gt.Value(t, uc.RiskEntry).NotNil()
	gt.Value(t, uc.JSA).NotNil()
	gt.Value(t, uc.FlightPlan).NotNil()
}
