package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

func TestParseLikelihood(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		want    types.Likelihood
		wantErr bool
	}{
		{"extremely improbable", 1, types.LikelihoodExtremelyImprobable, false},
		{"remote", 3, types.LikelihoodRemote, false},
		{"frequent", 5, types.LikelihoodFrequent, false},
		{"zero", 0, 0, true},
		{"six", 6, 0, true},
		{"negative", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseLikelihood(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
				gt.V(t, got).Equal(tt.want)
			}
		})
	}
}

func TestAllLikelihoods_Ascending(t *testing.T) {
	levels := types.AllLikelihoods()
	gt.A(t, levels).Length(5)
	for i := 1; i < len(levels); i++ {
		gt.B(t, levels[i] > levels[i-1]).
			Describef("%s should rank above %s", levels[i], levels[i-1]).
			True()
	}
	for _, l := range levels {
		gt.B(t, l.Description() != "").True()
	}
}

func TestParseConsequence(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Consequence
		wantErr bool
	}{
		{"catastrophic", "A", types.ConsequenceCatastrophic, false},
		{"negligible", "E", types.ConsequenceNegligible, false},
		{"lowercase accepted", "c", types.ConsequenceModerate, false},
		{"unknown letter", "F", "", true},
		{"empty", "", "", true},
		{"two letters", "AB", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseConsequence(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
				gt.V(t, got).Equal(tt.want)
			}
		})
	}
}

func TestConsequence_Severity(t *testing.T) {
	for _, c := range types.AllConsequences() {
		band := c.Severity()
		gt.B(t, band.Name != "").Describef("consequence %s has no name", c).True()
		gt.B(t, band.Cost != "").Describef("consequence %s has no cost band", c).True()
	}
	gt.S(t, types.ConsequenceCatastrophic.Severity().Name).Equal("Catastrophic")
}

func TestAcceptanceLevel_Covers(t *testing.T) {
	tests := []struct {
		name     string
		holder   types.AcceptanceLevel
		required types.AcceptanceLevel
		want     bool
	}{
		{"ceo covers ceo", types.AcceptanceLevelCEO, types.AcceptanceLevelCEO, true},
		{"ceo covers chief remote pilot", types.AcceptanceLevelCEO, types.AcceptanceLevelChiefRemotePilot, true},
		{"chief remote pilot covers itself", types.AcceptanceLevelChiefRemotePilot, types.AcceptanceLevelChiefRemotePilot, true},
		{"chief remote pilot does not cover ceo", types.AcceptanceLevelChiefRemotePilot, types.AcceptanceLevelCEO, false},
		{"empty holder covers nothing", "", types.AcceptanceLevelChiefRemotePilot, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, tt.holder.Covers(tt.required)).Equal(tt.want)
		})
	}
}

func TestParseRiskTier(t *testing.T) {
	for _, tier := range types.AllRiskTiers() {
		got, err := types.ParseRiskTier(tier.String())
		gt.NoError(t, err)
		gt.V(t, got).Equal(tier)
	}

	_, err := types.ParseRiskTier("extreme")
	gt.Error(t, err)
}

func TestFlightPlanStatus(t *testing.T) {
	gt.V(t, types.FlightPlanStatus("").Normalize()).Equal(types.FlightPlanStatusDraft)
	gt.B(t, types.FlightPlanStatusCompleted.IsClosed()).True()
	gt.B(t, types.FlightPlanStatusCancelled.IsClosed()).True()
	gt.B(t, types.FlightPlanStatusActive.IsClosed()).False()

	_, err := types.ParseFlightPlanStatus("flying")
	gt.Error(t, err)

	for _, s := range types.AllFlightPlanStatuses() {
		gt.B(t, s.IsValid()).Describef("status %s should be valid", s).True()
	}
}

func TestMissionStatus_IsLocked(t *testing.T) {
	gt.B(t, types.MissionStatusPlanning.IsLocked()).False()
	gt.B(t, types.MissionStatusApproved.IsLocked()).True()
	gt.V(t, types.MissionStatus("").Normalize()).Equal(types.MissionStatusPlanning)
}

func TestOperationClass_IsSimplest(t *testing.T) {
	gt.B(t, types.OperationClassSOC.IsSimplest()).True()
	gt.B(t, types.OperationClassReOC.IsSimplest()).False()
	gt.B(t, types.OperationClassCASAApproval.IsSimplest()).False()

	_, err := types.ParseOperationClass("part-107")
	gt.Error(t, err)
}

func TestConflictKind_Order(t *testing.T) {
	kinds := types.AllConflictKinds()
	for i, k := range kinds {
		gt.Number(t, k.Order()).Equal(i)
	}
	gt.Number(t, types.ConflictKind("unknown").Order()).Equal(len(kinds))
}
