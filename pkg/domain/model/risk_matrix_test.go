package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

func TestRiskMatrix_Tier(t *testing.T) {
	m := model.DefaultRiskMatrix()

	testCases := []struct {
		name string
		l    types.Likelihood
		c    types.Consequence
		want types.RiskTier
	}{
		{"frequent catastrophic", types.LikelihoodFrequent, types.ConsequenceCatastrophic, types.RiskTierHigh},
		{"frequent minor", types.LikelihoodFrequent, types.ConsequenceMinor, types.RiskTierMedium},
		{"frequent negligible", types.LikelihoodFrequent, types.ConsequenceNegligible, types.RiskTierLow},
		{"occasional moderate", types.LikelihoodOccasional, types.ConsequenceModerate, types.RiskTierMedium},
		{"remote catastrophic", types.LikelihoodRemote, types.ConsequenceCatastrophic, types.RiskTierHigh},
		{"remote moderate", types.LikelihoodRemote, types.ConsequenceModerate, types.RiskTierMedium},
		{"improbable hazardous", types.LikelihoodImprobable, types.ConsequenceHazardous, types.RiskTierMedium},
		{"extremely improbable catastrophic", types.LikelihoodExtremelyImprobable, types.ConsequenceCatastrophic, types.RiskTierMedium},
		{"extremely improbable hazardous", types.LikelihoodExtremelyImprobable, types.ConsequenceHazardous, types.RiskTierLow},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tier, err := m.Tier(tc.l, tc.c)
			gt.NoError(t, err).Required()
			gt.Value(t, tier).Equal(tc.want)
		})
	}
}

func TestRiskMatrix_TierIsTotal(t *testing.T) {
	m := model.DefaultRiskMatrix()
	for _, l := range types.AllLikelihoods() {
		for _, c := range types.AllConsequences() {
			tier, err := m.Tier(l, c)
			gt.NoError(t, err).Required()
			gt.Bool(t, tier.IsValid()).True()
		}
	}
	gt.Array(t, m.Cells()).Length(25)
}

func TestRiskMatrix_TierRejectsOutOfDomain(t *testing.T) {
	m := model.DefaultRiskMatrix()

	_, err := m.Tier(types.Likelihood(6), types.ConsequenceMinor)
	gt.Error(t, err).Is(model.ErrInvalidLikelihood)

	_, err = m.Tier(types.LikelihoodRemote, types.Consequence("F"))
	gt.Error(t, err).Is(model.ErrInvalidConsequence)
}

func TestNewRiskMatrix(t *testing.T) {
	t.Run("default table round trips", func(t *testing.T) {
		m, err := model.NewRiskMatrix(model.DefaultMatrixCells())
		gt.NoError(t, err).Required()
		gt.Value(t, m.Cells()).Equal(model.DefaultRiskMatrix().Cells())
	})

	t.Run("missing cell fails fast", func(t *testing.T) {
		cells := model.DefaultMatrixCells()
		_, err := model.NewRiskMatrix(cells[1:])
		gt.Error(t, err).Is(model.ErrMatrixIncomplete)
		gt.Bool(t, model.IsValidation(err)).False()
	})

	t.Run("duplicate cell rejected", func(t *testing.T) {
		cells := append(model.DefaultMatrixCells(), model.MatrixCell{
			Likelihood:  types.LikelihoodRemote,
			Consequence: types.ConsequenceMinor,
			Tier:        types.RiskTierHigh,
		})
		_, err := model.NewRiskMatrix(cells)
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid tier rejected", func(t *testing.T) {
		cells := model.DefaultMatrixCells()
		cells[0].Tier = "extreme"
		_, err := model.NewRiskMatrix(cells)
		gt.Value(t, err).NotNil()
	})
}

func TestActionTextAndAcceptanceLevel(t *testing.T) {
	gt.String(t, model.ActionText(types.RiskTierHigh)).Contains("must be suspended")
	gt.String(t, model.ActionText(types.RiskTierMedium)).Contains("ALARP")
	gt.String(t, model.ActionText(types.RiskTierLow)).Contains("acceptable")

	gt.Value(t, model.AcceptanceLevelFor(types.RiskTierHigh)).Equal(types.AcceptanceLevelCEO)
	gt.Value(t, model.AcceptanceLevelFor(types.RiskTierMedium)).Equal(types.AcceptanceLevelChiefRemotePilot)
	gt.Value(t, model.AcceptanceLevelFor(types.RiskTierLow)).Equal(types.AcceptanceLevelChiefRemotePilot)
}

func TestRatingCode(t *testing.T) {
	gt.Value(t, model.RatingCode(types.LikelihoodRemote, types.ConsequenceModerate)).Equal("3C")
	gt.Value(t, model.RatingCode(types.LikelihoodFrequent, types.ConsequenceCatastrophic)).Equal("5A")
}
