package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/model/config"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"github.com/secmon-lab/sortie/pkg/usecase"
)

func TestValidateDB(t *testing.T) {
	ctx := context.Background()

	t.Run("clean database has no issues", func(t *testing.T) {
		_, uc := setupUseCases(t)
		m := createMission(t, uc)
		_, err := uc.RiskEntry.SaveRiskEntry(ctx, newRiskEntry(m.ID, types.LikelihoodRemote, types.ConsequenceMinor))
		gt.NoError(t, err).Required()
		_, err = uc.JSA.SaveJSA(ctx, newJSA(m.ID, types.OperationClassSOC))
		gt.NoError(t, err).Required()

		result, err := uc.ValidateDB(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, result.Missions).Equal(1)
		gt.Bool(t, result.HasIssues()).False()
	})

	t.Run("entries rated under another matrix are stale", func(t *testing.T) {
		repo, uc := setupUseCases(t)
		m := createMission(t, uc)
		_, err := uc.RiskEntry.SaveRiskEntry(ctx, newRiskEntry(m.ID, types.LikelihoodRemote, types.ConsequenceMinor))
		gt.NoError(t, err).Required()

		// every cell high
		cells := model.DefaultMatrixCells()
		for i := range cells {
			cells[i].Tier = types.RiskTierHigh
		}
		matrix, err := model.NewRiskMatrix(cells)
		gt.NoError(t, err).Required()
		policy := config.DefaultPolicy()
		policy.Matrix = matrix

		strict := usecase.New(repo, usecase.WithPolicy(policy))
		result, err := strict.ValidateDB(ctx)
		gt.NoError(t, err).Required()

		fields := map[string]bool{}
		for _, issue := range result.Issues {
			fields[issue.Field] = true
			gt.Value(t, issue.MissionID).Equal(string(m.ID))
		}
		gt.Bool(t, fields["residual_tier"]).True()
		gt.Bool(t, fields["acceptance_level"]).True()
		gt.Bool(t, fields["actions_required"]).True()
		gt.Bool(t, fields["residual_rating"]).False()
	})

	t.Run("invalid stored plan is reported", func(t *testing.T) {
		repo, uc := setupUseCases(t)
		m := createMission(t, uc)

		plan := newDronePlan(m.ID, testNow, "rp-1", "RPA-1")
		plan.EstimatedBatteryConsumptionPct = 95
		_, err := repo.FlightPlan().Create(ctx, plan)
		gt.NoError(t, err).Required()

		result, err := uc.ValidateDB(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, result.Issues).Length(1)
		gt.Value(t, result.Issues[0].Field).Equal("operational_parameters")
	})
}
