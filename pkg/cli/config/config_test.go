package config_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sortie/pkg/cli/config"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0o600)).Required()
	return path
}

// matrixTOML renders the default matrix, optionally overriding one cell
func matrixTOML(skip string, override map[string]string) string {
	var b strings.Builder
	for _, cell := range model.DefaultMatrixCells() {
		code := model.RatingCode(cell.Likelihood, cell.Consequence)
		if code == skip {
			continue
		}
		tier := string(cell.Tier)
		if v, ok := override[code]; ok {
			tier = v
		}
		fmt.Fprintf(&b, "[[matrix]]\nlikelihood = %d\nconsequence = %q\ntier = %q\n\n",
			int(cell.Likelihood), string(cell.Consequence), tier)
	}
	return b.String()
}

func TestLoadAppConfiguration(t *testing.T) {
	ctx := context.Background()

	t.Run("overrides and custom matrix", func(t *testing.T) {
		body := `
[conflict]
ground_elevation_ft = 500
vertical_separation_ft = 2000

[approval]
require_jsa = false

` + matrixTOML("", map[string]string{"1A": "high"})

		cfg, err := config.LoadAppConfiguration(ctx, writeConfig(t, body))
		gt.NoError(t, err).Required()
		gt.Array(t, cfg.Matrix).Length(25)

		policy, err := cfg.ToDomainPolicy()
		gt.NoError(t, err).Required()
		gt.Number(t, policy.Conflict.GroundElevationFt).Equal(500)
		gt.Number(t, policy.Conflict.VerticalSeparationFt).Equal(2000)
		gt.Bool(t, policy.Approval.RequireRiskAssessment).True()
		gt.Bool(t, policy.Approval.RequireJSA).False()

		tier, err := policy.Matrix.Tier(types.LikelihoodExtremelyImprobable, types.ConsequenceCatastrophic)
		gt.NoError(t, err).Required()
		gt.Value(t, tier).Equal(types.RiskTierHigh)
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		cfg, err := config.LoadAppConfiguration(ctx, writeConfig(t, ""))
		gt.NoError(t, err).Required()

		policy, err := cfg.ToDomainPolicy()
		gt.NoError(t, err).Required()
		gt.Value(t, policy.Matrix).Equal(model.DefaultRiskMatrix())
		gt.Number(t, policy.Conflict.GroundElevationFt).Equal(1000)
		gt.Number(t, policy.Conflict.VerticalSeparationFt).Equal(1000)
		gt.Bool(t, policy.Approval.RequireJSA).True()
	})

	t.Run("incomplete matrix", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(ctx, writeConfig(t, matrixTOML("3C", nil)))
		gt.Error(t, err).Is(config.ErrInvalidMatrix)
	})

	t.Run("unknown tier", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(ctx, writeConfig(t, matrixTOML("", map[string]string{"3C": "severe"})))
		gt.Error(t, err).Is(config.ErrInvalidMatrix)
	})

	t.Run("negative elevation", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(ctx, writeConfig(t, "[conflict]\nground_elevation_ft = -1\n"))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("zero separation", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(ctx, writeConfig(t, "[conflict]\nvertical_separation_ft = 0\n"))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("malformed TOML", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(ctx, writeConfig(t, "[conflict\n"))
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(ctx, filepath.Join(t.TempDir(), "missing.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})
}

func TestApp_Configure(t *testing.T) {
	t.Run("defaults without path", func(t *testing.T) {
		var app config.App
		err := runWithFlags(t, app.Flags(), nil, func(ctx context.Context) error {
			policy, err := app.Configure(ctx)
			if err != nil {
				return err
			}
			gt.Value(t, policy.Matrix).Equal(model.DefaultRiskMatrix())
			return nil
		})
		gt.NoError(t, err)
	})

	t.Run("loads from flag", func(t *testing.T) {
		path := writeConfig(t, "[approval]\nrequire_risk_assessment = false\n")
		var app config.App
		err := runWithFlags(t, app.Flags(), []string{"--config", path}, func(ctx context.Context) error {
			policy, err := app.Configure(ctx)
			if err != nil {
				return err
			}
			gt.Bool(t, policy.Approval.RequireRiskAssessment).False()
			return nil
		})
		gt.NoError(t, err)
	})
}
