package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/cli/config"
	"github.com/secmon-lab/sortie/pkg/usecase"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var checkDB bool

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-db",
		Usage:       "Also check stored records against the policy",
		Sources:     cli.EnvVars("SORTIE_CHECK_DB"),
		Destination: &checkDB,
	})
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the policy configuration and optionally check DB consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Step 1: Load and validate the policy
			policy, err := appCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logger.Info("Configuration validation passed",
				"path", appCfg.Path(),
				"ground_elevation_ft", policy.Conflict.GroundElevationFt,
				"vertical_separation_ft", policy.Conflict.VerticalSeparationFt,
				"require_risk_assessment", policy.Approval.RequireRiskAssessment,
				"require_jsa", policy.Approval.RequireJSA,
			)

			if !checkDB {
				logger.Info("DB consistency check not requested, skipping")
				return nil
			}

			// Step 2: Check stored records
			repo, closeRepo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer closeRepo()

			uc := usecase.New(repo, usecase.WithPolicy(policy))
			result, err := uc.ValidateDB(ctx)
			if err != nil {
				return goerr.Wrap(err, "DB consistency check failed")
			}

			if result.HasIssues() {
				for _, issue := range result.Issues {
					logger.Warn("DB consistency issue found",
						"mission_id", issue.MissionID,
						"record_id", issue.RecordID,
						"field", issue.Field,
						"message", issue.Message,
						"expected", issue.Expected,
						"actual", issue.Actual,
					)
				}

				return fmt.Errorf("DB consistency check found %d issue(s)", len(result.Issues))
			}

			logger.Info("DB consistency check passed", "missions", result.Missions)
			return nil
		},
	}
}
