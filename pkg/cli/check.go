package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/cli/config"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/service/conflict"
	"github.com/secmon-lab/sortie/pkg/service/readiness"
	"github.com/secmon-lab/sortie/pkg/usecase"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdCheck() *cli.Command {
	var missionPath string
	var at string
	var noColor bool
	var appCfg config.App

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "mission",
			Aliases:     []string{"m"},
			Usage:       "Path to mission TOML file (local path or gs://bucket/object)",
			Required:    true,
			Destination: &missionPath,
		},
		&cli.StringFlag{
			Name:        "at",
			Usage:       "Evaluate as of this RFC3339 time instead of now",
			Destination: &at,
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output",
			Destination: &noColor,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:    "check",
		Aliases: []string{"c"},
		Usage:   "Evaluate the approval readiness of a mission file without a database",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return goerr.Wrap(err, "invalid --at time", goerr.V("at", at))
				}
				now = t
			}
			if noColor {
				color.NoColor = true
			}

			policy, err := appCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load policy configuration")
			}

			file, err := config.LoadMissionFile(ctx, missionPath)
			if err != nil {
				return err
			}

			snapshot, err := file.ToSnapshot(policy.Matrix, config.ApprovalDefaults{
				RequireRiskAssessment: policy.Approval.RequireRiskAssessment,
				RequireJSA:            policy.Approval.RequireJSA,
			}, now)
			if err != nil {
				return goerr.Wrap(err, "failed to build mission", goerr.V("mission_file", missionPath))
			}

			issues := recordIssues(snapshot)

			resolver := conflict.New(
				conflict.WithGroundElevation(policy.Conflict.GroundElevationFt),
				conflict.WithVerticalSeparation(policy.Conflict.VerticalSeparationFt),
			)
			decision := readiness.New(resolver).Evaluate(snapshot)

			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			printReport(w, snapshot, decision, issues)

			logging.From(ctx).Info("Mission checked",
				"mission_id", snapshot.Mission.ID,
				"ready", decision.Ready,
				"reasons", len(decision.Reasons),
				"record_issues", len(issues),
			)

			if len(issues) > 0 {
				return goerr.New("mission file has invalid records",
					goerr.V("mission_id", string(snapshot.Mission.ID)), goerr.V("issues", len(issues)))
			}
			if !decision.Ready {
				return goerr.Wrap(usecase.ErrMissionNotReady, "mission is not ready for approval",
					goerr.V(usecase.MissionIDKey, string(snapshot.Mission.ID)),
					goerr.V("reasons", len(decision.Reasons)))
			}
			return nil
		},
	}
}

// recordIssues validates the mission, its assessment and its flight plans
func recordIssues(snapshot *model.MissionSnapshot) []error {
	var issues []error
	if err := snapshot.Mission.Validate(); err != nil {
		issues = append(issues, err)
	}
	if snapshot.JSA != nil {
		if err := snapshot.JSA.Validate(); err != nil {
			issues = append(issues, err)
		}
	}
	for _, plan := range snapshot.FlightPlans {
		if err := plan.Validate(); err != nil {
			issues = append(issues, err)
		}
	}
	return issues
}

func printReport(w io.Writer, snapshot *model.MissionSnapshot, decision *readiness.Decision, issues []error) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	m := snapshot.Mission
	_, _ = bold.Fprintf(w, "%s  %s\n", m.ID, m.Name)
	fmt.Fprintf(w, "  Overall risk: %s\n", displayTier(model.OverallRiskLevel(snapshot.RiskEntries)))
	fmt.Fprintf(w, "  Risk assessment: %s\n", model.RiskAssessmentSummary(m, snapshot.RiskEntries))
	fmt.Fprintf(w, "  JSA: %s\n", model.JSAStatus(m, snapshot.JSA))
	fmt.Fprintf(w, "  Flight plans: %d\n", len(snapshot.FlightPlans))

	for _, issue := range issues {
		field, rule := model.ValidationDetail(issue)
		_, _ = yellow.Fprintf(w, "  ! %s", issue.Error())
		if field != "" {
			fmt.Fprintf(w, " [%s: %s]", field, rule)
		}
		fmt.Fprintln(w)
	}

	if decision.Ready && len(issues) == 0 {
		_, _ = green.Fprintln(w, "READY for approval")
		return
	}

	_, _ = red.Fprintln(w, "NOT READY for approval")
	for _, reason := range decision.Reasons {
		fmt.Fprintf(w, "  - %s: %s\n", reason.Code, reason.Message)
	}
}

func displayTier(tier fmt.Stringer) string {
	if s := tier.String(); s != "" {
		return s
	}
	return "none"
}
