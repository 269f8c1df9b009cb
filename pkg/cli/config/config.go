package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	domainConfig "github.com/secmon-lab/sortie/pkg/domain/model/config"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the policy configuration file
type AppConfig struct {
	Conflict ConflictSection `toml:"conflict"`
	Approval ApprovalSection `toml:"approval"`
	Matrix   []MatrixRow     `toml:"matrix"`
}

// ConflictSection overrides conflict detection thresholds
type ConflictSection struct {
	GroundElevationFt    *int `toml:"ground_elevation_ft"`
	VerticalSeparationFt *int `toml:"vertical_separation_ft"`
}

// Validate checks if the ConflictSection is valid
func (c *ConflictSection) Validate() error {
	if c.GroundElevationFt != nil && *c.GroundElevationFt < 0 {
		return goerr.Wrap(ErrInvalidConfig, "ground_elevation_ft must not be negative",
			goerr.V(SectionKey, "conflict"), goerr.V("value", *c.GroundElevationFt))
	}
	if c.VerticalSeparationFt != nil && *c.VerticalSeparationFt <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "vertical_separation_ft must be positive",
			goerr.V(SectionKey, "conflict"), goerr.V("value", *c.VerticalSeparationFt))
	}
	return nil
}

// ApprovalSection overrides the requirement defaults of newly created missions
type ApprovalSection struct {
	RequireRiskAssessment *bool `toml:"require_risk_assessment"`
	RequireJSA            *bool `toml:"require_jsa"`
}

// MatrixRow is one cell of a custom risk matrix
type MatrixRow struct {
	Likelihood  int    `toml:"likelihood"`
	Consequence string `toml:"consequence"`
	Tier        string `toml:"tier"`
}

func (r *MatrixRow) toCell(idx int) (model.MatrixCell, error) {
	l, err := types.ParseLikelihood(r.Likelihood)
	if err != nil {
		return model.MatrixCell{}, goerr.Wrap(ErrInvalidMatrix, "invalid likelihood",
			goerr.V(IndexKey, idx), goerr.V("likelihood", r.Likelihood))
	}
	c, err := types.ParseConsequence(r.Consequence)
	if err != nil {
		return model.MatrixCell{}, goerr.Wrap(ErrInvalidMatrix, "invalid consequence",
			goerr.V(IndexKey, idx), goerr.V("consequence", r.Consequence))
	}
	tier, err := types.ParseRiskTier(r.Tier)
	if err != nil {
		return model.MatrixCell{}, goerr.Wrap(ErrInvalidMatrix, "invalid tier",
			goerr.V(IndexKey, idx), goerr.V("tier", r.Tier))
	}
	return model.MatrixCell{Likelihood: l, Consequence: c, Tier: tier}, nil
}

// buildMatrix returns nil when no rows are configured so the default matrix applies
func (a *AppConfig) buildMatrix() (*model.RiskMatrix, error) {
	if len(a.Matrix) == 0 {
		return nil, nil
	}

	cells := make([]model.MatrixCell, 0, len(a.Matrix))
	for i := range a.Matrix {
		cell, err := a.Matrix[i].toCell(i)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}

	matrix, err := model.NewRiskMatrix(cells)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidMatrix, "matrix must map every likelihood and consequence exactly once",
			goerr.V("cause", err.Error()))
	}
	return matrix, nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := a.Conflict.Validate(); err != nil {
		return err
	}
	if _, err := a.buildMatrix(); err != nil {
		return err
	}
	return nil
}

// ToDomainPolicy converts AppConfig to the domain Policy. Unset values keep their defaults.
func (a *AppConfig) ToDomainPolicy() (*domainConfig.Policy, error) {
	policy := domainConfig.DefaultPolicy()

	matrix, err := a.buildMatrix()
	if err != nil {
		return nil, err
	}
	if matrix != nil {
		policy.Matrix = matrix
	}

	if a.Conflict.GroundElevationFt != nil {
		policy.Conflict.GroundElevationFt = *a.Conflict.GroundElevationFt
	}
	if a.Conflict.VerticalSeparationFt != nil {
		policy.Conflict.VerticalSeparationFt = *a.Conflict.VerticalSeparationFt
	}
	if a.Approval.RequireRiskAssessment != nil {
		policy.Approval.RequireRiskAssessment = *a.Approval.RequireRiskAssessment
	}
	if a.Approval.RequireJSA != nil {
		policy.Approval.RequireJSA = *a.Approval.RequireJSA
	}

	return policy, nil
}

// LoadAppConfiguration loads the policy configuration from a local TOML file or a gs:// object
func LoadAppConfiguration(ctx context.Context, location string) (*AppConfig, error) {
	data, err := readSource(ctx, location)
	if err != nil {
		return nil, err
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, location), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, location))
	}

	return &config, nil
}

// App holds CLI flags for the policy configuration
type App struct {
	path string
}

// Flags returns CLI flags for the policy configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to policy TOML file (local path or gs://bucket/object). Built-in defaults apply when omitted",
			Sources:     cli.EnvVars("SORTIE_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured location
func (a *App) Path() string {
	return a.path
}

// Configure loads the policy, falling back to the built-in defaults when no location is set
func (a *App) Configure(ctx context.Context) (*domainConfig.Policy, error) {
	if a.path == "" {
		logging.From(ctx).Info("Using built-in policy defaults")
		return domainConfig.DefaultPolicy(), nil
	}

	appCfg, err := LoadAppConfiguration(ctx, a.path)
	if err != nil {
		return nil, err
	}

	policy, err := appCfg.ToDomainPolicy()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build policy", goerr.V(ConfigPathKey, a.path))
	}

	logging.From(ctx).Info("Policy loaded",
		"path", a.path,
		"custom_matrix", len(appCfg.Matrix) > 0,
		"ground_elevation_ft", policy.Conflict.GroundElevationFt,
		"vertical_separation_ft", policy.Conflict.VerticalSeparationFt,
	)
	return policy, nil
}
