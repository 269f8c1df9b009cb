package model

import (
	"fmt"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

// MatrixCell is one (likelihood, consequence) -> tier mapping
type MatrixCell struct {
	Likelihood  types.Likelihood
	Consequence types.Consequence
	Tier        types.RiskTier
}

type matrixKey struct {
	likelihood  types.Likelihood
	consequence types.Consequence
}

// RiskMatrix maps every (likelihood, consequence) pair to a risk tier. It is immutable once built.
type RiskMatrix struct {
	cells map[matrixKey]types.RiskTier
}

var defaultCells = []MatrixCell{
	{types.LikelihoodFrequent, types.ConsequenceCatastrophic, types.RiskTierHigh},
	{types.LikelihoodFrequent, types.ConsequenceHazardous, types.RiskTierHigh},
	{types.LikelihoodFrequent, types.ConsequenceModerate, types.RiskTierHigh},
	{types.LikelihoodFrequent, types.ConsequenceMinor, types.RiskTierMedium},
	{types.LikelihoodFrequent, types.ConsequenceNegligible, types.RiskTierLow},

	{types.LikelihoodOccasional, types.ConsequenceCatastrophic, types.RiskTierHigh},
	{types.LikelihoodOccasional, types.ConsequenceHazardous, types.RiskTierHigh},
	{types.LikelihoodOccasional, types.ConsequenceModerate, types.RiskTierMedium},
	{types.LikelihoodOccasional, types.ConsequenceMinor, types.RiskTierMedium},
	{types.LikelihoodOccasional, types.ConsequenceNegligible, types.RiskTierLow},

	{types.LikelihoodRemote, types.ConsequenceCatastrophic, types.RiskTierHigh},
	{types.LikelihoodRemote, types.ConsequenceHazardous, types.RiskTierMedium},
	{types.LikelihoodRemote, types.ConsequenceModerate, types.RiskTierMedium},
	{types.LikelihoodRemote, types.ConsequenceMinor, types.RiskTierLow},
	{types.LikelihoodRemote, types.ConsequenceNegligible, types.RiskTierLow},

	{types.LikelihoodImprobable, types.ConsequenceCatastrophic, types.RiskTierMedium},
	{types.LikelihoodImprobable, types.ConsequenceHazardous, types.RiskTierMedium},
	{types.LikelihoodImprobable, types.ConsequenceModerate, types.RiskTierLow},
	{types.LikelihoodImprobable, types.ConsequenceMinor, types.RiskTierLow},
	{types.LikelihoodImprobable, types.ConsequenceNegligible, types.RiskTierLow},

	{types.LikelihoodExtremelyImprobable, types.ConsequenceCatastrophic, types.RiskTierMedium},
	{types.LikelihoodExtremelyImprobable, types.ConsequenceHazardous, types.RiskTierLow},
	{types.LikelihoodExtremelyImprobable, types.ConsequenceModerate, types.RiskTierLow},
	{types.LikelihoodExtremelyImprobable, types.ConsequenceMinor, types.RiskTierLow},
	{types.LikelihoodExtremelyImprobable, types.ConsequenceNegligible, types.RiskTierLow},
}

var defaultMatrix = mustRiskMatrix(defaultCells)

// DefaultRiskMatrix returns the standard 5x5 matrix
func DefaultRiskMatrix() *RiskMatrix {
	return defaultMatrix
}

// DefaultMatrixCells returns a copy of the standard matrix table
func DefaultMatrixCells() []MatrixCell {
	return slices.Clone(defaultCells)
}

func mustRiskMatrix(cells []MatrixCell) *RiskMatrix {
	m, err := NewRiskMatrix(cells)
	if err != nil {
		panic(err)
	}
	return m
}

// NewRiskMatrix builds a matrix from cells. Every pair of the likelihood and consequence
// domains must be present exactly once.
func NewRiskMatrix(cells []MatrixCell) (*RiskMatrix, error) {
	m := &RiskMatrix{cells: make(map[matrixKey]types.RiskTier, len(cells))}

	for _, cell := range cells {
		if err := cell.Likelihood.Validate(); err != nil {
			return nil, goerr.Wrap(ErrInvalidLikelihood, "invalid matrix cell", goerr.V("likelihood", int(cell.Likelihood)))
		}
		if err := cell.Consequence.Validate(); err != nil {
			return nil, goerr.Wrap(ErrInvalidConsequence, "invalid matrix cell", goerr.V("consequence", string(cell.Consequence)))
		}
		if !cell.Tier.IsValid() {
			return nil, goerr.New("invalid risk tier in matrix cell",
				goerr.V("rating", RatingCode(cell.Likelihood, cell.Consequence)),
				goerr.V("tier", string(cell.Tier)))
		}

		key := matrixKey{cell.Likelihood, cell.Consequence}
		if _, exists := m.cells[key]; exists {
			return nil, goerr.New("duplicate matrix cell", goerr.V("rating", RatingCode(cell.Likelihood, cell.Consequence)))
		}
		m.cells[key] = cell.Tier
	}

	for _, l := range types.AllLikelihoods() {
		for _, c := range types.AllConsequences() {
			if _, ok := m.cells[matrixKey{l, c}]; !ok {
				return nil, goerr.Wrap(ErrMatrixIncomplete, "matrix is missing a cell", goerr.V("rating", RatingCode(l, c)))
			}
		}
	}

	return m, nil
}

// Tier returns the risk tier for the pair. A pair outside the declared domains, or a pair
// missing from the table, is an error rather than a silent default.
func (m *RiskMatrix) Tier(l types.Likelihood, c types.Consequence) (types.RiskTier, error) {
	if err := l.Validate(); err != nil {
		return "", goerr.Wrap(ErrInvalidLikelihood, "cannot derive risk tier", goerr.V("likelihood", int(l)))
	}
	if err := c.Validate(); err != nil {
		return "", goerr.Wrap(ErrInvalidConsequence, "cannot derive risk tier", goerr.V("consequence", string(c)))
	}

	tier, ok := m.cells[matrixKey{l, c}]
	if !ok {
		return "", goerr.Wrap(ErrMatrixIncomplete, "cannot derive risk tier", goerr.V("rating", RatingCode(l, c)))
	}
	return tier, nil
}

// Cells returns the table ordered by likelihood descending, then consequence A to E
func (m *RiskMatrix) Cells() []MatrixCell {
	cells := make([]MatrixCell, 0, len(m.cells))
	for key, tier := range m.cells {
		cells = append(cells, MatrixCell{Likelihood: key.likelihood, Consequence: key.consequence, Tier: tier})
	}
	slices.SortFunc(cells, func(a, b MatrixCell) int {
		if a.Likelihood != b.Likelihood {
			return int(b.Likelihood) - int(a.Likelihood)
		}
		if a.Consequence < b.Consequence {
			return -1
		}
		if a.Consequence > b.Consequence {
			return 1
		}
		return 0
	})
	return cells
}

// RatingCode renders a pair as its register code, e.g. "3C"
func RatingCode(l types.Likelihood, c types.Consequence) string {
	return fmt.Sprintf("%d%s", int(l), string(c))
}

// ActionText returns the mandated action for a tier
func ActionText(tier types.RiskTier) string {
	switch tier {
	case types.RiskTierHigh:
		return "Activity must be suspended. Risk considered unacceptable and requires new concept of operation."
	case types.RiskTierMedium:
		return "Risk should be mitigated to ALARP. Activity can continue only after acceptance from chief remote pilot or senior manager."
	case types.RiskTierLow:
		return "Risk is acceptable and activity may continue providing due consideration has been given to the activity."
	default:
		return ""
	}
}

// AcceptanceLevelFor returns the authority required to accept a tier
func AcceptanceLevelFor(tier types.RiskTier) types.AcceptanceLevel {
	if tier == types.RiskTierHigh {
		return types.AcceptanceLevelCEO
	}
	return types.AcceptanceLevelChiefRemotePilot
}
