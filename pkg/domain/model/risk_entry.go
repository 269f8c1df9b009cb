package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

// RiskEntry is one hazard line of a mission risk register. The rating codes, residual tier,
// acceptance level and action text are derived from the likelihood and consequence pairs by
// Recompute and must never be set independently.
type RiskEntry struct {
	ID              types.RiskEntryID `json:"id"`
	MissionID       types.MissionID   `json:"mission_id"`
	ReferenceNumber string            `json:"reference_number"`
	DateEntered     time.Time         `json:"date_entered"`

	Hazard           string `json:"hazard"`
	RiskDescription  string `json:"risk_description"`
	ExistingControls string `json:"existing_controls"`

	InitialLikelihood  types.Likelihood  `json:"initial_likelihood"`
	InitialConsequence types.Consequence `json:"initial_consequence"`
	InitialRating      string            `json:"initial_rating"`

	AdditionalControls string `json:"additional_controls"`

	ResidualLikelihood  types.Likelihood  `json:"residual_likelihood"`
	ResidualConsequence types.Consequence `json:"residual_consequence"`
	ResidualRating      string            `json:"residual_rating"`
	ResidualTier        types.RiskTier    `json:"residual_tier"`

	AcceptanceLevel types.AcceptanceLevel `json:"acceptance_level"`
	ActionsRequired string                `json:"actions_required"`

	RiskOwner     types.PersonID `json:"risk_owner"`
	ReviewDueDate time.Time      `json:"review_due_date"`

	Accepted      bool                  `json:"accepted"`
	AcceptedBy    types.PersonID        `json:"accepted_by,omitempty"`
	AcceptedLevel types.AcceptanceLevel `json:"accepted_level,omitempty"`
	AcceptedAt    *time.Time            `json:"accepted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recompute refreshes every derived field from the current likelihood and consequence pairs.
// On error the entry is left untouched.
func (r *RiskEntry) Recompute(matrix *RiskMatrix) error {
	if _, err := matrix.Tier(r.InitialLikelihood, r.InitialConsequence); err != nil {
		return invalidPair(err, "initial")
	}
	tier, err := matrix.Tier(r.ResidualLikelihood, r.ResidualConsequence)
	if err != nil {
		return invalidPair(err, "residual")
	}

	r.InitialRating = RatingCode(r.InitialLikelihood, r.InitialConsequence)
	r.ResidualRating = RatingCode(r.ResidualLikelihood, r.ResidualConsequence)
	r.ResidualTier = tier
	r.AcceptanceLevel = AcceptanceLevelFor(tier)
	r.ActionsRequired = ActionText(tier)
	return nil
}

func invalidPair(err error, stage string) error {
	return goerr.Wrap(err, "failed to derive "+stage+" rating",
		goerr.V(FieldKey, stage+"_rating"),
		goerr.V(RuleKey, stage+" likelihood and consequence must map to a risk tier"))
}

// SetInitial updates the initial assessment and recomputes derived fields
func (r *RiskEntry) SetInitial(matrix *RiskMatrix, l types.Likelihood, c types.Consequence) error {
	prevL, prevC := r.InitialLikelihood, r.InitialConsequence
	r.InitialLikelihood, r.InitialConsequence = l, c
	if err := r.Recompute(matrix); err != nil {
		r.InitialLikelihood, r.InitialConsequence = prevL, prevC
		return err
	}
	return nil
}

// SetResidual updates the residual assessment and recomputes derived fields
func (r *RiskEntry) SetResidual(matrix *RiskMatrix, l types.Likelihood, c types.Consequence) error {
	prevL, prevC := r.ResidualLikelihood, r.ResidualConsequence
	r.ResidualLikelihood, r.ResidualConsequence = l, c
	if err := r.Recompute(matrix); err != nil {
		r.ResidualLikelihood, r.ResidualConsequence = prevL, prevC
		return err
	}
	return nil
}

// Accept records acceptance of the residual risk by the given person at the given authority level.
// A level below the one the tier requires is recorded as is; AcceptanceSatisfied reports it.
func (r *RiskEntry) Accept(by types.PersonID, level types.AcceptanceLevel, at time.Time) error {
	if by == "" {
		return invalid(ErrAcceptorRequired, "accepted_by", "accepted risk requires an acceptor",
			goerr.V(RiskEntryIDKey, string(r.ID)))
	}
	if !level.IsValid() {
		return invalid(ErrMissingRequired, "accepted_level", "acceptance level must be chief_remote_pilot or ceo",
			goerr.V(RiskEntryIDKey, string(r.ID)), goerr.V("level", string(level)))
	}

	acceptedAt := at
	r.Accepted = true
	r.AcceptedBy = by
	r.AcceptedLevel = level
	r.AcceptedAt = &acceptedAt
	return nil
}

// Revoke clears a previous acceptance
func (r *RiskEntry) Revoke() {
	r.Accepted = false
	r.AcceptedBy = ""
	r.AcceptedLevel = ""
	r.AcceptedAt = nil
}

// Validate checks the record-level invariants against the given clock
func (r *RiskEntry) Validate(now time.Time) error {
	if r.Hazard == "" {
		return invalid(ErrMissingRequired, "hazard", "hazard is required", goerr.V(RiskEntryIDKey, string(r.ID)))
	}
	if !r.InitialLikelihood.IsValid() {
		return invalid(ErrInvalidLikelihood, "initial_likelihood", "likelihood must be between 1 and 5",
			goerr.V(RiskEntryIDKey, string(r.ID)), goerr.V("value", int(r.InitialLikelihood)))
	}
	if !r.ResidualLikelihood.IsValid() {
		return invalid(ErrInvalidLikelihood, "residual_likelihood", "likelihood must be between 1 and 5",
			goerr.V(RiskEntryIDKey, string(r.ID)), goerr.V("value", int(r.ResidualLikelihood)))
	}
	if !r.InitialConsequence.IsValid() {
		return invalid(ErrInvalidConsequence, "initial_consequence", "consequence must be one of A to E",
			goerr.V(RiskEntryIDKey, string(r.ID)), goerr.V("value", string(r.InitialConsequence)))
	}
	if !r.ResidualConsequence.IsValid() {
		return invalid(ErrInvalidConsequence, "residual_consequence", "consequence must be one of A to E",
			goerr.V(RiskEntryIDKey, string(r.ID)), goerr.V("value", string(r.ResidualConsequence)))
	}

	if r.ReviewDueDate.IsZero() {
		return invalid(ErrMissingRequired, "review_due_date", "review due date is required", goerr.V(RiskEntryIDKey, string(r.ID)))
	}
	if dateOf(r.ReviewDueDate, now.Location()).Before(dateOf(now, now.Location())) {
		return invalid(ErrReviewDateInPast, "review_due_date", "review date cannot be in the past",
			goerr.V(RiskEntryIDKey, string(r.ID)), goerr.V("review_due_date", r.ReviewDueDate.Format(time.DateOnly)))
	}

	if r.Accepted && r.AcceptedBy == "" {
		return invalid(ErrAcceptorRequired, "accepted_by", "accepted risks must have an accepting person",
			goerr.V(RiskEntryIDKey, string(r.ID)))
	}
	return nil
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// IsHighRisk reports whether the residual tier is High
func (r *RiskEntry) IsHighRisk() bool {
	return r.ResidualTier == types.RiskTierHigh
}

// RequiresCEOApproval reports whether acceptance must come from the CEO
func (r *RiskEntry) RequiresCEOApproval() bool {
	return r.AcceptanceLevel == types.AcceptanceLevelCEO
}

// AcceptanceSatisfied reports whether the entry is accepted by an authority at or above the
// level its residual tier requires.
func (r *RiskEntry) AcceptanceSatisfied() bool {
	if !r.Accepted || r.AcceptedBy == "" {
		return false
	}
	required := AcceptanceLevelFor(r.ResidualTier)
	return r.AcceptedLevel.Covers(required)
}

// Clone returns a deep copy
func (r *RiskEntry) Clone() *RiskEntry {
	if r == nil {
		return nil
	}
	c := *r
	if r.AcceptedAt != nil {
		at := *r.AcceptedAt
		c.AcceptedAt = &at
	}
	return &c
}
