package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
)

type RiskEntryUseCase struct {
	repo   interfaces.Repository
	matrix *model.RiskMatrix
	clock  Clock
}

func NewRiskEntryUseCase(repo interfaces.Repository, matrix *model.RiskMatrix, clock Clock) *RiskEntryUseCase {
	return &RiskEntryUseCase{
		repo:   repo,
		matrix: matrix,
		clock:  clock,
	}
}

// SaveRiskEntry recomputes the derived fields, validates and stores the entry. An entry without
// an ID is created; otherwise the stored entry is replaced. An accepted entry whose level does not
// cover its residual tier is rejected, including when an update raises the tier.
func (uc *RiskEntryUseCase) SaveRiskEntry(ctx context.Context, entry *model.RiskEntry) (*model.RiskEntry, error) {
	if _, err := getPlanningMission(ctx, uc.repo, entry.MissionID); err != nil {
		return nil, err
	}

	now := uc.clock()
	if err := entry.Validate(now); err != nil {
		return nil, goerr.Wrap(err, "invalid risk entry")
	}

	if err := entry.Recompute(uc.matrix); err != nil {
		return nil, goerr.Wrap(err, "failed to rate risk entry", goerr.V(RiskEntryIDKey, entry.ID))
	}
	if entry.Accepted {
		if err := checkAcceptanceLevel(entry); err != nil {
			return nil, err
		}
	}

	if entry.ID == "" {
		if entry.DateEntered.IsZero() {
			entry.DateEntered = now
		}
		created, err := uc.repo.RiskEntry().Create(ctx, entry)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create risk entry", goerr.V(MissionIDKey, entry.MissionID))
		}
		logging.From(ctx).Info("risk entry created",
			"risk_entry_id", created.ID, "mission_id", created.MissionID, "residual_tier", created.ResidualTier)
		return created, nil
	}

	current, err := uc.getRiskEntry(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	if current.MissionID != entry.MissionID {
		return nil, goerr.Wrap(model.ErrRecordLocked, "risk entry cannot move to another mission",
			goerr.V(RiskEntryIDKey, entry.ID),
			goerr.V(model.FieldKey, "mission_id"), goerr.V(model.RuleKey, "mission of a risk entry cannot change"))
	}

	updated, err := uc.repo.RiskEntry().Update(ctx, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk entry", goerr.V(RiskEntryIDKey, entry.ID))
	}
	return updated, nil
}

func (uc *RiskEntryUseCase) GetRiskEntry(ctx context.Context, id types.RiskEntryID) (*model.RiskEntry, error) {
	return uc.getRiskEntry(ctx, id)
}

func (uc *RiskEntryUseCase) ListRiskEntries(ctx context.Context, missionID types.MissionID) ([]*model.RiskEntry, error) {
	if _, err := getMission(ctx, uc.repo, missionID); err != nil {
		return nil, err
	}
	entries, err := uc.repo.RiskEntry().ListByMission(ctx, missionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk entries", goerr.V(MissionIDKey, missionID))
	}
	return entries, nil
}

// AcceptRiskEntry records acceptance of the residual risk. A level that does not cover the tier's
// required authority is rejected rather than escalated.
func (uc *RiskEntryUseCase) AcceptRiskEntry(ctx context.Context, id types.RiskEntryID, acceptor types.PersonID, level types.AcceptanceLevel) (*model.RiskEntry, error) {
	entry, err := uc.getRiskEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := getPlanningMission(ctx, uc.repo, entry.MissionID); err != nil {
		return nil, err
	}

	if err := entry.Accept(acceptor, level, uc.clock()); err != nil {
		return nil, goerr.Wrap(err, "failed to accept risk entry")
	}

	if err := checkAcceptanceLevel(entry); err != nil {
		return nil, err
	}

	updated, err := uc.repo.RiskEntry().Update(ctx, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store risk acceptance", goerr.V(RiskEntryIDKey, id))
	}

	logging.From(ctx).Info("risk entry accepted",
		"risk_entry_id", id, "accepted_by", acceptor, "level", level)
	return updated, nil
}

func (uc *RiskEntryUseCase) DeleteRiskEntry(ctx context.Context, id types.RiskEntryID) error {
	entry, err := uc.getRiskEntry(ctx, id)
	if err != nil {
		return err
	}
	if _, err := getPlanningMission(ctx, uc.repo, entry.MissionID); err != nil {
		return err
	}
	if err := uc.repo.RiskEntry().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete risk entry", goerr.V(RiskEntryIDKey, id))
	}
	return nil
}

// checkAcceptanceLevel rejects an acceptance whose level does not cover the residual tier.
// The entry must be recomputed first.
func checkAcceptanceLevel(entry *model.RiskEntry) error {
	required := model.AcceptanceLevelFor(entry.ResidualTier)
	if entry.AcceptedLevel.Covers(required) {
		return nil
	}
	return goerr.Wrap(model.ErrAcceptanceLevelMismatch, "acceptance level does not cover the residual tier",
		goerr.V(RiskEntryIDKey, entry.ID),
		goerr.V("required", string(required)),
		goerr.V("given", string(entry.AcceptedLevel)),
		goerr.V(model.FieldKey, "accepted_level"),
		goerr.V(model.RuleKey, required.Label()+" acceptance is required for "+string(entry.ResidualTier)+" risk"))
}

func (uc *RiskEntryUseCase) getRiskEntry(ctx context.Context, id types.RiskEntryID) (*model.RiskEntry, error) {
	entry, err := uc.repo.RiskEntry().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskEntryNotFound, "risk entry not found", goerr.V(RiskEntryIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get risk entry", goerr.V(RiskEntryIDKey, id))
	}
	return entry, nil
}
