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

type JSAUseCase struct {
	repo  interfaces.Repository
	clock Clock
}

func NewJSAUseCase(repo interfaces.Repository, clock Clock) *JSAUseCase {
	return &JSAUseCase{
		repo:  repo,
		clock: clock,
	}
}

// SaveJSA validates and stores the mission's single job safety assessment, replacing any
// previous one. An authorized assessment whose signatures no longer satisfy the class is rejected.
func (uc *JSAUseCase) SaveJSA(ctx context.Context, jsa *model.JobSafetyAssessment) (*model.JobSafetyAssessment, error) {
	if _, err := getPlanningMission(ctx, uc.repo, jsa.MissionID); err != nil {
		return nil, err
	}

	if err := jsa.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid job safety assessment")
	}
	if jsa.FlightAuthorized && jsa.AuthorizedAt == nil {
		now := uc.clock()
		jsa.AuthorizedAt = &now
	}

	stored, err := uc.repo.JSA().Put(ctx, jsa)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store job safety assessment", goerr.V(MissionIDKey, jsa.MissionID))
	}
	return stored, nil
}

func (uc *JSAUseCase) GetJSA(ctx context.Context, missionID types.MissionID) (*model.JobSafetyAssessment, error) {
	jsa, err := uc.repo.JSA().GetByMission(ctx, missionID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrJSANotFound, "job safety assessment not found", goerr.V(MissionIDKey, missionID))
		}
		return nil, goerr.Wrap(err, "failed to get job safety assessment", goerr.V(MissionIDKey, missionID))
	}
	return jsa, nil
}

// AuthorizeJSA marks the mission's assessment as authorized for flight. The stored record is
// unchanged when required signatures are missing.
func (uc *JSAUseCase) AuthorizeJSA(ctx context.Context, missionID types.MissionID) (*model.JobSafetyAssessment, error) {
	if _, err := getPlanningMission(ctx, uc.repo, missionID); err != nil {
		return nil, err
	}

	jsa, err := uc.GetJSA(ctx, missionID)
	if err != nil {
		return nil, err
	}

	if err := jsa.Authorize(uc.clock()); err != nil {
		return nil, goerr.Wrap(err, "failed to authorize job safety assessment", goerr.V(MissionIDKey, missionID))
	}

	stored, err := uc.repo.JSA().Put(ctx, jsa)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store job safety assessment", goerr.V(MissionIDKey, missionID))
	}

	logging.From(ctx).Info("job safety assessment authorized",
		"mission_id", missionID, "operation_class", jsa.OperationClass)
	return stored, nil
}
