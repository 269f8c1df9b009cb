package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

type jsaRepository struct {
	mu          sync.RWMutex
	assessments map[types.MissionID]*model.JobSafetyAssessment
}

func newJSARepository() *jsaRepository {
	return &jsaRepository{
		assessments: make(map[types.MissionID]*model.JobSafetyAssessment),
	}
}

func (r *jsaRepository) Put(ctx context.Context, jsa *model.JobSafetyAssessment) (*model.JobSafetyAssessment, error) {
	if jsa.MissionID == "" {
		return nil, goerr.New("job safety assessment has no mission")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := jsa.Clone()
	now := time.Now().UTC()
	if existing, exists := r.assessments[jsa.MissionID]; exists {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		if stored.ID == "" {
			stored.ID = types.JSAID(uuid.NewString())
		}
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.assessments[stored.MissionID] = stored
	return stored.Clone(), nil
}

func (r *jsaRepository) GetByMission(ctx context.Context, missionID types.MissionID) (*model.JobSafetyAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jsa, exists := r.assessments[missionID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "job safety assessment not found", goerr.V("mission_id", missionID))
	}
	return jsa.Clone(), nil
}

func (r *jsaRepository) DeleteByMission(ctx context.Context, missionID types.MissionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assessments[missionID]; !exists {
		return goerr.Wrap(ErrNotFound, "job safety assessment not found", goerr.V("mission_id", missionID))
	}

	delete(r.assessments, missionID)
	return nil
}
