package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

type missionRepository struct {
	mu       sync.RWMutex
	missions map[types.MissionID]*model.Mission
	seq      map[int]int
}

func newMissionRepository() *missionRepository {
	return &missionRepository{
		missions: make(map[types.MissionID]*model.Mission),
		seq:      make(map[int]int),
	}
}

func (r *missionRepository) Create(ctx context.Context, mission *model.Mission) (*model.Mission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()

	created := mission.Clone()
	if created.ID == "" {
		// skip sequence numbers already taken by pre-assigned IDs
		for {
			r.seq[now.Year()]++
			created.ID = model.FormatMissionID(now.Year(), r.seq[now.Year()])
			if _, exists := r.missions[created.ID]; !exists {
				break
			}
		}
	}
	if _, exists := r.missions[created.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "mission already exists", goerr.V("id", created.ID))
	}

	created.Status = created.Status.Normalize()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.missions[created.ID] = created
	return created.Clone(), nil
}

func (r *missionRepository) Get(ctx context.Context, id types.MissionID) (*model.Mission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mission, exists := r.missions[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "mission not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return mission.Clone(), nil
}

func (r *missionRepository) List(ctx context.Context) ([]*model.Mission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	missions := make([]*model.Mission, 0, len(r.missions))
	for _, m := range r.missions {
		missions = append(missions, m.Clone())
	}
	slices.SortFunc(missions, func(a, b *model.Mission) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})

	return missions, nil
}

func (r *missionRepository) Update(ctx context.Context, mission *model.Mission) (*model.Mission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.missions[mission.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "mission not found", goerr.V("id", mission.ID))
	}

	updated := mission.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.missions[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *missionRepository) Delete(ctx context.Context, id types.MissionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.missions[id]; !exists {
		return goerr.Wrap(ErrNotFound, "mission not found", goerr.V("id", id))
	}

	delete(r.missions, id)
	return nil
}
