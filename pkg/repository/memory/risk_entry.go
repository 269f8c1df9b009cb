package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

type riskEntryRepository struct {
	mu      sync.RWMutex
	entries map[types.RiskEntryID]*model.RiskEntry
}

func newRiskEntryRepository() *riskEntryRepository {
	return &riskEntryRepository{
		entries: make(map[types.RiskEntryID]*model.RiskEntry),
	}
}

func (r *riskEntryRepository) Create(ctx context.Context, entry *model.RiskEntry) (*model.RiskEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := entry.Clone()
	if created.ID == "" {
		created.ID = types.RiskEntryID(uuid.NewString())
	}
	if _, exists := r.entries[created.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "risk entry already exists", goerr.V("id", created.ID))
	}

	now := time.Now().UTC()
	if created.DateEntered.IsZero() {
		created.DateEntered = now
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.entries[created.ID] = created
	return created.Clone(), nil
}

func (r *riskEntryRepository) Get(ctx context.Context, id types.RiskEntryID) (*model.RiskEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk entry not found", goerr.V("id", id))
	}
	return entry.Clone(), nil
}

func (r *riskEntryRepository) ListByMission(ctx context.Context, missionID types.MissionID) ([]*model.RiskEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*model.RiskEntry
	for _, e := range r.entries {
		if e.MissionID == missionID {
			entries = append(entries, e.Clone())
		}
	}
	slices.SortFunc(entries, func(a, b *model.RiskEntry) int {
		if c := a.DateEntered.Compare(b.DateEntered); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	return entries, nil
}

func (r *riskEntryRepository) Update(ctx context.Context, entry *model.RiskEntry) (*model.RiskEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.entries[entry.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk entry not found", goerr.V("id", entry.ID))
	}

	updated := entry.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.entries[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *riskEntryRepository) Delete(ctx context.Context, id types.RiskEntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; !exists {
		return goerr.Wrap(ErrNotFound, "risk entry not found", goerr.V("id", id))
	}

	delete(r.entries, id)
	return nil
}
