package interfaces

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

var (
	// ErrNotFound is returned by every repository implementation when a record does not exist
	ErrNotFound = goerr.New("not found")

	// ErrAlreadyExists is returned when a record is created with an ID that is already taken
	ErrAlreadyExists = goerr.New("already exists")
)

// Repository defines the interface for data persistence
type Repository interface {
	Mission() MissionRepository
	RiskEntry() RiskEntryRepository
	JSA() JSARepository
	FlightPlan() FlightPlanRepository
}

type MissionRepository interface {
	// Create stores a new mission. An empty ID is replaced with a generated one.
	Create(ctx context.Context, mission *model.Mission) (*model.Mission, error)

	// Get retrieves a mission by ID
	Get(ctx context.Context, id types.MissionID) (*model.Mission, error)

	// List retrieves all missions
	List(ctx context.Context) ([]*model.Mission, error)

	// Update replaces an existing mission
	Update(ctx context.Context, mission *model.Mission) (*model.Mission, error)

	// Delete deletes a mission by ID
	Delete(ctx context.Context, id types.MissionID) error
}

type RiskEntryRepository interface {
	Create(ctx context.Context, entry *model.RiskEntry) (*model.RiskEntry, error)
	Get(ctx context.Context, id types.RiskEntryID) (*model.RiskEntry, error)

	// ListByMission returns the entries of a mission ordered by date entered
	ListByMission(ctx context.Context, missionID types.MissionID) ([]*model.RiskEntry, error)

	Update(ctx context.Context, entry *model.RiskEntry) (*model.RiskEntry, error)
	Delete(ctx context.Context, id types.RiskEntryID) error
}

// JSARepository stores at most one job safety assessment per mission
type JSARepository interface {
	// Put creates or replaces the assessment of jsa.MissionID
	Put(ctx context.Context, jsa *model.JobSafetyAssessment) (*model.JobSafetyAssessment, error)

	// GetByMission returns ErrNotFound when the mission has no assessment
	GetByMission(ctx context.Context, missionID types.MissionID) (*model.JobSafetyAssessment, error)

	DeleteByMission(ctx context.Context, missionID types.MissionID) error
}

type FlightPlanRepository interface {
	Create(ctx context.Context, plan model.FlightPlan) (model.FlightPlan, error)
	Get(ctx context.Context, id types.FlightPlanID) (model.FlightPlan, error)
	ListByMission(ctx context.Context, missionID types.MissionID) ([]model.FlightPlan, error)

	// ListInWindow returns plans across all missions whose window intersects [from, to), including
	// plans that departed before from and are still airborne
	ListInWindow(ctx context.Context, from, to time.Time) ([]model.FlightPlan, error)

	Update(ctx context.Context, plan model.FlightPlan) (model.FlightPlan, error)
	Delete(ctx context.Context, id types.FlightPlanID) error
}
