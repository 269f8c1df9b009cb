package memory

import (
	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = interfaces.ErrNotFound

	// ErrAlreadyExists is returned when a record ID is already taken
	ErrAlreadyExists = interfaces.ErrAlreadyExists
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	mission    *missionRepository
	riskEntry  *riskEntryRepository
	jsa        *jsaRepository
	flightPlan *flightPlanRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		mission:    newMissionRepository(),
		riskEntry:  newRiskEntryRepository(),
		jsa:        newJSARepository(),
		flightPlan: newFlightPlanRepository(),
	}
}

func (m *Memory) Mission() interfaces.MissionRepository {
	return m.mission
}

func (m *Memory) RiskEntry() interfaces.RiskEntryRepository {
	return m.riskEntry
}

func (m *Memory) JSA() interfaces.JSARepository {
	return m.jsa
}

func (m *Memory) FlightPlan() interfaces.FlightPlanRepository {
	return m.flightPlan
}
