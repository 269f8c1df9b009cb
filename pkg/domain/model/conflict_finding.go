package model

import (
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

// ConflictFinding is one detected problem between two flight plans
type ConflictFinding struct {
	Kind    types.ConflictKind    `json:"kind"`
	PlanIDs [2]types.FlightPlanID `json:"plan_ids"`
	Message string                `json:"message"`
	Scope   types.MissionID       `json:"mission_id,omitempty"`
}

// Involves reports whether the finding names the given plan
func (f ConflictFinding) Involves(id types.FlightPlanID) bool {
	return f.PlanIDs[0] == id || f.PlanIDs[1] == id
}

// Compare orders findings by plan pair and then by kind
func (f ConflictFinding) Compare(other ConflictFinding) int {
	for i := range f.PlanIDs {
		if f.PlanIDs[i] < other.PlanIDs[i] {
			return -1
		}
		if f.PlanIDs[i] > other.PlanIDs[i] {
			return 1
		}
	}
	return f.Kind.Order() - other.Kind.Order()
}
