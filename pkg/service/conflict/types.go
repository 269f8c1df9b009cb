package conflict

import (
	"context"

	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

// Service detects conflicts between flight plans
type Service interface {
	// Resolve compares every unordered pair of plans. The result is sorted and never contains
	// the same (pair, kind) twice. Only pairs with overlapping complete windows are compared.
	// Asset conflicts are raised only between plans of the same variant, since aircraft
	// registrations and drone identifiers are separate namespaces.
	Resolve(plans []model.FlightPlan) []model.ConflictFinding

	// ResolveMany resolves independent scopes concurrently. Findings carry their scope.
	ResolveMany(ctx context.Context, scopes map[types.MissionID][]model.FlightPlan) (map[types.MissionID][]model.ConflictFinding, error)
}

const (
	// DefaultGroundElevationFt is the assumed ground elevation used to convert drone heights to MSL
	DefaultGroundElevationFt = 1000
	// DefaultVerticalSeparationFt is the minimum vertical spacing between an aircraft and a drone
	DefaultVerticalSeparationFt = 1000
)
