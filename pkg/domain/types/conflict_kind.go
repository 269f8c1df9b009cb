package types

// ConflictKind classifies a scheduling conflict between two flight plans
type ConflictKind string

const (
	ConflictKindTimingOverlap    ConflictKind = "timing_overlap"
	ConflictKindAirspaceConflict ConflictKind = "airspace_conflict"
	ConflictKindPilotConflict    ConflictKind = "pilot_conflict"
	ConflictKindAssetConflict    ConflictKind = "asset_conflict"
)

// AllConflictKinds returns all kinds in the order findings are emitted for a pair
func AllConflictKinds() []ConflictKind {
	return []ConflictKind{
		ConflictKindTimingOverlap,
		ConflictKindAirspaceConflict,
		ConflictKindPilotConflict,
		ConflictKindAssetConflict,
	}
}

// Order returns the position of the kind within AllConflictKinds
func (k ConflictKind) Order() int {
	for i, kind := range AllConflictKinds() {
		if kind == k {
			return i
		}
	}
	return len(AllConflictKinds())
}

func (k ConflictKind) String() string {
	return string(k)
}

// PlanVariant tells the two flight plan shapes apart
type PlanVariant string

const (
	PlanVariantAircraft PlanVariant = "aircraft"
	PlanVariantDrone    PlanVariant = "drone"
)

// IsValid checks if the variant is valid
func (v PlanVariant) IsValid() bool {
	return v == PlanVariantAircraft || v == PlanVariantDrone
}

func (v PlanVariant) String() string {
	return string(v)
}
