package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrMissionNotFound    = errors.New("mission not found")
	ErrRiskEntryNotFound  = errors.New("risk entry not found")
	ErrJSANotFound        = errors.New("job safety assessment not found")
	ErrFlightPlanNotFound = errors.New("flight plan not found")

	// Conflict errors
	ErrMissionAlreadyExists = errors.New("mission already exists")

	// Status errors
	ErrMissionNotPlanning = errors.New("mission is not in planning status")
	ErrMissionNotReady    = errors.New("mission is not ready for approval")

	// Other errors
	ErrInvalidWindow = errors.New("window end must be after start")
)

// Context keys for error values
const (
	MissionIDKey    = "mission_id"
	RiskEntryIDKey  = "risk_entry_id"
	FlightPlanIDKey = "flight_plan_id"
	StatusKey       = "status"
)
