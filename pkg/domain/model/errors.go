package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Validation errors. They are caller-correctable and never retried.
var (
	ErrMissingRequired             = goerr.New("required field is missing")
	ErrInvalidLikelihood           = goerr.New("invalid likelihood")
	ErrInvalidConsequence          = goerr.New("invalid consequence")
	ErrReviewDateInPast            = goerr.New("review due date is in the past")
	ErrAcceptorRequired            = goerr.New("accepted risk requires an acceptor")
	ErrAcceptanceLevelMismatch     = goerr.New("acceptance level does not cover the risk tier")
	ErrSignatureRequired           = goerr.New("primary signature and date are required")
	ErrSecondarySignatureRequired  = goerr.New("secondary signature and date are required")
	ErrUnmitigatedHazardsRequired  = goerr.New("unmitigated hazards must be detailed when the procedure is not adequate")
	ErrInvalidOperationClass       = goerr.New("invalid operation class")
	ErrInvalidAirspaceClass        = goerr.New("invalid airspace class")
	ErrInvalidFlightType           = goerr.New("invalid flight type")
	ErrHeightLimitExceeded         = goerr.New("height limit exceeded")
	ErrInvalidTimeWindow           = goerr.New("arrival must be after departure")
	ErrInvalidFlightPlanStatus     = goerr.New("invalid flight plan status")
	ErrInvalidMissionSchedule      = goerr.New("mission end must be after start")
	ErrRecordLocked                = goerr.New("record belongs to a mission that is no longer in planning")
	ErrInvalidFlightPlanParameters = goerr.New("invalid flight plan parameters")
)

// ErrMatrixIncomplete signals a corrupted risk matrix. It is a configuration defect, not a validation failure.
var ErrMatrixIncomplete = goerr.New("risk matrix has no entry for likelihood and consequence")

var validationErrors = []error{
	ErrMissingRequired,
	ErrInvalidLikelihood,
	ErrInvalidConsequence,
	ErrReviewDateInPast,
	ErrAcceptorRequired,
	ErrAcceptanceLevelMismatch,
	ErrSignatureRequired,
	ErrSecondarySignatureRequired,
	ErrUnmitigatedHazardsRequired,
	ErrInvalidOperationClass,
	ErrInvalidAirspaceClass,
	ErrInvalidFlightType,
	ErrHeightLimitExceeded,
	ErrInvalidTimeWindow,
	ErrInvalidFlightPlanStatus,
	ErrInvalidMissionSchedule,
	ErrRecordLocked,
	ErrInvalidFlightPlanParameters,
}

// Context keys for error values
const (
	FieldKey        = "field"
	RuleKey         = "rule"
	MissionIDKey    = "mission_id"
	RiskEntryIDKey  = "risk_entry_id"
	FlightPlanIDKey = "flight_plan_id"
	JSAIDKey        = "jsa_id"
)

// IsValidation reports whether err is a caller-correctable validation failure
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ValidationDetail extracts the offending field and the violated rule from a validation error
func ValidationDetail(err error) (field, rule string) {
	var ge *goerr.Error
	if !errors.As(err, &ge) {
		return "", ""
	}
	values := ge.Values()
	if v, ok := values[FieldKey].(string); ok {
		field = v
	}
	if v, ok := values[RuleKey].(string); ok {
		rule = v
	}
	return field, rule
}

func invalid(sentinel error, field, rule string, opts ...goerr.Option) error {
	opts = append([]goerr.Option{goerr.V(FieldKey, field), goerr.V(RuleKey, rule)}, opts...)
	return goerr.Wrap(sentinel, rule, opts...)
}
