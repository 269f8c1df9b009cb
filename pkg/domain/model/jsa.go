package model

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

// MaxHeightAGLFeet is the regulatory ceiling for a job safety assessment
const MaxHeightAGLFeet = 400

// Signature is a dated sign-off. The primary signatory is the chief remote pilot and the
// secondary signatory is the remote pilot.
type Signature struct {
	Signer types.PersonID `json:"signer,omitempty"`
	Date   *time.Time     `json:"date,omitempty"`
}

// IsComplete reports whether both signer and date are present
func (s Signature) IsComplete() bool {
	return s.Signer != "" && s.Date != nil && !s.Date.IsZero()
}

// JobSafetyAssessment is the single pre-flight hazard review of a mission
type JobSafetyAssessment struct {
	ID        types.JSAID     `json:"id"`
	MissionID types.MissionID `json:"mission_id"`

	OperationClass types.OperationClass  `json:"operation_class"`
	AirspaceClass  types.AirspaceClass   `json:"airspace_class"`
	FlightTypes    []types.FlightTypeTag `json:"flight_types"`

	MaxHeightAGLFt  int  `json:"max_height_agl_ft"`
	MaxAltitudeAMSL *int `json:"max_altitude_amsl_ft,omitempty"`

	OperatingArea          string `json:"operating_area"`
	NearbyAerodromes       string `json:"nearby_aerodromes"`
	AirspaceHazards        string `json:"airspace_hazards"`
	GroundHazards          string `json:"ground_hazards"`
	SOPAdequate            bool   `json:"sop_adequate"`
	UnmitigatedHazards     string `json:"unmitigated_hazards"`
	AdditionalRestrictions string `json:"additional_restrictions"`

	FlightAuthorized   bool       `json:"flight_authorized"`
	AuthorizedAt       *time.Time `json:"authorized_at,omitempty"`
	PrimarySignature   Signature  `json:"primary_signature"`
	SecondarySignature Signature  `json:"secondary_signature"`
	ReviewDate         *time.Time `json:"review_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSOCOperation reports whether the operation uses the simplest certification class
func (j *JobSafetyAssessment) IsSOCOperation() bool {
	return j.OperationClass.IsSimplest()
}

// RequiresCASAApproval reports whether the class needs regulator approval
func (j *JobSafetyAssessment) RequiresCASAApproval() bool {
	return j.OperationClass == types.OperationClassCASAApproval
}

func (j *JobSafetyAssessment) checkSignatures() error {
	if !j.PrimarySignature.IsComplete() {
		return invalid(ErrSignatureRequired, "primary_signature",
			"chief remote pilot signature and date are required for flight authorization",
			goerr.V(JSAIDKey, string(j.ID)))
	}
	if !j.IsSOCOperation() && !j.SecondarySignature.IsComplete() {
		return invalid(ErrSecondarySignatureRequired, "secondary_signature",
			"remote pilot signature and date are required for non-SOC operations",
			goerr.V(JSAIDKey, string(j.ID)), goerr.V("operation_class", string(j.OperationClass)))
	}
	return nil
}

// SetAuthorized changes the authorization flag. Authorizing requires the signatures the
// operation class demands; on failure the flag is left unchanged.
func (j *JobSafetyAssessment) SetAuthorized(authorized bool, now time.Time) error {
	if !authorized {
		j.FlightAuthorized = false
		j.AuthorizedAt = nil
		return nil
	}
	if err := j.checkSignatures(); err != nil {
		return err
	}
	at := now
	j.FlightAuthorized = true
	j.AuthorizedAt = &at
	return nil
}

// Authorize is SetAuthorized(true, now)
func (j *JobSafetyAssessment) Authorize(now time.Time) error {
	return j.SetAuthorized(true, now)
}

// Validate checks every record-level invariant
func (j *JobSafetyAssessment) Validate() error {
	if j.MissionID == "" {
		return invalid(ErrMissingRequired, "mission_id", "job safety assessment must belong to a mission")
	}
	if !j.OperationClass.IsValid() {
		return invalid(ErrInvalidOperationClass, "operation_class", "operation class must be soc, reoc or casa_approval",
			goerr.V(JSAIDKey, string(j.ID)), goerr.V("value", string(j.OperationClass)))
	}
	if !j.AirspaceClass.IsValid() {
		return invalid(ErrInvalidAirspaceClass, "airspace_class", "airspace class must be G, E, D, C or PRD",
			goerr.V(JSAIDKey, string(j.ID)), goerr.V("value", string(j.AirspaceClass)))
	}
	for _, ft := range j.FlightTypes {
		if !ft.IsValid() {
			return invalid(ErrInvalidFlightType, "flight_types", "unknown flight type",
				goerr.V(JSAIDKey, string(j.ID)), goerr.V("value", string(ft)))
		}
	}
	if j.MaxHeightAGLFt < 0 || j.MaxHeightAGLFt > MaxHeightAGLFeet {
		return invalid(ErrHeightLimitExceeded, "max_height_agl_ft", "maximum height cannot exceed 400ft AGL",
			goerr.V(JSAIDKey, string(j.ID)), goerr.V("value", j.MaxHeightAGLFt))
	}
	if !j.SOPAdequate && j.UnmitigatedHazards == "" {
		return invalid(ErrUnmitigatedHazardsRequired, "unmitigated_hazards",
			"unmitigated hazards must be detailed if the operating procedure is not adequate",
			goerr.V(JSAIDKey, string(j.ID)))
	}
	if j.FlightAuthorized {
		if err := j.checkSignatures(); err != nil {
			return err
		}
	}
	return nil
}

// IsFullyApproved reports whether the assessment is authorized with every signature its class requires
func (j *JobSafetyAssessment) IsFullyApproved() bool {
	if !j.FlightAuthorized {
		return false
	}
	return j.checkSignatures() == nil
}

// HasFlightType reports whether the assessment covers the given flight type
func (j *JobSafetyAssessment) HasFlightType(ft types.FlightTypeTag) bool {
	return slices.Contains(j.FlightTypes, ft)
}

// Clone returns a deep copy
func (j *JobSafetyAssessment) Clone() *JobSafetyAssessment {
	if j == nil {
		return nil
	}
	c := *j
	c.FlightTypes = slices.Clone(j.FlightTypes)
	c.MaxAltitudeAMSL = clonePtr(j.MaxAltitudeAMSL)
	c.AuthorizedAt = clonePtr(j.AuthorizedAt)
	c.ReviewDate = clonePtr(j.ReviewDate)
	c.PrimarySignature.Date = clonePtr(j.PrimarySignature.Date)
	c.SecondarySignature.Date = clonePtr(j.SecondarySignature.Date)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
