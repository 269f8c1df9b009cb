package types

import "fmt"

// OperationClass is the regulatory classification of an RPA operation
type OperationClass string

const (
	// OperationClassSOC is the simplest class: standard operating conditions, no official authorisation
	OperationClassSOC          OperationClass = "soc"
	OperationClassReOC         OperationClass = "reoc"
	OperationClassCASAApproval OperationClass = "casa_approval"
)

// IsValid checks if the operation class is valid
func (c OperationClass) IsValid() bool {
	switch c {
	case OperationClassSOC, OperationClassReOC, OperationClassCASAApproval:
		return true
	default:
		return false
	}
}

// IsSimplest reports whether the class needs only the primary signature
func (c OperationClass) IsSimplest() bool {
	return c == OperationClassSOC
}

func (c OperationClass) String() string {
	return string(c)
}

// ParseOperationClass parses a string into an OperationClass
func ParseOperationClass(s string) (OperationClass, error) {
	c := OperationClass(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid operation class: %s", s)
	}
	return c, nil
}

// AirspaceClass is the airspace classification of an operating area
type AirspaceClass string

const (
	AirspaceClassG   AirspaceClass = "G"
	AirspaceClassE   AirspaceClass = "E"
	AirspaceClassD   AirspaceClass = "D"
	AirspaceClassC   AirspaceClass = "C"
	AirspaceClassPRD AirspaceClass = "PRD"
)

// IsValid checks if the airspace class is valid
func (c AirspaceClass) IsValid() bool {
	switch c {
	case AirspaceClassG, AirspaceClassE, AirspaceClassD, AirspaceClassC, AirspaceClassPRD:
		return true
	default:
		return false
	}
}

// IsControlled reports whether the class is controlled airspace
func (c AirspaceClass) IsControlled() bool {
	switch c {
	case AirspaceClassE, AirspaceClassD, AirspaceClassC:
		return true
	default:
		return false
	}
}

func (c AirspaceClass) String() string {
	return string(c)
}

// FlightTypeTag tags the kind of flying covered by a job safety assessment
type FlightTypeTag string

const (
	FlightTypeVLOS  FlightTypeTag = "VLOS"
	FlightTypeEVLOS FlightTypeTag = "EVLOS"
	FlightTypeBVLOS FlightTypeTag = "BVLOS"
	FlightTypeDay   FlightTypeTag = "DAY"
	FlightTypeNight FlightTypeTag = "NIGHT"
)

// IsValid checks if the flight type tag is valid
func (f FlightTypeTag) IsValid() bool {
	switch f {
	case FlightTypeVLOS, FlightTypeEVLOS, FlightTypeBVLOS, FlightTypeDay, FlightTypeNight:
		return true
	default:
		return false
	}
}

func (f FlightTypeTag) String() string {
	return string(f)
}

// FlightRules is VFR or IFR for crewed aircraft plans
type FlightRules string

const (
	FlightRulesVFR FlightRules = "VFR"
	FlightRulesIFR FlightRules = "IFR"
)

// IsValid checks if the flight rules value is valid
func (r FlightRules) IsValid() bool {
	return r == FlightRulesVFR || r == FlightRulesIFR
}

// DroneOperation is the kind of RPA operation declared on a drone flight plan
type DroneOperation string

const (
	DroneOperationVLOS               DroneOperation = "line_of_sight"
	DroneOperationEVLOS              DroneOperation = "extended_vlos"
	DroneOperationBVLOS              DroneOperation = "beyond_vlos"
	DroneOperationNight              DroneOperation = "night_operations"
	DroneOperationControlledAirspace DroneOperation = "controlled_airspace"
)

// IsValid checks if the drone operation is valid
func (o DroneOperation) IsValid() bool {
	switch o {
	case DroneOperationVLOS, DroneOperationEVLOS, DroneOperationBVLOS,
		DroneOperationNight, DroneOperationControlledAirspace:
		return true
	default:
		return false
	}
}
