package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

// FlightPlan is the capability set shared by every flight plan variant. Conflict resolution
// works only through this interface.
type FlightPlan interface {
	ID() types.FlightPlanID
	MissionID() types.MissionID
	Variant() types.PlanVariant
	Window() TimeWindow
	CrewIDs() []types.PersonID
	AssetID() types.AssetID
	AltitudeEnvelope(groundElevationFt int) AltitudeEnvelope
	Status() types.FlightPlanStatus
	Validate() error
	OperationalIssues() []string

	// Common exposes the shared fields for persistence
	Common() *PlanCommon
}

// TimeWindow is a planned departure and arrival. Either end may be unknown.
type TimeWindow struct {
	Departure *time.Time `json:"departure,omitempty"`
	Arrival   *time.Time `json:"arrival,omitempty"`
}

// Complete reports whether both ends are known
func (w TimeWindow) Complete() bool {
	return w.Departure != nil && w.Arrival != nil
}

// Overlaps reports whether two complete windows share any instant. Windows are half-open, so a
// plan arriving exactly when another departs does not overlap it. Incomplete windows never overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	if !w.Complete() || !other.Complete() {
		return false
	}
	return w.Departure.Before(*other.Arrival) && w.Arrival.After(*other.Departure)
}

// Intersects reports whether the window shares any instant with [from, to). A window without an
// arrival is treated as the single instant of its departure.
func (w TimeWindow) Intersects(from, to time.Time) bool {
	if w.Departure == nil || !w.Departure.Before(to) {
		return false
	}
	if w.Arrival == nil {
		return !w.Departure.Before(from)
	}
	return w.Arrival.After(from)
}

// Duration returns arrival minus departure, or zero when incomplete
func (w TimeWindow) Duration() time.Duration {
	if !w.Complete() {
		return 0
	}
	return w.Arrival.Sub(*w.Departure)
}

func (w TimeWindow) validate(id types.FlightPlanID) error {
	if w.Departure == nil {
		return invalid(ErrMissingRequired, "planned_departure", "planned departure time is required",
			goerr.V(FlightPlanIDKey, string(id)))
	}
	if w.Arrival != nil && !w.Arrival.After(*w.Departure) {
		return invalid(ErrInvalidTimeWindow, "planned_arrival", "arrival time must be after departure time",
			goerr.V(FlightPlanIDKey, string(id)),
			goerr.V("departure", w.Departure.Format(time.RFC3339)),
			goerr.V("arrival", w.Arrival.Format(time.RFC3339)))
	}
	return nil
}

// AltitudeEnvelope is a plan's operating altitude expressed against mean sea level.
// Approximate is set when the value was derived from a height above an assumed ground elevation.
type AltitudeEnvelope struct {
	MSLFeet     int
	Approximate bool
}

// PlanCommon holds the fields every variant carries
type PlanCommon struct {
	PlanID     types.FlightPlanID     `json:"id"`
	Mission    types.MissionID        `json:"mission_id"`
	PlanStatus types.FlightPlanStatus `json:"status"`

	PlannedDeparture       *time.Time `json:"planned_departure,omitempty"`
	PlannedArrival         *time.Time `json:"planned_arrival,omitempty"`
	EstimatedFlightMinutes int        `json:"estimated_flight_minutes"`

	WeatherMinimums     string `json:"weather_minimums"`
	EmergencyProcedures string `json:"emergency_procedures"`
	NOTAMChecked        bool   `json:"notam_checked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PlanCommon) Common() *PlanCommon        { return p }
func (p *PlanCommon) ID() types.FlightPlanID     { return p.PlanID }
func (p *PlanCommon) MissionID() types.MissionID { return p.Mission }

func (p *PlanCommon) Status() types.FlightPlanStatus {
	return p.PlanStatus.Normalize()
}

func (p *PlanCommon) Window() TimeWindow {
	return TimeWindow{Departure: p.PlannedDeparture, Arrival: p.PlannedArrival}
}

func (p *PlanCommon) validateCommon() error {
	if p.Mission == "" {
		return invalid(ErrMissingRequired, "mission_id", "flight plan must belong to a mission",
			goerr.V(FlightPlanIDKey, string(p.PlanID)))
	}
	if p.PlanStatus != "" && !p.PlanStatus.IsValid() {
		return invalid(ErrInvalidFlightPlanStatus, "status", "unknown flight plan status",
			goerr.V(FlightPlanIDKey, string(p.PlanID)), goerr.V("value", string(p.PlanStatus)))
	}
	return p.Window().validate(p.PlanID)
}

func (p PlanCommon) clone() PlanCommon {
	c := p
	c.PlannedDeparture = clonePtr(p.PlannedDeparture)
	c.PlannedArrival = clonePtr(p.PlannedArrival)
	return c
}

func operationalError(id types.FlightPlanID, issues []string) error {
	return invalid(ErrInvalidFlightPlanParameters, "operational_parameters", strings.Join(issues, "; "),
		goerr.V(FlightPlanIDKey, string(id)), goerr.V("issues", issues))
}

// AircraftPlan is a crewed aircraft flight plan
type AircraftPlan struct {
	PlanCommon

	Aircraft       types.AssetID  `json:"aircraft_id"`
	PilotInCommand types.PersonID `json:"pilot_in_command"`
	CoPilot        types.PersonID `json:"co_pilot,omitempty"`

	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	AlternateAirport string `json:"alternate_airport,omitempty"`
	Route            string `json:"route"`

	CruiseAltitudeFt int               `json:"cruise_altitude_ft"`
	FlightRules      types.FlightRules `json:"flight_rules"`

	FuelRequiredL  float64  `json:"fuel_required_l"`
	FuelLoadedL    *float64 `json:"fuel_loaded_l,omitempty"`
	PayloadKg      float64  `json:"payload_kg"`
	PassengerCount int      `json:"passenger_count"`
	ATCClearance   string   `json:"atc_clearance,omitempty"`
}

var _ FlightPlan = (*AircraftPlan)(nil)

func (p *AircraftPlan) Variant() types.PlanVariant { return types.PlanVariantAircraft }
func (p *AircraftPlan) AssetID() types.AssetID     { return p.Aircraft }

func (p *AircraftPlan) CrewIDs() []types.PersonID {
	return nonEmpty(p.PilotInCommand, p.CoPilot)
}

// AltitudeEnvelope returns the cruise altitude, which is already referenced to mean sea level
func (p *AircraftPlan) AltitudeEnvelope(_ int) AltitudeEnvelope {
	return AltitudeEnvelope{MSLFeet: p.CruiseAltitudeFt}
}

// OperationalIssues lists aircraft parameter problems
func (p *AircraftPlan) OperationalIssues() []string {
	var issues []string

	codes := []string{p.DepartureAirport, p.ArrivalAirport}
	if p.AlternateAirport != "" {
		codes = append(codes, p.AlternateAirport)
	}
	for _, code := range codes {
		if !isICAOCode(code) {
			issues = append(issues, fmt.Sprintf("invalid ICAO airport code: %q", code))
		}
	}

	if p.FlightRules == types.FlightRulesVFR && p.CruiseAltitudeFt > 10000 {
		issues = append(issues, "VFR flights typically operate below 10,000 feet")
	}

	if p.FuelLoadedL != nil && *p.FuelLoadedL > 0 && *p.FuelLoadedL < p.FuelRequiredL {
		issues = append(issues, "loaded fuel is less than required fuel")
	}

	return issues
}

func (p *AircraftPlan) Validate() error {
	if err := p.validateCommon(); err != nil {
		return err
	}
	if !p.FlightRules.IsValid() {
		return invalid(ErrInvalidFlightPlanParameters, "flight_rules", "flight rules must be VFR or IFR",
			goerr.V(FlightPlanIDKey, string(p.PlanID)), goerr.V("value", string(p.FlightRules)))
	}
	if issues := p.OperationalIssues(); len(issues) > 0 {
		return operationalError(p.PlanID, issues)
	}
	return nil
}

// Clone returns a deep copy
func (p *AircraftPlan) Clone() *AircraftPlan {
	c := *p
	c.PlanCommon = p.PlanCommon.clone()
	c.FuelLoadedL = clonePtr(p.FuelLoadedL)
	return &c
}

func isICAOCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// DronePlan is a remotely piloted aircraft flight plan
type DronePlan struct {
	PlanCommon

	Drone          types.AssetID        `json:"drone_id"`
	RemotePilot    types.PersonID       `json:"remote_pilot"`
	VisualObserver types.PersonID       `json:"visual_observer,omitempty"`
	Operation      types.DroneOperation `json:"operation"`

	TakeoffLocation string `json:"takeoff_location"`
	LandingLocation string `json:"landing_location"`

	MaxAltitudeAGLFt   int `json:"max_altitude_agl_ft"`
	MaxRangeFromPilotM int `json:"max_range_from_pilot_m"`

	BatteryCapacityMAh             float64 `json:"battery_capacity_mah"`
	EstimatedBatteryConsumptionPct float64 `json:"estimated_battery_consumption_pct"`

	NoFlyZonesChecked      bool   `json:"no_fly_zones_checked"`
	AutonomousMode         bool   `json:"autonomous_mode"`
	ReturnToHomeAltitudeFt int    `json:"return_to_home_altitude_ft"`
	LostLinkProcedures     string `json:"lost_link_procedures"`
}

// MaxDroneRangeMeters is the hard range limit from the remote pilot
const MaxDroneRangeMeters = 500

var _ FlightPlan = (*DronePlan)(nil)

func (p *DronePlan) Variant() types.PlanVariant { return types.PlanVariantDrone }
func (p *DronePlan) AssetID() types.AssetID     { return p.Drone }

func (p *DronePlan) CrewIDs() []types.PersonID {
	return nonEmpty(p.RemotePilot, p.VisualObserver)
}

// AltitudeEnvelope converts the height above ground to mean sea level using the given ground elevation
func (p *DronePlan) AltitudeEnvelope(groundElevationFt int) AltitudeEnvelope {
	return AltitudeEnvelope{MSLFeet: p.MaxAltitudeAGLFt + groundElevationFt, Approximate: true}
}

// OperationalIssues lists drone parameter problems
func (p *DronePlan) OperationalIssues() []string {
	var issues []string

	if p.Operation == types.DroneOperationVLOS && p.MaxAltitudeAGLFt > 120 {
		issues = append(issues, "VLOS operations typically limited to 120ft AGL")
	}
	if p.Operation == types.DroneOperationVLOS && p.MaxRangeFromPilotM > MaxDroneRangeMeters {
		issues = append(issues, "VLOS operations limited to 500m from pilot")
	}
	if p.EstimatedBatteryConsumptionPct > 90 {
		issues = append(issues, "battery consumption should not exceed 90% for safety margins")
	}

	return issues
}

func (p *DronePlan) Validate() error {
	if err := p.validateCommon(); err != nil {
		return err
	}
	if p.Operation != "" && !p.Operation.IsValid() {
		return invalid(ErrInvalidFlightPlanParameters, "operation", "unknown drone operation type",
			goerr.V(FlightPlanIDKey, string(p.PlanID)), goerr.V("value", string(p.Operation)))
	}
	if p.MaxAltitudeAGLFt < 0 || p.MaxAltitudeAGLFt > MaxHeightAGLFeet {
		return invalid(ErrHeightLimitExceeded, "max_altitude_agl_ft", "maximum altitude cannot exceed 400ft AGL",
			goerr.V(FlightPlanIDKey, string(p.PlanID)), goerr.V("value", p.MaxAltitudeAGLFt))
	}
	if p.MaxRangeFromPilotM < 0 || p.MaxRangeFromPilotM > MaxDroneRangeMeters {
		return invalid(ErrInvalidFlightPlanParameters, "max_range_from_pilot_m", "maximum range cannot exceed 500m",
			goerr.V(FlightPlanIDKey, string(p.PlanID)), goerr.V("value", p.MaxRangeFromPilotM))
	}
	if issues := p.OperationalIssues(); len(issues) > 0 {
		return operationalError(p.PlanID, issues)
	}
	return nil
}

// BatteryEnduranceMinutes estimates endurance from 80% usable capacity and the consumption estimate
func (p *DronePlan) BatteryEnduranceMinutes() int {
	if p.BatteryCapacityMAh <= 0 || p.EstimatedBatteryConsumptionPct <= 0 {
		return 0
	}
	usable := p.BatteryCapacityMAh * 0.8
	rate := p.EstimatedBatteryConsumptionPct / 100
	return int(usable * (1 - rate) / 100)
}

// Clone returns a deep copy
func (p *DronePlan) Clone() *DronePlan {
	c := *p
	c.PlanCommon = p.PlanCommon.clone()
	return &c
}

// CloneFlightPlan deep-copies any known variant
func CloneFlightPlan(p FlightPlan) FlightPlan {
	switch v := p.(type) {
	case *AircraftPlan:
		return v.Clone()
	case *DronePlan:
		return v.Clone()
	default:
		return p
	}
}

func nonEmpty(ids ...types.PersonID) []types.PersonID {
	out := make([]types.PersonID, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
