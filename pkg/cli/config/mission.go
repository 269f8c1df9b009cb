package config

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

// MissionFile is an offline mission description evaluated by the check command
type MissionFile struct {
	Mission  MissionSection    `toml:"mission"`
	Risks    []RiskSection     `toml:"risk"`
	JSA      *JSASection       `toml:"jsa"`
	Aircraft []AircraftSection `toml:"aircraft"`
	Drones   []DroneSection    `toml:"drone"`
}

// MissionSection describes the mission itself
type MissionSection struct {
	ID                    string    `toml:"id"`
	Name                  string    `toml:"name"`
	MissionType           string    `toml:"mission_type"`
	Description           string    `toml:"description"`
	Commander             string    `toml:"commander"`
	PlannedStart          time.Time `toml:"planned_start"`
	PlannedEnd            time.Time `toml:"planned_end"`
	RequireRiskAssessment *bool     `toml:"require_risk_assessment"`
	RequireJSA            *bool     `toml:"require_jsa"`
}

// RiskSection is one risk register line
type RiskSection struct {
	ID                  string    `toml:"id"`
	ReferenceNumber     string    `toml:"reference_number"`
	Hazard              string    `toml:"hazard"`
	RiskDescription     string    `toml:"risk_description"`
	ExistingControls    string    `toml:"existing_controls"`
	InitialLikelihood   int       `toml:"initial_likelihood"`
	InitialConsequence  string    `toml:"initial_consequence"`
	AdditionalControls  string    `toml:"additional_controls"`
	ResidualLikelihood  int       `toml:"residual_likelihood"`
	ResidualConsequence string    `toml:"residual_consequence"`
	RiskOwner           string    `toml:"risk_owner"`
	ReviewDueDate       time.Time `toml:"review_due_date"`
	AcceptedBy          string    `toml:"accepted_by"`
	AcceptedLevel       string    `toml:"accepted_level"`
}

// SignatureSection is a dated sign-off
type SignatureSection struct {
	Signer string     `toml:"signer"`
	Date   *time.Time `toml:"date"`
}

// JSASection is the job safety assessment
type JSASection struct {
	OperationClass         string           `toml:"operation_class"`
	AirspaceClass          string           `toml:"airspace_class"`
	FlightTypes            []string         `toml:"flight_types"`
	MaxHeightAGLFt         int              `toml:"max_height_agl_ft"`
	MaxAltitudeAMSL        *int             `toml:"max_altitude_amsl_ft"`
	OperatingArea          string           `toml:"operating_area"`
	NearbyAerodromes       string           `toml:"nearby_aerodromes"`
	AirspaceHazards        string           `toml:"airspace_hazards"`
	GroundHazards          string           `toml:"ground_hazards"`
	SOPAdequate            bool             `toml:"sop_adequate"`
	UnmitigatedHazards     string           `toml:"unmitigated_hazards"`
	AdditionalRestrictions string           `toml:"additional_restrictions"`
	FlightAuthorized       bool             `toml:"flight_authorized"`
	PrimarySignature       SignatureSection `toml:"primary_signature"`
	SecondarySignature     SignatureSection `toml:"secondary_signature"`
}

// PlanSection holds the fields shared by both plan variants
type PlanSection struct {
	ID                     string     `toml:"id"`
	Status                 string     `toml:"status"`
	PlannedDeparture       *time.Time `toml:"planned_departure"`
	PlannedArrival         *time.Time `toml:"planned_arrival"`
	EstimatedFlightMinutes int        `toml:"estimated_flight_minutes"`
	WeatherMinimums        string     `toml:"weather_minimums"`
	EmergencyProcedures    string     `toml:"emergency_procedures"`
	NOTAMChecked           bool       `toml:"notam_checked"`
}

// AircraftSection is a crewed aircraft plan
type AircraftSection struct {
	PlanSection
	AircraftID       string   `toml:"aircraft_id"`
	PilotInCommand   string   `toml:"pilot_in_command"`
	CoPilot          string   `toml:"co_pilot"`
	DepartureAirport string   `toml:"departure_airport"`
	ArrivalAirport   string   `toml:"arrival_airport"`
	AlternateAirport string   `toml:"alternate_airport"`
	Route            string   `toml:"route"`
	CruiseAltitudeFt int      `toml:"cruise_altitude_ft"`
	FlightRules      string   `toml:"flight_rules"`
	FuelRequiredL    float64  `toml:"fuel_required_l"`
	FuelLoadedL      *float64 `toml:"fuel_loaded_l"`
	PayloadKg        float64  `toml:"payload_kg"`
	PassengerCount   int      `toml:"passenger_count"`
	ATCClearance     string   `toml:"atc_clearance"`
}

// DroneSection is a remotely piloted aircraft plan
type DroneSection struct {
	PlanSection
	DroneID                        string  `toml:"drone_id"`
	RemotePilot                    string  `toml:"remote_pilot"`
	VisualObserver                 string  `toml:"visual_observer"`
	Operation                      string  `toml:"operation"`
	TakeoffLocation                string  `toml:"takeoff_location"`
	LandingLocation                string  `toml:"landing_location"`
	MaxAltitudeAGLFt               int     `toml:"max_altitude_agl_ft"`
	MaxRangeFromPilotM             int     `toml:"max_range_from_pilot_m"`
	BatteryCapacityMAh             float64 `toml:"battery_capacity_mah"`
	EstimatedBatteryConsumptionPct float64 `toml:"estimated_battery_consumption_pct"`
	NoFlyZonesChecked              bool    `toml:"no_fly_zones_checked"`
	AutonomousMode                 bool    `toml:"autonomous_mode"`
	ReturnToHomeAltitudeFt         int     `toml:"return_to_home_altitude_ft"`
	LostLinkProcedures             string  `toml:"lost_link_procedures"`
}

// LoadMissionFile reads a mission description from a local TOML file or a gs:// object
func LoadMissionFile(ctx context.Context, location string) (*MissionFile, error) {
	data, err := readSource(ctx, location)
	if err != nil {
		return nil, err
	}

	var file MissionFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidMissionFile, "failed to parse mission file",
			goerr.V(ConfigPathKey, location), goerr.V("cause", err.Error()))
	}
	if file.Mission.Name == "" {
		return nil, goerr.Wrap(ErrInvalidMissionFile, "mission name is required",
			goerr.V(ConfigPathKey, location), goerr.V(SectionKey, "mission"))
	}
	return &file, nil
}

// ToSnapshot builds the records the readiness gate evaluates. Derived risk fields are computed
// with the given matrix; entries with accepted_by set are accepted at accepted_level as of now.
// Requirement flags left unset fall back to the given defaults.
func (f *MissionFile) ToSnapshot(matrix *model.RiskMatrix, defaults ApprovalDefaults, now time.Time) (*model.MissionSnapshot, error) {
	missionID := types.MissionID(f.Mission.ID)
	if missionID == "" {
		missionID = model.FormatMissionID(now.Year(), 1)
	}

	mission := model.NewMission(missionID, f.Mission.Name, f.Mission.PlannedStart, f.Mission.PlannedEnd)
	mission.MissionType = f.Mission.MissionType
	mission.Description = f.Mission.Description
	mission.Commander = types.PersonID(f.Mission.Commander)
	mission.RiskAssessmentRequired = boolOr(f.Mission.RequireRiskAssessment, defaults.RequireRiskAssessment)
	mission.JSARequired = boolOr(f.Mission.RequireJSA, defaults.RequireJSA)

	snapshot := &model.MissionSnapshot{Mission: mission}

	for i, r := range f.Risks {
		entry, err := r.toEntry(missionID, matrix, i, now)
		if err != nil {
			return nil, err
		}
		snapshot.RiskEntries = append(snapshot.RiskEntries, entry)
	}

	if f.JSA != nil {
		snapshot.JSA = f.JSA.toJSA(missionID, now)
	}

	for i := range f.Aircraft {
		snapshot.FlightPlans = append(snapshot.FlightPlans, f.Aircraft[i].toPlan(missionID, i))
	}
	for i := range f.Drones {
		snapshot.FlightPlans = append(snapshot.FlightPlans, f.Drones[i].toPlan(missionID, i))
	}

	return snapshot, nil
}

// ApprovalDefaults are the requirement flags applied when a mission file does not set them
type ApprovalDefaults struct {
	RequireRiskAssessment bool
	RequireJSA            bool
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func (r *RiskSection) toEntry(missionID types.MissionID, matrix *model.RiskMatrix, idx int, now time.Time) (*model.RiskEntry, error) {
	id := r.ID
	if id == "" {
		id = "risk-" + strconv.Itoa(idx+1)
	}

	entry := &model.RiskEntry{
		ID:                  types.RiskEntryID(id),
		MissionID:           missionID,
		ReferenceNumber:     r.ReferenceNumber,
		DateEntered:         now,
		Hazard:              r.Hazard,
		RiskDescription:     r.RiskDescription,
		ExistingControls:    r.ExistingControls,
		InitialLikelihood:   types.Likelihood(r.InitialLikelihood),
		InitialConsequence:  types.Consequence(strings.ToUpper(r.InitialConsequence)),
		AdditionalControls:  r.AdditionalControls,
		ResidualLikelihood:  types.Likelihood(r.ResidualLikelihood),
		ResidualConsequence: types.Consequence(strings.ToUpper(r.ResidualConsequence)),
		RiskOwner:           types.PersonID(r.RiskOwner),
		ReviewDueDate:       r.ReviewDueDate,
	}

	if err := entry.Validate(now); err != nil {
		return nil, goerr.Wrap(err, "invalid risk entry", goerr.V(SectionKey, "risk"), goerr.V(IndexKey, idx))
	}
	if err := entry.Recompute(matrix); err != nil {
		return nil, goerr.Wrap(err, "failed to rate risk entry", goerr.V(SectionKey, "risk"), goerr.V(IndexKey, idx))
	}

	if r.AcceptedBy != "" {
		level := types.AcceptanceLevel(r.AcceptedLevel)
		if err := entry.Accept(types.PersonID(r.AcceptedBy), level, now); err != nil {
			return nil, goerr.Wrap(err, "invalid risk acceptance", goerr.V(SectionKey, "risk"), goerr.V(IndexKey, idx))
		}
	}

	return entry, nil
}

func (j *JSASection) toJSA(missionID types.MissionID, now time.Time) *model.JobSafetyAssessment {
	flightTypes := make([]types.FlightTypeTag, 0, len(j.FlightTypes))
	for _, ft := range j.FlightTypes {
		flightTypes = append(flightTypes, types.FlightTypeTag(ft))
	}

	jsa := &model.JobSafetyAssessment{
		ID:                     types.JSAID(string(missionID) + "-jsa"),
		MissionID:              missionID,
		OperationClass:         types.OperationClass(j.OperationClass),
		AirspaceClass:          types.AirspaceClass(j.AirspaceClass),
		FlightTypes:            flightTypes,
		MaxHeightAGLFt:         j.MaxHeightAGLFt,
		MaxAltitudeAMSL:        j.MaxAltitudeAMSL,
		OperatingArea:          j.OperatingArea,
		NearbyAerodromes:       j.NearbyAerodromes,
		AirspaceHazards:        j.AirspaceHazards,
		GroundHazards:          j.GroundHazards,
		SOPAdequate:            j.SOPAdequate,
		UnmitigatedHazards:     j.UnmitigatedHazards,
		AdditionalRestrictions: j.AdditionalRestrictions,
		FlightAuthorized:       j.FlightAuthorized,
		PrimarySignature:       model.Signature{Signer: types.PersonID(j.PrimarySignature.Signer), Date: j.PrimarySignature.Date},
		SecondarySignature:     model.Signature{Signer: types.PersonID(j.SecondarySignature.Signer), Date: j.SecondarySignature.Date},
	}
	if jsa.FlightAuthorized {
		at := now
		jsa.AuthorizedAt = &at
	}
	return jsa
}

func (p *PlanSection) toCommon(missionID types.MissionID, prefix string, idx int) model.PlanCommon {
	id := p.ID
	if id == "" {
		id = prefix + "-" + strconv.Itoa(idx+1)
	}
	status := types.FlightPlanStatus(p.Status)
	if status == "" {
		status = types.FlightPlanStatusDraft
	}
	return model.PlanCommon{
		PlanID:                 types.FlightPlanID(id),
		Mission:                missionID,
		PlanStatus:             status,
		PlannedDeparture:       p.PlannedDeparture,
		PlannedArrival:         p.PlannedArrival,
		EstimatedFlightMinutes: p.EstimatedFlightMinutes,
		WeatherMinimums:        p.WeatherMinimums,
		EmergencyProcedures:    p.EmergencyProcedures,
		NOTAMChecked:           p.NOTAMChecked,
	}
}

func (a *AircraftSection) toPlan(missionID types.MissionID, idx int) *model.AircraftPlan {
	return &model.AircraftPlan{
		PlanCommon:       a.toCommon(missionID, "aircraft", idx),
		Aircraft:         types.AssetID(a.AircraftID),
		PilotInCommand:   types.PersonID(a.PilotInCommand),
		CoPilot:          types.PersonID(a.CoPilot),
		DepartureAirport: a.DepartureAirport,
		ArrivalAirport:   a.ArrivalAirport,
		AlternateAirport: a.AlternateAirport,
		Route:            a.Route,
		CruiseAltitudeFt: a.CruiseAltitudeFt,
		FlightRules:      types.FlightRules(a.FlightRules),
		FuelRequiredL:    a.FuelRequiredL,
		FuelLoadedL:      a.FuelLoadedL,
		PayloadKg:        a.PayloadKg,
		PassengerCount:   a.PassengerCount,
		ATCClearance:     a.ATCClearance,
	}
}

func (d *DroneSection) toPlan(missionID types.MissionID, idx int) *model.DronePlan {
	return &model.DronePlan{
		PlanCommon:                     d.toCommon(missionID, "drone", idx),
		Drone:                          types.AssetID(d.DroneID),
		RemotePilot:                    types.PersonID(d.RemotePilot),
		VisualObserver:                 types.PersonID(d.VisualObserver),
		Operation:                      types.DroneOperation(d.Operation),
		TakeoffLocation:                d.TakeoffLocation,
		LandingLocation:                d.LandingLocation,
		MaxAltitudeAGLFt:               d.MaxAltitudeAGLFt,
		MaxRangeFromPilotM:             d.MaxRangeFromPilotM,
		BatteryCapacityMAh:             d.BatteryCapacityMAh,
		EstimatedBatteryConsumptionPct: d.EstimatedBatteryConsumptionPct,
		NoFlyZonesChecked:              d.NoFlyZonesChecked,
		AutonomousMode:                 d.AutonomousMode,
		ReturnToHomeAltitudeFt:         d.ReturnToHomeAltitudeFt,
		LostLinkProcedures:             d.LostLinkProcedures,
	}
}
