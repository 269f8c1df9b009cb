package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// flightPlanDocument stores both variants in one collection. Variant selects which group of fields applies.
type flightPlanDocument struct {
	ID      string `firestore:"id"`
	Variant string `firestore:"variant"`

	MissionID              string     `firestore:"mission_id"`
	Status                 string     `firestore:"status"`
	PlannedDeparture       *time.Time `firestore:"planned_departure"`
	PlannedArrival         *time.Time `firestore:"planned_arrival"`
	EstimatedFlightMinutes int        `firestore:"estimated_flight_minutes"`
	WeatherMinimums        string     `firestore:"weather_minimums"`
	EmergencyProcedures    string     `firestore:"emergency_procedures"`
	NOTAMChecked           bool       `firestore:"notam_checked"`
	CreatedAt              time.Time  `firestore:"created_at"`
	UpdatedAt              time.Time  `firestore:"updated_at"`

	Aircraft         string   `firestore:"aircraft_id,omitempty"`
	PilotInCommand   string   `firestore:"pilot_in_command,omitempty"`
	CoPilot          string   `firestore:"co_pilot,omitempty"`
	DepartureAirport string   `firestore:"departure_airport,omitempty"`
	ArrivalAirport   string   `firestore:"arrival_airport,omitempty"`
	AlternateAirport string   `firestore:"alternate_airport,omitempty"`
	Route            string   `firestore:"route,omitempty"`
	CruiseAltitudeFt int      `firestore:"cruise_altitude_ft,omitempty"`
	FlightRules      string   `firestore:"flight_rules,omitempty"`
	FuelRequiredL    float64  `firestore:"fuel_required_l,omitempty"`
	FuelLoadedL      *float64 `firestore:"fuel_loaded_l,omitempty"`
	PayloadKg        float64  `firestore:"payload_kg,omitempty"`
	PassengerCount   int      `firestore:"passenger_count,omitempty"`
	ATCClearance     string   `firestore:"atc_clearance,omitempty"`

	Drone                          string  `firestore:"drone_id,omitempty"`
	RemotePilot                    string  `firestore:"remote_pilot,omitempty"`
	VisualObserver                 string  `firestore:"visual_observer,omitempty"`
	Operation                      string  `firestore:"operation,omitempty"`
	TakeoffLocation                string  `firestore:"takeoff_location,omitempty"`
	LandingLocation                string  `firestore:"landing_location,omitempty"`
	MaxAltitudeAGLFt               int     `firestore:"max_altitude_agl_ft,omitempty"`
	MaxRangeFromPilotM             int     `firestore:"max_range_from_pilot_m,omitempty"`
	BatteryCapacityMAh             float64 `firestore:"battery_capacity_mah,omitempty"`
	EstimatedBatteryConsumptionPct float64 `firestore:"estimated_battery_consumption_pct,omitempty"`
	NoFlyZonesChecked              bool    `firestore:"no_fly_zones_checked,omitempty"`
	AutonomousMode                 bool    `firestore:"autonomous_mode,omitempty"`
	ReturnToHomeAltitudeFt         int     `firestore:"return_to_home_altitude_ft,omitempty"`
	LostLinkProcedures             string  `firestore:"lost_link_procedures,omitempty"`
}

func toFlightPlanDocument(plan model.FlightPlan) (*flightPlanDocument, error) {
	c := plan.Common()
	doc := &flightPlanDocument{
		ID:                     string(c.PlanID),
		Variant:                string(plan.Variant()),
		MissionID:              string(c.Mission),
		Status:                 string(c.PlanStatus.Normalize()),
		PlannedDeparture:       c.PlannedDeparture,
		PlannedArrival:         c.PlannedArrival,
		EstimatedFlightMinutes: c.EstimatedFlightMinutes,
		WeatherMinimums:        c.WeatherMinimums,
		EmergencyProcedures:    c.EmergencyProcedures,
		NOTAMChecked:           c.NOTAMChecked,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}

	switch p := plan.(type) {
	case *model.AircraftPlan:
		doc.Aircraft = string(p.Aircraft)
		doc.PilotInCommand = string(p.PilotInCommand)
		doc.CoPilot = string(p.CoPilot)
		doc.DepartureAirport = p.DepartureAirport
		doc.ArrivalAirport = p.ArrivalAirport
		doc.AlternateAirport = p.AlternateAirport
		doc.Route = p.Route
		doc.CruiseAltitudeFt = p.CruiseAltitudeFt
		doc.FlightRules = string(p.FlightRules)
		doc.FuelRequiredL = p.FuelRequiredL
		doc.FuelLoadedL = p.FuelLoadedL
		doc.PayloadKg = p.PayloadKg
		doc.PassengerCount = p.PassengerCount
		doc.ATCClearance = p.ATCClearance

	case *model.DronePlan:
		doc.Drone = string(p.Drone)
		doc.RemotePilot = string(p.RemotePilot)
		doc.VisualObserver = string(p.VisualObserver)
		doc.Operation = string(p.Operation)
		doc.TakeoffLocation = p.TakeoffLocation
		doc.LandingLocation = p.LandingLocation
		doc.MaxAltitudeAGLFt = p.MaxAltitudeAGLFt
		doc.MaxRangeFromPilotM = p.MaxRangeFromPilotM
		doc.BatteryCapacityMAh = p.BatteryCapacityMAh
		doc.EstimatedBatteryConsumptionPct = p.EstimatedBatteryConsumptionPct
		doc.NoFlyZonesChecked = p.NoFlyZonesChecked
		doc.AutonomousMode = p.AutonomousMode
		doc.ReturnToHomeAltitudeFt = p.ReturnToHomeAltitudeFt
		doc.LostLinkProcedures = p.LostLinkProcedures

	default:
		return nil, goerr.New("unsupported flight plan variant", goerr.V("variant", plan.Variant()))
	}

	return doc, nil
}

func (d *flightPlanDocument) toModel() (model.FlightPlan, error) {
	common := model.PlanCommon{
		PlanID:                 types.FlightPlanID(d.ID),
		Mission:                types.MissionID(d.MissionID),
		PlanStatus:             types.FlightPlanStatus(d.Status),
		PlannedDeparture:       d.PlannedDeparture,
		PlannedArrival:         d.PlannedArrival,
		EstimatedFlightMinutes: d.EstimatedFlightMinutes,
		WeatherMinimums:        d.WeatherMinimums,
		EmergencyProcedures:    d.EmergencyProcedures,
		NOTAMChecked:           d.NOTAMChecked,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}

	switch types.PlanVariant(d.Variant) {
	case types.PlanVariantAircraft:
		return &model.AircraftPlan{
			PlanCommon:       common,
			Aircraft:         types.AssetID(d.Aircraft),
			PilotInCommand:   types.PersonID(d.PilotInCommand),
			CoPilot:          types.PersonID(d.CoPilot),
			DepartureAirport: d.DepartureAirport,
			ArrivalAirport:   d.ArrivalAirport,
			AlternateAirport: d.AlternateAirport,
			Route:            d.Route,
			CruiseAltitudeFt: d.CruiseAltitudeFt,
			FlightRules:      types.FlightRules(d.FlightRules),
			FuelRequiredL:    d.FuelRequiredL,
			FuelLoadedL:      d.FuelLoadedL,
			PayloadKg:        d.PayloadKg,
			PassengerCount:   d.PassengerCount,
			ATCClearance:     d.ATCClearance,
		}, nil

	case types.PlanVariantDrone:
		return &model.DronePlan{
			PlanCommon:                     common,
			Drone:                          types.AssetID(d.Drone),
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
		}, nil

	default:
		return nil, goerr.New("unknown flight plan variant in document", goerr.V("id", d.ID), goerr.V("variant", d.Variant))
	}
}

type flightPlanRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newFlightPlanRepository(client *firestore.Client) *flightPlanRepository {
	return &flightPlanRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *flightPlanRepository) plansCollection() string {
	return collectionName(r.collectionPrefix, "flight_plans")
}

func (r *flightPlanRepository) Create(ctx context.Context, plan model.FlightPlan) (model.FlightPlan, error) {
	now := time.Now().UTC()

	created := model.CloneFlightPlan(plan)
	common := created.Common()
	if common.PlanID == "" {
		common.PlanID = types.FlightPlanID(uuid.NewString())
	}
	common.PlanStatus = common.PlanStatus.Normalize()
	common.CreatedAt = now
	common.UpdatedAt = now

	doc, err := toFlightPlanDocument(created)
	if err != nil {
		return nil, err
	}

	docRef := r.client.Collection(r.plansCollection()).Doc(doc.ID)
	if _, err := docRef.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(ErrAlreadyExists, "flight plan already exists", goerr.V("id", doc.ID))
		}
		return nil, goerr.Wrap(err, "failed to create flight plan", goerr.V("id", doc.ID))
	}
	return created, nil
}

func (r *flightPlanRepository) Get(ctx context.Context, id types.FlightPlanID) (model.FlightPlan, error) {
	snap, err := r.client.Collection(r.plansCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "flight plan not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get flight plan", goerr.V("id", id))
	}
	return decodeFlightPlan(snap)
}

func decodeFlightPlan(snap *firestore.DocumentSnapshot) (model.FlightPlan, error) {
	var doc flightPlanDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal flight plan", goerr.V("docID", snap.Ref.ID))
	}
	return doc.toModel()
}

func (r *flightPlanRepository) list(iter *firestore.DocumentIterator) ([]model.FlightPlan, error) {
	defer iter.Stop()

	var plans []model.FlightPlan
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate flight plans")
		}

		plan, err := decodeFlightPlan(snap)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (r *flightPlanRepository) ListByMission(ctx context.Context, missionID types.MissionID) ([]model.FlightPlan, error) {
	iter := r.client.Collection(r.plansCollection()).
		Where("mission_id", "==", string(missionID)).
		OrderBy("id", firestore.Asc).
		Documents(ctx)

	plans, err := r.list(iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list flight plans", goerr.V("mission_id", missionID))
	}
	return plans, nil
}

// ListInWindow queries by departure only, since Firestore cannot range over two fields in one
// query. Plans that landed before from are dropped here.
func (r *flightPlanRepository) ListInWindow(ctx context.Context, from, to time.Time) ([]model.FlightPlan, error) {
	iter := r.client.Collection(r.plansCollection()).
		Where("planned_departure", "<", to).
		OrderBy("planned_departure", firestore.Asc).
		Documents(ctx)

	candidates, err := r.list(iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list flight plans in window",
			goerr.V("from", from), goerr.V("to", to))
	}

	var plans []model.FlightPlan
	for _, p := range candidates {
		if p.Window().Intersects(from, to) {
			plans = append(plans, p)
		}
	}
	return plans, nil
}

func (r *flightPlanRepository) Update(ctx context.Context, plan model.FlightPlan) (model.FlightPlan, error) {
	existing, err := r.Get(ctx, plan.ID())
	if err != nil {
		return nil, err
	}
	if existing.Variant() != plan.Variant() {
		return nil, goerr.New("flight plan variant cannot change",
			goerr.V("id", plan.ID()), goerr.V("from", existing.Variant()), goerr.V("to", plan.Variant()))
	}

	updated := model.CloneFlightPlan(plan)
	updated.Common().CreatedAt = existing.Common().CreatedAt
	updated.Common().UpdatedAt = time.Now().UTC()

	doc, err := toFlightPlanDocument(updated)
	if err != nil {
		return nil, err
	}
	if _, err := r.client.Collection(r.plansCollection()).Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update flight plan", goerr.V("id", doc.ID))
	}
	return updated, nil
}

func (r *flightPlanRepository) Delete(ctx context.Context, id types.FlightPlanID) error {
	docRef := r.client.Collection(r.plansCollection()).Doc(string(id))
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "flight plan not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get flight plan", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete flight plan", goerr.V("id", id))
	}
	return nil
}
