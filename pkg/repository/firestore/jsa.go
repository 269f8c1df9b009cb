package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type signatureDocument struct {
	Signer string     `firestore:"signer"`
	Date   *time.Time `firestore:"date"`
}

type jsaDocument struct {
	ID        string `firestore:"id"`
	MissionID string `firestore:"mission_id"`

	OperationClass string   `firestore:"operation_class"`
	AirspaceClass  string   `firestore:"airspace_class"`
	FlightTypes    []string `firestore:"flight_types"`

	MaxHeightAGLFt  int  `firestore:"max_height_agl_ft"`
	MaxAltitudeAMSL *int `firestore:"max_altitude_amsl_ft"`

	OperatingArea          string `firestore:"operating_area"`
	NearbyAerodromes       string `firestore:"nearby_aerodromes"`
	AirspaceHazards        string `firestore:"airspace_hazards"`
	GroundHazards          string `firestore:"ground_hazards"`
	SOPAdequate            bool   `firestore:"sop_adequate"`
	UnmitigatedHazards     string `firestore:"unmitigated_hazards"`
	AdditionalRestrictions string `firestore:"additional_restrictions"`

	FlightAuthorized   bool              `firestore:"flight_authorized"`
	AuthorizedAt       *time.Time        `firestore:"authorized_at"`
	PrimarySignature   signatureDocument `firestore:"primary_signature"`
	SecondarySignature signatureDocument `firestore:"secondary_signature"`
	ReviewDate         *time.Time        `firestore:"review_date"`

	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func toJSADocument(j *model.JobSafetyAssessment) *jsaDocument {
	flightTypes := make([]string, len(j.FlightTypes))
	for i, ft := range j.FlightTypes {
		flightTypes[i] = string(ft)
	}

	return &jsaDocument{
		ID:                     string(j.ID),
		MissionID:              string(j.MissionID),
		OperationClass:         string(j.OperationClass),
		AirspaceClass:          string(j.AirspaceClass),
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
		AuthorizedAt:           j.AuthorizedAt,
		PrimarySignature:       signatureDocument{Signer: string(j.PrimarySignature.Signer), Date: j.PrimarySignature.Date},
		SecondarySignature:     signatureDocument{Signer: string(j.SecondarySignature.Signer), Date: j.SecondarySignature.Date},
		ReviewDate:             j.ReviewDate,
		CreatedAt:              j.CreatedAt,
		UpdatedAt:              j.UpdatedAt,
	}
}

func (d *jsaDocument) toModel() *model.JobSafetyAssessment {
	flightTypes := make([]types.FlightTypeTag, len(d.FlightTypes))
	for i, ft := range d.FlightTypes {
		flightTypes[i] = types.FlightTypeTag(ft)
	}

	return &model.JobSafetyAssessment{
		ID:                     types.JSAID(d.ID),
		MissionID:              types.MissionID(d.MissionID),
		OperationClass:         types.OperationClass(d.OperationClass),
		AirspaceClass:          types.AirspaceClass(d.AirspaceClass),
		FlightTypes:            flightTypes,
		MaxHeightAGLFt:         d.MaxHeightAGLFt,
		MaxAltitudeAMSL:        d.MaxAltitudeAMSL,
		OperatingArea:          d.OperatingArea,
		NearbyAerodromes:       d.NearbyAerodromes,
		AirspaceHazards:        d.AirspaceHazards,
		GroundHazards:          d.GroundHazards,
		SOPAdequate:            d.SOPAdequate,
		UnmitigatedHazards:     d.UnmitigatedHazards,
		AdditionalRestrictions: d.AdditionalRestrictions,
		FlightAuthorized:       d.FlightAuthorized,
		AuthorizedAt:           d.AuthorizedAt,
		PrimarySignature:       model.Signature{Signer: types.PersonID(d.PrimarySignature.Signer), Date: d.PrimarySignature.Date},
		SecondarySignature:     model.Signature{Signer: types.PersonID(d.SecondarySignature.Signer), Date: d.SecondarySignature.Date},
		ReviewDate:             d.ReviewDate,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
}

// jsaRepository keys each assessment by its mission ID, which keeps the one-per-mission rule in the document path
type jsaRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newJSARepository(client *firestore.Client) *jsaRepository {
	return &jsaRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *jsaRepository) jsaCollection() string {
	return collectionName(r.collectionPrefix, "job_safety_assessments")
}

func (r *jsaRepository) Put(ctx context.Context, jsa *model.JobSafetyAssessment) (*model.JobSafetyAssessment, error) {
	if jsa.MissionID == "" {
		return nil, goerr.New("job safety assessment has no mission")
	}

	docRef := r.client.Collection(r.jsaCollection()).Doc(string(jsa.MissionID))
	stored := jsa.Clone()
	now := time.Now().UTC()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		switch {
		case err == nil:
			var existing jsaDocument
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal job safety assessment")
			}
			stored.ID = types.JSAID(existing.ID)
			stored.CreatedAt = existing.CreatedAt
		case status.Code(err) == codes.NotFound:
			if stored.ID == "" {
				stored.ID = types.JSAID(uuid.NewString())
			}
			stored.CreatedAt = now
		default:
			return goerr.Wrap(err, "failed to get job safety assessment")
		}

		stored.UpdatedAt = now
		return tx.Set(docRef, toJSADocument(stored))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to put job safety assessment", goerr.V("mission_id", jsa.MissionID))
	}

	return stored, nil
}

func (r *jsaRepository) GetByMission(ctx context.Context, missionID types.MissionID) (*model.JobSafetyAssessment, error) {
	doc, err := r.client.Collection(r.jsaCollection()).Doc(string(missionID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "job safety assessment not found", goerr.V("mission_id", missionID))
		}
		return nil, goerr.Wrap(err, "failed to get job safety assessment", goerr.V("mission_id", missionID))
	}

	var jsaDoc jsaDocument
	if err := doc.DataTo(&jsaDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal job safety assessment", goerr.V("mission_id", missionID))
	}
	return jsaDoc.toModel(), nil
}

func (r *jsaRepository) DeleteByMission(ctx context.Context, missionID types.MissionID) error {
	docRef := r.client.Collection(r.jsaCollection()).Doc(string(missionID))
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "job safety assessment not found", goerr.V("mission_id", missionID))
		}
		return goerr.Wrap(err, "failed to get job safety assessment", goerr.V("mission_id", missionID))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete job safety assessment", goerr.V("mission_id", missionID))
	}
	return nil
}
