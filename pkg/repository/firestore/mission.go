package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type missionDocument struct {
	ID                     string     `firestore:"id"`
	Name                   string     `firestore:"name"`
	MissionType            string     `firestore:"mission_type"`
	Description            string     `firestore:"description"`
	Status                 string     `firestore:"status"`
	Commander              string     `firestore:"commander"`
	PlannedStart           time.Time  `firestore:"planned_start"`
	PlannedEnd             time.Time  `firestore:"planned_end"`
	RiskAssessmentRequired bool       `firestore:"risk_assessment_required"`
	JSARequired            bool       `firestore:"jsa_required"`
	ApprovedAt             *time.Time `firestore:"approved_at"`
	CreatedAt              time.Time  `firestore:"created_at"`
	UpdatedAt              time.Time  `firestore:"updated_at"`
}

func toMissionDocument(m *model.Mission) *missionDocument {
	return &missionDocument{
		ID:                     string(m.ID),
		Name:                   m.Name,
		MissionType:            m.MissionType,
		Description:            m.Description,
		Status:                 string(m.Status.Normalize()),
		Commander:              string(m.Commander),
		PlannedStart:           m.PlannedStart,
		PlannedEnd:             m.PlannedEnd,
		RiskAssessmentRequired: m.RiskAssessmentRequired,
		JSARequired:            m.JSARequired,
		ApprovedAt:             m.ApprovedAt,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

func (d *missionDocument) toModel() *model.Mission {
	return &model.Mission{
		ID:                     types.MissionID(d.ID),
		Name:                   d.Name,
		MissionType:            d.MissionType,
		Description:            d.Description,
		Status:                 types.MissionStatus(d.Status),
		Commander:              types.PersonID(d.Commander),
		PlannedStart:           d.PlannedStart,
		PlannedEnd:             d.PlannedEnd,
		RiskAssessmentRequired: d.RiskAssessmentRequired,
		JSARequired:            d.JSARequired,
		ApprovedAt:             d.ApprovedAt,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
}

type missionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMissionRepository(client *firestore.Client) *missionRepository {
	return &missionRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *missionRepository) missionsCollection() string {
	return collectionName(r.collectionPrefix, "missions")
}

func (r *missionRepository) counterCollection() string {
	return collectionName(r.collectionPrefix, "counters")
}

// nextMissionID issues MSN-<year>-<seq> identifiers from a per-year counter
func (r *missionRepository) nextMissionID(ctx context.Context, year int) (types.MissionID, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(fmt.Sprintf("mission_%d", year))

	var next int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				next = 1
				return tx.Set(counterRef, map[string]any{"value": next})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		current, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}
		value, ok := current.(int64)
		if !ok {
			return goerr.New("counter value has unexpected type", goerr.V("value", current))
		}

		next = value + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: next},
		})
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to get next mission ID")
	}

	return model.FormatMissionID(year, int(next)), nil
}

// maxGeneratedIDAttempts bounds how many counter values Create skips when a generated ID is
// already taken by a pre-assigned one
const maxGeneratedIDAttempts = 5

func (r *missionRepository) Create(ctx context.Context, mission *model.Mission) (*model.Mission, error) {
	now := time.Now().UTC()

	created := mission.Clone()
	created.Status = created.Status.Normalize()
	created.CreatedAt = now
	created.UpdatedAt = now

	if created.ID != "" {
		if err := r.create(ctx, created); err != nil {
			return nil, err
		}
		return created, nil
	}

	for range maxGeneratedIDAttempts {
		id, err := r.nextMissionID(ctx, now.Year())
		if err != nil {
			return nil, err
		}
		created.ID = id

		err = r.create(ctx, created)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, ErrAlreadyExists) {
			return nil, err
		}
	}
	return nil, goerr.Wrap(ErrAlreadyExists, "no free mission ID", goerr.V("attempts", maxGeneratedIDAttempts))
}

func (r *missionRepository) create(ctx context.Context, mission *model.Mission) error {
	docRef := r.client.Collection(r.missionsCollection()).Doc(string(mission.ID))
	if _, err := docRef.Create(ctx, toMissionDocument(mission)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(ErrAlreadyExists, "mission already exists", goerr.V("id", mission.ID))
		}
		return goerr.Wrap(err, "failed to create mission", goerr.V("id", mission.ID))
	}
	return nil
}

func (r *missionRepository) Get(ctx context.Context, id types.MissionID) (*model.Mission, error) {
	doc, err := r.client.Collection(r.missionsCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "mission not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get mission", goerr.V("id", id))
	}

	var missionDoc missionDocument
	if err := doc.DataTo(&missionDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal mission", goerr.V("id", id))
	}

	return missionDoc.toModel(), nil
}

func (r *missionRepository) List(ctx context.Context) ([]*model.Mission, error) {
	iter := r.client.Collection(r.missionsCollection()).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var missions []*model.Mission
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate missions")
		}

		var missionDoc missionDocument
		if err := doc.DataTo(&missionDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal mission", goerr.V("docID", doc.Ref.ID))
		}
		missions = append(missions, missionDoc.toModel())
	}

	return missions, nil
}

func (r *missionRepository) Update(ctx context.Context, mission *model.Mission) (*model.Mission, error) {
	existing, err := r.Get(ctx, mission.ID)
	if err != nil {
		return nil, err
	}

	updated := mission.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	docRef := r.client.Collection(r.missionsCollection()).Doc(string(updated.ID))
	if _, err := docRef.Set(ctx, toMissionDocument(updated)); err != nil {
		return nil, goerr.Wrap(err, "failed to update mission", goerr.V("id", updated.ID))
	}

	return updated, nil
}

func (r *missionRepository) Delete(ctx context.Context, id types.MissionID) error {
	docRef := r.client.Collection(r.missionsCollection()).Doc(string(id))
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "mission not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get mission", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete mission", goerr.V("id", id))
	}
	return nil
}
