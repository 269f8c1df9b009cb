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

type riskEntryDocument struct {
	ID              string    `firestore:"id"`
	MissionID       string    `firestore:"mission_id"`
	ReferenceNumber string    `firestore:"reference_number"`
	DateEntered     time.Time `firestore:"date_entered"`

	Hazard           string `firestore:"hazard"`
	RiskDescription  string `firestore:"risk_description"`
	ExistingControls string `firestore:"existing_controls"`

	InitialLikelihood  int    `firestore:"initial_likelihood"`
	InitialConsequence string `firestore:"initial_consequence"`
	InitialRating      string `firestore:"initial_rating"`

	AdditionalControls string `firestore:"additional_controls"`

	ResidualLikelihood  int    `firestore:"residual_likelihood"`
	ResidualConsequence string `firestore:"residual_consequence"`
	ResidualRating      string `firestore:"residual_rating"`
	ResidualTier        string `firestore:"residual_tier"`

	AcceptanceLevel string `firestore:"acceptance_level"`
	ActionsRequired string `firestore:"actions_required"`

	RiskOwner     string    `firestore:"risk_owner"`
	ReviewDueDate time.Time `firestore:"review_due_date"`

	Accepted      bool       `firestore:"accepted"`
	AcceptedBy    string     `firestore:"accepted_by"`
	AcceptedLevel string     `firestore:"accepted_level"`
	AcceptedAt    *time.Time `firestore:"accepted_at"`

	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func toRiskEntryDocument(e *model.RiskEntry) *riskEntryDocument {
	return &riskEntryDocument{
		ID:                  string(e.ID),
		MissionID:           string(e.MissionID),
		ReferenceNumber:     e.ReferenceNumber,
		DateEntered:         e.DateEntered,
		Hazard:              e.Hazard,
		RiskDescription:     e.RiskDescription,
		ExistingControls:    e.ExistingControls,
		InitialLikelihood:   int(e.InitialLikelihood),
		InitialConsequence:  string(e.InitialConsequence),
		InitialRating:       e.InitialRating,
		AdditionalControls:  e.AdditionalControls,
		ResidualLikelihood:  int(e.ResidualLikelihood),
		ResidualConsequence: string(e.ResidualConsequence),
		ResidualRating:      e.ResidualRating,
		ResidualTier:        string(e.ResidualTier),
		AcceptanceLevel:     string(e.AcceptanceLevel),
		ActionsRequired:     e.ActionsRequired,
		RiskOwner:           string(e.RiskOwner),
		ReviewDueDate:       e.ReviewDueDate,
		Accepted:            e.Accepted,
		AcceptedBy:          string(e.AcceptedBy),
		AcceptedLevel:       string(e.AcceptedLevel),
		AcceptedAt:          e.AcceptedAt,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func (d *riskEntryDocument) toModel() *model.RiskEntry {
	return &model.RiskEntry{
		ID:                  types.RiskEntryID(d.ID),
		MissionID:           types.MissionID(d.MissionID),
		ReferenceNumber:     d.ReferenceNumber,
		DateEntered:         d.DateEntered,
		Hazard:              d.Hazard,
		RiskDescription:     d.RiskDescription,
		ExistingControls:    d.ExistingControls,
		InitialLikelihood:   types.Likelihood(d.InitialLikelihood),
		InitialConsequence:  types.Consequence(d.InitialConsequence),
		InitialRating:       d.InitialRating,
		AdditionalControls:  d.AdditionalControls,
		ResidualLikelihood:  types.Likelihood(d.ResidualLikelihood),
		ResidualConsequence: types.Consequence(d.ResidualConsequence),
		ResidualRating:      d.ResidualRating,
		ResidualTier:        types.RiskTier(d.ResidualTier),
		AcceptanceLevel:     types.AcceptanceLevel(d.AcceptanceLevel),
		ActionsRequired:     d.ActionsRequired,
		RiskOwner:           types.PersonID(d.RiskOwner),
		ReviewDueDate:       d.ReviewDueDate,
		Accepted:            d.Accepted,
		AcceptedBy:          types.PersonID(d.AcceptedBy),
		AcceptedLevel:       types.AcceptanceLevel(d.AcceptedLevel),
		AcceptedAt:          d.AcceptedAt,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

type riskEntryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskEntryRepository(client *firestore.Client) *riskEntryRepository {
	return &riskEntryRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *riskEntryRepository) entriesCollection() string {
	return collectionName(r.collectionPrefix, "risk_entries")
}

func (r *riskEntryRepository) Create(ctx context.Context, entry *model.RiskEntry) (*model.RiskEntry, error) {
	now := time.Now().UTC()

	created := entry.Clone()
	if created.ID == "" {
		created.ID = types.RiskEntryID(uuid.NewString())
	}
	if created.DateEntered.IsZero() {
		created.DateEntered = now
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.client.Collection(r.entriesCollection()).Doc(string(created.ID))
	if _, err := docRef.Create(ctx, toRiskEntryDocument(created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(ErrAlreadyExists, "risk entry already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create risk entry", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *riskEntryRepository) Get(ctx context.Context, id types.RiskEntryID) (*model.RiskEntry, error) {
	doc, err := r.client.Collection(r.entriesCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "risk entry not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk entry", goerr.V("id", id))
	}

	var entryDoc riskEntryDocument
	if err := doc.DataTo(&entryDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk entry", goerr.V("id", id))
	}
	return entryDoc.toModel(), nil
}

func (r *riskEntryRepository) ListByMission(ctx context.Context, missionID types.MissionID) ([]*model.RiskEntry, error) {
	iter := r.client.Collection(r.entriesCollection()).
		Where("mission_id", "==", string(missionID)).
		OrderBy("date_entered", firestore.Asc).
		OrderBy("id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var entries []*model.RiskEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risk entries", goerr.V("mission_id", missionID))
		}

		var entryDoc riskEntryDocument
		if err := doc.DataTo(&entryDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk entry", goerr.V("docID", doc.Ref.ID))
		}
		entries = append(entries, entryDoc.toModel())
	}

	return entries, nil
}

func (r *riskEntryRepository) Update(ctx context.Context, entry *model.RiskEntry) (*model.RiskEntry, error) {
	existing, err := r.Get(ctx, entry.ID)
	if err != nil {
		return nil, err
	}

	updated := entry.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	docRef := r.client.Collection(r.entriesCollection()).Doc(string(updated.ID))
	if _, err := docRef.Set(ctx, toRiskEntryDocument(updated)); err != nil {
		return nil, goerr.Wrap(err, "failed to update risk entry", goerr.V("id", updated.ID))
	}
	return updated, nil
}

func (r *riskEntryRepository) Delete(ctx context.Context, id types.RiskEntryID) error {
	docRef := r.client.Collection(r.entriesCollection()).Doc(string(id))
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "risk entry not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get risk entry", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete risk entry", goerr.V("id", id))
	}
	return nil
}
