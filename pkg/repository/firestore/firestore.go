package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = interfaces.ErrNotFound

	// ErrAlreadyExists is returned when a document ID is already taken
	ErrAlreadyExists = interfaces.ErrAlreadyExists
)

type Firestore struct {
	client     *firestore.Client
	mission    *missionRepository
	riskEntry  *riskEntryRepository
	jsa        *jsaRepository
	flightPlan *flightPlanRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.mission.collectionPrefix = prefix
		f.riskEntry.collectionPrefix = prefix
		f.jsa.collectionPrefix = prefix
		f.flightPlan.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		mission:    newMissionRepository(client),
		riskEntry:  newRiskEntryRepository(client),
		jsa:        newJSARepository(client),
		flightPlan: newFlightPlanRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Mission() interfaces.MissionRepository {
	return f.mission
}

func (f *Firestore) RiskEntry() interfaces.RiskEntryRepository {
	return f.riskEntry
}

func (f *Firestore) JSA() interfaces.JSARepository {
	return f.jsa
}

func (f *Firestore) FlightPlan() interfaces.FlightPlanRepository {
	return f.flightPlan
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
