package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
	"github.com/secmon-lab/sortie/pkg/repository/firestore"
	"github.com/secmon-lab/sortie/pkg/repository/memory"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Category:    "Repository",
			Usage:       "Repository backend type (firestore or memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars("SORTIE_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Category:    "Repository",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("SORTIE_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Category:    "Repository",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("SORTIE_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Category:    "Repository",
			Usage:       "Prefix for every Firestore collection name",
			Sources:     cli.EnvVars("SORTIE_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling the returned closer.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, func(), error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, nil, goerr.New("firestore-project-id is required when using firestore backend")
		}

		var opts []firestore.Option
		if r.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPrefix))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
			"collection_prefix", r.collectionPrefix,
		)
		closer := func() {
			if err := repo.Close(); err != nil {
				logging.Default().Error("failed to close repository", "error", err.Error())
			}
		}
		return repo, closer, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), func() {}, nil

	default:
		return nil, nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
