package cli

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var collectionPrefix string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("SORTIE_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("SORTIE_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "firestore-collection-prefix",
				Usage:       "Prefix for every Firestore collection name",
				Sources:     cli.EnvVars("SORTIE_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &collectionPrefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"collectionPrefix", collectionPrefix,
				"dryRun", dryRun)

			if databaseID == "" {
				databaseID = firestore.DefaultDatabaseID
			}
			indexConfig := getIndexConfig(collectionPrefix)

			client, err := fireconf.New(ctx, projectID, databaseID, indexConfig, fireconf.WithLogger(logger))
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				diff, err := previewMigration(ctx, client, indexConfig)
				if err != nil {
					return err
				}

				if len(diff.Collections) == 0 {
					logger.Info("No changes required")
					return nil
				}

				for _, col := range diff.Collections {
					logger.Info("Migration step",
						"collection", col.Name,
						"action", col.Action,
						"indexes_to_add", len(col.IndexesToAdd),
						"indexes_to_delete", len(col.IndexesToDelete))
				}
				return nil
			}

			logger.Info("Applying migrations")
			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logger.Info("Migrations applied successfully")
			return nil
		},
	}
}

// previewMigration imports the current indexes of the managed collections and diffs them against
// the desired configuration the client was created with.
func previewMigration(ctx context.Context, client *fireconf.Client, desired *fireconf.Config) (*fireconf.DiffResult, error) {
	names := make([]string, 0, len(desired.Collections))
	for _, col := range desired.Collections {
		names = append(names, col.Name)
	}

	current, err := client.Import(ctx, names...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to import current indexes")
	}

	diff, err := client.DiffConfigs(current)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to diff index configuration")
	}
	return diff, nil
}

func prefixed(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

// getIndexConfig returns the composite indexes the Firestore repository queries need.
// Single-field range queries such as the planned_departure window are served by automatic indexes.
func getIndexConfig(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: prefixed(prefix, "risk_entries"),
				Indexes: []fireconf.Index{
					// ListByMission: mission_id ASC, date_entered ASC, id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "mission_id", Order: fireconf.OrderAscending},
							{Path: "date_entered", Order: fireconf.OrderAscending},
							{Path: "id", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: prefixed(prefix, "flight_plans"),
				Indexes: []fireconf.Index{
					// ListByMission: mission_id ASC, id ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "mission_id", Order: fireconf.OrderAscending},
							{Path: "id", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
