package repository_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

func runMissionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()
	start := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	t.Run("Create generates mission IDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		m1, err := repo.Mission().Create(ctx, model.NewMission("", "Powerline survey", start, start.Add(time.Hour)))
		gt.NoError(t, err).Required()
		m2, err := repo.Mission().Create(ctx, model.NewMission("", "Roof inspection", start, start.Add(time.Hour)))
		gt.NoError(t, err).Required()

		gt.Bool(t, strings.HasPrefix(string(m1.ID), "MSN-")).True()
		gt.Value(t, m1.ID).NotEqual(m2.ID)
		gt.Bool(t, m1.CreatedAt.IsZero()).False()
		gt.Value(t, m1.Status).Equal(types.MissionStatusPlanning)
	})

	t.Run("Create keeps a pre-assigned ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Mission().Create(ctx, model.NewMission("mission-x", "Mapping", start, start.Add(time.Hour)))
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).Equal(types.MissionID("mission-x"))

		_, err = repo.Mission().Create(ctx, model.NewMission("mission-x", "Duplicate", start, start.Add(time.Hour)))
		gt.Error(t, err).Is(interfaces.ErrAlreadyExists)
	})

	t.Run("generated ID skips a pre-assigned one", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		taken := model.FormatMissionID(time.Now().UTC().Year(), 1)
		_, err := repo.Mission().Create(ctx, model.NewMission(taken, "Mapping", start, start.Add(time.Hour)))
		gt.NoError(t, err).Required()

		generated, err := repo.Mission().Create(ctx, model.NewMission("", "Survey", start, start.Add(time.Hour)))
		gt.NoError(t, err).Required()
		gt.Value(t, generated.ID).NotEqual(taken)
	})

	t.Run("Get, Update and Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Mission().Create(ctx, model.NewMission("", "Survey", start, start.Add(time.Hour)))
		gt.NoError(t, err).Required()

		got, err := repo.Mission().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Survey")
		gt.Bool(t, got.RiskAssessmentRequired).True()
		gt.Bool(t, got.PlannedStart.Equal(start)).True()

		got.Status = types.MissionStatusApproved
		got.ApprovedAt = ptr(start)
		updated, err := repo.Mission().Update(ctx, got)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.MissionStatusApproved)
		gt.Bool(t, updated.CreatedAt.Equal(created.CreatedAt)).True()

		missions, err := repo.Mission().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, missions).Length(1)

		gt.NoError(t, repo.Mission().Delete(ctx, created.ID)).Required()
		_, err = repo.Mission().Get(ctx, created.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("missing mission", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Mission().Get(ctx, "missing")
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		_, err = repo.Mission().Update(ctx, &model.Mission{ID: "missing", Name: "x"})
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		gt.Error(t, repo.Mission().Delete(ctx, "missing")).Is(interfaces.ErrNotFound)
	})
}

func TestMissionRepository(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			runMissionRepositoryTest(t, b.newRepo)
		})
	}
}
