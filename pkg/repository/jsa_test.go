package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sortie/pkg/domain/interfaces"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

func runJSARepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()
	signedAt := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Put is one per mission", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.JSA().Put(ctx, &model.JobSafetyAssessment{
			MissionID:      "mission-1",
			OperationClass: types.OperationClassReOC,
			AirspaceClass:  types.AirspaceClassD,
			FlightTypes:    []types.FlightTypeTag{types.FlightTypeVLOS},
			MaxHeightAGLFt: 200,
			SOPAdequate:    true,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, first.ID).NotEqual(types.JSAID(""))

		second, err := repo.JSA().Put(ctx, &model.JobSafetyAssessment{
			MissionID:          "mission-1",
			OperationClass:     types.OperationClassReOC,
			AirspaceClass:      types.AirspaceClassD,
			MaxHeightAGLFt:     300,
			SOPAdequate:        true,
			FlightAuthorized:   true,
			PrimarySignature:   model.Signature{Signer: "crp-1", Date: ptr(signedAt)},
			SecondarySignature: model.Signature{Signer: "rp-1", Date: ptr(signedAt)},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, second.ID).Equal(first.ID)

		got, err := repo.JSA().GetByMission(ctx, "mission-1")
		gt.NoError(t, err).Required()
		gt.Value(t, got.MaxHeightAGLFt).Equal(300)
		gt.Bool(t, got.IsFullyApproved()).True()
		gt.Value(t, got.SecondarySignature.Signer).Equal(types.PersonID("rp-1"))
	})

	t.Run("missing assessment", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.JSA().GetByMission(ctx, "mission-9")
		gt.Error(t, err).Is(interfaces.ErrNotFound)
		gt.Error(t, repo.JSA().DeleteByMission(ctx, "mission-9")).Is(interfaces.ErrNotFound)
	})

	t.Run("DeleteByMission", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.JSA().Put(ctx, &model.JobSafetyAssessment{
			MissionID:      "mission-1",
			OperationClass: types.OperationClassSOC,
			AirspaceClass:  types.AirspaceClassG,
			SOPAdequate:    true,
		})
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.JSA().DeleteByMission(ctx, "mission-1")).Required()

		_, err = repo.JSA().GetByMission(ctx, "mission-1")
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}

func TestJSARepository(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			runJSARepositoryTest(t, b.newRepo)
		})
	}
}
