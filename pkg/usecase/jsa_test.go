package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"github.com/secmon-lab/sortie/pkg/usecase"
)

func TestJSAUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("non-SOC authorization needs a secondary signature", func(t *testing.T) {
		_, uc := setupUseCases(t)
		m := createMission(t, uc)

		_, err := uc.JSA.SaveJSA(ctx, newJSA(m.ID, types.OperationClassReOC))
		gt.NoError(t, err).Required()

		_, err = uc.JSA.AuthorizeJSA(ctx, m.ID)
		gt.Error(t, err).Is(model.ErrSecondarySignatureRequired)

		stored, err := uc.JSA.GetJSA(ctx, m.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.FlightAuthorized).False()

		stored.SecondarySignature = model.Signature{Signer: "rp-1", Date: ptr(testNow)}
		_, err = uc.JSA.SaveJSA(ctx, stored)
		gt.NoError(t, err).Required()

		authorized, err := uc.JSA.AuthorizeJSA(ctx, m.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, authorized.IsFullyApproved()).True()
		gt.Value(t, *authorized.AuthorizedAt).Equal(testNow)
	})

	t.Run("inadequate procedure needs unmitigated hazards", func(t *testing.T) {
		_, uc := setupUseCases(t)
		m := createMission(t, uc)

		jsa := newJSA(m.ID, types.OperationClassSOC)
		jsa.SOPAdequate = false
		_, err := uc.JSA.SaveJSA(ctx, jsa)
		gt.Error(t, err).Is(model.ErrUnmitigatedHazardsRequired)
	})

	t.Run("height above 400ft is rejected", func(t *testing.T) {
		_, uc := setupUseCases(t)
		m := createMission(t, uc)

		jsa := newJSA(m.ID, types.OperationClassSOC)
		jsa.MaxHeightAGLFt = 401
		_, err := uc.JSA.SaveJSA(ctx, jsa)
		gt.Error(t, err).Is(model.ErrHeightLimitExceeded)
	})

	t.Run("one assessment per mission", func(t *testing.T) {
		_, uc := setupUseCases(t)
		m := createMission(t, uc)

		first, err := uc.JSA.SaveJSA(ctx, newJSA(m.ID, types.OperationClassSOC))
		gt.NoError(t, err).Required()
		second, err := uc.JSA.SaveJSA(ctx, newJSA(m.ID, types.OperationClassCASAApproval))
		gt.NoError(t, err).Required()
		gt.Value(t, second.ID).Equal(first.ID)
		gt.Bool(t, second.RequiresCASAApproval()).True()
	})

	t.Run("missing assessment", func(t *testing.T) {
		_, uc := setupUseCases(t)
		m := createMission(t, uc)

		_, err := uc.JSA.AuthorizeJSA(ctx, m.ID)
		gt.Error(t, err).Is(usecase.ErrJSANotFound)
	})
}
