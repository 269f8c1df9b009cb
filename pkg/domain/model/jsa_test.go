package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
)

func signed(who types.PersonID) model.Signature {
	d := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	return model.Signature{Signer: who, Date: &d}
}

func newJSA(class types.OperationClass) *model.JobSafetyAssessment {
	return &model.JobSafetyAssessment{
		ID:             "jsa-1",
		MissionID:      "mission-1",
		OperationClass: class,
		AirspaceClass:  types.AirspaceClassG,
		FlightTypes:    []types.FlightTypeTag{types.FlightTypeVLOS, types.FlightTypeDay},
		MaxHeightAGLFt: 120,
		SOPAdequate:    true,
	}
}

func TestJSA_Authorize(t *testing.T) {
	t.Run("SOC needs only the primary signature", func(t *testing.T) {
		j := newJSA(types.OperationClassSOC)
		j.PrimarySignature = signed("crp-1")
		gt.NoError(t, j.Authorize(testNow)).Required()
		gt.Bool(t, j.FlightAuthorized).True()
		gt.Bool(t, j.IsFullyApproved()).True()
		gt.Value(t, model.JSAStatus(&model.Mission{JSARequired: true}, j)).Equal("Complete - JSA Approved")
	})

	t.Run("primary signature missing", func(t *testing.T) {
		j := newJSA(types.OperationClassSOC)
		err := j.Authorize(testNow)
		gt.Error(t, err).Is(model.ErrSignatureRequired)
		gt.Bool(t, j.FlightAuthorized).False()
	})

	t.Run("primary signature without date", func(t *testing.T) {
		j := newJSA(types.OperationClassSOC)
		j.PrimarySignature = model.Signature{Signer: "crp-1"}
		gt.Error(t, j.Authorize(testNow)).Is(model.ErrSignatureRequired)
	})

	t.Run("ReOC needs the secondary signature", func(t *testing.T) {
		j := newJSA(types.OperationClassReOC)
		j.PrimarySignature = signed("crp-1")
		err := j.Authorize(testNow)
		gt.Error(t, err).Is(model.ErrSecondarySignatureRequired)
		gt.Bool(t, j.FlightAuthorized).False()

		j.SecondarySignature = signed("rp-1")
		gt.NoError(t, j.Authorize(testNow)).Required()
		gt.Bool(t, j.IsFullyApproved()).True()
	})

	t.Run("deauthorize always succeeds", func(t *testing.T) {
		j := newJSA(types.OperationClassSOC)
		j.PrimarySignature = signed("crp-1")
		gt.NoError(t, j.Authorize(testNow)).Required()
		gt.NoError(t, j.SetAuthorized(false, testNow)).Required()
		gt.Bool(t, j.FlightAuthorized).False()
		gt.Value(t, j.AuthorizedAt).Nil()
	})
}

func TestJSA_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(j *model.JobSafetyAssessment)
		want   error
	}{
		{"valid", func(j *model.JobSafetyAssessment) {}, nil},
		{"height at limit", func(j *model.JobSafetyAssessment) { j.MaxHeightAGLFt = 400 }, nil},
		{"height above limit", func(j *model.JobSafetyAssessment) { j.MaxHeightAGLFt = 401 }, model.ErrHeightLimitExceeded},
		{"inadequate procedure without detail", func(j *model.JobSafetyAssessment) { j.SOPAdequate = false }, model.ErrUnmitigatedHazardsRequired},
		{"inadequate procedure with detail", func(j *model.JobSafetyAssessment) {
			j.SOPAdequate = false
			j.UnmitigatedHazards = "Powerlines near the launch site"
		}, nil},
		{"authorized flag without signatures", func(j *model.JobSafetyAssessment) { j.FlightAuthorized = true }, model.ErrSignatureRequired},
		{"unknown operation class", func(j *model.JobSafetyAssessment) { j.OperationClass = "military" }, model.ErrInvalidOperationClass},
		{"unknown airspace class", func(j *model.JobSafetyAssessment) { j.AirspaceClass = "Z" }, model.ErrInvalidAirspaceClass},
		{"unknown flight type", func(j *model.JobSafetyAssessment) { j.FlightTypes = []types.FlightTypeTag{"HOVER"} }, model.ErrInvalidFlightType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			j := newJSA(types.OperationClassSOC)
			tc.modify(j)
			err := j.Validate()
			if tc.want == nil {
				gt.NoError(t, err).Required()
				return
			}
			gt.Error(t, err).Is(tc.want)
			gt.Bool(t, model.IsValidation(err)).True()
		})
	}
}

func TestJSA_IsFullyApprovedNeedsFlag(t *testing.T) {
	j := newJSA(types.OperationClassReOC)
	j.PrimarySignature = signed("crp-1")
	j.SecondarySignature = signed("rp-1")
	gt.Bool(t, j.IsFullyApproved()).False()
	gt.Value(t, model.JSAStatus(&model.Mission{JSARequired: true}, j)).Equal("Incomplete - Awaiting Approvals")
	gt.Bool(t, j.IsSOCOperation()).False()
	gt.Bool(t, j.RequiresCASAApproval()).False()
}

func TestJSAStatus(t *testing.T) {
	gt.Value(t, model.JSAStatus(&model.Mission{JSARequired: false}, nil)).Equal("Not Required")
	gt.Value(t, model.JSAStatus(&model.Mission{JSARequired: true}, nil)).Equal("Pending - JSA Not Created")
}
