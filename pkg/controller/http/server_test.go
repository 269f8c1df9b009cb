package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	server "github.com/secmon-lab/sortie/pkg/controller/http"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"github.com/secmon-lab/sortie/pkg/repository/memory"
	"github.com/secmon-lab/sortie/pkg/service/readiness"
	"github.com/secmon-lab/sortie/pkg/usecase"
)

var testNow = time.Now().UTC().Truncate(time.Second)

func setup(t *testing.T, opts ...server.Options) (*usecase.UseCases, *server.Server) {
	t.Helper()
	uc := usecase.New(memory.New())
	return uc, server.New(uc, opts...)
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body)).Required()
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &v)).Required()
	return v
}

func createMission(t *testing.T, srv http.Handler) *model.Mission {
	t.Helper()
	w := do(t, srv, http.MethodPost, "/api/missions", map[string]any{
		"name":          "Bridge inspection",
		"planned_start": testNow.Add(24 * time.Hour),
		"planned_end":   testNow.Add(48 * time.Hour),
	})
	gt.Number(t, w.Code).Equal(http.StatusCreated)
	return decode[*model.Mission](t, w)
}

func TestHealth(t *testing.T) {
	_, srv := setup(t)
	w := do(t, srv, http.MethodGet, "/health", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(`"ok"`)
}

func TestMissionLifecycle(t *testing.T) {
	_, srv := setup(t)
	m := createMission(t, srv)

	t.Run("readiness lists missing assessments", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/missions/"+string(m.ID)+"/readiness", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		decision := decode[readiness.Decision](t, w)
		gt.Bool(t, decision.Ready).False()
		gt.Array(t, decision.Reasons).Length(2)
	})

	t.Run("approval refused with decision", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/missions/"+string(m.ID)+"/approve", nil)
		gt.Number(t, w.Code).Equal(http.StatusConflict)
		gt.String(t, w.Body.String()).Contains("risk_assessment_missing")
	})

	var entryID types.RiskEntryID
	t.Run("risk entry is rated on save", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/risk-entries", map[string]any{
			"mission_id":           m.ID,
			"hazard":               "Loss of link",
			"initial_likelihood":   4,
			"initial_consequence":  "B",
			"residual_likelihood":  2,
			"residual_consequence": "D",
			"review_due_date":      testNow.Add(30 * 24 * time.Hour),
		})
		gt.Number(t, w.Code).Equal(http.StatusCreated)
		entry := decode[model.RiskEntry](t, w)
		gt.Value(t, entry.ResidualTier).Equal(types.RiskTierLow)
		gt.Value(t, entry.InitialRating).Equal("4B")
		entryID = entry.ID
	})

	t.Run("risk entry accepted", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/risk-entries/"+string(entryID)+"/accept", map[string]any{
			"accepted_by": "crp-1",
			"level":       types.AcceptanceLevelChiefRemotePilot,
		})
		gt.Number(t, w.Code).Equal(http.StatusOK)
	})

	t.Run("JSA saved and authorized", func(t *testing.T) {
		w := do(t, srv, http.MethodPut, "/api/missions/"+string(m.ID)+"/jsa", map[string]any{
			"operation_class":   types.OperationClassSOC,
			"airspace_class":    types.AirspaceClassG,
			"max_height_agl_ft": 120,
			"sop_adequate":      true,
			"primary_signature": map[string]any{"signer": "crp-1", "date": testNow},
		})
		gt.Number(t, w.Code).Equal(http.StatusOK)

		w = do(t, srv, http.MethodPost, "/api/missions/"+string(m.ID)+"/jsa/authorize", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
	})

	t.Run("mission approved", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/missions/"+string(m.ID)+"/approve", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		approved := decode[model.Mission](t, w)
		gt.Value(t, approved.Status).Equal(types.MissionStatusApproved)
	})

	t.Run("summary reflects completion", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/missions/"+string(m.ID), nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		summary := decode[usecase.MissionSummary](t, w)
		gt.Value(t, summary.JSA).Equal("Complete - JSA Approved")
	})
}

func TestValidationErrorCarriesFieldAndRule(t *testing.T) {
	_, srv := setup(t)
	m := createMission(t, srv)

	w := do(t, srv, http.MethodPost, "/api/risk-entries", map[string]any{
		"mission_id":           m.ID,
		"hazard":               "Flyaway",
		"initial_likelihood":   9,
		"initial_consequence":  "A",
		"residual_likelihood":  1,
		"residual_consequence": "E",
		"review_due_date":      testNow.Add(24 * time.Hour),
	})
	gt.Number(t, w.Code).Equal(http.StatusBadRequest)

	resp := decode[map[string]any](t, w)
	gt.Value(t, resp["field"]).Equal("initial_likelihood")
	gt.Value(t, resp["rule"]).NotNil()
}

func TestDuplicateMissionID(t *testing.T) {
	_, srv := setup(t)
	body := map[string]any{
		"id":            "MSN-2026-000042",
		"name":          "Bridge inspection",
		"planned_start": testNow.Add(24 * time.Hour),
		"planned_end":   testNow.Add(48 * time.Hour),
	}

	w := do(t, srv, http.MethodPost, "/api/missions", body)
	gt.Number(t, w.Code).Equal(http.StatusCreated)

	w = do(t, srv, http.MethodPost, "/api/missions", body)
	gt.Number(t, w.Code).Equal(http.StatusConflict)
}

func TestRiskEntrySavedWithInsufficientAcceptance(t *testing.T) {
	_, srv := setup(t)
	m := createMission(t, srv)

	w := do(t, srv, http.MethodPost, "/api/risk-entries", map[string]any{
		"mission_id":           m.ID,
		"hazard":               "Flyaway over crowd",
		"initial_likelihood":   5,
		"initial_consequence":  "A",
		"residual_likelihood":  4,
		"residual_consequence": "B",
		"review_due_date":      testNow.Add(30 * 24 * time.Hour),
		"accepted":             true,
		"accepted_by":          "crp-1",
		"accepted_level":       types.AcceptanceLevelChiefRemotePilot,
	})
	gt.Number(t, w.Code).Equal(http.StatusBadRequest)

	resp := decode[map[string]any](t, w)
	gt.Value(t, resp["field"]).Equal("accepted_level")
}

func TestNotFound(t *testing.T) {
	_, srv := setup(t)
	w := do(t, srv, http.MethodGet, "/api/missions/MSN-1999-000001/readiness", nil)
	gt.Number(t, w.Code).Equal(http.StatusNotFound)
}

func TestFlightPlansAndConflicts(t *testing.T) {
	_, srv := setup(t)
	m := createMission(t, srv)
	dep := testNow.Add(24 * time.Hour)

	w := do(t, srv, http.MethodPost, "/api/missions/"+string(m.ID)+"/flight-plans", map[string]any{
		"variant": types.PlanVariantAircraft,
		"plan": map[string]any{
			"planned_departure":  dep,
			"planned_arrival":    dep.Add(2 * time.Hour),
			"aircraft_id":        "VH-XYZ",
			"pilot_in_command":   "pic-1",
			"departure_airport":  "YBBN",
			"arrival_airport":    "YBCG",
			"cruise_altitude_ft": 1500,
			"flight_rules":       types.FlightRulesVFR,
		},
	})
	gt.Number(t, w.Code).Equal(http.StatusOK)

	w = do(t, srv, http.MethodPost, "/api/missions/"+string(m.ID)+"/flight-plans", map[string]any{
		"variant": types.PlanVariantDrone,
		"plan": map[string]any{
			"planned_departure":   dep.Add(30 * time.Minute),
			"planned_arrival":     dep.Add(90 * time.Minute),
			"drone_id":            "RPA-9",
			"remote_pilot":        "rp-1",
			"operation":           types.DroneOperationVLOS,
			"max_altitude_agl_ft": 100,
		},
	})
	gt.Number(t, w.Code).Equal(http.StatusOK)

	t.Run("unknown variant", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/missions/"+string(m.ID)+"/flight-plans", map[string]any{
			"variant": "balloon",
			"plan":    map[string]any{},
		})
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("list", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/missions/"+string(m.ID)+"/flight-plans", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.String(t, w.Body.String()).Contains(`"variant":"drone"`)
	})

	t.Run("mission conflicts", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/missions/"+string(m.ID)+"/conflicts", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		resp := decode[struct {
			Conflicts []model.ConflictFinding `json:"conflicts"`
		}](t, w)
		gt.Array(t, resp.Conflicts).Length(2)
	})

	t.Run("fleet conflicts", func(t *testing.T) {
		from := dep.Add(-time.Hour).Format(time.RFC3339)
		to := dep.Add(time.Hour).Format(time.RFC3339)
		w := do(t, srv, http.MethodGet, "/api/fleet/conflicts?from="+from+"&to="+to, nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		report := decode[usecase.FleetReport](t, w)
		gt.Number(t, report.Plans).Equal(2)
		gt.Array(t, report.ByMission[m.ID]).Length(2)
	})

	t.Run("fleet window must be RFC3339", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/fleet/conflicts?from=yesterday", nil)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})
}

type staticReporter struct {
	report *usecase.FleetReport
}

func (s staticReporter) LastReport() *usecase.FleetReport { return s.report }

func TestLatestFleetConflicts(t *testing.T) {
	t.Run("no report yet", func(t *testing.T) {
		_, srv := setup(t, server.WithFleetReporter(staticReporter{}))
		w := do(t, srv, http.MethodGet, "/api/fleet/conflicts/latest", nil)
		gt.Number(t, w.Code).Equal(http.StatusNoContent)
	})

	t.Run("report available", func(t *testing.T) {
		uc, _ := setup(t)
		report, err := uc.FlightPlan.CheckFleet(context.Background(), testNow, testNow.Add(time.Hour))
		gt.NoError(t, err).Required()

		srv := server.New(uc, server.WithFleetReporter(staticReporter{report: report}))
		w := do(t, srv, http.MethodGet, "/api/fleet/conflicts/latest", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
	})

	t.Run("route absent without reporter", func(t *testing.T) {
		_, srv := setup(t)
		w := do(t, srv, http.MethodGet, "/api/fleet/conflicts/latest", nil)
		gt.Number(t, w.Code).Equal(http.StatusNotFound)
	})
}
