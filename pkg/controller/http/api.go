package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/domain/types"
	"github.com/secmon-lab/sortie/pkg/usecase"
	"github.com/secmon-lab/sortie/pkg/utils/async"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
)

var errBadRequest = goerr.New("bad request")

const defaultFleetWindow = 24 * time.Hour

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("cause", err.Error()))
	}
	return nil
}

func missionIDParam(r *http.Request) types.MissionID {
	return types.MissionID(chi.URLParam(r, "missionID"))
}

type createMissionRequest struct {
	ID                     types.MissionID `json:"id"`
	Name                   string          `json:"name"`
	MissionType            string          `json:"mission_type"`
	Description            string          `json:"description"`
	Commander              types.PersonID  `json:"commander"`
	PlannedStart           time.Time       `json:"planned_start"`
	PlannedEnd             time.Time       `json:"planned_end"`
	RiskAssessmentRequired *bool           `json:"risk_assessment_required"`
	JSARequired            *bool           `json:"jsa_required"`
}

func (s *Server) createMission(w http.ResponseWriter, r *http.Request) {
	var req createMissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, nil)
		return
	}

	mission, err := s.uc.Mission.CreateMission(r.Context(), usecase.CreateMissionInput{
		ID:                     req.ID,
		Name:                   req.Name,
		MissionType:            req.MissionType,
		Description:            req.Description,
		Commander:              req.Commander,
		PlannedStart:           req.PlannedStart,
		PlannedEnd:             req.PlannedEnd,
		RiskAssessmentRequired: req.RiskAssessmentRequired,
		JSARequired:            req.JSARequired,
	})
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusCreated, mission)
}

func (s *Server) listMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := s.uc.Mission.ListMissions(r.Context())
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"missions": missions})
}

func (s *Server) getMissionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.uc.Mission.Summary(r.Context(), missionIDParam(r))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) getReadiness(w http.ResponseWriter, r *http.Request) {
	decision, err := s.uc.Mission.EvaluateReadiness(r.Context(), missionIDParam(r))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, decision)
}

func (s *Server) getMissionConflicts(w http.ResponseWriter, r *http.Request) {
	findings, err := s.uc.FlightPlan.ValidateMissionPlans(r.Context(), missionIDParam(r))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"conflicts": nonNil(findings)})
}

func (s *Server) approveMission(w http.ResponseWriter, r *http.Request) {
	mission, decision, err := s.uc.Mission.ApproveMission(r.Context(), missionIDParam(r))
	if err != nil {
		writeError(w, r, err, decision)
		return
	}
	s.scanApprovedWindow(r.Context(), mission)
	writeJSON(w, r, http.StatusOK, mission)
}

// scanApprovedWindow checks the fleet over the approved mission's schedule in the background
// so conflicts with other missions surface in the logs right after approval.
func (s *Server) scanApprovedWindow(ctx context.Context, mission *model.Mission) {
	if mission.PlannedStart.IsZero() || mission.PlannedEnd.IsZero() {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		report, err := s.uc.FlightPlan.CheckFleet(ctx, mission.PlannedStart, mission.PlannedEnd)
		if err != nil {
			return err
		}
		if n := len(report.CrossMission); n > 0 {
			logging.From(ctx).Warn("Approved mission overlaps other missions",
				"mission_id", mission.ID,
				"cross_mission_conflicts", n,
			)
		}
		return nil
	})
}

func (s *Server) listRiskEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.uc.RiskEntry.ListRiskEntries(r.Context(), missionIDParam(r))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"risk_entries": nonNil(entries)})
}

func (s *Server) saveRiskEntry(w http.ResponseWriter, r *http.Request) {
	var entry model.RiskEntry
	if err := decodeJSON(r, &entry); err != nil {
		writeError(w, r, err, nil)
		return
	}

	status := http.StatusOK
	if entry.ID == "" {
		status = http.StatusCreated
	}
	saved, err := s.uc.RiskEntry.SaveRiskEntry(r.Context(), &entry)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, status, saved)
}

func (s *Server) getRiskEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.uc.RiskEntry.GetRiskEntry(r.Context(), types.RiskEntryID(chi.URLParam(r, "riskEntryID")))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, entry)
}

type acceptRiskRequest struct {
	AcceptedBy types.PersonID        `json:"accepted_by"`
	Level      types.AcceptanceLevel `json:"level"`
}

func (s *Server) acceptRiskEntry(w http.ResponseWriter, r *http.Request) {
	var req acceptRiskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, nil)
		return
	}

	id := types.RiskEntryID(chi.URLParam(r, "riskEntryID"))
	entry, err := s.uc.RiskEntry.AcceptRiskEntry(r.Context(), id, req.AcceptedBy, req.Level)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, entry)
}

func (s *Server) getJSA(w http.ResponseWriter, r *http.Request) {
	jsa, err := s.uc.JSA.GetJSA(r.Context(), missionIDParam(r))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, jsa)
}

func (s *Server) saveJSA(w http.ResponseWriter, r *http.Request) {
	var jsa model.JobSafetyAssessment
	if err := decodeJSON(r, &jsa); err != nil {
		writeError(w, r, err, nil)
		return
	}
	jsa.MissionID = missionIDParam(r)

	saved, err := s.uc.JSA.SaveJSA(r.Context(), &jsa)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, saved)
}

func (s *Server) authorizeJSA(w http.ResponseWriter, r *http.Request) {
	jsa, err := s.uc.JSA.AuthorizeJSA(r.Context(), missionIDParam(r))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, jsa)
}

func (s *Server) listFlightPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.uc.FlightPlan.ListFlightPlans(r.Context(), missionIDParam(r))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}

	resp := make([]flightPlanResponse, len(plans))
	for i, p := range plans {
		resp[i] = flightPlanResponse{Variant: p.Variant(), Plan: p}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"flight_plans": resp})
}

// flightPlanResponse tags a plan with its variant so clients can decode it
type flightPlanResponse struct {
	Variant types.PlanVariant `json:"variant"`
	Plan    model.FlightPlan  `json:"plan"`
}

type flightPlanRequest struct {
	Variant types.PlanVariant `json:"variant"`
	Plan    json.RawMessage   `json:"plan"`
}

func (s *Server) saveFlightPlan(w http.ResponseWriter, r *http.Request) {
	var req flightPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, nil)
		return
	}

	var plan model.FlightPlan
	switch req.Variant {
	case types.PlanVariantAircraft:
		plan = &model.AircraftPlan{}
	case types.PlanVariantDrone:
		plan = &model.DronePlan{}
	default:
		writeError(w, r, goerr.Wrap(errBadRequest, "variant must be aircraft or drone",
			goerr.V("variant", string(req.Variant))), nil)
		return
	}
	if err := json.Unmarshal(req.Plan, plan); err != nil {
		writeError(w, r, goerr.Wrap(errBadRequest, "invalid flight plan body", goerr.V("cause", err.Error())), nil)
		return
	}
	plan.Common().Mission = missionIDParam(r)

	saved, err := s.uc.FlightPlan.SaveFlightPlan(r.Context(), plan)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, flightPlanResponse{Variant: saved.Variant(), Plan: saved})
}

func (s *Server) getFleetConflicts(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}

	report, err := s.uc.FlightPlan.CheckFleet(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) getLatestFleetConflicts(w http.ResponseWriter, r *http.Request) {
	report := s.fleet.LastReport()
	if report == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// parseWindow reads RFC3339 from and to query parameters. Missing from is now; missing to is
// from plus 24 hours.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	from := time.Now().UTC()
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, goerr.Wrap(errBadRequest, "from must be RFC3339", goerr.V("from", v))
		}
		from = t
	}

	to := from.Add(defaultFleetWindow)
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, goerr.Wrap(errBadRequest, "to must be RFC3339", goerr.V("to", v))
		}
		to = t
	}
	return from, to, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
