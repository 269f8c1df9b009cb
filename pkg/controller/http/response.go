package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/domain/model"
	"github.com/secmon-lab/sortie/pkg/service/readiness"
	"github.com/secmon-lab/sortie/pkg/usecase"
	"github.com/secmon-lab/sortie/pkg/utils/errutil"
	"github.com/secmon-lab/sortie/pkg/utils/logging"
	"github.com/secmon-lab/sortie/pkg/utils/safe"
)

// errorResponse is the body of every 4xx response
type errorResponse struct {
	Error    string              `json:"error"`
	Field    string              `json:"field,omitempty"`
	Rule     string              `json:"rule,omitempty"`
	Decision *readiness.Decision `json:"decision,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

// statusOf maps use case and domain errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case model.IsValidation(err),
		errors.Is(err, usecase.ErrInvalidWindow),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrMissionNotFound),
		errors.Is(err, usecase.ErrRiskEntryNotFound),
		errors.Is(err, usecase.ErrJSANotFound),
		errors.Is(err, usecase.ErrFlightPlanNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrMissionAlreadyExists),
		errors.Is(err, usecase.ErrMissionNotPlanning),
		errors.Is(err, usecase.ErrMissionNotReady):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes caller errors as JSON with the offending field and rule. Server errors go
// through errutil so they are logged with stack and reported.
func writeError(w http.ResponseWriter, r *http.Request, err error, decision *readiness.Decision) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		errutil.HandleHTTP(r.Context(), w, err, status)
		return
	}

	resp := errorResponse{Error: err.Error(), Decision: decision}
	if model.IsValidation(err) {
		resp.Field, resp.Rule = model.ValidationDetail(err)
	}

	logging.From(r.Context()).Info("request rejected",
		"status", status,
		"error", err.Error(),
		"field", resp.Field)
	writeJSON(w, r, status, resp)
}
