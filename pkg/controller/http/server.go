package http

import (
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/sortie/pkg/usecase"
)

// FleetReporter exposes the latest background fleet check
type FleetReporter interface {
	LastReport() *usecase.FleetReport
}

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	fleet  FleetReporter
}

type Options func(*Server)

func WithFleetReporter(reporter FleetReporter) Options {
	return func(s *Server) {
		s.fleet = reporter
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true, Timeout: 2 * time.Second}).Handle)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/missions", func(r chi.Router) {
			r.Get("/", s.listMissions)
			r.Post("/", s.createMission)

			r.Route("/{missionID}", func(r chi.Router) {
				r.Get("/", s.getMissionSummary)
				r.Get("/readiness", s.getReadiness)
				r.Get("/conflicts", s.getMissionConflicts)
				r.Post("/approve", s.approveMission)

				r.Get("/risk-entries", s.listRiskEntries)
				r.Get("/flight-plans", s.listFlightPlans)
				r.Post("/flight-plans", s.saveFlightPlan)

				r.Get("/jsa", s.getJSA)
				r.Put("/jsa", s.saveJSA)
				r.Post("/jsa/authorize", s.authorizeJSA)
			})
		})

		r.Route("/risk-entries", func(r chi.Router) {
			r.Post("/", s.saveRiskEntry)
			r.Get("/{riskEntryID}", s.getRiskEntry)
			r.Post("/{riskEntryID}/accept", s.acceptRiskEntry)
		})

		r.Route("/fleet", func(r chi.Router) {
			r.Get("/conflicts", s.getFleetConflicts)
			if s.fleet != nil {
				r.Get("/conflicts/latest", s.getLatestFleetConflicts)
			}
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
