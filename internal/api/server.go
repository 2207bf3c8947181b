package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpgo/bizplan/internal/calculation"
	"github.com/rpgo/bizplan/internal/config"
	"github.com/rpgo/bizplan/internal/domain"
	"github.com/rpgo/bizplan/internal/store"
)

// maxPlanBytes bounds request bodies.
const maxPlanBytes = 1 << 20

// RunIDHeader carries the archive ID of a stored run.
const RunIDHeader = "X-Run-ID"

// Server exposes the projection engine over HTTP.
type Server struct {
	engine   *calculation.ProjectionEngine
	parser   *config.InputParser
	settings config.Settings
	runs     *store.Store
	logger   calculation.Logger
}

// NewServer builds a server. runs may be nil, in which case nothing is archived
// and the /api/runs endpoints answer 404.
func NewServer(engine *calculation.ProjectionEngine, settings config.Settings, runs *store.Store, logger calculation.Logger) *Server {
	if engine == nil {
		engine = calculation.NewProjectionEngine()
	}
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	return &Server{
		engine:   engine,
		parser:   config.NewInputParser(),
		settings: settings,
		runs:     runs,
		logger:   logger,
	}
}

// Routes returns the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/project", s.handleRun(calculation.RunProject))
		r.Post("/tornado", s.handleRun(calculation.RunTornado))
		r.Post("/simulate", s.handleRun(calculation.RunSimulate))
		r.Post("/report", s.handleRun(calculation.RunReport))
		r.Get("/runs", s.handleRunsList)
		r.Get("/runs/{id}", s.handleRunGet)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRun(kind calculation.RunKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := s.decodePlan(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		plan.MonteCarlo = s.settings.ApplyTo(plan.MonteCarlo)

		report, err := s.engine.Run(r.Context(), kind, plan)
		if err != nil {
			if r.Context().Err() != nil {
				s.logger.Warnf("%s %q cancelled: %v", kind, plan.Name, err)
				return
			}
			writeError(w, http.StatusBadRequest, err)
			return
		}

		if s.runs != nil {
			id, err := s.runs.Save(r.Context(), string(kind), plan.Name, report)
			if err != nil {
				s.logger.Errorf("archive %s run: %v", kind, err)
			} else {
				w.Header().Set(RunIDHeader, id)
			}
		}

		switch kind {
		case calculation.RunTornado:
			writeJSON(w, http.StatusOK, report.Sensitivity)
		case calculation.RunSimulate:
			writeJSON(w, http.StatusOK, report.MonteCarlo)
		default:
			writeJSON(w, http.StatusOK, report)
		}
	}
}

func (s *Server) decodePlan(r *http.Request) (*domain.Plan, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPlanBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("request body must be a plan")
	}
	var plan domain.Plan
	if err := json.Unmarshal(body, &plan); err != nil {
		return nil, fmt.Errorf("invalid plan JSON: %w", err)
	}
	return s.parser.Prepare(&plan)
}

func (s *Server) handleRunsList(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, errors.New("run archive disabled"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := s.runs.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunGet(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, errors.New("run archive disabled"))
		return
	}
	run, err := s.runs.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
