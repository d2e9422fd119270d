// Package api exposes the solve pipeline over HTTP.
//
// The server is a thin layer over [pipeline.Runner]: one POST endpoint that
// accepts the serializable pipeline options and returns the solve result,
// plus a health endpoint for load balancers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/branchbound/pkg/buildinfo"
	apperrors "github.com/matzehuels/branchbound/pkg/errors"
	"github.com/matzehuels/branchbound/pkg/pipeline"
)

// Server handles solve requests.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server around the given runner.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/solve", s.handleSolve)
	return r
}

// handleHealth reports liveness and the build version.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// solveResponse is the wire shape of a finished solve. Artifacts are
// emitted base64-encoded by encoding/json's []byte handling.
type solveResponse struct {
	*pipeline.Result
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
}

// handleSolve decodes pipeline options, runs the pipeline, and returns the
// result. Only the serializable option fields are accepted; the model must
// arrive inline as model_toml since the server has no shared filesystem
// with its clients.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}
	if opts.ModelPath != "" {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "model_path is not accepted over HTTP, send model_toml"))
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.logger.Warn("solve request failed", "err", err)
		writeError(w, err)
		return
	}

	s.logger.Info("solve request finished",
		"run", result.RunID,
		"objective", result.Objective,
		"cached", result.CacheInfo.SolveHit)

	writeJSON(w, http.StatusOK, solveResponse{Result: result, Artifacts: result.Artifacts})
}

// errorResponse is the wire shape of a failed request.
type errorResponse struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

// writeError maps structured error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidModel,
		apperrors.ErrCodeInvalidVariable, apperrors.ErrCodeInvalidRelation,
		apperrors.ErrCodeInvalidTolerance, apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeModelNotFound,
		apperrors.ErrCodeVariableNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeNoIntegerSolution:
		status = http.StatusUnprocessableEntity
	case apperrors.ErrCodeSearchCancelled:
		status = http.StatusServiceUnavailable
	}

	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: code, Message: apperrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
