// Package httpapi exposes the extraction run over HTTP for schedulers that
// cannot shell out to the CLI. One run at a time; the engine drives a single
// GUI session and concurrent runs would interleave keystrokes.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sapflow/cli/internal/errs"
	"sapflow/cli/internal/orchestrator"
)

// Runner executes one extraction run.
type Runner interface {
	Run(ctx context.Context, cmd orchestrator.RunCommand) (*orchestrator.RunResult, error)
}

// Server handles run requests.
type Server struct {
	runner Runner
	log    *slog.Logger
	busy   sync.Mutex
}

// NewServer wires the router around runner.
func NewServer(runner Runner, log *slog.Logger) *Server {
	return &Server{runner: runner, log: log}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sap/run", s.handleRun)
	})
	return r
}

type runRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type runResponse struct {
	Status           string `json:"status"`
	NoticeExportFile string `json:"notice_export_file,omitempty"`
	LookupExportFile string `json:"lookup_export_file,omitempty"`
	RecordCount      int    `json:"record_count,omitempty"`
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body is not valid json")
		return
	}
	cmd, err := parseCommand(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_command", err.Error())
		return
	}

	if !s.busy.TryLock() {
		writeError(w, http.StatusConflict, "run_in_progress", "an extraction run is already executing")
		return
	}
	defer s.busy.Unlock()

	log := s.log.With("request_id", middleware.GetReqID(r.Context()))
	res, err := s.runner.Run(r.Context(), cmd)
	if err != nil {
		log.Error("run failed", "kind", string(errs.KindOf(err)), "error", err)
		writeError(w, statusFor(err), string(errs.KindOf(err)), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		Status:           "completed",
		NoticeExportFile: res.NoticeExport,
		LookupExportFile: res.LookupExport,
		RecordCount:      res.RecordCount,
	})
}

func parseCommand(req runRequest) (orchestrator.RunCommand, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return orchestrator.RunCommand{}, errs.Validation("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return orchestrator.RunCommand{}, errs.Validation("end_date must be YYYY-MM-DD")
	}
	cmd := orchestrator.RunCommand{Start: start, End: end}
	return cmd, cmd.Validate()
}

func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.InvalidCommand:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Status: "failed", Error: code, Detail: detail})
}
