// Package server exposes the analysis pipeline over HTTP: submit a
// repository, list and fetch stored runs, and render reports.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalbox/signalbox/analysis"
	"github.com/signalbox/signalbox/fetch"
	"github.com/signalbox/signalbox/report"
	"github.com/signalbox/signalbox/store"
)

// maxRequestBodySize limits POST body sizes to prevent DoS.
const maxRequestBodySize = 1 << 20 // 1 MB

// RepositoryFetcher pulls a repository's analyzable files. Satisfied by
// *fetch.Client; tests substitute a stub.
type RepositoryFetcher interface {
	FetchRepository(ctx context.Context, repoURL string) (*fetch.Repository, error)
}

// Server wires the fetcher, analyzer, run store, and report generator
// behind an HTTP API.
type Server struct {
	analyzer *analysis.Analyzer
	fetcher  RepositoryFetcher
	runs     *store.Store
	reports  *report.Generator
	logger   *slog.Logger
	metrics  *Metrics
}

// New creates an API server.
func New(analyzer *analysis.Analyzer, fetcher RepositoryFetcher, runs *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		analyzer: analyzer,
		fetcher:  fetcher,
		runs:     runs,
		reports:  report.New(report.DefaultConfig()),
		logger:   logger,
		metrics:  NewMetrics(),
	}
}

// RegisterHandlers registers all API handlers under the given prefix.
// The prefix should be the path segment without a trailing slash
// (e.g. "api"). Handlers are registered as:
//
//	POST   <prefix>/analyze
//	GET    <prefix>/analyses
//	GET    <prefix>/analyses/{id}
//	GET    <prefix>/analyses/{id}/report
//	DELETE <prefix>/analyses/{id}
//	GET    /healthz
//	GET    /metrics
func (s *Server) RegisterHandlers(prefix string, mux *http.ServeMux) {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}

	mux.HandleFunc("POST "+prefix+"analyze", s.handleAnalyze)
	mux.HandleFunc("GET "+prefix+"analyses", s.handleListAnalyses)
	mux.HandleFunc("GET "+prefix+"analyses/{id}", s.handleGetAnalysis)
	mux.HandleFunc("GET "+prefix+"analyses/{id}/report", s.handleGetReport)
	mux.HandleFunc("DELETE "+prefix+"analyses/{id}", s.handleDeleteAnalysis)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
}

// AnalyzeRequest is the request body for POST /api/analyze.
type AnalyzeRequest struct {
	RepoURL string `json:"repo_url"`
}

// AnalyzeResponse wraps the report document with run identification.
type AnalyzeResponse struct {
	RunID  string          `json:"run_id"`
	Report report.Document `json:"report"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AnalyzeRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.RepoURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "repo_url is required"})
		return
	}

	repo, err := s.fetcher.FetchRepository(r.Context(), req.RepoURL)
	if err != nil {
		s.logger.Error("repository fetch failed", slog.String("url", req.RepoURL), slog.String("error", err.Error()))
		s.metrics.analysesTotal.WithLabelValues("none", "fetch_error").Inc()
		status := http.StatusBadGateway
		if errors.Is(err, fetch.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, errorResponse{Error: "failed to fetch repository: " + err.Error()})
		return
	}

	run, err := s.analyzer.Analyze(r.Context(), req.RepoURL, repo.Paths(), repo.Files)
	if err != nil {
		if errors.Is(err, analysis.ErrNoFrameworkDetected) {
			s.metrics.analysesTotal.WithLabelValues("none", "not_detected").Inc()
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error: "no supported AI framework detected; currently supports AutoGen and LangChain",
			})
			return
		}
		s.logger.Error("analysis failed", slog.String("url", req.RepoURL), slog.String("error", err.Error()))
		s.metrics.analysesTotal.WithLabelValues("none", "error").Inc()
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "analysis failed"})
		return
	}

	if err := s.runs.SaveRun(r.Context(), run); err != nil {
		s.logger.Error("saving run failed", slog.String("run_id", run.ID), slog.String("error", err.Error()))
		s.metrics.analysesTotal.WithLabelValues(run.Detection.Framework, "store_error").Inc()
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to persist analysis"})
		return
	}

	s.metrics.analysesTotal.WithLabelValues(run.Detection.Framework, "ok").Inc()
	s.metrics.analysisDuration.Observe(time.Since(start).Seconds())
	s.metrics.savingsPercent.Observe(run.Workflow.SavingsPercent)

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		RunID:  run.ID,
		Report: report.BuildDocument(run),
	})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.runs.ListRuns(r.Context())
	if err != nil {
		s.logger.Error("listing runs failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list analyses"})
		return
	}

	type item struct {
		RunID          string    `json:"run_id"`
		Source         string    `json:"source"`
		Framework      string    `json:"framework"`
		Confidence     string    `json:"confidence"`
		SavingsPercent float64   `json:"savings_percent"`
		CompletedAt    time.Time `json:"completed_at"`
	}
	items := make([]item, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, item{
			RunID:          s.ID,
			Source:         s.Source,
			Framework:      s.Framework,
			Confidence:     s.Confidence,
			SavingsPercent: s.SavingsPercent,
			CompletedAt:    s.CompletedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"analyses": items})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, AnalyzeResponse{RunID: run.ID, Report: report.BuildDocument(run)})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}

	switch format {
	case "html":
		html, err := s.reports.HTML(run)
		if err != nil {
			s.logger.Error("rendering report failed", slog.String("run_id", run.ID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to render report"})
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))

	case "markdown":
		md, err := s.reports.Markdown(run)
		if err != nil {
			s.logger.Error("rendering report failed", slog.String("run_id", run.ID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to render report"})
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(md))

	case "json":
		writeJSON(w, http.StatusOK, report.BuildDocument(run))

	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid format; use html, json, or markdown"})
	}
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.runs.DeleteRun(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "analysis not found"})
			return
		}
		s.logger.Error("deleting run failed", slog.String("run_id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to delete analysis"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "analysis deleted"})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadRun fetches the run named by the {id} path segment, writing the error
// response itself when the run cannot be loaded.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*analysis.Run, bool) {
	id := r.PathValue("id")
	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "analysis not found"})
		} else {
			s.logger.Error("loading run failed", slog.String("run_id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load analysis"})
		}
		return nil, false
	}
	return run, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Response is already partially written; nothing useful to do.
		_ = err
	}
}
