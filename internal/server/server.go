// Package server exposes the cost and score engines over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /package/{id}/cost?dependency=true|false
//	GET  /cost?name=<pkg>&version=<v>&dependency=true|false
//	POST /rate   {"url": "https://github.com/owner/repo"}
//
// Errors are JSON bodies of the form {"code": "...", "message": "..."} with
// the status chosen by errors.HTTPStatus.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netscore/pkg/cost"
	"github.com/matzehuels/netscore/pkg/errors"
	"github.com/matzehuels/netscore/pkg/registry"
	"github.com/matzehuels/netscore/pkg/score"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "X-Request-Id"

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

// Costs answers cost queries. *cost.Service satisfies it.
type Costs interface {
	Cost(ctx context.Context, id cost.ID, includeDependencies bool) (map[cost.ID]cost.Entry, error)
	CostOf(ctx context.Context, name, version string, includeDependencies bool) (cost.ID, map[cost.ID]cost.Entry, error)
}

// Rater scores a repository URL. *score.Engine satisfies it.
type Rater interface {
	Score(ctx context.Context, url string) score.Record
}

// Server routes HTTP requests to the engines.
type Server struct {
	costs  Costs
	rater  Rater
	logger *log.Logger
	router chi.Router
}

// New creates a Server. A nil logger means log.Default().
func New(costs Costs, rater Rater, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{costs: costs, rater: rater, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/package/{id}/cost", s.handlePackageCost)
	r.Get("/cost", s.handleCostByName)
	r.Post("/rate", s.handleRate)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePackageCost(w http.ResponseWriter, r *http.Request) {
	id, err := registry.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed package id"))
		return
	}
	deps, err := dependencyFlag(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := s.costs.Cost(r.Context(), id, deps)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type costResponse struct {
	ID      cost.ID                `json:"id"`
	Entries map[cost.ID]cost.Entry `json:"entries"`
}

func (s *Server) handleCostByName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	deps, err := dependencyFlag(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, entries, err := s.costs.CostOf(r.Context(), q.Get("name"), q.Get("version"), deps)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, costResponse{ID: id, Entries: entries})
}

type rateRequest struct {
	URL string `json:"url"`
}

// handleRate always answers 200 once the body parses; scoring failures
// show up as zero metrics in the record.
func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body must be JSON"))
		return
	}
	if req.URL == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "url is required"))
		return
	}
	writeJSON(w, http.StatusOK, s.rater.Score(r.Context(), req.URL))
}

func dependencyFlag(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("dependency")
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "dependency must be true or false, got %q", raw)
	}
	return v, nil
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
