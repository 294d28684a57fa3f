/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package server exposes the pipeline over HTTP.
//
// Routes:
//
//	POST /chat            one conversational message (StartOrResume)
//	POST /iterate         one draft and one implementation
//	POST /run             gate, draft and review loop in one call
//	POST /process         like /chat, streaming loop events as server-sent events
//	POST /extract         files named in a code artifact
//	POST /package         the same files as a zip archive
//	GET  /sessions/{id}   session state, or a markdown transcript with ?format=markdown
//	GET  /healthz         liveness
//	GET  /metrics         prometheus metrics
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"chainguard.dev/duoforge/duo/collaborator"
	"chainguard.dev/duoforge/duo/pipeline"
	"chainguard.dev/duoforge/duo/session"
	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/terraform-infra-common/pkg/httpmetrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds request bodies. Code artifacts can be large.
const maxBodyBytes = 8 << 20

// Server serves one Pipeline.
type Server struct {
	pipeline *pipeline.Pipeline
	mux      *http.ServeMux
}

// New creates a Server.
func New(p *pipeline.Pipeline) *Server {
	s := &Server{pipeline: p, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /chat", s.chat)
	s.mux.HandleFunc("POST /iterate", s.iterate)
	s.mux.HandleFunc("POST /run", s.run)
	s.mux.HandleFunc("POST /process", s.process)
	s.mux.HandleFunc("POST /extract", s.extract)
	s.mux.HandleFunc("POST /package", s.pack)
	s.mux.HandleFunc("GET /sessions/{id}", s.session)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.Handle("GET /metrics", promhttp.Handler())
	return s
}

// Handler returns the instrumented handler with CORS enabled.
func (s *Server) Handler() http.Handler {
	return httpmetrics.Handler("duoforge", withCORS(withLogger(s.mux)))
}

// withCORS allows any origin and answers preflight requests.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := clog.FromContext(r.Context()).With("method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(clog.WithLogger(r.Context(), log)))
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, collaborator.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := clog.FromContext(r.Context()).With("status", status, "error", err)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed")
	} else {
		log.Info("Request rejected")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// decode reads a JSON body into v. Malformed bodies are invalid requests.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(pipeline.ErrInvalidRequest, err)
	}
	return nil
}
