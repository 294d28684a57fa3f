/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"chainguard.dev/duoforge/duo/codepack"
	"chainguard.dev/duoforge/duo/pipeline"
	"chainguard.dev/duoforge/duo/report"
	"chainguard.dev/duoforge/duo/reviewloop"
	"github.com/chainguard-dev/clog"
)

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req pipeline.StartRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	reply, err := s.pipeline.StartOrResume(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) iterate(w http.ResponseWriter, r *http.Request) {
	var req pipeline.IterateRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.pipeline.Iterate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type runRequest struct {
	Requirements string `json:"requirements"`
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.pipeline.RunFullInteraction(r.Context(), req.Requirements)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type processRequest struct {
	Requirement string `json:"requirement"`
	SessionID   string `json:"session_id,omitempty"`
}

// streamMessage is one server-sent event on /process.
type streamMessage struct {
	Type  string            `json:"type"`
	Event *reviewloop.Event `json:"event,omitempty"`
	Reply *pipeline.Reply   `json:"reply,omitempty"`
	Error string            `json:"error,omitempty"`
}

const (
	streamEvent    = "message"
	streamComplete = "complete"
	streamError    = "error"
)

func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	send := func(ctx context.Context, msg streamMessage) {
		b, err := json.Marshal(msg)
		if err != nil {
			clog.FromContext(ctx).With("error", err).Warn("Failed to encode stream message")
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return
		}
		_ = rc.Flush()
	}

	observer := reviewloop.ObserverFunc(func(ctx context.Context, e reviewloop.Event) {
		send(ctx, streamMessage{Type: streamEvent, Event: &e})
	})
	reply, err := s.pipeline.StartOrResume(r.Context(), pipeline.StartRequest{
		SessionID: req.SessionID,
		Message:   req.Requirement,
	}, observer)
	if err != nil {
		clog.FromContext(r.Context()).With("error", err).Warn("Stream failed")
		send(r.Context(), streamMessage{Type: streamError, Error: err.Error()})
		return
	}
	send(r.Context(), streamMessage{Type: streamComplete, Reply: reply})
}

type codeRequest struct {
	Code string `json:"code"`
}

type extractResponse struct {
	Files map[string]string `json:"files"`
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{Files: codepack.Extract(req.Code)})
}

func (s *Server) pack(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	files := codepack.Extract(req.Code)
	if len(files) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: no files found in code", pipeline.ErrInvalidRequest))
		return
	}

	var buf bytes.Buffer
	if err := codepack.WriteZip(&buf, files); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", pipeline.ErrInvalidRequest, err))
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="project.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	sess, err := s.pipeline.Store().Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") != "markdown" {
		writeJSON(w, http.StatusOK, sess)
		return
	}

	var buf bytes.Buffer
	if err := report.Transcript(&buf, sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
