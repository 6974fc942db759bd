package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prodscope/prodscope/internal/apperr"
	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/internal/store"
)

// runHeader carries the persisted run ID back on pipeline responses.
const runHeader = "X-Run-ID"

// runPipeline adapts a pipeline entry point into a handler that records the
// invocation as a run: created on receipt, completed with the result, or
// failed with the error message.
func runPipeline[Req any, Resp any](s *Server, kind model.RunKind, fn func(context.Context, Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req Req
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.Validation("invalid request body: %v", err))
			return
		}

		rawReq, err := json.Marshal(req)
		if err != nil {
			writeError(w, err)
			return
		}
		run, err := s.store.CreateRun(ctx, kind, rawReq)
		if err != nil {
			writeError(w, err)
			return
		}

		resp, err := fn(ctx, req)
		if err != nil {
			if ferr := s.store.FailRun(ctx, run.ID, err.Error()); ferr != nil {
				zap.L().Error("recording run failure", zap.String("run_id", run.ID), zap.Error(ferr))
			}
			writeError(w, err)
			return
		}

		rawResp, err := json.Marshal(resp)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.store.CompleteRun(ctx, run.ID, rawResp); err != nil {
			zap.L().Error("recording run completion", zap.String("run_id", run.ID), zap.Error(err))
		}

		w.Header().Set(runHeader, run.ID)
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Kind:   model.RunKind(q.Get("kind")),
		Status: model.RunStatus(q.Get("status")),
		Limit:  20,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, apperr.Validation("limit must be a positive integer"))
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, apperr.Validation("offset must be a non-negative integer"))
			return
		}
		filter.Offset = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*model.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

type errorBody struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
	Step    string      `json:"step,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	body := errorBody{Kind: kind, Message: err.Error(), Step: apperr.StepOf(err)}

	// The kind prefix is structural; keep the message itself clean.
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Err != nil {
		body.Message = ae.Err.Error()
	}
	if kind == apperr.KindInternal {
		zap.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, apperr.HTTPStatus(kind), map[string]errorBody{"error": body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encoding response", zap.Error(err))
	}
}
