package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opencode-ai/agentcore/internal/agentsession"
	"github.com/opencode-ai/agentcore/internal/formatter"
	"github.com/opencode-ai/agentcore/internal/sessionerr"
	"github.com/opencode-ai/agentcore/internal/stream"
	"github.com/opencode-ai/agentcore/pkg/types"
)

// responsesRequest is the OpenAI Responses-compatible request body.
// Store defaults to true per spec §6; a nil value is treated as true.
type responsesRequest struct {
	Model              string               `json:"model"`
	Stream             bool                 `json:"stream"`
	Messages           []types.TraceMessage `json:"messages"`
	Store              *bool                `json:"store,omitempty"`
	PreviousResponseID string               `json:"previous_response_id,omitempty"`
}

func (r responsesRequest) persistent() bool {
	store := r.Store == nil || *r.Store
	return store || r.PreviousResponseID != ""
}

// handleCreateResponse serves POST /v1/responses: persistent iff
// store=true (the default) or previous_response_id names an existing
// session to continue (spec §6).
func (s *Server) handleCreateResponse(w http.ResponseWriter, r *http.Request) {
	var req responsesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, sessionerr.InvalidRequest("invalid JSON body"))
		return
	}

	ephemeral := !req.persistent()
	requestID := newRequestID()

	var (
		rs         *agentsession.RequestSession
		resolvedID string
		err        error
	)
	if req.PreviousResponseID != "" {
		// previous_response_id names a session that must already exist:
		// unlike the bare-create path this never falls back to creating
		// one (spec §8) — GetSession's NotFound propagates as-is.
		sess, getErr := s.mgr.GetSession(req.PreviousResponseID)
		if getErr != nil {
			writeErr(w, getErr)
			return
		}
		resolvedID = req.PreviousResponseID
		rs, err = sess.HandleRequest(r.Context(), requestID, req.Messages)
	} else {
		rs, resolvedID, err = s.mgr.HandleRequest(r.Context(), requestID, "", "", ephemeral, req.Messages)
	}
	if err != nil {
		writeErr(w, err)
		return
	}

	fmt := formatter.NewOpenAIResponses(resolvedID, req.Model)
	opts := stream.Options{SessionID: resolvedID, Heartbeat: req.Stream}

	if !req.Stream {
		out, err := stream.CollectFinal(r.Context(), rs, fmt, opts)
		if err != nil {
			writeErr(w, sessionerr.Wrap(sessionerr.KindEventStreamError, "stream ended before completion", err))
			return
		}
		if out == nil {
			writeErr(w, sessionerr.New(sessionerr.KindExecutionError, "agent exited without completing"))
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	sseWriter, err := stream.NewSSEWriter(w)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = stream.SessionToSSEStream(r.Context(), rs, sseWriter, fmt, opts)
}

// handleGetResponse serves GET /v1/responses/{id}: a read-only follow
// of an existing session's event feed (spec §6). FollowPastPause is set,
// so it does not stop at a Paused status, only at Completed. It sends no
// new input and takes no write lock.
func (s *Server) handleGetResponse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := s.mgr.GetSession(id)
	if err != nil {
		writeErr(w, err)
		return
	}

	sub := sess.Feed().Subscribe()
	defer sub.Unsubscribe()

	sseWriter, err := stream.NewSSEWriter(w)
	if err != nil {
		writeErr(w, err)
		return
	}

	fmt := formatter.NewOpenAIResponses(id, "")
	_ = stream.EventToSSEStream(r.Context(), sub, sseWriter, fmt, stream.Options{
		SessionID:       id,
		FollowPastPause: true,
		Heartbeat:       true,
	})
}

// handleCancelResponse serves POST /v1/responses/{id}/cancel: a best-
// effort, idempotent cancel (spec §8 invariant 6) acknowledged with a
// plain JSON ack regardless of whether the session still existed.
func (s *Server) handleCancelResponse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.mgr.CancelSession(r.Context(), id); err != nil {
		writeErr(w, sessionerr.Wrap(sessionerr.KindExecutionError, "cancel failed", err))
		return
	}
	writeSuccess(w)
}
