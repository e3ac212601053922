package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/opencode-ai/agentcore/internal/formatter"
	"github.com/opencode-ai/agentcore/internal/sessionerr"
	"github.com/opencode-ai/agentcore/internal/stream"
	"github.com/opencode-ai/agentcore/pkg/types"
)

// chatCompletionsRequest is the OpenAI Chat Completions-compatible
// request body this endpoint accepts (spec §6 protocol-agnostic
// projection: model, stream, messages).
type chatCompletionsRequest struct {
	Model    string               `json:"model"`
	Stream   bool                 `json:"stream"`
	Messages []types.TraceMessage `json:"messages"`
}

// handleChatCompletions serves POST /v1/chat/completions. Sessions
// created here are always ephemeral (spec §6): the endpoint has no
// notion of a persisted conversation id.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatCompletionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, sessionerr.InvalidRequest("invalid JSON body"))
		return
	}

	requestID := newRequestID()
	rs, resolvedID, err := s.mgr.HandleRequest(r.Context(), requestID, "", "", true, req.Messages)
	if err != nil {
		writeErr(w, err)
		return
	}

	created := time.Now().Unix()
	fmt := formatter.NewOpenAIChat(requestID, req.Model, req.Stream, created)
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
