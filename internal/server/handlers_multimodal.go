package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opencode-ai/agentcore/internal/formatter"
	"github.com/opencode-ai/agentcore/internal/stream"
	"github.com/opencode-ai/agentcore/pkg/types"
)

// multimodalRequest is the Simple multimodal API body (spec §6, §4.4
// simplemultimodal formatter).
type multimodalRequest struct {
	Model    string               `json:"model"`
	Messages []types.TraceMessage `json:"messages"`
}

// handleMultimodal serves POST /v1/multimodal and
// POST /v1/multimodal/{sessionID}. Without a path session id the
// request creates a fresh ephemeral session; with one it addresses an
// existing (or lazily created) persistent session.
func (s *Server) handleMultimodal(w http.ResponseWriter, r *http.Request) {
	var req multimodalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Message: "invalid JSON body", Type: "invalid_request"},
		})
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	ephemeral := sessionID == ""

	rs, resolvedID, err := s.mgr.HandleRequest(r.Context(), newRequestID(), sessionID, "", ephemeral, req.Messages)
	if err != nil {
		writeErr(w, err)
		return
	}

	sseWriter, err := stream.NewSSEWriter(w)
	if err != nil {
		writeErr(w, err)
		return
	}

	fmt := formatter.NewSimpleMultimodal(resolvedID, req.Model)
	_ = stream.SessionToSSEStream(r.Context(), rs, sseWriter, fmt, stream.Options{
		SessionID: resolvedID,
		Heartbeat: true,
	})
}
