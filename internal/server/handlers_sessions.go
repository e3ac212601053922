package server

import (
	"net/http"
)

// handleListSessions serves GET /v1/sessions: a thin read-only
// projection of the manager's in-memory registry for operational
// visibility (spec §4 supplemented "Session listing & lookup"),
// grounded on teacher's listSessions handler. No persistence is added —
// this lists whatever the process currently holds.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mgr.ListSessions())
}
