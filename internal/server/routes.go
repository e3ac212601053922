package server

// setupRoutes configures the six HTTP routes spec §6 names, plus the
// supplemented session-listing route (SPEC_FULL.md §4).
func (s *Server) setupRoutes() {
	r := s.router

	r.Post("/v1/multimodal", s.handleMultimodal)
	r.Post("/v1/multimodal/{sessionID}", s.handleMultimodal)

	r.Post("/v1/chat/completions", s.handleChatCompletions)

	r.Post("/v1/responses", s.handleCreateResponse)
	r.Get("/v1/responses/{id}", s.handleGetResponse)
	r.Post("/v1/responses/{id}/cancel", s.handleCancelResponse)

	r.Get("/v1/sessions", s.handleListSessions)
}
