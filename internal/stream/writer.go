package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HeartbeatInterval is how often an idle SSE stream writes a comment
// frame to keep the connection alive through intermediate proxies
// (teacher's sseWriter.writeHeartbeat, same 30s cadence).
const HeartbeatInterval = 30 * time.Second

// SSEWriter wraps an http.ResponseWriter for SSE framing, grounded on
// the reference server's sseWriter: a ResponseController-first flush
// with a Flusher fallback for wrapped/middleware writers.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	rc      *http.ResponseController
}

// NewSSEWriter prepares w for SSE: sets the standard headers and
// returns a writer that can emit frames and heartbeats.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("stream: ResponseWriter does not support flushing")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sw := &SSEWriter{w: w, flusher: flusher, rc: http.NewResponseController(w)}
	sw.flush()
	return sw, nil
}

func (s *SSEWriter) flush() {
	if err := s.rc.Flush(); err != nil {
		s.flusher.Flush()
	}
}

// WriteEvent serializes data and writes it as one SSE frame under the
// given event name. Per spec §6, only the "data:" line is required; the
// "event:" line is written whenever name is non-empty.
func (s *SSEWriter) WriteEvent(name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.WriteRaw(name, payload)
}

// WriteRaw writes an already-serialized payload as one SSE frame.
// Separated from WriteEvent so callers that need to distinguish a
// serialization failure (log and skip, spec §4.4) from a transport
// failure (client gone, end the stream) can marshal themselves first.
func (s *SSEWriter) WriteRaw(name string, payload []byte) error {
	if name != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
			return err
		}
	}
	s.flush()
	return nil
}

// WriteHeartbeat writes an SSE comment frame, invisible to clients'
// "data:" parsers but enough to keep idle connections open.
func (s *SSEWriter) WriteHeartbeat() {
	fmt.Fprint(s.w, ": heartbeat\n\n")
	s.flush()
}
