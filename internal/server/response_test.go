package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opencode-ai/agentcore/internal/sessionerr"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]string{"message": "hello"})

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result["message"] != "hello" {
		t.Errorf("expected message hello, got %s", result["message"])
	}
}

func TestWriteErr_SessionError(t *testing.T) {
	w := httptest.NewRecorder()
	writeErr(w, sessionerr.NotFound("session not found: s1"))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	var result ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Error.Type != "not_found" {
		t.Errorf("expected type not_found, got %s", result.Error.Type)
	}
	if result.Error.Message != "session not found: s1" {
		t.Errorf("unexpected message %q", result.Error.Message)
	}
}

func TestWriteErr_OpaqueError(t *testing.T) {
	w := httptest.NewRecorder()
	writeErr(w, errPlain("boom"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	var result ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Error.Type != "internal_error" {
		t.Errorf("expected internal_error, got %s", result.Error.Type)
	}
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	writeSuccess(w)

	var result map[string]bool
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result["success"] {
		t.Error("expected success true")
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
