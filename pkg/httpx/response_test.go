package httpx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/brigade/pkg/httpx"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusOK, map[string]int{"quantity": 2})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("unexpected Content-Type: %q", ct)
	}
	if xct := w.Header().Get("X-Content-Type-Options"); xct != "nosniff" {
		t.Errorf("expected nosniff, got %q", xct)
	}
	var body map[string]int
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["quantity"] != 2 {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestJSON_UnencodableValueIs500(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("fallback body must be JSON: %v", err)
	}
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.Created(w, "/api/inventory/items/7", map[string]int{"id": 7})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/api/inventory/items/7" {
		t.Errorf("unexpected Location: %q", loc)
	}
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.NoContent(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", w.Code, w.Body.String())
	}
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSONError(w, http.StatusUnauthorized, "authentication required")

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if w.Code != http.StatusUnauthorized || body["error"] != "authentication required" {
		t.Errorf("unexpected response: %d %v", w.Code, body)
	}
}

func TestSafeError(t *testing.T) {
	err := errors.New("pq: connection reset")
	tests := []struct {
		name       string
		status     int
		production bool
		want       string
	}{
		{"development keeps detail", http.StatusServiceUnavailable, false, err.Error()},
		{"production hides 5xx", http.StatusServiceUnavailable, true, "Service Unavailable"},
		{"production keeps 4xx", http.StatusConflict, true, err.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := httpx.SafeError(err, tt.status, tt.production); got != tt.want {
				t.Fatalf("SafeError = %q, want %q", got, tt.want)
			}
		})
	}
}
