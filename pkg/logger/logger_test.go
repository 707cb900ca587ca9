package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/brigade/pkg/config"
)

func TestNewWithWriter_BindsServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &config.Config{LogLevel: "info", ServiceName: "brigade", ServiceVersion: "1.2.3", Environment: "testing"})

	log.Info("hello")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("parse log line: %v", err)
	}
	for k, want := range map[string]string{"service": "brigade", "version": "1.2.3", "env": "testing", "msg": "hello"} {
		if m[k] != want {
			t.Errorf("%s: got %v, want %q", k, m[k], want)
		}
	}
}

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &config.Config{LogLevel: "warn"})
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at warn level, got %s", buf.String())
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Error("ignored", "k", "v")
	if log.With("a", 1) == nil {
		t.Fatal("With must return a logger")
	}
}

func TestMiddleware_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf)

	r := chi.NewRouter()
	r.Use(Middleware(log))
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))

	m := parseLastLine(t, &buf)
	if m["level"] != "WARN" {
		t.Errorf("expected WARN for 404, got %v", m["level"])
	}
	if m["route"] != "/items/{id}" {
		t.Errorf("expected route pattern, got %v", m["route"])
	}
}
