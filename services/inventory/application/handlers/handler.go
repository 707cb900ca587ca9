// Package handlers holds the HTTP handlers of the inventory context. Each
// endpoint is a small struct whose Execute method is mounted by the api package.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/brigade/pkg/auth"
	"github.com/ghuser/brigade/pkg/errhttp"
	"github.com/ghuser/brigade/pkg/httpx"
	"github.com/ghuser/brigade/pkg/telemetry"
	appsvcs "github.com/ghuser/brigade/services/inventory/application/services"
)

// Options tunes error rendering.
type Options struct {
	// Production hides storage failure details from clients.
	Production bool
}

// base is embedded by every handler.
type base struct {
	svc  *appsvcs.Services
	opts Options
}

// fail writes err and reports server-side failures to Sentry.
func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status, kind := errhttp.Classify(err); status >= http.StatusInternalServerError {
		telemetry.CaptureError(r.Context(), err, map[string]string{
			"error.kind": kind,
			"http.path":  r.URL.Path,
		})
	}
	errhttp.Write(w, err, b.opts.Production)
}

// pathID parses the chi URL parameter name as a positive id. It writes a 400
// and returns false when the parameter is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt reads a non-negative integer query parameter, falling back to def.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

// responsible returns the authenticated person, writing a 401 when absent.
func responsible(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := auth.PersonIDFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	return id, true
}
