package auth

import (
	"net/http"
	"strconv"

	"github.com/gorilla/sessions"

	"github.com/ghuser/brigade/pkg/httpx"
	"github.com/ghuser/brigade/pkg/logger"
)

const (
	sessionName        = "brigade_session"
	sessionPersonIDKey = "person_id"
)

// RequireAuth rejects requests without a session naming a person and puts
// the person id in the request context for PersonIDFromCtx.
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			raw, ok := session.Values[sessionPersonIDKey].(string)
			if !ok || raw == "" {
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				log.WarnContext(r.Context(), "invalid person_id in session", "person_id", raw)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid session data")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPersonID(r.Context(), id)))
		})
	}
}

// StartSession binds personID to the caller's session cookie.
func StartSession(w http.ResponseWriter, r *http.Request, store sessions.Store, personID int64) error {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return err
	}
	session.Values[sessionPersonIDKey] = strconv.FormatInt(personID, 10)
	return session.Save(r, w)
}

// EndSession expires the caller's session.
func EndSession(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return err
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
