package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/brigade/pkg/auth"
	"github.com/ghuser/brigade/pkg/httpx"
	pkgvalidator "github.com/ghuser/brigade/pkg/validator"
	appsvcs "github.com/ghuser/brigade/services/inventory/application/services"
)

// SessionRequest is the request body for POST /session.
type SessionRequest struct {
	PersonID int64 `json:"person_id" validate:"required,gt=0" example:"9"`
} // @name SessionRequest

// SessionResponse names the person bound to the session.
type SessionResponse struct {
	PersonID    int64  `json:"person_id" example:"9"`
	DisplayName string `json:"display_name" example:"Quartermaster"`
} // @name SessionResponse

// SessionHandler handles POST and DELETE /session. Identity is asserted by the
// upstream gateway; this only binds an active directory member to the cookie.
type SessionHandler struct {
	base
	store sessions.Store
}

// NewSessionHandler returns a SessionHandler.
func NewSessionHandler(svc *appsvcs.Services, store sessions.Store, opts Options) *SessionHandler {
	return &SessionHandler{base: base{svc, opts}, store: store}
}

// Start opens a session for an active person.
//
//	@Summary	Start session
//	@Tags		session
//	@Accept		json
//	@Produce	json
//	@Param		request	body		SessionRequest	true	"Person"
//	@Success	200		{object}	SessionResponse
//	@Failure	404		{object}	errhttp.ErrorResponse
//	@Router		/session [post]
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[SessionRequest](w, r)
	if !ok {
		return
	}
	p, err := h.svc.Catalog.GetPerson(r.Context(), req.PersonID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := auth.StartSession(w, r, h.store, p.ID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not start session")
		return
	}
	httpx.JSON(w, http.StatusOK, SessionResponse{PersonID: p.ID, DisplayName: p.DisplayName})
}

// End expires the caller's session.
//
//	@Summary	End session
//	@Tags		session
//	@Success	204
//	@Router		/session [delete]
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := auth.EndSession(w, r, h.store); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "could not end session")
		return
	}
	httpx.NoContent(w)
}
