package auth

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/ticketdesk/pkg/httpx"
	"github.com/ghuser/ticketdesk/pkg/logger"
)

// DevSessionRequest is the body of POST /dev/session.
type DevSessionRequest struct {
	OrgID string `json:"org_id" example:"0b6f1d5e-4f4b-4a8e-9a57-2f3c0a1d9e77"`
} // @name DevSessionRequest

// DevSessionHandler opens a session for any org ID without credentials.
// Mount it only in development; there is no identity provider behind it.
func DevSessionHandler(store sessions.Store, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DevSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		orgID, err := uuid.Parse(req.OrgID)
		if err != nil || orgID == uuid.Nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid org_id")
			return
		}
		if err := StartSession(store, w, r, orgID); err != nil {
			log.ErrorContext(r.Context(), "start session failed", "error", err)
			httpx.JSONError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		httpx.NoContent(w)
	}
}

// LogoutHandler ends the caller's session.
func LogoutHandler(store sessions.Store, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := EndSession(store, w, r); err != nil {
			log.ErrorContext(r.Context(), "end session failed", "error", err)
			httpx.JSONError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		httpx.NoContent(w)
	}
}
