package auth

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/ticketdesk/pkg/httpx"
	"github.com/ghuser/ticketdesk/pkg/logger"
)

// SessionName is the cookie name carrying the encrypted session ID.
const SessionName = "ticketdesk_session"

const sessionOrgIDKey = "org_id"

// RequireAuth rejects requests without a session naming a valid org with 401.
// Otherwise the org ID is placed in the context for OrgIDFromCtx and bound
// as org_id on every context-aware log record of the request.
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, SessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				unauthorized(w, "authentication required")
				return
			}

			orgIDStr, ok := session.Values[sessionOrgIDKey].(string)
			if !ok || orgIDStr == "" {
				log.WarnContext(r.Context(), "session missing org_id")
				unauthorized(w, "authentication required")
				return
			}

			orgID, err := uuid.Parse(orgIDStr)
			if err != nil || orgID == uuid.Nil {
				log.WarnContext(r.Context(), "invalid org_id in session", "org_id", orgIDStr, "error", err)
				unauthorized(w, "invalid session data")
				return
			}

			ctx := logger.WithContextAttrs(WithOrgID(r.Context(), orgID), "org_id", orgID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StartSession binds orgID to the caller's session and writes the cookie.
func StartSession(store sessions.Store, w http.ResponseWriter, r *http.Request, orgID uuid.UUID) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	session.Values[sessionOrgIDKey] = orgID.String()
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// EndSession expires the caller's session and clears the cookie.
func EndSession(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	httpx.JSONError(w, http.StatusUnauthorized, msg)
}
