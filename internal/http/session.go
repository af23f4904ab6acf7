// Session cookie middleware: every browser gets its own ledger.
package http

import (
	"context"
	"net/http"

	"finsmart/internal/ledger"
	"finsmart/internal/log"
	"finsmart/internal/session"
)

const sessionCookieName = "finsmart_session"

type sessionCtxKey string

const (
	ctxKeySessionID sessionCtxKey = "session_id"
	ctxKeyLedger    sessionCtxKey = "ledger"
)

// withSession resolves the request's session cookie to a ledger, minting a
// new session when the cookie is absent or stale. The ledger and session ID
// land in the request context.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(sessionCookieName); err == nil {
			id = c.Value
		}

		if id == "" {
			fresh, err := session.NewID()
			if err != nil {
				s.logger.ErrorContext(r.Context(), "failed to mint session id", log.FieldError, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			id = fresh
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		l := s.sessions.GetOrCreate(id)
		ctx := context.WithValue(r.Context(), ctxKeySessionID, id)
		ctx = context.WithValue(ctx, ctxKeyLedger, l)
		next(w, r.WithContext(ctx))
	}
}

// sessionFrom returns the session ID stored by withSession.
func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeySessionID).(string)
	return id
}

// ledgerFrom returns the session ledger stored by withSession.
func ledgerFrom(ctx context.Context) *ledger.Ledger {
	l, _ := ctx.Value(ctxKeyLedger).(*ledger.Ledger)
	return l
}
