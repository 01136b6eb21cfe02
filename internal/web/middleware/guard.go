// Package middleware carries the web server's HTTP middleware: CORS and the
// role-based navigation guard.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/akranjan/facemark/internal/guard"
	"github.com/akranjan/facemark/internal/session"
)

// RequireView gates a route group behind the navigation guard. The guard's
// redirect decisions map to HTTP statuses: unauthenticated requests get 401
// with a login redirect, wrong-role requests get 403 with the role's landing
// view, and an in-flight authentication answers 503 so the client retries
// instead of flashing a redirect.
func RequireView(sessions *session.Manager, view guard.View) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, current := sessions.Current()
			role := session.RoleNone
			if current != nil {
				role = current.Role
			}

			decision := guard.Resolve(state, role, view)
			switch decision.Outcome {
			case guard.Allow:
				next.ServeHTTP(w, r)
			case guard.Wait:
				w.Header().Set("Retry-After", "1")
				respondGuard(w, http.StatusServiceUnavailable, "authentication in progress", "")
			default:
				if decision.Target == guard.ViewLogin {
					respondGuard(w, http.StatusUnauthorized, "unauthorized", string(decision.Target))
					return
				}
				respondGuard(w, http.StatusForbidden, "forbidden", string(decision.Target))
			}
		})
	}
}

func respondGuard(w http.ResponseWriter, status int, message, redirect string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": message}
	if redirect != "" {
		body["redirect"] = redirect
	}
	json.NewEncoder(w).Encode(body)
}
