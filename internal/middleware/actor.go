package middleware

import (
	"net/http"
	"strings"

	"github.com/rpattn/cabletrack/internal/auth"
)

// ActorMiddleware copies the authenticated user id supplied by the fronting
// proxy into the request context, where import runs pick it up as created_by.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actorID := strings.TrimSpace(r.Header.Get("X-Actor-Id")); actorID != "" {
			r = r.WithContext(auth.ContextWithActor(r.Context(), actorID))
		}
		next.ServeHTTP(w, r)
	})
}
