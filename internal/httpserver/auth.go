package httpserver

import (
	"context"
	"net/http"

	"github.com/issuefeed/backend/pkg/apperr"
)

// Authenticator is the narrow session contract the core requires from the
// identity/session collaborator spec.md §1 places out of scope. A request
// with no credentials is not an error: Authenticate returns authenticated
// = false so mixed-auth routes can proceed anonymously.
type Authenticator interface {
	Authenticate(r *http.Request) (userID string, authenticated bool, err error)
}

type userIDContextKey struct{}

// userIDFromContext reads the user id requireAuth/optionalAuth stored in the request
// context; ok is false for anonymous requests.
func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey{}).(string)
	return id, ok && id != ""
}

// requireAuth rejects requests the Authenticator doesn't positively
// authenticate, per spec.md §7 "Auth checks precede input validation".
func requireAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok, err := authn.Authenticate(r)
			if err != nil {
				writeError(w, err)
				return
			}
			if !ok {
				writeError(w, apperr.Unauthenticated("authentication required"))
				return
			}
			ctx := context.WithValue(r.Context(), userIDContextKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// optionalAuth attaches a user id when credentials are present and valid,
// but lets anonymous requests through. An invalid (not merely absent)
// session is still rejected.
func optionalAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok, err := authn.Authenticate(r)
			if err != nil {
				writeError(w, err)
				return
			}
			ctx := r.Context()
			if ok {
				ctx = context.WithValue(ctx, userIDContextKey{}, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
