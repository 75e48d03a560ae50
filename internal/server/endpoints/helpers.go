package endpoints

import (
	"net/http"

	"github.com/promptdeck/promptdeck/internal/auth"
	"github.com/promptdeck/promptdeck/internal/svcctx"
	"github.com/promptdeck/promptdeck/internal/types"
)

// currentUser resolves the bearer token on the request to a user. Returns
// false if the request carries no valid token.
func currentUser(r *http.Request) (types.User, bool) {
	svc := svcctx.AuthFrom(r.Context())
	if svc == nil {
		return types.User{}, false
	}
	token := auth.BearerFromHeader(r.Header.Get("Authorization"))
	if token == "" {
		return types.User{}, false
	}
	user, err := svc.Authenticate(token)
	if err != nil {
		return types.User{}, false
	}
	return user, true
}

// requireUser writes a 401 and returns false when no valid bearer token is
// present.
func requireUser(w http.ResponseWriter, r *http.Request) (types.User, bool) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return types.User{}, false
	}
	return user, true
}

// requireAdmin writes a 401/403 and returns false unless the request is
// authenticated as an admin.
func requireAdmin(w http.ResponseWriter, r *http.Request) (types.User, bool) {
	user, ok := requireUser(w, r)
	if !ok {
		return types.User{}, false
	}
	if user.Role != "admin" {
		writeError(w, http.StatusForbidden, "admin role required")
		return types.User{}, false
	}
	return user, true
}
