package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/identity"
)

type contextKey int

const claimsKey contextKey = iota

// ClaimsFrom returns the authenticated claims stored on the request
// context by the auth middleware.
func ClaimsFrom(ctx context.Context) identity.Claims {
	claims, _ := ctx.Value(claimsKey).(identity.Claims)
	return claims
}

// Authenticator resolves a bearer token to full claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identity.Claims, error)
}

// requireAuth authenticates the bearer token and stores the claims on
// the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			s.writeError(w, r, aferr.Unauthorizedf("Missing authorisation token"))
			return
		}

		claims, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, *claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAFU restricts a route to forwarder staff.
func (s *Server) requireAFU(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ClaimsFrom(r.Context()).IsAFU() {
			s.writeError(w, r, aferr.Forbiddenf("AF staff access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAFUAdmin restricts a route to staff admins.
func (s *Server) requireAFUAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ClaimsFrom(r.Context()).IsAFUAdmin() {
			s.writeError(w, r, aferr.Forbiddenf("AF Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
