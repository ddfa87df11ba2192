package middleware

import (
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/auth"
)

// TokenVerifier validates an access token and returns the user it belongs to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Authenticate resolves the Bearer token on the request, if any, and stores the
// viewer's identity on the context. It never rejects: handlers that require a
// signed-in viewer check for an empty identity themselves, which keeps public
// endpoints free to serve anonymous traffic through the same chain.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token != "" {
				if userID, err := verifier.Verify(token); err == nil {
					r = r.WithContext(auth.WithViewerID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
