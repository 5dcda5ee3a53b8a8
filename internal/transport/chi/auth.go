package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths bypass authentication.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// keyring holds the accepted API keys.
type keyring [][]byte

func newKeyring(keys []string) keyring {
	var kr keyring
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			kr = append(kr, []byte(k))
		}
	}
	return kr
}

// accepts compares token against every key in constant time.
func (kr keyring) accepts(token string) bool {
	ok := 0
	for _, k := range kr {
		ok |= subtle.ConstantTimeCompare(k, []byte(token))
	}
	return ok == 1
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, string) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", "missing authorization header"
	}
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", "authorization header must use Bearer scheme"
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", "empty bearer token"
	}
	return token, ""
}

// BearerAuthMiddleware guards the session API with static API keys.
// No keys disables authentication. CORS preflights and public paths pass.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	kr := newKeyring(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(kr) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, problem := bearerToken(r)
			if problem == "" && !kr.accepts(token) {
				problem = "invalid api key"
			}
			if problem != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="geolocator"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, problem)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
