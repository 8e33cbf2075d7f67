package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerAuthMiddleware guards a route with static bearer tokens, compared in constant time.
// Blank tokens are ignored; with none left the middleware is a pass-through.
// The webhook authenticates by signature and is never mounted behind it.
func BearerAuthMiddleware(tokens []string) func(http.Handler) http.Handler {
	valid := make([][]byte, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			valid = append(valid, []byte(t))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(valid) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			switch {
			case header == "":
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing authorization header")
			case !strings.HasPrefix(header, bearerPrefix):
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "authorization header must use Bearer scheme")
			case !tokenMatches(valid, []byte(strings.TrimPrefix(header, bearerPrefix))):
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid token")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func tokenMatches(valid [][]byte, got []byte) bool {
	ok := 0
	for _, v := range valid {
		ok |= subtle.ConstantTimeCompare(v, got)
	}
	return ok == 1
}
