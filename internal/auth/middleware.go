package auth

import (
	"net/http"

	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
)

// RequireUnlock blocks requests with no live session while a password gate is
// configured. With no password set everything passes through.
func (s *Service) RequireUnlock(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enabled, err := s.Enabled(r.Context())
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		if enabled {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || !s.Valid(cookie.Value) {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
