package middleware

import (
	"net/http"
	"strings"

	"github.com/vybr/vybr-backend/internal/service"
)

var (
	protectedPages = []string{"/dashboard", "/profile", "/onboarding"}
	authPages      = []string{"/auth/login", "/auth/register", "/auth/verify"}
)

// RouteGuard applies the page-level session policy for the app shell:
// protected pages bounce anonymous visitors to login (clearing a broken
// cookie on the way), unverified sessions to the verify screen, and
// authenticated visitors away from the auth pages.
func RouteGuard(tokens *service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			onProtected := matchesPrefix(path, protectedPages)
			onAuthPage := matchesPrefix(path, authPages)
			if !onProtected && !onAuthPage {
				next.ServeHTTP(w, r)
				return
			}

			var claims *service.SessionClaims
			if cookie, err := r.Cookie(service.SessionCookieName); err == nil && cookie.Value != "" {
				claims, err = tokens.Verify(cookie.Value)
				if err != nil && onProtected {
					// stale or tampered token, make the client drop it
					http.SetCookie(w, tokens.ClearedCookie())
					http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
					return
				}
			}

			switch {
			case onProtected && claims == nil:
				http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
			case onProtected && !claims.IsVerified:
				http.Redirect(w, r, "/auth/verify", http.StatusTemporaryRedirect)
			case onAuthPage && claims != nil:
				http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
