package middleware

import (
	"net/http"
	"strings"
)

const (
	// SessionCookie marks a logged-in operator.
	SessionCookie = "authenticated"
	// LoginPath is where browsers without a session are sent.
	LoginPath = "/login"
)

var publicPaths = []string{LoginPath, "/auth/login"}

var publicPrefixes = []string{"/static/", "/css/", "/js/"}

func isPublic(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// wantsJSON reports whether the caller is a script rather than a browser page.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		r.Header.Get("Content-Type") == "application/json"
}

// AuthMiddleware lets through public paths and requests carrying the session
// cookie. Scripts get 401, browsers are redirected to the login page.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value == "true" {
			next.ServeHTTP(w, r)
			return
		}

		if wantsJSON(r) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
	})
}
