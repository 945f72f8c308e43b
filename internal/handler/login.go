package handler

import (
	"crypto/subtle"
	"net/http"

	"fishsense/internal/config"
	"fishsense/internal/logger"
	"fishsense/internal/middleware"

	"golang.org/x/crypto/bcrypt"
)

// LoginHandler handles POST /auth/login by validating password and issuing an auth cookie.
func LoginHandler(config *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		password := r.FormValue("password")
		if !passwordMatches(config, password) {
			logger.Warning("Failed login attempt from %s", r.RemoteAddr)
			http.Error(w, "Invalid password", http.StatusUnauthorized)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "true",
			Path:     "/",
			MaxAge:   2592000, // 30 days
			HttpOnly: true,
		})
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// passwordMatches checks against PASSWORD_HASH when set, otherwise PASSWORD.
func passwordMatches(config *config.Config, password string) bool {
	if config.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(config.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(config.Password)) == 1
}

// LogoutHandler clears the authentication cookie and redirects to the login page.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   middleware.SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}
