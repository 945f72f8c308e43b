package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := AuthMiddleware(ok)

	tests := []struct {
		name     string
		path     string
		cookie   string
		header   string
		wantCode int
	}{
		{"login page is public", "/login", "", "", http.StatusTeapot},
		{"login endpoint is public", "/auth/login", "", "", http.StatusTeapot},
		{"static is public", "/static/app.js", "", "", http.StatusTeapot},
		{"api without session", "/api/photos", "", "", http.StatusUnauthorized},
		{"ajax without session", "/gallery", "", "XMLHttpRequest", http.StatusUnauthorized},
		{"page without session", "/gallery", "", "", http.StatusSeeOther},
		{"wrong cookie value", "/api/photos", "false", "", http.StatusUnauthorized},
		{"with session", "/api/photos", "true", "", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("X-Requested-With", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode == http.StatusSeeOther && rec.Header().Get("Location") != LoginPath {
				t.Errorf("Expected redirect to %s, got %q", LoginPath, rec.Header().Get("Location"))
			}
		})
	}
}
