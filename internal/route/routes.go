package route

import (
	"net/http"
	"os"
	"path/filepath"

	"fishsense/internal/config"
	"fishsense/internal/handler"
	"fishsense/internal/logger"
	"fishsense/internal/middleware"
	"fishsense/internal/service"

	"github.com/gorilla/mux"
)

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join("static", filepath.Clean("/"+path)+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers static file serving, API endpoints and log/auth
// endpoints, and wraps the router with the authentication middleware.
func SetupRoutes(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Static files
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Capture session
	r.HandleFunc("/api/capture", handler.CaptureHandler(manager, logger)).Methods("POST")
	r.HandleFunc("/api/focus", handler.FocusHandler(manager, logger)).Methods("POST")
	r.HandleFunc("/api/zoom", handler.ZoomHandler(manager, logger)).Methods("POST")
	r.HandleFunc("/api/session", handler.SessionStateHandler(manager, logger)).Methods("GET")
	r.HandleFunc("/api/session/start", handler.StartSessionHandler(manager, logger)).Methods("POST")
	r.HandleFunc("/api/session/stop", handler.StopSessionHandler(manager, logger)).Methods("POST")

	// Stored photos
	r.HandleFunc("/api/photos", handler.GetPhotosHandler(manager, cfg, logger)).Methods("GET")
	r.HandleFunc("/api/photos/count", handler.PhotoCountHandler(manager, logger)).Methods("GET")
	r.HandleFunc("/api/photos/view", handler.ViewPhotoHandler(cfg)).Methods("GET")
	r.HandleFunc("/api/photos/clear", handler.ClearPhotosHandler(manager, cfg, logger)).Methods("POST")

	// Remote sync
	r.HandleFunc("/api/sync", handler.SyncHandler(manager, logger)).Methods("POST")
	r.HandleFunc("/api/register", handler.RegisterHandler(manager, logger)).Methods("POST")

	// Viewers
	r.HandleFunc("/api/view", handler.ViewWebsocketHandler(manager, logger)).Methods("GET")
	r.HandleFunc("/api/view/state", handler.ViewStateHandler(manager, logger)).Methods("GET")
	r.HandleFunc("/api/alerts/dismiss", handler.DismissAlertHandler(manager, logger)).Methods("POST")

	// Log endpoints
	r.HandleFunc("/logs/{level}", handler.ShowLogsHandler(cfg)).Methods("GET")
	r.HandleFunc("/logs/{level}/clear", handler.ClearLogsHandler(logger)).Methods("POST")

	// Auth endpoints
	r.HandleFunc("/auth/login", handler.LoginHandler(cfg, logger)).Methods("POST")
	r.HandleFunc("/auth/logout", handler.LogoutHandler)

	// Automatic HTML handler mapping for example: /settings -> /static/settings.html
	r.PathPrefix("/").HandlerFunc(dynamicHTMLHandler)

	return middleware.AuthMiddleware(r)
}
