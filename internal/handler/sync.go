package handler

import (
	"net/http"

	"fishsense/internal/dto"
	"fishsense/internal/logger"
	"fishsense/internal/service"
)

// SyncHandler uploads every stored record to the collection endpoint.
func SyncHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := manager.Sync(r.Context())
		status := http.StatusOK
		if !res.Success {
			status = statusFor(res.Kind)
		}
		writeJSON(w, status, res, logger)
	}
}

// RegisterHandler creates the remote photos table.
func RegisterHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := manager.Register(r.Context())
		status := http.StatusOK
		if !res.Success {
			status = statusFor(res.Kind)
		}
		writeJSON(w, status, dto.ActionResult{Success: res.Success, Message: res.Message}, logger)
	}
}
