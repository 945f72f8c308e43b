package handler

import (
	"encoding/json"
	"net/http"

	"fishsense/internal/apperror"
	"fishsense/internal/dto"
	"fishsense/internal/logger"
)

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

// writeResult answers with a {success, message} pair.
func writeResult(w http.ResponseWriter, status int, success bool, message string, logger *logger.Logger) {
	writeJSON(w, status, dto.ActionResult{Success: success, Message: message}, logger)
}

// statusFor maps a failure kind onto an HTTP status.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.StoreUnavailable:
		return http.StatusServiceUnavailable
	case apperror.NetworkTransportFailed, apperror.ServerRejected, apperror.ResponseUnparsable:
		return http.StatusBadGateway
	case apperror.MeasurementFailed:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
