package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"fishsense/internal/apperror"
	"fishsense/internal/device"
	"fishsense/internal/dto"
	"fishsense/internal/logger"
	"fishsense/internal/service"
	"fishsense/internal/service/capture"
)

// CaptureTimeout bounds how long POST /api/capture waits for a measurement.
const CaptureTimeout = 30 * time.Second

// CaptureHandler takes a photo, measures it and reports the outcome.
func CaptureHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), CaptureTimeout)
		defer cancel()

		out, err := manager.Capture(ctx)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, capture.ErrNoPhotoSettings):
				status = http.StatusConflict
			case errors.Is(err, capture.ErrShuttingDown):
				status = http.StatusServiceUnavailable
			case errors.Is(err, service.ErrCaptureAbandoned):
				status = http.StatusGatewayTimeout
			}
			logger.Warning("Capture rejected: %v", err)
			writeResult(w, status, false, err.Error(), logger)
			return
		}

		result := dto.CaptureResult{
			Success:      out.Err == nil,
			RequestID:    out.RequestID,
			RecordID:     out.RecordID,
			FishFound:    out.FishFound,
			LengthMeters: out.Length,
		}
		if out.RGBPath != "" {
			result.Image = filepath.Base(out.RGBPath)
		}

		status := http.StatusOK
		switch {
		case errors.Is(out.Err, capture.ErrSessionNotRunning):
			status = http.StatusConflict
			result.Message = out.Err.Error()
		case out.Err != nil:
			status = statusFor(apperror.KindOf(out.Err))
			result.Message = out.Err.Error()
		case out.FishFound:
			result.Length = capture.FormatLength(out.Length)
			result.Message = capture.AlertFishLength + ": " + result.Length
		default:
			result.Message = capture.AlertNoFishMessage
		}
		writeJSON(w, status, result, logger)
	}
}

// FocusHandler focuses and exposes at a tapped point.
func FocusHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.FocusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeResult(w, http.StatusBadRequest, false, "Invalid focus request", logger)
			return
		}
		if req.X < 0 || req.X > 1 || req.Y < 0 || req.Y > 1 {
			writeResult(w, http.StatusBadRequest, false, "Focus point must be within [0, 1]", logger)
			return
		}
		manager.Focus(device.Point{X: req.X, Y: req.Y})
		writeResult(w, http.StatusAccepted, true, "Focus requested", logger)
	}
}

var pinchPhases = map[string]capture.PinchPhase{
	"began":     capture.PinchBegan,
	"changed":   capture.PinchChanged,
	"ended":     capture.PinchEnded,
	"cancelled": capture.PinchCancelled,
}

// ZoomHandler applies one step of a pinch gesture.
func ZoomHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.ZoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeResult(w, http.StatusBadRequest, false, "Invalid zoom request", logger)
			return
		}
		phase, ok := pinchPhases[req.Phase]
		if !ok {
			writeResult(w, http.StatusBadRequest, false, "Unknown pinch phase: "+req.Phase, logger)
			return
		}
		if req.Scale <= 0 {
			writeResult(w, http.StatusBadRequest, false, "Scale must be positive", logger)
			return
		}
		manager.Zoom(req.Scale, phase)
		writeResult(w, http.StatusAccepted, true, "Zoom requested", logger)
	}
}

// SessionStateHandler reports the capture session state.
func SessionStateHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessionResponse(manager.SessionState()), logger)
	}
}

// StartSessionHandler starts the session, as when the camera view appears.
func StartSessionHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessionResponse(manager.StartSession()), logger)
	}
}

// StopSessionHandler stops the session, as when the camera view disappears.
func StopSessionHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessionResponse(manager.StopSession()), logger)
	}
}

func sessionResponse(s capture.State) map[string]any {
	return map[string]any{
		"setup":   s.Setup.String(),
		"running": s.Running,
	}
}
