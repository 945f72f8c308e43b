package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fishsense/internal/apperror"
	"fishsense/internal/config"
	"fishsense/internal/dto"
	"fishsense/internal/logger"
	"fishsense/internal/service"
)

// GetPhotosHandler returns a page of stored records, newest first, optionally
// narrowed by a filter expression in "where".
func GetPhotosHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 24)
		where := q.Get("where")

		photos, err := manager.Photos(where)
		if err != nil {
			var appErr *apperror.Error
			if !errors.As(err, &appErr) {
				writeResult(w, http.StatusBadRequest, false, err.Error(), logger)
				return
			}
			logger.Error("Error querying photos from database: %v", err)
			writeResult(w, statusFor(appErr.Kind), false, appErr.Message, logger)
			return
		}

		start := (page - 1) * limit
		if start > len(photos) {
			start = len(photos)
		}
		end := start + limit
		if end > len(photos) {
			end = len(photos)
		}

		infos := make([]dto.PhotoInfo, 0, end-start)
		for _, p := range photos[start:end] {
			taken := time.Unix(p.UTCUnixTimestamp, 0).UTC()
			infos = append(infos, dto.PhotoInfo{
				ID:           p.ID,
				Name:         filepath.Base(p.RGBPath),
				Date:         taken,
				TimeOfDay:    taken,
				FishFound:    p.FishFound,
				LengthMeters: p.EstimatedLength,
				DepthWidth:   p.DepthWidth,
				DepthHeight:  p.DepthHeight,
			})
		}

		writeJSON(w, http.StatusOK, dto.PhotosData{
			Photos:      infos,
			ImagesDir:   cfg.ImageDirectory,
			Where:       where,
			Length:      len(photos),
			TotalPages:  (len(photos) + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		}, logger)
	}
}

// PhotoCountHandler returns the number of stored records.
func PhotoCountHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"count": manager.PhotoCount()}, logger)
	}
}

// ClearPhotosHandler deletes every record and the images in the image directory.
func ClearPhotosHandler(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := manager.ClearPhotos(); err != nil {
			logger.Error("Error clearing database: %v", err)
			writeResult(w, statusFor(apperror.KindOf(err)), false, err.Error(), logger)
			return
		}

		files, err := os.ReadDir(cfg.ImageDirectory)
		if err != nil && !os.IsNotExist(err) {
			logger.Error("Error reading image directory: %v", err)
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			if err := os.Remove(filepath.Join(cfg.ImageDirectory, file.Name())); err != nil {
				logger.Error("Error deleting file %s: %v", file.Name(), err)
			}
		}

		logger.Info("All photos cleared from directory: %s", cfg.ImageDirectory)
		writeResult(w, http.StatusOK, true, "All photos cleared", logger)
	}
}

// ViewPhotoHandler serves a single stored image named by the "image" query parameter.
func ViewPhotoHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		image := r.URL.Query().Get("image")
		if image == "" {
			http.Error(w, "Image parameter is required", http.StatusBadRequest)
			return
		}
		http.ServeFile(w, r, filepath.Join(cfg.ImageDirectory, filepath.Base(image)))
	}
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
