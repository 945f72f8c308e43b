package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fishsense/internal/apperror"
	"fishsense/internal/logger"
	"fishsense/internal/model"
)

type fakeSource struct {
	photos []model.PhotoProjection
	err    error
}

func (f *fakeSource) ListAll() ([]model.PhotoProjection, error) {
	return f.photos, f.err
}

func samplePhotos() []model.PhotoProjection {
	return []model.PhotoProjection{
		{ID: 2, UTCUnixTimestamp: 1700000100, RGBPath: "rgb_b.jpg", DepthBytes: "AAAAAA==", DepthWidth: 1, DepthHeight: 1,
			ConfidenceBytes: "Ag==", ConfidenceWidth: 1, ConfidenceHeight: 1, EstimatedLength: 0.4, FishFound: true},
		{ID: 1, UTCUnixTimestamp: 1700000000, RGBPath: "rgb_a.jpg", DepthBytes: "AAAAAA==", DepthWidth: 1, DepthHeight: 1,
			ConfidenceBytes: "Ag==", ConfidenceWidth: 1, ConfidenceHeight: 1},
	}
}

func newTestClient(source PhotoSource, url string) *Client {
	return NewClient(source, Options{
		RegisterURL: url,
		UploadURL:   url,
		APIKey:      "test-key",
		AppID:       "fishsense-ios-app",
		DeviceID:    "DEVICE-1",
		Timeout:     5 * time.Second,
		Logger:      logger.Discard(),
	})
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestSyncPhotos_Responses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		success  bool
		message  string
		uploaded int
		kind     apperror.Kind
	}{
		{"uploaded", 200, `{"success": true, "uploaded_count": 7}`, true, "Successfully synced 7 photos", 7, apperror.Unknown},
		{"missing count", 200, `{"success": true}`, true, "Successfully synced 0 photos", 0, apperror.Unknown},
		{"created status", 201, `{"success": true, "uploaded_count": 2}`, true, "Successfully synced 2 photos", 2, apperror.Unknown},
		{"rejected", 200, `{"success": false, "error": "bad"}`, false, "Upload error: bad", 0, apperror.ServerRejected},
		{"rejected without reason", 200, `{"success": false}`, false, "Upload error: Unknown error", 0, apperror.ServerRejected},
		{"success not a bool", 200, `{"success": "yes"}`, false, "Upload error: Unknown error", 0, apperror.ServerRejected},
		{"server error", 500, `{"success": false}`, false, "Server error: 500", 0, apperror.ServerRejected},
		{"unauthorized", 401, `{"success": false, "error": "Invalid API key"}`, false, "Server error: 401", 0, apperror.ServerRejected},
		{"not json", 200, `<html>`, false, "Failed to parse response", 0, apperror.ResponseUnparsable},
		{"empty body", 200, ``, false, "Failed to parse response", 0, apperror.ResponseUnparsable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(respond(tt.status, tt.body))
			defer server.Close()

			res := newTestClient(&fakeSource{photos: samplePhotos()}, server.URL).SyncPhotos(context.Background())
			if res.Success != tt.success || res.Message != tt.message {
				t.Errorf("Expected (%v, %q), got (%v, %q)", tt.success, tt.message, res.Success, res.Message)
			}
			if res.Uploaded != tt.uploaded {
				t.Errorf("Expected %d uploaded, got %d", tt.uploaded, res.Uploaded)
			}
			if !res.Success && res.Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, res.Kind)
			}
		})
	}
}

func TestSyncPhotos_SendsBatchWithHeaders(t *testing.T) {
	var got struct {
		header http.Header
		body   map[string][]map[string]any
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		got.header = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got.body); err != nil {
			t.Errorf("Invalid body: %v", err)
		}
		w.Write([]byte(`{"success": true, "uploaded_count": 2}`))
	}))
	defer server.Close()

	before := time.Now().Unix()
	res := newTestClient(&fakeSource{photos: samplePhotos()}, server.URL).SyncPhotos(context.Background())
	if !res.Success {
		t.Fatalf("Expected success, got %q", res.Message)
	}

	h := got.header
	if h.Get("Content-Type") != "application/json" || h.Get("x-api-key") != "test-key" ||
		h.Get("x-app-id") != "fishsense-ios-app" || h.Get("x-device-id") != "DEVICE-1" {
		t.Errorf("Unexpected headers %v", h)
	}
	ts, err := strconv.ParseInt(h.Get("x-timestamp"), 10, 64)
	if err != nil || ts < before || ts > time.Now().Unix() {
		t.Errorf("Expected unix timestamp header, got %q", h.Get("x-timestamp"))
	}

	photos := got.body["photos"]
	if len(photos) != 2 {
		t.Fatalf("Expected 2 photos, got %d", len(photos))
	}
	first := photos[0]
	for _, key := range []string{"utc_unix_timestamp", "rgb_path", "depth_bytes", "depth_width", "depth_height",
		"confidence_bytes", "confidence_width", "confidence_height"} {
		if _, ok := first[key]; !ok {
			t.Errorf("Expected field %s in upload", key)
		}
	}
	if _, ok := first["id"]; ok {
		t.Error("Expected local row id to stay local")
	}
	if first["rgb_path"] != "rgb_b.jpg" || first["depth_bytes"] != "AAAAAA==" {
		t.Errorf("Unexpected first photo %v", first)
	}
}

func TestSyncPhotos_NothingToSync(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	res := newTestClient(&fakeSource{}, server.URL).SyncPhotos(context.Background())
	if !res.Success || res.Message != "No photos to sync" {
		t.Errorf("Unexpected result %+v", res)
	}
	if calls.Load() != 0 {
		t.Errorf("Expected no network call, got %d", calls.Load())
	}
}

func TestSyncPhotos_ReadFailure(t *testing.T) {
	source := &fakeSource{err: apperror.New(apperror.StoreUnavailable, "photo database is not open")}
	res := newTestClient(source, "http://127.0.0.1:0").SyncPhotos(context.Background())

	if res.Success || res.Message != "Failed to read local photos" {
		t.Errorf("Unexpected result %+v", res)
	}
	if res.Kind != apperror.StoreUnavailable {
		t.Errorf("Expected StoreUnavailable, got %s", res.Kind)
	}
}

func TestSyncPhotos_TransportFailure(t *testing.T) {
	server := httptest.NewServer(respond(200, `{}`))
	url := server.URL
	server.Close()

	res := newTestClient(&fakeSource{photos: samplePhotos()}, url).SyncPhotos(context.Background())
	if res.Success || !strings.HasPrefix(res.Message, "Network error: ") {
		t.Errorf("Expected network error, got %+v", res)
	}
	if res.Kind != apperror.NetworkTransportFailed {
		t.Errorf("Expected NetworkTransportFailed, got %s", res.Kind)
	}
}

func TestSyncPhotos_Cancelled(t *testing.T) {
	server := httptest.NewServer(respond(200, `{"success": true}`))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := newTestClient(&fakeSource{photos: samplePhotos()}, server.URL).SyncPhotos(ctx)
	if res.Success || !strings.HasPrefix(res.Message, "Network error: ") {
		t.Errorf("Expected network error, got %+v", res)
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		success bool
		message string
	}{
		{"created", 200, `{"success": true}`, true, "Table created successfully!"},
		{"database error", 200, `{"success": false, "error": "access denied"}`, false, "Database error: access denied"},
		{"no reason", 200, `{"success": false}`, false, "Database error: Unknown error"},
		{"server error", 502, ``, false, "Server error: 502"},
		{"not json", 200, `oops`, false, "Failed to parse response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var deviceID string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				deviceID = r.Header.Get("x-device-id")
				respond(tt.status, tt.body)(w, r)
			}))
			defer server.Close()

			res := newTestClient(&fakeSource{}, server.URL).Register(context.Background())
			if res.Success != tt.success || res.Message != tt.message {
				t.Errorf("Expected (%v, %q), got (%v, %q)", tt.success, tt.message, res.Success, res.Message)
			}
			if deviceID != "DEVICE-1" {
				t.Errorf("Expected device header, got %q", deviceID)
			}
		})
	}
}

func TestRegister_ConnectionError(t *testing.T) {
	server := httptest.NewServer(respond(200, `{}`))
	url := server.URL
	server.Close()

	res := newTestClient(&fakeSource{}, url).Register(context.Background())
	if res.Success || !strings.HasPrefix(res.Message, "Connection error: ") {
		t.Errorf("Expected connection error, got %+v", res)
	}
}

func TestClient_DefaultsDeviceID(t *testing.T) {
	var deviceID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID = r.Header.Get("x-device-id")
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	c := NewClient(&fakeSource{}, Options{RegisterURL: server.URL})
	if res := c.Register(context.Background()); !res.Success {
		t.Fatalf("Expected success, got %+v", res)
	}
	if deviceID != "unknown" {
		t.Errorf("Expected unknown device id, got %q", deviceID)
	}
}
