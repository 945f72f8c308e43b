// Package remote uploads stored measurement records to the collection
// endpoints and creates the remote table.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"fishsense/internal/apperror"
	"fishsense/internal/logger"
	"fishsense/internal/model"
)

// PhotoSource lists the records to upload.
type PhotoSource interface {
	ListAll() ([]model.PhotoProjection, error)
}

// Result is what one sync or registration attempt reports to the user.
type Result struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Uploaded int           `json:"uploaded,omitempty"`
	Kind     apperror.Kind `json:"-"`
}

type Options struct {
	RegisterURL string
	UploadURL   string
	APIKey      string
	AppID       string
	DeviceID    string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *logger.Logger
}

// Client talks to the remote collection service. Every call is a single
// attempt; nothing is retried.
type Client struct {
	source     PhotoSource
	opts       Options
	httpClient *http.Client
	logger     *logger.Logger
	now        func() time.Time
}

// NewClient creates a Client reading records from source.
func NewClient(source PhotoSource, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		source:     source,
		opts:       opts,
		httpClient: httpClient,
		logger:     log,
		now:        time.Now,
	}
}

// uploadPhoto is one element of the upload batch.
type uploadPhoto struct {
	UTCUnixTimestamp int64   `json:"utc_unix_timestamp"`
	RGBPath          string  `json:"rgb_path"`
	DepthBytes       string  `json:"depth_bytes"`
	DepthWidth       int     `json:"depth_width"`
	DepthHeight      int     `json:"depth_height"`
	ConfidenceBytes  string  `json:"confidence_bytes"`
	ConfidenceWidth  int     `json:"confidence_width"`
	ConfidenceHeight int     `json:"confidence_height"`
	EstimatedLength  float64 `json:"estimated_length"`
	FishFound        bool    `json:"fish_found"`
}

type uploadBatch struct {
	Photos []uploadPhoto `json:"photos"`
}

// SyncPhotos uploads every stored record in one request.
func (c *Client) SyncPhotos(ctx context.Context) Result {
	photos, err := c.source.ListAll()
	if err != nil {
		c.logger.Error("Failed to read local photos: %v", err)
		return Result{Message: "Failed to read local photos", Kind: apperror.KindOf(err)}
	}
	if len(photos) == 0 {
		return Result{Success: true, Message: "No photos to sync"}
	}

	batch := uploadBatch{Photos: make([]uploadPhoto, 0, len(photos))}
	for _, p := range photos {
		batch.Photos = append(batch.Photos, uploadPhoto{
			UTCUnixTimestamp: p.UTCUnixTimestamp,
			RGBPath:          p.RGBPath,
			DepthBytes:       p.DepthBytes,
			DepthWidth:       p.DepthWidth,
			DepthHeight:      p.DepthHeight,
			ConfidenceBytes:  p.ConfidenceBytes,
			ConfidenceWidth:  p.ConfidenceWidth,
			ConfidenceHeight: p.ConfidenceHeight,
			EstimatedLength:  p.EstimatedLength,
			FishFound:        p.FishFound,
		})
	}
	body, err := json.Marshal(batch)
	if err != nil {
		return Result{Message: "Failed to serialize photos data", Kind: apperror.Unknown}
	}

	c.logger.Info("☁️  Syncing %d photos to %s", len(photos), c.opts.UploadURL)
	resp, res := c.post(ctx, c.opts.UploadURL, body, "Network error")
	if resp == nil {
		return res
	}

	if !resp.success {
		return c.failed(apperror.ServerRejected, "Upload error: "+resp.errorMessage())
	}
	count := resp.uploadedCount()
	c.logger.Info("Successfully synced %d photos", count)
	return Result{Success: true, Message: fmt.Sprintf("Successfully synced %d photos", count), Uploaded: count}
}

// Register asks the registration endpoint to create the remote photos table.
func (c *Client) Register(ctx context.Context) Result {
	c.logger.Info("Registering device %s with %s", c.opts.DeviceID, c.opts.RegisterURL)
	resp, res := c.post(ctx, c.opts.RegisterURL, nil, "Connection error")
	if resp == nil {
		return res
	}

	if !resp.success {
		return c.failed(apperror.ServerRejected, "Database error: "+resp.errorMessage())
	}
	c.logger.Info("Remote table created")
	return Result{Success: true, Message: "Table created successfully!"}
}

type response struct {
	success bool
	fields  map[string]any
}

func (r *response) errorMessage() string {
	if msg, ok := r.fields["error"].(string); ok {
		return msg
	}
	return "Unknown error"
}

func (r *response) uploadedCount() int {
	if n, ok := r.fields["uploaded_count"].(float64); ok {
		return int(n)
	}
	return 0
}

// post sends one authenticated request. It returns the decoded body of a
// 2xx response, or nil and the failure Result.
func (c *Client) post(ctx context.Context, url string, body []byte, transportPrefix string) (*response, Result) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, c.failed(apperror.NetworkTransportFailed, transportPrefix+": "+err.Error())
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.failed(apperror.NetworkTransportFailed, transportPrefix+": "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.failed(apperror.ServerRejected, fmt.Sprintf("Server error: %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.failed(apperror.NetworkTransportFailed, transportPrefix+": "+err.Error())
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, c.failed(apperror.ResponseUnparsable, "Failed to parse response")
	}

	success, _ := fields["success"].(bool)
	return &response{success: success, fields: fields}, Result{}
}

func (c *Client) setHeaders(req *http.Request) {
	deviceID := c.opts.DeviceID
	if deviceID == "" {
		deviceID = "unknown"
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.opts.APIKey)
	req.Header.Set("x-app-id", c.opts.AppID)
	req.Header.Set("x-device-id", deviceID)
	req.Header.Set("x-timestamp", strconv.FormatInt(c.now().Unix(), 10))
}

func (c *Client) failed(kind apperror.Kind, msg string) Result {
	c.logger.Warning("Remote request failed: %s", msg)
	return Result{Message: msg, Kind: kind}
}
