package model

import "fmt"

const (
	// DepthElementSize is the byte width of one depth sample (float32 meters).
	DepthElementSize = 4
	// ConfidenceElementSize is the byte width of one confidence sample (uint8).
	ConfidenceElementSize = 1
)

// ByteMatrix is a row-major raster of fixed-size elements.
type ByteMatrix struct {
	Bytes  []byte `json:"-"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Validate checks the dimensions and that the buffer holds exactly
// Width*Height elements of elementSize bytes.
func (m ByteMatrix) Validate(elementSize int) error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", m.Width, m.Height)
	}
	if want := m.Width * m.Height * elementSize; len(m.Bytes) != want {
		return fmt.Errorf("buffer holds %d bytes, %dx%d needs %d", len(m.Bytes), m.Width, m.Height, want)
	}
	return nil
}

// PhotoRecord is one capture + measurement pass. Records are append-only.
type PhotoRecord struct {
	ID               int64
	UTCUnixTimestamp int64
	RGBPath          string
	Depth            ByteMatrix
	Confidence       ByteMatrix
	EstimatedLength  float32
	FishFound        bool
}

// Validate checks the element-size invariant of both matrices.
func (r *PhotoRecord) Validate() error {
	if err := r.Depth.Validate(DepthElementSize); err != nil {
		return fmt.Errorf("depth map: %w", err)
	}
	if err := r.Confidence.Validate(ConfidenceElementSize); err != nil {
		return fmt.Errorf("confidence map: %w", err)
	}
	return nil
}

// PhotoProjection is the transport form of a stored record: blobs are base64.
type PhotoProjection struct {
	ID               int64   `json:"id" expr:"id"`
	UTCUnixTimestamp int64   `json:"utc_unix_timestamp" expr:"utc_unix_timestamp"`
	RGBPath          string  `json:"rgb_path" expr:"rgb_path"`
	DepthBytes       string  `json:"depth_bytes" expr:"depth_bytes"`
	DepthWidth       int     `json:"depth_width" expr:"depth_width"`
	DepthHeight      int     `json:"depth_height" expr:"depth_height"`
	ConfidenceBytes  string  `json:"confidence_bytes" expr:"confidence_bytes"`
	ConfidenceWidth  int     `json:"confidence_width" expr:"confidence_width"`
	ConfidenceHeight int     `json:"confidence_height" expr:"confidence_height"`
	EstimatedLength  float64 `json:"estimated_length" expr:"estimated_length"`
	FishFound        bool    `json:"fish_found" expr:"fish_found"`
}
