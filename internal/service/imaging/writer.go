package imaging

import (
	"fmt"
	"os"
	"path/filepath"

	"fishsense/internal/logger"

	"gocv.io/x/gocv"
)

// DefaultJPEGQuality is used when the configured quality is out of range.
const DefaultJPEGQuality = 80

// Writer encodes captured frames with OpenCV and stores them under one directory.
type Writer struct {
	dir     string
	quality int
	logger  *logger.Logger
}

// NewWriter creates a writer for dir, creating it if needed.
func NewWriter(dir string, quality int, logger *logger.Logger) (*Writer, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %v", err)
	}
	return &Writer{dir: dir, quality: quality, logger: logger}, nil
}

// Dir is the directory images are written to.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteRGB stores interleaved 8-bit RGB pixels as a JPEG and returns its path.
func (w *Writer) WriteRGB(name string, rgb []byte, width, height int) (string, error) {
	data, err := EncodeJPEG(rgb, width, height, w.quality)
	if err != nil {
		return "", err
	}
	return w.write(name, data)
}

// WriteDepth stores a color-mapped preview of a float32 depth map as a PNG.
func (w *Writer) WriteDepth(name string, depth []byte, width, height int) (string, error) {
	data, err := EncodeDepthPreview(depth, width, height)
	if err != nil {
		return "", err
	}
	return w.write(name, data)
}

func (w *Writer) write(name string, data []byte) (string, error) {
	path := filepath.Join(w.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		w.logger.Error("Failed to write image %s: %v", path, err)
		return "", fmt.Errorf("failed to write image: %v", err)
	}
	w.logger.Info("Image saved: %s (%d bytes)", path, len(data))
	return path, nil
}

// EncodeJPEG converts RGB pixels to BGR and encodes them at quality.
func EncodeJPEG(rgb []byte, width, height, quality int) ([]byte, error) {
	if width <= 0 || height <= 0 || len(rgb) != width*height*3 {
		return nil, fmt.Errorf("invalid RGB buffer: %d bytes for %dx%d", len(rgb), width, height)
	}

	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, rgb)
	if err != nil {
		return nil, fmt.Errorf("failed to create image: %v", err)
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	if err := gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR); err != nil {
		return nil, fmt.Errorf("failed to convert image to BGR: %v", err)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, bgr, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// EncodeDepthPreview normalizes a depth map to 8 bits, applies a color map
// and encodes it as a PNG.
func EncodeDepthPreview(depth []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || len(depth) != width*height*4 {
		return nil, fmt.Errorf("invalid depth buffer: %d bytes for %dx%d", len(depth), width, height)
	}

	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV32F, depth)
	if err != nil {
		return nil, fmt.Errorf("failed to create depth image: %v", err)
	}
	defer mat.Close()

	normalized := gocv.NewMat()
	defer normalized.Close()
	if err := gocv.Normalize(mat, &normalized, 0, 255, gocv.NormMinMax); err != nil {
		return nil, fmt.Errorf("failed to normalize depth image: %v", err)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if err := normalized.ConvertTo(&gray, gocv.MatTypeCV8U); err != nil {
		return nil, fmt.Errorf("failed to convert depth image: %v", err)
	}

	colored := gocv.NewMat()
	defer colored.Close()
	if err := gocv.ApplyColorMap(gray, &colored, gocv.ColormapJet); err != nil {
		return nil, fmt.Errorf("failed to color depth image: %v", err)
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, colored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode depth image: %v", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
