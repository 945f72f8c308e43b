package capture

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"fishsense/internal/apperror"
	"fishsense/internal/device"
	"fishsense/internal/logger"
	"fishsense/internal/measure"
	"fishsense/internal/model"
	"fishsense/internal/service/view"
)

const (
	AlertMeasurementFailed = "An error occurred while trying to automatically measure the fish."
	AlertNoFishTitle       = "No fish was found in the image."
	AlertNoFishMessage     = "No fish was found in the image. Please try again."
	AlertFishLength        = "Fish Length"
)

// UI is what the capture pipeline shows to the user. Implementations hand
// every call off to their own main queue.
type UI interface {
	SetCaptureEnabled(enabled bool)
	SetCaptureInteractive(interactive bool)
	SetPhotoCount(n int)
	PresentAlert(title, msg string)
	ShowMeasurement(m view.Measurement)
}

// PhotoStore persists measurement records.
type PhotoStore interface {
	Insert(rec *model.PhotoRecord) (int64, error)
	NumPhotos() int
}

// ImageWriter stores the RGB payload of a record and returns its path.
type ImageWriter interface {
	WriteRGB(name string, rgb []byte, width, height int) (string, error)
	WriteDepth(name string, depth []byte, width, height int) (string, error)
}

// Outcome is the result of one capture + measurement pass.
type Outcome struct {
	RequestID int64
	FishFound bool
	Length    float32 // meters
	Left      measure.Point2D
	Right     measure.Point2D
	RecordID  int64
	RGBPath   string
	Err       error
}

// Processor turns a delivered photo into a measurement and a stored record.
type Processor struct {
	measurer   measure.Measurer
	store      PhotoStore
	images     ImageWriter
	ui         UI
	logger     *logger.Logger
	saveDepths bool
}

// NewProcessor wires the measurement pipeline.
func NewProcessor(measurer measure.Measurer, store PhotoStore, images ImageWriter, ui UI, logger *logger.Logger, saveDepths bool) *Processor {
	return &Processor{
		measurer:   measurer,
		store:      store,
		images:     images,
		ui:         ui,
		logger:     logger,
		saveDepths: saveDepths,
	}
}

// Process measures photo and persists the record. A measurement error
// persists nothing.
func (p *Processor) Process(requestID int64, photo *device.Photo) Outcome {
	out := Outcome{RequestID: requestID}

	inv, err := measure.InvertTranspose(photo.Intrinsics)
	if err != nil {
		return p.measurementFailed(out, err.Error())
	}

	res := p.measurer.ComputeLength(measure.Input{
		RGB:            photo.RGB,
		RGBWidth:       photo.RGBWidth,
		RGBHeight:      photo.RGBHeight,
		Depth:          photo.Depth,
		DepthWidth:     photo.DepthWidth,
		DepthHeight:    photo.DepthHeight,
		IntrinsicsInvT: inv,
	})
	if res.Error != nil {
		return p.measurementFailed(out, *res.Error)
	}

	out.FishFound = res.FishFound
	if res.FishFound {
		out.Length = res.Length
		out.Left, out.Right = res.Left, res.Right
		p.logger.Info("🐟 Request %d: fish found, left (%.0f, %.0f) right (%.0f, %.0f), length %.3fm",
			requestID, res.Left.X, res.Left.Y, res.Right.X, res.Right.Y, res.Length)
	} else {
		p.logger.Info("Request %d: no fish found", requestID)
	}

	out.RecordID, out.RGBPath, out.Err = p.persist(photo, out)

	p.ui.ShowMeasurement(view.Measurement{
		RequestID: requestID,
		RecordID:  out.RecordID,
		FishFound: out.FishFound,
		LengthM:   out.Length,
		Left:      out.Left,
		Right:     out.Right,
	})
	if out.FishFound {
		p.ui.PresentAlert(AlertFishLength, FormatLength(out.Length))
	} else {
		p.ui.PresentAlert(AlertNoFishTitle, AlertNoFishMessage)
	}
	return out
}

func (p *Processor) persist(photo *device.Photo, out Outcome) (int64, string, error) {
	ts := photo.CapturedAt.UTC().Unix()
	base := fmt.Sprintf("%d_%s", ts, uuid.NewString())

	rgbPath, err := p.images.WriteRGB("rgb_"+base+".jpg", photo.RGB, photo.RGBWidth, photo.RGBHeight)
	if err != nil {
		p.logger.Error("Error saving RGB image for request %d: %v", out.RequestID, err)
		return 0, "", apperror.Wrap(apperror.StoreWriteFailed, "error saving RGB image", err)
	}
	if p.saveDepths {
		if _, err := p.images.WriteDepth("depth_"+base+".png", photo.Depth, photo.DepthWidth, photo.DepthHeight); err != nil {
			p.logger.Warning("Error saving depth preview for request %d: %v", out.RequestID, err)
		}
	}

	rec := &model.PhotoRecord{
		UTCUnixTimestamp: ts,
		RGBPath:          rgbPath,
		Depth:            model.ByteMatrix{Bytes: photo.Depth, Width: photo.DepthWidth, Height: photo.DepthHeight},
		Confidence:       model.ByteMatrix{Bytes: photo.Confidence, Width: photo.ConfidenceWidth, Height: photo.ConfidenceHeight},
		EstimatedLength:  out.Length,
		FishFound:        out.FishFound,
	}
	id, err := p.store.Insert(rec)
	if err != nil {
		p.logger.Error("Error storing record for request %d: %v", out.RequestID, err)
		return 0, rgbPath, err
	}
	p.ui.SetPhotoCount(p.store.NumPhotos())
	return id, rgbPath, nil
}

func (p *Processor) measurementFailed(out Outcome, msg string) Outcome {
	p.logger.Error("Request %d: measurement failed: %s", out.RequestID, msg)
	p.ui.PresentAlert(AlertMeasurementFailed, msg)
	out.Err = apperror.New(apperror.MeasurementFailed, msg)
	return out
}

// FormatLength renders meters as centimeters with one decimal, e.g. "40.0cm".
func FormatLength(meters float32) string {
	cm := math.Round(float64(meters)*1000) / 10
	return fmt.Sprintf("%.1fcm", cm)
}
