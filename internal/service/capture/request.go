package capture

import (
	"sync"
	"time"

	"fishsense/internal/device"
)

// Request is one in-flight photo capture. It receives the hardware callbacks
// and hands the result to its completion function exactly once.
type Request struct {
	Settings      device.PhotoSettings
	RotationAngle float64
	CreatedAt     time.Time

	willCapture func()
	completion  func(r *Request, photo *device.Photo, err error)
	once        sync.Once
}

// NewRequest builds a Request. willCapture may be nil.
func NewRequest(settings device.PhotoSettings, rotation float64, willCapture func(),
	completion func(r *Request, photo *device.Photo, err error)) *Request {
	return &Request{
		Settings:      settings,
		RotationAngle: rotation,
		CreatedAt:     time.Now(),
		willCapture:   willCapture,
		completion:    completion,
	}
}

// ID is the unique ID of the request's settings.
func (r *Request) ID() int64 {
	return r.Settings.UniqueID
}

// WillCapturePhoto implements device.CaptureDelegate.
func (r *Request) WillCapturePhoto(int64) {
	if r.willCapture != nil {
		r.willCapture()
	}
}

// DidFinishProcessingPhoto implements device.CaptureDelegate.
func (r *Request) DidFinishProcessingPhoto(photo *device.Photo, err error) {
	r.once.Do(func() {
		if r.completion != nil {
			r.completion(r, photo, err)
		}
	})
}
