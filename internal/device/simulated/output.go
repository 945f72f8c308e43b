package simulated

import (
	"errors"
	"sync"
	"time"

	"fishsense/internal/device"
)

// ErrCaptureFailed is delivered to the delegate when captures are set up to fail.
var ErrCaptureFailed = errors.New("simulated capture failed")

// PhotoOutput is a simulated still-photo output rendering frames from a Scene.
type PhotoOutput struct {
	mu            sync.Mutex
	scene         Scene
	codecs        []device.Codec
	previewFormat []string
	maxDims       device.Dimensions
	liveSupported bool
	respSupported bool
	fastSupported bool
	liveEnabled   bool
	respEnabled   bool
	fastEnabled   bool
	rotation      float64
	failCaptures  bool
	delay         time.Duration
	captured      []device.PhotoSettings
	wg            sync.WaitGroup
}

func newPhotoOutput(scene Scene) *PhotoOutput {
	return &PhotoOutput{
		scene:         scene,
		codecs:        []device.Codec{device.CodecHEVC, device.CodecJPEG},
		previewFormat: []string{"BGRA"},
		liveSupported: true,
		respSupported: true,
		fastSupported: true,
	}
}

// SetSupportedFeatures sets hardware support for live photo, responsive
// capture and fast-capture prioritization.
func (o *PhotoOutput) SetSupportedFeatures(live, responsive, fast bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.liveSupported, o.respSupported, o.fastSupported = live, responsive, fast
}

// SetCodecs replaces the available codec list.
func (o *PhotoOutput) SetCodecs(codecs ...device.Codec) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codecs = codecs
}

// FailCaptures makes every capture deliver ErrCaptureFailed.
func (o *PhotoOutput) FailCaptures(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failCaptures = v
}

// SetDelay holds each capture for d before delivering it.
func (o *PhotoOutput) SetDelay(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.delay = d
}

// SetScene replaces the rendered scene.
func (o *PhotoOutput) SetScene(scene Scene) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scene = scene
}

// Enabled reports which optional features the session turned on.
func (o *PhotoOutput) Enabled() (live, responsive, fast bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.liveEnabled, o.respEnabled, o.fastEnabled
}

// Rotation is the last rotation angle applied to the output connection.
func (o *PhotoOutput) Rotation() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rotation
}

// Captured lists the settings of every capture issued so far.
func (o *PhotoOutput) Captured() []device.PhotoSettings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]device.PhotoSettings(nil), o.captured...)
}

// Wait blocks until every issued capture has been delivered.
func (o *PhotoOutput) Wait() {
	o.wg.Wait()
}

func (o *PhotoOutput) AvailablePhotoCodecTypes() []device.Codec {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]device.Codec(nil), o.codecs...)
}

func (o *PhotoOutput) AvailablePreviewPixelFormats() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.previewFormat...)
}

func (o *PhotoOutput) MaxPhotoDimensions() device.Dimensions {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.maxDims
}

func (o *PhotoOutput) SetMaxPhotoDimensions(d device.Dimensions) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.maxDims = d
}

func (o *PhotoOutput) IsLivePhotoCaptureSupported() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.liveSupported
}

func (o *PhotoOutput) SetLivePhotoCaptureEnabled(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.liveEnabled = v && o.liveSupported
}

func (o *PhotoOutput) IsResponsiveCaptureSupported() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.respSupported
}

func (o *PhotoOutput) SetResponsiveCaptureEnabled(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.respEnabled = v && o.respSupported
}

func (o *PhotoOutput) IsFastCapturePrioritizationSupported() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fastSupported
}

func (o *PhotoOutput) SetFastCapturePrioritizationEnabled(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fastEnabled = v && o.fastSupported
}

func (o *PhotoOutput) SetVideoRotationAngle(degrees float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotation = degrees
}

// CapturePhoto renders the scene on a separate goroutine and reports to the
// delegate, the way a camera stack calls back from its own threads.
func (o *PhotoOutput) CapturePhoto(settings device.PhotoSettings, delegate device.CaptureDelegate) {
	o.mu.Lock()
	o.captured = append(o.captured, settings)
	scene := o.scene
	fail := o.failCaptures
	delay := o.delay
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		delegate.WillCapturePhoto(settings.UniqueID)
		if delay > 0 {
			time.Sleep(delay)
		}
		if fail {
			delegate.DidFinishProcessingPhoto(nil, ErrCaptureFailed)
			return
		}
		photo := scene.Render(time.Now())
		photo.SettingsID = settings.UniqueID
		delegate.DidFinishProcessingPhoto(photo, nil)
	}()
}
