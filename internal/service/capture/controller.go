package capture

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"fishsense/internal/apperror"
	"fishsense/internal/device"
	"fishsense/internal/logger"
	"fishsense/internal/service/dispatch"
)

const (
	AlertTitle           = "AVCam"
	AlertNotAuthorized   = "AVCam doesn't have permission to use the camera, please change privacy settings"
	AlertUnableToCapture = "Unable to capture media"

	MinimumZoom = 1.0
	MaximumZoom = 2.0
)

var (
	// ErrNoPhotoSettings is returned by CapturePhoto before the session has
	// been configured.
	ErrNoPhotoSettings = errors.New("no photo settings to capture")
	// ErrSessionNotRunning is delivered when a capture reaches a stopped session.
	ErrSessionNotRunning = errors.New("capture session is not running")
	// ErrShuttingDown is delivered when a capture races Teardown.
	ErrShuttingDown = errors.New("capture session is shutting down")
)

// SetupResult is the outcome of authorization and configuration. Once it
// leaves Success it never returns.
type SetupResult int

const (
	SetupSuccess SetupResult = iota
	SetupNotAuthorized
	SetupConfigurationFailed
)

func (r SetupResult) String() string {
	switch r {
	case SetupSuccess:
		return "success"
	case SetupNotAuthorized:
		return "not_authorized"
	case SetupConfigurationFailed:
		return "configuration_failed"
	}
	return "unknown"
}

// State is a snapshot of the session.
type State struct {
	Setup   SetupResult `json:"setup"`
	Running bool        `json:"running"`
}

// PinchPhase is the phase of a zoom gesture.
type PinchPhase int

const (
	PinchBegan PinchPhase = iota
	PinchChanged
	PinchEnded
	PinchCancelled
)

// PhotoProcessor turns a delivered photo into an Outcome.
type PhotoProcessor interface {
	Process(requestID int64, photo *device.Photo) Outcome
}

// Options configure a Controller.
type Options struct {
	Hardware    device.Hardware
	Preferences Preferences
	UI          UI
	Processor   PhotoProcessor
	Logger      *logger.Logger
}

// Controller is the capture session state machine. Session state is only
// touched from the session queue.
type Controller struct {
	hw        device.Hardware
	session   device.Session
	prefs     Preferences
	ui        UI
	processor PhotoProcessor
	logger    *logger.Logger
	queue     *dispatch.Queue
	tracker   *Tracker
	nextID    atomic.Int64

	// Owned by the session queue.
	setupResult    SetupResult
	running        bool
	input          device.Input
	output         device.PhotoOutput
	lastZoom       float64
	cancelObserver func()
	stopEvents     chan struct{}
	eventsDone     chan struct{}

	// Written on the session queue, read by CapturePhoto.
	settingsMu sync.RWMutex
	settings   *device.PhotoSettings
}

// NewController creates a Controller. Call Load to start setup.
func NewController(opts Options) *Controller {
	c := &Controller{
		hw:        opts.Hardware,
		session:   opts.Hardware.Session(),
		prefs:     opts.Preferences,
		ui:        opts.UI,
		processor: opts.Processor,
		logger:    opts.Logger,
		queue:     dispatch.NewQueue("session queue"),
		lastZoom:  MinimumZoom,
	}
	if c.prefs == nil {
		c.prefs = &MemoryPreferences{}
	}
	c.tracker = NewTracker(func(ready bool) {
		c.ui.SetCaptureInteractive(ready)
	})
	return c
}

// Tracker exposes the request tracker.
func (c *Controller) Tracker() *Tracker {
	return c.tracker
}

// Load checks camera authorization and queues session configuration. When
// the user has not decided yet, the session queue is suspended until they
// answer so configuration sees the final result.
func (c *Controller) Load(ctx context.Context) {
	c.ui.SetCaptureEnabled(false)

	auth := c.hw.Authorizer()
	switch status := auth.AuthorizationStatus(); status {
	case device.Authorized:

	case device.NotDetermined:
		var granted atomic.Bool
		c.queue.Suspend()
		c.queue.Async(func() {
			if !granted.Load() {
				c.setupResult = SetupNotAuthorized
			}
		})
		auth.RequestAccess(ctx, func(ok bool) {
			granted.Store(ok)
			c.queue.Resume()
		})

	default:
		c.logger.Warning("Camera access is %s", status)
		c.queue.Async(func() { c.setupResult = SetupNotAuthorized })
	}

	c.queue.Async(c.configureSession)
}

// configureSession runs on the session queue.
func (c *Controller) configureSession() {
	if c.setupResult != SetupSuccess {
		return
	}

	c.session.BeginConfiguration()
	defer c.session.CommitConfiguration()

	discovery := c.hw.Discovery()
	videoDevice := discovery.SystemPreferredCamera()
	if !c.prefs.InitialCameraSet() || videoDevice == nil {
		devices := discovery.Discover([]device.DeviceType{device.BuiltInDualCamera, device.BuiltInWideAngleCamera}, device.PositionBack)
		videoDevice = nil
		if len(devices) > 0 {
			videoDevice = devices[0]
		}
		discovery.SetUserPreferredCamera(videoDevice)

		id := ""
		if videoDevice != nil {
			id = videoDevice.UniqueID()
		}
		if err := c.prefs.SetInitialCamera(id); err != nil {
			c.logger.Warning("Unable to persist camera preference: %v", err)
		}
	}
	if videoDevice == nil {
		c.configurationFailed("Default video device is unavailable.", nil)
		return
	}

	input, err := c.session.NewDeviceInput(videoDevice)
	if err != nil {
		c.configurationFailed("Couldn't create video device input", err)
		return
	}
	if !c.session.CanAddInput(input) {
		c.configurationFailed("Couldn't add video device input to the session.", nil)
		return
	}
	c.session.AddInput(input)
	c.input = input

	output := c.hw.NewPhotoOutput()
	if !c.session.CanAddOutput(output) {
		c.configurationFailed("Could not add photo output to the session", nil)
		return
	}
	c.session.AddOutput(output)
	c.output = output

	if err := c.configurePhotoOutput(); err != nil {
		c.configurationFailed("Could not configure photo output", err)
		return
	}
	c.logger.Info("📷 Capture session configured with %s (%s)", videoDevice.UniqueID(), videoDevice.Type())
}

func (c *Controller) configurationFailed(msg string, err error) {
	if err != nil {
		c.logger.Error("%s: %v", msg, err)
	} else {
		c.logger.Error("%s", msg)
	}
	c.setupResult = SetupConfigurationFailed
}

// configurePhotoOutput runs on the session queue.
func (c *Controller) configurePhotoOutput() error {
	dims := c.input.Device().SupportedMaxPhotoDimensions()
	if len(dims) == 0 {
		return apperror.New(apperror.DeviceConfigurationFailed, "device reports no photo dimensions")
	}
	largest := dims[0]
	for _, d := range dims[1:] {
		if d.Area() > largest.Area() {
			largest = d
		}
	}
	c.output.SetMaxPhotoDimensions(largest)
	c.output.SetLivePhotoCaptureEnabled(c.output.IsLivePhotoCaptureSupported())
	c.output.SetResponsiveCaptureEnabled(c.output.IsResponsiveCaptureSupported())
	c.output.SetFastCapturePrioritizationEnabled(c.output.IsFastCapturePrioritizationSupported())

	settings := c.buildPhotoSettings()
	c.settingsMu.Lock()
	c.settings = &settings
	c.settingsMu.Unlock()
	return nil
}

func (c *Controller) buildPhotoSettings() device.PhotoSettings {
	settings := device.PhotoSettings{Codec: device.CodecJPEG, FlashMode: device.FlashOff}
	for _, codec := range c.output.AvailablePhotoCodecTypes() {
		if codec == device.CodecHEVC {
			settings.Codec = device.CodecHEVC
			break
		}
	}
	if c.input.Device().IsFlashAvailable() {
		settings.FlashMode = device.FlashAuto
	}
	settings.MaxPhotoDimensions = c.output.MaxPhotoDimensions()
	if formats := c.output.AvailablePreviewPixelFormats(); len(formats) > 0 {
		settings.PreviewPixelFormat = formats[0]
	}
	return settings
}

// Appear starts the session when setup succeeded, otherwise explains why it
// cannot.
func (c *Controller) Appear() {
	c.queue.Async(func() {
		switch c.setupResult {
		case SetupSuccess:
			c.addObservers()
			c.session.StartRunning()
			c.running = c.session.IsRunning()
			c.logger.Info("▶️  Capture session running: %v", c.running)

		case SetupNotAuthorized:
			c.ui.PresentAlert(AlertTitle, AlertNotAuthorized)

		case SetupConfigurationFailed:
			c.ui.PresentAlert(AlertTitle, AlertUnableToCapture)
		}
	})
}

// Disappear stops the session and its observers.
func (c *Controller) Disappear() {
	c.queue.Async(func() {
		if c.setupResult != SetupSuccess {
			return
		}
		c.session.StopRunning()
		c.running = c.session.IsRunning()
		c.removeObservers()
		c.logger.Info("⏹️  Capture session stopped")
	})
}

// addObservers runs on the session queue.
func (c *Controller) addObservers() {
	if c.cancelObserver != nil {
		return
	}
	c.cancelObserver = c.session.ObserveRunning(func(running bool) {
		c.ui.SetCaptureEnabled(running)
	})
	if c.session.IsRunning() {
		c.ui.SetCaptureEnabled(true)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	c.stopEvents, c.eventsDone = stop, done
	events := c.session.Events()
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				c.HandleEvent(ev)
			}
		}
	}()
}

// removeObservers runs on the session queue.
func (c *Controller) removeObservers() {
	if c.cancelObserver != nil {
		c.cancelObserver()
		c.cancelObserver = nil
	}
	if c.stopEvents != nil {
		close(c.stopEvents)
		// HandleEvent only enqueues, so the loop cannot be waiting on this queue.
		<-c.eventsDone
		c.stopEvents = nil
		c.eventsDone = nil
	}
}

// HandleEvent reacts to a session event. It may be called from any goroutine.
func (c *Controller) HandleEvent(ev device.Event) {
	switch e := ev.(type) {
	case device.RuntimeError:
		c.logger.Error("Capture session runtime error: %v", e)
		if e.Cause != device.CauseMediaServicesWereReset {
			return
		}
		c.queue.Async(func() {
			if c.running {
				c.session.StartRunning()
				c.running = c.session.IsRunning()
				c.logger.Info("Capture session restarted after media services reset: %v", c.running)
			}
		})

	case device.Interrupted:
		c.logger.Warning("Capture session was interrupted with reason %s", e.Reason)

	case device.SubjectAreaChanged:
		c.focus(device.FocusContinuousAuto, device.ExposureContinuousAuto, device.Center, false)

	default:
		c.logger.Warning("Unhandled capture session event %T", ev)
	}
}

// Focus focuses and exposes at a normalized device point, as on a tap.
func (c *Controller) Focus(point device.Point) {
	c.focus(device.FocusAuto, device.ExposureAuto, point, true)
}

func (c *Controller) focus(focusMode device.FocusMode, exposureMode device.ExposureMode, point device.Point, monitor bool) {
	c.queue.Async(func() {
		if c.input == nil {
			c.logger.Warning("Video device input is nil.")
			return
		}
		dev := c.input.Device()
		if err := dev.LockForConfiguration(); err != nil {
			c.logger.Warning("Could not lock device for configuration: %v", apperror.Wrap(apperror.HardwareLockFailed, "focus", err))
			return
		}
		defer dev.UnlockForConfiguration()

		if dev.IsFocusPointOfInterestSupported() && dev.IsFocusModeSupported(focusMode) {
			dev.SetFocusPointOfInterest(point)
			dev.SetFocusMode(focusMode)
		}
		if dev.IsExposurePointOfInterestSupported() && dev.IsExposureModeSupported(exposureMode) {
			dev.SetExposurePointOfInterest(point)
			dev.SetExposureMode(exposureMode)
		}
		dev.SetSubjectAreaChangeMonitoringEnabled(monitor)
	})
}

// Zoom applies a pinch gesture. scale is relative to the zoom at the start
// of the gesture; the result is clamped to [MinimumZoom, MaximumZoom] and the
// device's own limit.
func (c *Controller) Zoom(scale float64, phase PinchPhase) {
	c.queue.Async(func() {
		if c.input == nil {
			c.logger.Warning("Video device input is nil.")
			return
		}
		dev := c.input.Device()
		factor := clampZoom(scale*c.lastZoom, dev.MaxVideoZoomFactor())

		switch phase {
		case PinchBegan, PinchChanged:
			c.setZoom(dev, factor)
		case PinchEnded:
			c.lastZoom = factor
			c.setZoom(dev, factor)
		}
	})
}

func (c *Controller) setZoom(dev device.Device, factor float64) {
	if err := dev.LockForConfiguration(); err != nil {
		c.logger.Warning("Could not lock device for zoom: %v", apperror.Wrap(apperror.HardwareLockFailed, "zoom", err))
		return
	}
	defer dev.UnlockForConfiguration()
	dev.SetVideoZoomFactor(factor)
}

func clampZoom(factor, deviceMax float64) float64 {
	return math.Min(math.Min(math.Max(factor, MinimumZoom), MaximumZoom), deviceMax)
}

// CapturePhoto issues one capture. onDone receives the outcome on an
// arbitrary goroutine; it may be nil. The returned ID identifies the request.
func (c *Controller) CapturePhoto(onDone func(Outcome)) (int64, error) {
	c.settingsMu.RLock()
	template := c.settings
	c.settingsMu.RUnlock()
	if template == nil {
		c.logger.Warning("No photo settings to capture")
		return 0, ErrNoPhotoSettings
	}

	settings := template.Clone(c.nextID.Add(1))
	id := settings.UniqueID
	finish := func(o Outcome) {
		if onDone != nil {
			onDone(o)
		}
	}

	c.tracker.StartTracking(id)

	queued := c.queue.Async(func() {
		defer c.tracker.StopTracking(id)

		if !c.running || c.output == nil {
			c.logger.Warning("Capture request %d dropped: session is not running", id)
			finish(Outcome{RequestID: id, Err: ErrSessionNotRunning})
			return
		}

		rotation := c.input.Device().HorizonLevelCaptureAngle()
		c.output.SetVideoRotationAngle(rotation)

		req := NewRequest(settings, rotation, nil, func(r *Request, photo *device.Photo, err error) {
			var out Outcome
			if err != nil {
				c.logger.Error("Error capturing photo %d: %v", r.ID(), err)
				out = Outcome{RequestID: r.ID(), Err: err}
			} else {
				out = c.processor.Process(r.ID(), photo)
			}
			c.queue.Async(func() { c.tracker.Deregister(r.ID()) })
			finish(out)
		})
		if err := c.tracker.Register(req); err != nil {
			c.logger.Error("Capture request %d: %v", id, err)
			finish(Outcome{RequestID: id, Err: err})
			return
		}

		c.logger.Info("📸 Capture request %d issued (rotation %.0f°)", id, rotation)
		c.output.CapturePhoto(settings, req)
	})
	if !queued {
		c.tracker.StopTracking(id)
		return 0, ErrShuttingDown
	}
	return id, nil
}

// State returns the session state after every queued operation has run.
func (c *Controller) State() State {
	var s State
	c.queue.Sync(func() {
		s = State{Setup: c.setupResult, Running: c.running}
	})
	return s
}

// Flush waits for every operation queued so far.
func (c *Controller) Flush() {
	c.queue.Sync(func() {})
}

// Teardown stops the session and closes the session queue.
func (c *Controller) Teardown() {
	c.Disappear()
	c.queue.Close()
}
