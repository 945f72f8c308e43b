// Package device is the contract between the capture session and a camera
// stack. Implementations bridge a native camera API; package simulated
// provides an in-process one.
package device

import (
	"context"
	"time"
)

type AuthorizationStatus int

const (
	NotDetermined AuthorizationStatus = iota
	Authorized
	Denied
	Restricted
)

func (s AuthorizationStatus) String() string {
	switch s {
	case NotDetermined:
		return "not_determined"
	case Authorized:
		return "authorized"
	case Denied:
		return "denied"
	case Restricted:
		return "restricted"
	}
	return "unknown"
}

// ParseAuthorizationStatus maps a config value onto a status. Unknown values
// map to Denied.
func ParseAuthorizationStatus(s string) AuthorizationStatus {
	switch s {
	case "authorized":
		return Authorized
	case "not_determined":
		return NotDetermined
	case "restricted":
		return Restricted
	}
	return Denied
}

type Position int

const (
	PositionUnspecified Position = iota
	PositionBack
	PositionFront
)

type DeviceType string

const (
	BuiltInDualCamera      DeviceType = "dual"
	BuiltInWideAngleCamera DeviceType = "wide_angle"
	BuiltInTrueDepthCamera DeviceType = "true_depth"
)

type Codec string

const (
	CodecJPEG Codec = "jpeg"
	CodecHEVC Codec = "hevc"
)

type FlashMode int

const (
	FlashOff FlashMode = iota
	FlashOn
	FlashAuto
)

type FocusMode int

const (
	FocusLocked FocusMode = iota
	FocusAuto
	FocusContinuousAuto
)

type ExposureMode int

const (
	ExposureLocked ExposureMode = iota
	ExposureAuto
	ExposureContinuousAuto
)

// Dimensions of a photo in pixels.
type Dimensions struct {
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

// Area is the pixel count, used to order dimension candidates.
func (d Dimensions) Area() int64 {
	return int64(d.Width) * int64(d.Height)
}

// Point is a normalized device coordinate; (0,0) top-left, (1,1) bottom-right.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Center of the frame.
var Center = Point{X: 0.5, Y: 0.5}

// PhotoSettings describe one capture.
type PhotoSettings struct {
	UniqueID           int64
	Codec              Codec
	FlashMode          FlashMode
	MaxPhotoDimensions Dimensions
	PreviewPixelFormat string
}

// Clone copies the settings under a new unique ID.
func (s PhotoSettings) Clone(uniqueID int64) PhotoSettings {
	s.UniqueID = uniqueID
	return s
}

// Photo is a processed capture with its depth data.
type Photo struct {
	SettingsID int64
	CapturedAt time.Time

	RGB       []byte // interleaved 8-bit RGB, row-major
	RGBWidth  int
	RGBHeight int

	Depth       []byte // float32 little-endian meters, row-major
	DepthWidth  int
	DepthHeight int

	Confidence       []byte // one byte per sample
	ConfidenceWidth  int
	ConfidenceHeight int

	Intrinsics [3][3]float32 // row-major camera matrix for the RGB frame
}

// Authorizer gates access to the camera.
type Authorizer interface {
	AuthorizationStatus() AuthorizationStatus
	// RequestAccess asks the user and calls completion exactly once, on an
	// arbitrary goroutine.
	RequestAccess(ctx context.Context, completion func(granted bool))
}

// Device is one physical camera.
type Device interface {
	UniqueID() string
	Type() DeviceType
	Position() Position

	LockForConfiguration() error
	UnlockForConfiguration()

	SupportedMaxPhotoDimensions() []Dimensions
	IsFlashAvailable() bool

	IsFocusPointOfInterestSupported() bool
	IsFocusModeSupported(FocusMode) bool
	SetFocusPointOfInterest(Point)
	SetFocusMode(FocusMode)

	IsExposurePointOfInterestSupported() bool
	IsExposureModeSupported(ExposureMode) bool
	SetExposurePointOfInterest(Point)
	SetExposureMode(ExposureMode)

	SetSubjectAreaChangeMonitoringEnabled(bool)

	VideoZoomFactor() float64
	MaxVideoZoomFactor() float64
	SetVideoZoomFactor(float64)

	// HorizonLevelCaptureAngle is the rotation, in degrees, that keeps a
	// captured photo level with the horizon.
	HorizonLevelCaptureAngle() float64
}

// Discovery finds cameras and records the user's choice.
type Discovery interface {
	SystemPreferredCamera() Device
	Discover(types []DeviceType, position Position) []Device
	SetUserPreferredCamera(Device)
}

// Input feeds a device into a session.
type Input interface {
	Device() Device
}

// Session connects inputs to outputs.
type Session interface {
	BeginConfiguration()
	CommitConfiguration()

	NewDeviceInput(Device) (Input, error)
	CanAddInput(Input) bool
	AddInput(Input)
	CanAddOutput(PhotoOutput) bool
	AddOutput(PhotoOutput)

	StartRunning()
	StopRunning()
	IsRunning() bool

	// ObserveRunning calls fn with the new value whenever the running flag
	// changes. The returned cancel stops delivery and is safe to call twice.
	ObserveRunning(fn func(running bool)) (cancel func())

	// Events delivers runtime errors, interruptions and subject-area changes.
	Events() <-chan Event
}

// PhotoOutput produces still photos.
type PhotoOutput interface {
	AvailablePhotoCodecTypes() []Codec
	AvailablePreviewPixelFormats() []string

	MaxPhotoDimensions() Dimensions
	SetMaxPhotoDimensions(Dimensions)

	IsLivePhotoCaptureSupported() bool
	SetLivePhotoCaptureEnabled(bool)
	IsResponsiveCaptureSupported() bool
	SetResponsiveCaptureEnabled(bool)
	IsFastCapturePrioritizationSupported() bool
	SetFastCapturePrioritizationEnabled(bool)

	// SetVideoRotationAngle rotates the output connection, in degrees.
	SetVideoRotationAngle(float64)

	CapturePhoto(settings PhotoSettings, delegate CaptureDelegate)
}

// CaptureDelegate receives the lifecycle of one capture.
type CaptureDelegate interface {
	WillCapturePhoto(settingsID int64)
	DidFinishProcessingPhoto(photo *Photo, err error)
}

// Hardware bundles what the session state machine needs from a camera stack.
type Hardware interface {
	Authorizer() Authorizer
	Discovery() Discovery
	Session() Session
	NewPhotoOutput() PhotoOutput
}
