package simulated

import (
	"errors"
	"sync"

	"fishsense/internal/device"
)

// ErrDeviceBusy is returned by LockForConfiguration when the camera is set up
// to refuse locks.
var ErrDeviceBusy = errors.New("device is locked by another client")

// Camera is a simulated physical camera. Every setter records its value so
// tests can assert on what the session configured.
type Camera struct {
	id       string
	typ      device.DeviceType
	position device.Position

	mu             sync.Mutex
	dimensions     []device.Dimensions
	flash          bool
	focusPOI       bool
	exposurePOI    bool
	maxZoom        float64
	rotation       float64
	refuseLock     bool
	locked         bool
	lockCount      int
	focusPoint     device.Point
	focusMode      device.FocusMode
	exposurePoint  device.Point
	exposureMode   device.ExposureMode
	monitorSubject bool
	zoom           float64
}

// NewCamera returns a back-facing camera with flash, point-of-interest
// focus/exposure and a 4x zoom range.
func NewCamera(id string, typ device.DeviceType, position device.Position) *Camera {
	return &Camera{
		id:       id,
		typ:      typ,
		position: position,
		dimensions: []device.Dimensions{
			{Width: 1920, Height: 1440},
			{Width: 4032, Height: 3024},
		},
		flash:          true,
		focusPOI:       true,
		exposurePOI:    true,
		maxZoom:        4,
		rotation:       90,
		zoom:           1,
		focusMode:      device.FocusContinuousAuto,
		exposureMode:   device.ExposureContinuousAuto,
		monitorSubject: true,
	}
}

// SetPhotoDimensions replaces the supported max photo dimensions.
func (c *Camera) SetPhotoDimensions(d []device.Dimensions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dimensions = append([]device.Dimensions(nil), d...)
}

// SetFlashAvailable toggles flash hardware.
func (c *Camera) SetFlashAvailable(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flash = v
}

// SetMaxZoom sets the device's zoom ceiling.
func (c *Camera) SetMaxZoom(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxZoom = v
}

// SetCaptureRotation sets the horizon-level capture angle.
func (c *Camera) SetCaptureRotation(degrees float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotation = degrees
}

// RefuseLock makes LockForConfiguration fail.
func (c *Camera) RefuseLock(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refuseLock = v
}

// Snapshot is the configured state of a Camera.
type Snapshot struct {
	Locked         bool
	LockCount      int
	FocusPoint     device.Point
	FocusMode      device.FocusMode
	ExposurePoint  device.Point
	ExposureMode   device.ExposureMode
	MonitorSubject bool
	Zoom           float64
}

// Snapshot returns what the session has configured so far.
func (c *Camera) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Locked:         c.locked,
		LockCount:      c.lockCount,
		FocusPoint:     c.focusPoint,
		FocusMode:      c.focusMode,
		ExposurePoint:  c.exposurePoint,
		ExposureMode:   c.exposureMode,
		MonitorSubject: c.monitorSubject,
		Zoom:           c.zoom,
	}
}

func (c *Camera) UniqueID() string { return c.id }
func (c *Camera) Type() device.DeviceType { return c.typ }
func (c *Camera) Position() device.Position { return c.position }
func (c *Camera) IsFocusModeSupported(device.FocusMode) bool { return true }
func (c *Camera) IsExposureModeSupported(device.ExposureMode) bool { return true }

func (c *Camera) LockForConfiguration() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refuseLock {
		return ErrDeviceBusy
	}
	c.locked = true
	c.lockCount++
	return nil
}

func (c *Camera) UnlockForConfiguration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = false
}

func (c *Camera) SupportedMaxPhotoDimensions() []device.Dimensions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]device.Dimensions(nil), c.dimensions...)
}

func (c *Camera) IsFlashAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flash
}

func (c *Camera) IsFocusPointOfInterestSupported() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focusPOI
}

func (c *Camera) IsExposurePointOfInterestSupported() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exposurePOI
}

func (c *Camera) SetFocusPointOfInterest(p device.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focusPoint = p
}

func (c *Camera) SetFocusMode(m device.FocusMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focusMode = m
}

func (c *Camera) SetExposurePointOfInterest(p device.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exposurePoint = p
}

func (c *Camera) SetExposureMode(m device.ExposureMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exposureMode = m
}

func (c *Camera) SetSubjectAreaChangeMonitoringEnabled(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.monitorSubject = v
}

func (c *Camera) VideoZoomFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *Camera) MaxVideoZoomFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxZoom
}

func (c *Camera) SetVideoZoomFactor(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = v
}

func (c *Camera) HorizonLevelCaptureAngle() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotation
}
