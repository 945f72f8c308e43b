package capture

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"fishsense/internal/device"
	"fishsense/internal/device/simulated"
	"fishsense/internal/logger"
)

type harness struct {
	c     *Controller
	hw    *simulated.Hardware
	ui    *fakeUI
	prefs *MemoryPreferences
}

func newHarness(t *testing.T, opts simulated.Options, prefs *MemoryPreferences, setup func(*simulated.Hardware)) *harness {
	t.Helper()
	if opts.Scene.Width == 0 {
		opts.Scene = simulated.DefaultScene()
	}
	if prefs == nil {
		prefs = &MemoryPreferences{}
	}
	hw := simulated.New(opts)
	if setup != nil {
		setup(hw)
	}
	ui := &fakeUI{}
	lib := newTestLibrary(t)
	processor := NewProcessor(simulated.Measurer{}, lib, &fakeImages{dir: t.TempDir()}, ui, logger.Discard(), false)

	c := NewController(Options{
		Hardware:    hw,
		Preferences: prefs,
		UI:          ui,
		Processor:   processor,
		Logger:      logger.Discard(),
	})
	t.Cleanup(c.Teardown)
	return &harness{c: c, hw: hw, ui: ui, prefs: prefs}
}

func authorized() simulated.Options {
	return simulated.Options{Authorization: device.Authorized}
}

func (h *harness) start() {
	h.c.Load(context.Background())
	h.c.Appear()
	h.c.Flush()
}

func (h *harness) capture(t *testing.T) Outcome {
	t.Helper()
	done := make(chan Outcome, 1)
	if _, err := h.c.CapturePhoto(func(o Outcome) { done <- o }); err != nil {
		t.Fatalf("CapturePhoto failed: %v", err)
	}
	select {
	case o := <-done:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for capture")
	}
	return Outcome{}
}

func TestController_ConfiguresOnFirstLaunch(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.start()

	state := h.c.State()
	if state.Setup != SetupSuccess || !state.Running {
		t.Fatalf("Expected running session, got %+v", state)
	}
	if h.hw.Disc.UserPreferred() != h.hw.Camera {
		t.Error("Expected the discovered camera to become the user preferred camera")
	}
	if !h.prefs.InitialCameraSet() {
		t.Error("Expected initial camera preference to be recorded")
	}
	if h.hw.Sess.Commits() != 1 {
		t.Errorf("Expected 1 configuration commit, got %d", h.hw.Sess.Commits())
	}
	if enabled, ok := h.ui.lastEnabled(); !ok || !enabled {
		t.Error("Expected capture control to be enabled")
	}

	live, responsive, fast := h.hw.Output().Enabled()
	if !live || !responsive || !fast {
		t.Errorf("Expected all supported features enabled, got %v %v %v", live, responsive, fast)
	}
	if got := h.hw.Output().MaxPhotoDimensions(); got != (device.Dimensions{Width: 4032, Height: 3024}) {
		t.Errorf("Expected largest dimensions, got %+v", got)
	}
}

func TestController_UsesSystemPreferredCameraAfterFirstLaunch(t *testing.T) {
	prefs := &MemoryPreferences{}
	_ = prefs.SetInitialCamera("sim-back-dual")
	wide := simulated.NewCamera("sim-back-wide", device.BuiltInWideAngleCamera, device.PositionBack)

	h := newHarness(t, authorized(), prefs, func(hw *simulated.Hardware) {
		hw.Disc.SetSystemPreferred(wide)
	})
	h.start()

	inputs := h.hw.Sess.Inputs()
	if len(inputs) != 1 || inputs[0].Device().UniqueID() != "sim-back-wide" {
		t.Fatalf("Expected the system preferred camera to be used, got %v", inputs)
	}
	if h.hw.Disc.UserPreferred() != nil {
		t.Error("Expected user preferred camera to stay untouched")
	}
}

func TestController_NotAuthorized(t *testing.T) {
	h := newHarness(t, simulated.Options{Authorization: device.Denied}, nil, nil)
	h.start()

	if s := h.c.State(); s.Setup != SetupNotAuthorized || s.Running {
		t.Fatalf("Expected not authorized, got %+v", s)
	}
	if a := h.ui.lastAlert(t); a.title != AlertTitle || a.message != AlertNotAuthorized {
		t.Errorf("Unexpected alert %+v", a)
	}
	if h.hw.Sess.Commits() != 0 || h.hw.Sess.StartCalls() != 0 {
		t.Error("Expected session to be left alone")
	}
	if _, err := h.c.CapturePhoto(nil); !errors.Is(err, ErrNoPhotoSettings) {
		t.Errorf("Expected ErrNoPhotoSettings, got %v", err)
	}
}

func TestController_WaitsForAccessPrompt(t *testing.T) {
	tests := []struct {
		name  string
		grant bool
		want  SetupResult
	}{
		{"granted", true, SetupSuccess},
		{"denied", false, SetupNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, simulated.Options{Authorization: device.NotDetermined, GrantAccess: tt.grant}, nil, nil)
			h.hw.Auth.Hold()

			h.c.Load(context.Background())
			h.c.Appear()
			if h.hw.Sess.Commits() != 0 {
				t.Error("Expected configuration to wait for the prompt")
			}

			h.hw.Auth.Release()
			if s := h.c.State(); s.Setup != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, s.Setup)
			}
			if h.hw.Auth.Requests() != 1 {
				t.Errorf("Expected one prompt, got %d", h.hw.Auth.Requests())
			}
		})
	}
}

func TestController_ConfigurationFailureIsTerminal(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*simulated.Hardware)
	}{
		{"no camera", func(hw *simulated.Hardware) { hw.Disc.SetDevices() }},
		{"input creation", func(hw *simulated.Hardware) { hw.Sess.FailInputCreation(true) }},
		{"input rejected", func(hw *simulated.Hardware) { hw.Sess.RejectInputs(true) }},
		{"output rejected", func(hw *simulated.Hardware) { hw.Sess.RejectOutputs(true) }},
		{"no dimensions", func(hw *simulated.Hardware) { hw.Camera.SetPhotoDimensions(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, authorized(), nil, tt.setup)
			h.start()

			if s := h.c.State(); s.Setup != SetupConfigurationFailed || s.Running {
				t.Fatalf("Expected configuration failure, got %+v", s)
			}
			if h.hw.Sess.Commits() != 1 {
				t.Errorf("Expected configuration to be committed once, got %d", h.hw.Sess.Commits())
			}
			if a := h.ui.lastAlert(t); a.title != AlertTitle || a.message != AlertUnableToCapture {
				t.Errorf("Unexpected alert %+v", a)
			}

			h.c.Appear()
			h.c.Disappear()
			h.c.Flush()
			if h.hw.Sess.StartCalls() != 0 || h.hw.Sess.StopCalls() != 0 {
				t.Error("Expected a failed session never to start or stop")
			}
			if h.c.State().Setup != SetupConfigurationFailed {
				t.Error("Expected setup result to stay failed")
			}
		})
	}
}

func TestController_DisappearStopsSession(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.start()

	h.c.Disappear()
	if s := h.c.State(); s.Running {
		t.Error("Expected session to be stopped")
	}
	if h.hw.Sess.Observers() != 0 {
		t.Errorf("Expected observers removed, got %d", h.hw.Sess.Observers())
	}
	if enabled, _ := h.ui.lastEnabled(); enabled {
		t.Error("Expected capture control to be disabled")
	}
}

func TestController_NoEventsHandledAfterDisappear(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.start()

	h.c.Disappear()
	h.c.Flush()

	tap := device.Point{X: 0.3, Y: 0.4}
	h.c.Focus(tap)
	h.c.Flush()

	h.hw.Sess.Inject(device.SubjectAreaChanged{})
	time.Sleep(50 * time.Millisecond)
	h.c.Flush()

	snap := h.hw.Camera.Snapshot()
	if snap.FocusPoint != tap || !snap.MonitorSubject {
		t.Errorf("Expected tap focus to survive a stale event, got %+v", snap)
	}
}

func TestController_MediaResetRestartsOnce(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.start()

	h.hw.Sess.Inject(device.RuntimeError{Cause: device.CauseMediaServicesWereReset})
	waitFor(t, "restart", func() bool { return h.hw.Sess.StartCalls() == 2 })
	h.c.Flush()

	if h.hw.Sess.StartCalls() != 2 {
		t.Errorf("Expected exactly one restart, got %d start calls", h.hw.Sess.StartCalls())
	}
	if !h.c.State().Running {
		t.Error("Expected session to be running after restart")
	}
}

func TestController_OtherRuntimeErrorsDoNotRestart(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.start()

	h.hw.Sess.Inject(device.RuntimeError{Cause: device.CauseDeviceInUse})
	h.hw.Sess.Inject(device.Interrupted{Reason: device.InterruptionVideoDeviceInUseByAnotherClient})
	h.hw.Sess.Inject(device.SubjectAreaChanged{})
	waitFor(t, "subject area refocus", func() bool { return !h.hw.Camera.Snapshot().MonitorSubject })
	h.c.Flush()

	if h.hw.Sess.StartCalls() != 1 {
		t.Errorf("Expected no restart, got %d start calls", h.hw.Sess.StartCalls())
	}
}

func TestController_TapFocusAndSubjectAreaChange(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.start()

	tap := device.Point{X: 0.2, Y: 0.7}
	h.c.Focus(tap)
	h.c.Flush()

	snap := h.hw.Camera.Snapshot()
	if snap.FocusPoint != tap || snap.ExposurePoint != tap {
		t.Errorf("Expected focus and exposure at %+v, got %+v %+v", tap, snap.FocusPoint, snap.ExposurePoint)
	}
	if snap.FocusMode != device.FocusAuto || snap.ExposureMode != device.ExposureAuto || !snap.MonitorSubject {
		t.Errorf("Unexpected tap focus state %+v", snap)
	}
	if snap.Locked {
		t.Error("Expected device to be unlocked")
	}

	h.hw.Sess.Inject(device.SubjectAreaChanged{})
	waitFor(t, "subject area refocus", func() bool { return !h.hw.Camera.Snapshot().MonitorSubject })

	snap = h.hw.Camera.Snapshot()
	if snap.FocusPoint != device.Center || snap.FocusMode != device.FocusContinuousAuto || snap.ExposureMode != device.ExposureContinuousAuto {
		t.Errorf("Expected continuous focus at center, got %+v", snap)
	}
}

func TestController_FocusLockFailureSkipsChange(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.start()
	h.hw.Camera.RefuseLock(true)

	h.c.Focus(device.Point{X: 0.1, Y: 0.1})
	h.c.Zoom(2, PinchEnded)
	h.c.Flush()

	snap := h.hw.Camera.Snapshot()
	if snap.FocusMode != device.FocusContinuousAuto || snap.FocusPoint != (device.Point{}) {
		t.Errorf("Expected focus untouched, got %+v", snap)
	}
	if snap.Zoom != 1 {
		t.Errorf("Expected zoom untouched, got %v", snap.Zoom)
	}
}

func TestController_ZoomIsClamped(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.start()

	zoom := func(scale float64, phase PinchPhase) float64 {
		h.c.Zoom(scale, phase)
		h.c.Flush()
		return h.hw.Camera.Snapshot().Zoom
	}

	if got := zoom(5, PinchBegan); got != MaximumZoom {
		t.Errorf("Expected zoom clamped to %v, got %v", MaximumZoom, got)
	}
	if got := zoom(1.5, PinchEnded); got != 1.5 {
		t.Errorf("Expected zoom 1.5, got %v", got)
	}
	if got := zoom(0.5, PinchChanged); got != MinimumZoom {
		t.Errorf("Expected zoom clamped to %v, got %v", MinimumZoom, got)
	}
	if got := zoom(1.2, PinchChanged); math.Abs(got-1.8) > 1e-9 {
		t.Errorf("Expected zoom relative to last gesture, got %v", got)
	}

	h.hw.Camera.SetMaxZoom(1.25)
	if got := zoom(1, PinchChanged); got != 1.25 {
		t.Errorf("Expected zoom clamped to device maximum, got %v", got)
	}
}

func TestController_CaptureMeasuresAndStores(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.start()

	out := h.capture(t)
	if out.Err != nil {
		t.Fatalf("Unexpected capture error: %v", out.Err)
	}
	if !out.FishFound || math.Abs(float64(out.Length)-0.4) > 1e-3 || out.RecordID == 0 {
		t.Errorf("Unexpected outcome %+v", out)
	}
	if a := h.ui.lastAlert(t); a.title != AlertFishLength || a.message != "40.0cm" {
		t.Errorf("Unexpected alert %+v", a)
	}

	h.c.Flush()
	if h.c.Tracker().InFlight() != 0 || !h.c.Tracker().Ready() {
		t.Error("Expected tracker to be drained")
	}
	if got := h.hw.Output().Rotation(); got != 90 {
		t.Errorf("Expected horizon level rotation 90, got %v", got)
	}
	if got := h.ui.interactiveChanges(); len(got) != 2 || got[0] || !got[1] {
		t.Errorf("Expected interactive changes [false true], got %v", got)
	}

	captured := h.hw.Output().Captured()
	if len(captured) != 1 {
		t.Fatalf("Expected 1 capture, got %d", len(captured))
	}
	s := captured[0]
	if s.UniqueID != out.RequestID || s.Codec != device.CodecHEVC || s.FlashMode != device.FlashAuto || s.PreviewPixelFormat != "BGRA" {
		t.Errorf("Unexpected capture settings %+v", s)
	}
}

func TestController_CaptureIDsAreUnique(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.start()

	first := h.capture(t)
	second := h.capture(t)
	if first.RequestID == second.RequestID {
		t.Errorf("Expected distinct request IDs, got %d twice", first.RequestID)
	}
}

func TestController_SettingsFollowHardware(t *testing.T) {
	h := newHarness(t, authorized(), nil, func(hw *simulated.Hardware) {
		hw.Camera.SetFlashAvailable(false)
		hw.OnNewOutput(func(o *simulated.PhotoOutput) {
			o.SetCodecs(device.CodecJPEG)
			o.SetSupportedFeatures(false, true, false)
		})
	})
	h.start()

	live, responsive, fast := h.hw.Output().Enabled()
	if live || !responsive || fast {
		t.Errorf("Expected only responsive capture enabled, got %v %v %v", live, responsive, fast)
	}

	h.capture(t)
	s := h.hw.Output().Captured()[0]
	if s.Codec != device.CodecJPEG || s.FlashMode != device.FlashOff {
		t.Errorf("Expected JPEG without flash, got %+v", s)
	}
}

func TestController_CaptureWhileStopped(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.c.Load(context.Background())
	h.c.Flush()

	out := h.capture(t)
	if !errors.Is(out.Err, ErrSessionNotRunning) {
		t.Errorf("Expected ErrSessionNotRunning, got %v", out.Err)
	}
	if len(h.hw.Output().Captured()) != 0 {
		t.Error("Expected no capture to reach the output")
	}
	if !h.c.Tracker().Ready() {
		t.Error("Expected tracker to be ready")
	}
}

func TestController_CaptureFailure(t *testing.T) {
	h := newHarness(t, authorized(), nil, func(hw *simulated.Hardware) {
		hw.OnNewOutput(func(o *simulated.PhotoOutput) { o.FailCaptures(true) })
	})
	h.start()

	out := h.capture(t)
	if !errors.Is(out.Err, simulated.ErrCaptureFailed) {
		t.Errorf("Expected ErrCaptureFailed, got %v", out.Err)
	}
	if h.ui.alertCount() != 0 {
		t.Errorf("Expected no alert for a failed capture, got %d", h.ui.alertCount())
	}
	h.c.Flush()
	if h.c.Tracker().InFlight() != 0 {
		t.Error("Expected failed request to be deregistered")
	}
}

func TestController_CaptureAfterTeardown(t *testing.T) {
	h := newHarness(t, authorized(), nil, nil)
	h.start()
	h.c.Teardown()

	if _, err := h.c.CapturePhoto(nil); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("Expected ErrShuttingDown, got %v", err)
	}
	if !h.c.Tracker().Ready() {
		t.Error("Expected tracker to be ready")
	}
	if h.hw.Sess.IsRunning() {
		t.Error("Expected session stopped by teardown")
	}
}
