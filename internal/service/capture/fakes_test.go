package capture

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"fishsense/internal/service/view"
)

type alert struct {
	title, message string
}

type fakeUI struct {
	mu           sync.Mutex
	enabled      []bool
	interactive  []bool
	photoCount   int
	alerts       []alert
	measurements []view.Measurement
}

func (u *fakeUI) SetCaptureEnabled(enabled bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.enabled = append(u.enabled, enabled)
}

func (u *fakeUI) SetCaptureInteractive(interactive bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.interactive = append(u.interactive, interactive)
}

func (u *fakeUI) SetPhotoCount(n int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.photoCount = n
}

func (u *fakeUI) PresentAlert(title, msg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.alerts = append(u.alerts, alert{title, msg})
}

func (u *fakeUI) ShowMeasurement(m view.Measurement) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.measurements = append(u.measurements, m)
}

func (u *fakeUI) lastAlert(t *testing.T) alert {
	t.Helper()
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.alerts) == 0 {
		t.Fatal("Expected an alert")
	}
	return u.alerts[len(u.alerts)-1]
}

func (u *fakeUI) alertCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.alerts)
}

func (u *fakeUI) lastEnabled() (bool, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.enabled) == 0 {
		return false, false
	}
	return u.enabled[len(u.enabled)-1], true
}

func (u *fakeUI) interactiveChanges() []bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]bool(nil), u.interactive...)
}

type fakeImages struct {
	mu     sync.Mutex
	dir    string
	fail   bool
	rgb    []string
	depths []string
}

func (f *fakeImages) WriteRGB(name string, rgb []byte, width, height int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("disk full")
	}
	f.rgb = append(f.rgb, name)
	return filepath.Join(f.dir, name), nil
}

func (f *fakeImages) WriteDepth(name string, depth []byte, width, height int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.depths = append(f.depths, name)
	return filepath.Join(f.dir, name), nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
