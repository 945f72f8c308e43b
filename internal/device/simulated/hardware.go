// Package simulated implements the device contract in process. It stands in
// for a native camera bridge on hosts without one and drives the tests.
package simulated

import (
	"context"
	"sync"

	"fishsense/internal/device"
)

// Authorizer answers camera permission prompts from configuration.
type Authorizer struct {
	mu       sync.Mutex
	status   device.AuthorizationStatus
	grant    bool
	requests int
	hold     chan struct{}
}

func (a *Authorizer) AuthorizationStatus() device.AuthorizationStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// RequestAccess answers on a new goroutine. When Hold was called the answer
// waits for Release.
func (a *Authorizer) RequestAccess(ctx context.Context, completion func(bool)) {
	a.mu.Lock()
	a.requests++
	grant := a.grant
	hold := a.hold
	a.mu.Unlock()

	go func() {
		if hold != nil {
			select {
			case <-hold:
			case <-ctx.Done():
				grant = false
			}
		}
		a.mu.Lock()
		if grant {
			a.status = device.Authorized
		} else {
			a.status = device.Denied
		}
		a.mu.Unlock()
		completion(grant)
	}()
}

// Hold defers the answer to the next permission prompt until Release.
func (a *Authorizer) Hold() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hold = make(chan struct{})
}

// Release lets a held prompt answer.
func (a *Authorizer) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.hold != nil {
		close(a.hold)
		a.hold = nil
	}
}

// Requests counts permission prompts.
func (a *Authorizer) Requests() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests
}

// Discovery lists the simulated cameras.
type Discovery struct {
	mu            sync.Mutex
	devices       []*Camera
	preferred     *Camera
	userPreferred device.Device
}

func (d *Discovery) SystemPreferredCamera() device.Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.preferred == nil {
		return nil
	}
	return d.preferred
}

func (d *Discovery) Discover(types []device.DeviceType, position device.Position) []device.Device {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Results follow the order of types, then registration order.
	var found []device.Device
	for _, t := range types {
		for _, c := range d.devices {
			if c.Type() == t && c.Position() == position {
				found = append(found, c)
			}
		}
	}
	return found
}

func (d *Discovery) SetUserPreferredCamera(dev device.Device) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userPreferred = dev
}

// UserPreferred is the camera last recorded as the user's choice.
func (d *Discovery) UserPreferred() device.Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.userPreferred
}

// SetSystemPreferred sets (or clears, with nil) the system preferred camera.
func (d *Discovery) SetSystemPreferred(c *Camera) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preferred = c
}

// SetDevices replaces the discoverable cameras.
func (d *Discovery) SetDevices(cams ...*Camera) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices = cams
}

// Options configure New.
type Options struct {
	Authorization device.AuthorizationStatus
	GrantAccess   bool
	Scene         Scene
}

// Hardware bundles simulated authorizer, discovery, session and outputs.
type Hardware struct {
	Auth    *Authorizer
	Disc    *Discovery
	Sess    *Session
	Camera  *Camera
	scene   Scene

	mu          sync.Mutex
	outputs     []*PhotoOutput
	outputSetup func(*PhotoOutput)
}

// New returns hardware with one back dual camera, not yet system preferred,
// so the session runs its discovery fallback on first launch.
func New(opts Options) *Hardware {
	cam := NewCamera("sim-back-dual", device.BuiltInDualCamera, device.PositionBack)
	return &Hardware{
		Auth:   &Authorizer{status: opts.Authorization, grant: opts.GrantAccess},
		Disc:   &Discovery{devices: []*Camera{cam}},
		Sess:   newSession(),
		Camera: cam,
		scene:  opts.Scene,
	}
}

func (h *Hardware) Authorizer() device.Authorizer { return h.Auth }

func (h *Hardware) Discovery() device.Discovery { return h.Disc }

func (h *Hardware) Session() device.Session { return h.Sess }

func (h *Hardware) NewPhotoOutput() device.PhotoOutput {
	out := newPhotoOutput(h.scene)
	h.mu.Lock()
	setup := h.outputSetup
	h.outputs = append(h.outputs, out)
	h.mu.Unlock()
	if setup != nil {
		setup(out)
	}
	return out
}

// OnNewOutput registers fn to adjust each photo output as it is created.
func (h *Hardware) OnNewOutput(fn func(*PhotoOutput)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outputSetup = fn
}

// Output returns the most recently created photo output, or nil.
func (h *Hardware) Output() *PhotoOutput {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.outputs) == 0 {
		return nil
	}
	return h.outputs[len(h.outputs)-1]
}
