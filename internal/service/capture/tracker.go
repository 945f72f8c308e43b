package capture

import (
	"errors"
	"sync"
)

// ErrDuplicateRequest is returned when a request ID is registered twice.
var ErrDuplicateRequest = errors.New("capture request already registered")

// Tracker follows capture requests from creation to completion.
//
// Readiness tracking covers the short window between a request being created
// and it being handed to the photo output; while any request is in that
// window the output is not ready and the capture control stops accepting
// input. The registry keeps handed-off requests alive until they complete.
type Tracker struct {
	mu          sync.Mutex
	tracking    map[int64]struct{}
	requests    map[int64]*Request
	ready       bool
	onReadiness func(ready bool)
}

// NewTracker returns a ready Tracker. onReadiness is called on every
// readiness change and never for repeated values.
func NewTracker(onReadiness func(ready bool)) *Tracker {
	return &Tracker{
		tracking:    make(map[int64]struct{}),
		requests:    make(map[int64]*Request),
		ready:       true,
		onReadiness: onReadiness,
	}
}

// StartTracking marks id as not yet handed off. Repeated calls are no-ops.
func (t *Tracker) StartTracking(id int64) {
	t.mu.Lock()
	if _, ok := t.tracking[id]; ok {
		t.mu.Unlock()
		return
	}
	t.tracking[id] = struct{}{}
	t.updateLocked()
}

// StopTracking marks id as handed off. Unknown ids are ignored.
func (t *Tracker) StopTracking(id int64) {
	t.mu.Lock()
	if _, ok := t.tracking[id]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.tracking, id)
	t.updateLocked()
}

// updateLocked recomputes readiness and releases t.mu before notifying.
func (t *Tracker) updateLocked() {
	ready := len(t.tracking) == 0
	changed := ready != t.ready
	t.ready = ready
	notify := t.onReadiness
	t.mu.Unlock()

	if changed && notify != nil {
		notify(ready)
	}
}

// Register keeps r alive until Deregister. Each ID may be registered once.
func (t *Tracker) Register(r *Request) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := r.ID()
	if _, ok := t.requests[id]; ok {
		return ErrDuplicateRequest
	}
	t.requests[id] = r
	return nil
}

// Deregister drops the request with id and reports whether it was present.
func (t *Tracker) Deregister(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.requests[id]; !ok {
		return false
	}
	delete(t.requests, id)
	return true
}

// Lookup returns the registered request with id.
func (t *Tracker) Lookup(id int64) (*Request, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.requests[id]
	return r, ok
}

// Ready reports whether no request is between StartTracking and StopTracking.
func (t *Tracker) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready
}

// Tracking counts requests not yet handed off.
func (t *Tracker) Tracking() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tracking)
}

// InFlight counts registered requests.
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}
