// Package view holds the state shown to viewers. All mutations run on one
// main queue and every change is published as a full snapshot.
package view

import (
	"encoding/json"

	"fishsense/internal/logger"
	"fishsense/internal/measure"
	"fishsense/internal/service/dispatch"
)

// Broadcaster delivers a serialized message to every viewer.
type Broadcaster interface {
	Broadcast(message []byte)
}

// Alert has a title, a message and a single dismiss action.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Measurement is the outcome of the most recent capture.
type Measurement struct {
	RequestID int64           `json:"requestId"`
	RecordID  int64           `json:"recordId,omitempty"`
	FishFound bool            `json:"fishFound"`
	LengthM   float32         `json:"lengthMeters"`
	Left      measure.Point2D `json:"left"`
	Right     measure.Point2D `json:"right"`
}

// State is what a viewer renders.
type State struct {
	CaptureEnabled     bool         `json:"captureEnabled"`
	CaptureInteractive bool         `json:"captureInteractive"`
	PhotoCount         int          `json:"photoCount"`
	Alert              *Alert       `json:"alert,omitempty"`
	LastMeasurement    *Measurement `json:"lastMeasurement,omitempty"`
}

type message struct {
	Type  string `json:"type"`
	State State  `json:"state"`
}

// View owns State on its main queue.
type View struct {
	main   *dispatch.Queue
	out    Broadcaster
	logger *logger.Logger
	state  State
}

// New returns a View publishing to out. out may be nil.
func New(out Broadcaster, logger *logger.Logger) *View {
	return &View{
		main:   dispatch.NewQueue("main"),
		out:    out,
		logger: logger,
		state:  State{CaptureInteractive: true},
	}
}

// SetCaptureEnabled shows or hides the capture control.
func (v *View) SetCaptureEnabled(enabled bool) {
	v.update(func(s *State) { s.CaptureEnabled = enabled })
}

// SetCaptureInteractive toggles whether the capture control accepts input.
func (v *View) SetCaptureInteractive(interactive bool) {
	v.update(func(s *State) { s.CaptureInteractive = interactive })
}

// SetPhotoCount updates the stored photo counter.
func (v *View) SetPhotoCount(n int) {
	v.update(func(s *State) { s.PhotoCount = n })
}

// PresentAlert replaces the current alert.
func (v *View) PresentAlert(title, msg string) {
	v.update(func(s *State) { s.Alert = &Alert{Title: title, Message: msg} })
}

// DismissAlert clears the current alert.
func (v *View) DismissAlert() {
	v.update(func(s *State) { s.Alert = nil })
}

// ShowMeasurement records the latest measurement.
func (v *View) ShowMeasurement(m Measurement) {
	v.update(func(s *State) { s.LastMeasurement = &m })
}

// Refresh republishes the current state, e.g. for a viewer that just connected.
func (v *View) Refresh() {
	v.update(func(*State) {})
}

// Snapshot returns a copy of the current state after every pending update.
func (v *View) Snapshot() State {
	var s State
	if !v.main.Sync(func() { s = v.state.clone() }) {
		return State{}
	}
	return s
}

// Close stops the main queue after pending updates.
func (v *View) Close() {
	v.main.Close()
}

func (v *View) update(fn func(*State)) {
	v.main.Async(func() {
		fn(&v.state)
		v.publish()
	})
}

func (v *View) publish() {
	if v.out == nil {
		return
	}
	data, err := json.Marshal(message{Type: "state", State: v.state.clone()})
	if err != nil {
		v.logger.Error("Error encoding view state: %v", err)
		return
	}
	v.out.Broadcast(data)
}

func (s State) clone() State {
	c := s
	if s.Alert != nil {
		a := *s.Alert
		c.Alert = &a
	}
	if s.LastMeasurement != nil {
		m := *s.LastMeasurement
		c.LastMeasurement = &m
	}
	return c
}
