package simulated

import (
	"errors"
	"sync"

	"fishsense/internal/device"
)

// ErrInputUnavailable is returned by NewDeviceInput when the session is set
// up to fail input creation.
var ErrInputUnavailable = errors.New("could not create video device input")

type input struct {
	dev device.Device
}

func (i *input) Device() device.Device { return i.dev }

// Session is a simulated capture session.
type Session struct {
	mu            sync.Mutex
	running       bool
	configuring   int
	commits       int
	startCalls    int
	stopCalls     int
	inputs        []device.Input
	outputs       []device.PhotoOutput
	observers     map[int]func(bool)
	nextObserver  int
	events        chan device.Event
	dropped       int
	failInput     bool
	rejectInput   bool
	rejectOutput  bool
	refuseToStart bool
}

func newSession() *Session {
	return &Session{
		observers: make(map[int]func(bool)),
		events:    make(chan device.Event, 32),
	}
}

// FailInputCreation makes NewDeviceInput return ErrInputUnavailable.
func (s *Session) FailInputCreation(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failInput = v
}

// RejectInputs makes CanAddInput report false.
func (s *Session) RejectInputs(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectInput = v
}

// RejectOutputs makes CanAddOutput report false.
func (s *Session) RejectOutputs(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectOutput = v
}

// RefuseToStart makes StartRunning leave the session stopped.
func (s *Session) RefuseToStart(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refuseToStart = v
}

// StartCalls counts StartRunning invocations.
func (s *Session) StartCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startCalls
}

// StopCalls counts StopRunning invocations.
func (s *Session) StopCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCalls
}

// Commits counts CommitConfiguration invocations.
func (s *Session) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Inputs returns the attached inputs.
func (s *Session) Inputs() []device.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]device.Input(nil), s.inputs...)
}

// Observers returns the number of live running-state subscriptions.
func (s *Session) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// Inject delivers an event as if the camera stack reported it. With nobody
// draining Events and the buffer full, the event is dropped and counted.
func (s *Session) Inject(ev device.Event) {
	select {
	case s.events <- ev:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// DroppedEvents returns how many injected events found the buffer full.
func (s *Session) DroppedEvents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Interrupt stops the session and reports why.
func (s *Session) Interrupt(reason device.InterruptionReason) {
	s.setRunning(false)
	s.Inject(device.Interrupted{Reason: reason})
}

func (s *Session) BeginConfiguration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configuring++
}

func (s *Session) CommitConfiguration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configuring > 0 {
		s.configuring--
	}
	s.commits++
}

func (s *Session) NewDeviceInput(dev device.Device) (device.Input, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInput || dev == nil {
		return nil, ErrInputUnavailable
	}
	return &input{dev: dev}, nil
}

func (s *Session) CanAddInput(device.Input) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.rejectInput
}

func (s *Session) AddInput(in device.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
}

func (s *Session) CanAddOutput(device.PhotoOutput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.rejectOutput
}

func (s *Session) AddOutput(out device.PhotoOutput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs = append(s.outputs, out)
}

func (s *Session) StartRunning() {
	s.mu.Lock()
	s.startCalls++
	refuse := s.refuseToStart
	s.mu.Unlock()

	if !refuse {
		s.setRunning(true)
	}
}

func (s *Session) StopRunning() {
	s.mu.Lock()
	s.stopCalls++
	s.mu.Unlock()

	s.setRunning(false)
}

func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Session) ObserveRunning(fn func(bool)) func() {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) Events() <-chan device.Event {
	return s.events
}

func (s *Session) setRunning(running bool) {
	s.mu.Lock()
	if s.running == running {
		s.mu.Unlock()
		return
	}
	s.running = running
	observers := make([]func(bool), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(running)
	}
}
