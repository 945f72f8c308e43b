package device

import "fmt"

// Event is something the running session reports asynchronously.
type Event interface {
	event()
}

type RuntimeErrorCause int

const (
	CauseUnknown RuntimeErrorCause = iota
	// CauseMediaServicesWereReset is transient; the session can be restarted.
	CauseMediaServicesWereReset
	CauseDeviceDisconnected
	CauseDeviceInUse
)

func (c RuntimeErrorCause) String() string {
	switch c {
	case CauseMediaServicesWereReset:
		return "media services were reset"
	case CauseDeviceDisconnected:
		return "device disconnected"
	case CauseDeviceInUse:
		return "device in use"
	}
	return "unknown"
}

type InterruptionReason int

const (
	InterruptionUnknown InterruptionReason = iota
	InterruptionVideoDeviceNotAvailableInBackground
	InterruptionAudioDeviceInUseByAnotherClient
	InterruptionVideoDeviceInUseByAnotherClient
	InterruptionVideoDeviceNotAvailableWithMultipleForegroundApps
	InterruptionVideoDeviceNotAvailableDueToSystemPressure
)

func (r InterruptionReason) String() string {
	switch r {
	case InterruptionVideoDeviceNotAvailableInBackground:
		return "video device not available in background"
	case InterruptionAudioDeviceInUseByAnotherClient:
		return "audio device in use by another client"
	case InterruptionVideoDeviceInUseByAnotherClient:
		return "video device in use by another client"
	case InterruptionVideoDeviceNotAvailableWithMultipleForegroundApps:
		return "video device not available with multiple foreground apps"
	case InterruptionVideoDeviceNotAvailableDueToSystemPressure:
		return "video device not available due to system pressure"
	}
	return "unknown"
}

// RuntimeError reports a failure of the running session.
type RuntimeError struct {
	Cause RuntimeErrorCause
	Err   error
}

// Interrupted reports that the session stopped delivering frames.
type Interrupted struct {
	Reason InterruptionReason
}

// SubjectAreaChanged reports that the scene in front of the camera changed
// enough to warrant refocusing.
type SubjectAreaChanged struct{}

func (RuntimeError) event()       {}
func (Interrupted) event()        {}
func (SubjectAreaChanged) event() {}

func (e RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture session runtime error (%s): %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("capture session runtime error (%s)", e.Cause)
}
