package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies failures that cross component boundaries.
type Kind int

const (
	Unknown Kind = iota
	AuthorizationDenied
	DeviceConfigurationFailed
	HardwareLockFailed
	StoreUnavailable
	StoreWriteFailed
	StoreReadFailed
	NetworkTransportFailed
	ServerRejected
	ResponseUnparsable
	MeasurementFailed
)

var kindNames = map[Kind]string{
	Unknown:                   "unknown",
	AuthorizationDenied:       "authorization_denied",
	DeviceConfigurationFailed: "device_configuration_failed",
	HardwareLockFailed:        "hardware_lock_failed",
	StoreUnavailable:          "store_unavailable",
	StoreWriteFailed:          "store_write_failed",
	StoreReadFailed:           "store_read_failed",
	NetworkTransportFailed:    "network_transport_failed",
	ServerRejected:            "server_rejected",
	ResponseUnparsable:        "response_unparsable",
	MeasurementFailed:         "measurement_failed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error carries a Kind, a human readable message and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error without a cause.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error wrapping err. A nil err yields nil.
func Wrap(kind Kind, message string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
