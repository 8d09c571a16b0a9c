package video

import (
	"errors"
	"io/fs"
	"strings"
	"syscall"
)

// Camera access failures. Each maps to a message a user can act on.
var (
	ErrDeviceBusy        = errors.New("camera device busy")
	ErrPermissionDenied  = errors.New("camera permission denied")
	ErrCameraUnavailable = errors.New("camera unavailable")
)

// User-facing messages for camera failures.
const (
	MsgDeviceBusy       = "Webcam is in use by another application. Please close other apps and try again."
	MsgPermissionDenied = "Webcam permission denied. Please grant this process access to the video device."
	MsgUnavailable      = "Could not access the webcam."
)

// OpenError describes a failed attempt to open a capture device.
type OpenError struct {
	Device string
	Kind   error // One of ErrDeviceBusy, ErrPermissionDenied, ErrCameraUnavailable
	Err    error // Underlying cause
}

func (e *OpenError) Error() string {
	msg := e.Kind.Error() + ": " + e.Device
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the failure kind, so errors.Is(err, ErrDeviceBusy) works.
func (e *OpenError) Is(target error) bool {
	return target == e.Kind
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Classify turns a low-level open failure into an OpenError.
func Classify(device string, err error) error {
	if err == nil {
		return nil
	}
	var oe *OpenError
	if errors.As(err, &oe) {
		return err
	}

	kind := ErrCameraUnavailable
	switch {
	case errors.Is(err, syscall.EBUSY):
		kind = ErrDeviceBusy
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		kind = ErrPermissionDenied
	default:
		// OpenCV reports failures as text only
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "busy"), strings.Contains(msg, "in use"):
			kind = ErrDeviceBusy
		case strings.Contains(msg, "permission"), strings.Contains(msg, "not permitted"):
			kind = ErrPermissionDenied
		}
	}
	return &OpenError{Device: device, Kind: kind, Err: err}
}

// UserMessage returns the message to show a user for a camera error.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrDeviceBusy):
		return MsgDeviceBusy
	case errors.Is(err, ErrPermissionDenied):
		return MsgPermissionDenied
	default:
		return MsgUnavailable
	}
}
