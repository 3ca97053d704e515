package soap

import (
	"errors"
	"fmt"
)

// ErrMissingElement is returned when an expected element is absent from a response.
var ErrMissingElement = errors.New("element missing from response")

// SonosRejectedError represents a UPnP/SOAP error response from a device.
type SonosRejectedError struct {
	Action      string
	StatusCode  int
	Code        string
	Description string
}

func (e *SonosRejectedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("sonos action %s rejected: code %s", e.Action, e.Code)
	}
	return fmt.Sprintf("sonos action %s rejected: code %s (%s)", e.Action, e.Code, e.Description)
}

// HTTPStatusError is returned for a non-200 response that carries no UPnP fault.
type HTTPStatusError struct {
	Action     string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("sonos action %s failed: http %d", e.Action, e.StatusCode)
}

// SonosTimeoutError indicates a request timed out.
type SonosTimeoutError struct {
	Action string
}

func (e *SonosTimeoutError) Error() string {
	return fmt.Sprintf("sonos action %s timed out", e.Action)
}

// SonosUnreachableError indicates the device could not be reached.
type SonosUnreachableError struct {
	Action string
	Err    error
}

func (e *SonosUnreachableError) Error() string {
	return fmt.Sprintf("sonos action %s unreachable: %v", e.Action, e.Err)
}

func (e *SonosUnreachableError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates a 200 response whose body lacked the expected value.
type MalformedResponseError struct {
	Action  string
	Element string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("sonos action %s: bad %s: %v", e.Action, e.Element, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
