package types

import (
	"errors"
	"fmt"
)

// ErrNotConnected is reported when no wireless adapter is associated with a network.
// It is an outcome, not a failure.
var ErrNotConnected = errors.New("wireless adapter not connected")

// LocatorError reports that the OS network configuration could not be queried
type LocatorError struct {
	Op  string
	Err error
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("locator: %s: %v", e.Op, e.Err)
}

func (e *LocatorError) Unwrap() error {
	return e.Err
}

// ScannerError reports that a sweep could not be initialized or executed
type ScannerError struct {
	Subnet string
	Err    error
}

func (e *ScannerError) Error() string {
	if e.Subnet == "" {
		return fmt.Sprintf("scanner: %v", e.Err)
	}
	return fmt.Sprintf("scanner: %s: %v", e.Subnet, e.Err)
}

func (e *ScannerError) Unwrap() error {
	return e.Err
}

// AlertError reports that an alert side effect failed
type AlertError struct {
	Alerter string
	Err     error
}

func (e *AlertError) Error() string {
	return fmt.Sprintf("alert %s: %v", e.Alerter, e.Err)
}

func (e *AlertError) Unwrap() error {
	return e.Err
}

// IsLocatorError reports whether err is a LocatorError
func IsLocatorError(err error) bool {
	var le *LocatorError
	return errors.As(err, &le)
}

// IsScannerError reports whether err is a ScannerError
func IsScannerError(err error) bool {
	var se *ScannerError
	return errors.As(err, &se)
}

// IsAlertError reports whether err is an AlertError
func IsAlertError(err error) bool {
	var ae *AlertError
	return errors.As(err, &ae)
}
