package pushover

import (
	"errors"
	"fmt"
	"strings"
)

// Machine-readable error codes carried into observability attributes.
const (
	ErrorCodeValidation       = "VALIDATION_FAILED"
	ErrorCodeUpstreamFailure  = "UPSTREAM_FAILURE"
	ErrorCodeTransportFailure = "TRANSPORT_FAILURE"
)

// UpstreamError is a non-success response from the Pushover API. Body holds
// the upstream diagnostic payload verbatim; Status and Messages are parsed
// from it on a best-effort basis.
type UpstreamError struct {
	StatusCode int
	Status     int
	Messages   []string
	Body       string
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return ""
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("pushover: upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("pushover: upstream returned status %d: %s", e.StatusCode, body)
}

// TransportError is a network-level failure where no upstream response was
// obtained.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("pushover: request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorCode maps an error from this package onto its machine code. Unknown
// errors return the empty string.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ErrorCodeValidation
	}
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return ErrorCodeUpstreamFailure
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return ErrorCodeTransportFailure
	}
	return ""
}
