package mot

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind classifies a tracking error without tying callers to a specific
// Go type hierarchy.
type Kind int

const (
	// InvalidArgument covers dimension mismatches, negative sizes,
	// non-finite positions and other malformed input.
	InvalidArgument Kind = iota
	// UnknownTrackId is returned by per-id queries for an id not present
	// in either the active or suspended set.
	UnknownTrackId
	// FilterDegenerate signals a UKF whose Cholesky factorization or
	// innovation covariance could not be recovered this frame.
	FilterDegenerate
	// ConfigurationError signals an incompatible TrackManagerConfig.
	ConfigurationError
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case UnknownTrackId:
		return "UnknownTrackId"
	case FilterDegenerate:
		return "FilterDegenerate"
	case ConfigurationError:
		return "ConfigurationError"
	default:
		return "Unknown"
	}
}

// TrackingError wraps a Kind with a causing error, so callers can recover
// the kind via errors.As while still getting a descriptive message. Every
// TrackingError carries its own correlation id, letting a caller that logs
// or reports several errors across a frame tell them apart without
// re-parsing the message text.
type TrackingError struct {
	Kind  Kind
	cause error
	id    uuid.UUID
}

func (e *TrackingError) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *TrackingError) Unwrap() error {
	return e.cause
}

// CorrelationID returns the error's unique identifier, minted at
// construction time.
func (e *TrackingError) CorrelationID() string {
	return e.id.String()
}

// newError builds a TrackingError of the given kind, wrapping msg.
func newError(kind Kind, msg string) error {
	return &TrackingError{Kind: kind, cause: errors.New(msg), id: uuid.New()}
}

func wrapError(kind Kind, cause error, msg string) error {
	return &TrackingError{Kind: kind, cause: errors.Wrap(cause, msg), id: uuid.New()}
}

// KindOf recovers the Kind of a TrackingError, if err is (or wraps) one.
func KindOf(err error) (Kind, bool) {
	var te *TrackingError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}
