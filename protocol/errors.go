package protocol

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

// ErrCode classifies the failures a client operation can surface. All of
// them are recoverable-to-the-caller error values; none is process fatal.
type ErrCode uint8

const (
	ErrCUnknown ErrCode = iota
	// ErrCAddressResolution: resolution yielded no storage thread owning
	// the key.
	ErrCAddressResolution
	// ErrCConnectFailed: transport establishment failed. Surfaced
	// immediately, not retried.
	ErrCConnectFailed
	// ErrCProtocolViolation: an unexpected frame kind arrived on an
	// established transport. Fatal to that transport's receive loop.
	ErrCProtocolViolation
	// ErrCMalformedResponse: a single-key response carried no result
	// tuple.
	ErrCMalformedResponse
	// ErrCUnexpectedValueType: the lattice variant in a response did not
	// match the caller's expectation.
	ErrCUnexpectedValueType
	// ErrCKeyNotFound: storage reported that the key does not exist.
	ErrCKeyNotFound
	// ErrCTimeout: no response arrived within the configured deadline.
	ErrCTimeout
	// ErrCStorage: an opaque storage-reported error, passed through
	// verbatim.
	ErrCStorage
)

// String returns the symbolic name of an error code.
func (c ErrCode) String() string {
	switch c {
	case ErrCAddressResolution:
		return "AddressResolutionFailed"
	case ErrCConnectFailed:
		return "ConnectFailed"
	case ErrCProtocolViolation:
		return "ProtocolViolation"
	case ErrCMalformedResponse:
		return "MalformedResponse"
	case ErrCUnexpectedValueType:
		return "UnexpectedValueType"
	case ErrCKeyNotFound:
		return "KeyDoesNotExist"
	case ErrCTimeout:
		return "Timeout"
	case ErrCStorage:
		return "StorageError"
	default:
		return "Unknown"
	}
}

// ErrMsgKeyNotFound is the verbatim per-tuple error the storage tier
// reports for a missing key. The client maps it to ErrCKeyNotFound so the
// convenience layer can implement conditional writes.
const ErrMsgKeyNotFound = "key does not exist"

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the typed error returned by all public client operations.
type Error struct {
	Code ErrCode // classification of the failure
	Msg  string  // human readable detail
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("anna client (%s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code ErrCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err (or anything it wraps) is an Error carrying
// the given code.
func IsCode(err error, code ErrCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
