package adminusers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDeleteDeclined     = errors.New("delete not confirmed")
	ErrTokenUnavailable   = errors.New("anti-forgery token unavailable")
	ErrRefreshFailed      = errors.New("refresh after submission failed")
	ErrRecordNotDisplayed = errors.New("user is not in the displayed list")
)

// ValidationError is returned before any request when a required field is empty.
type ValidationError struct {
	Op      string
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s user: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s user: %s (missing %s)", e.Op, e.Message, strings.Join(e.Fields, ", "))
}

// TransportError covers network failures, a missing token and bodies that are
// not JSON. The submission was attempted at most once.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s user: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// OperatorMessage is the generic text shown instead of transport details.
func (e *TransportError) OperatorMessage() string {
	return fmt.Sprintf("Server error: Could not complete the %s operation.", e.Op)
}

// ServerError is a well-formed response whose status is not "success".
type ServerError struct {
	Op      string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s user: server: %s", e.Op, e.Message)
}
