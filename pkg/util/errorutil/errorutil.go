package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes rendered to clients.
const (
	CodeValidation        = "VALIDATION_FAILED"
	CodeRemoteRejected    = "REMOTE_REJECTED"
	CodeSelectionNotFound = "SELECTION_NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewRemoteRejected reports that an upstream service refused or failed a call.
// The requester only sees a generic message; err keeps the remote status and body for logs.
func NewRemoteRejected(message string, err error) error {
	return &DomainError{
		Code:       CodeRemoteRejected,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewSelectionNotFound reports a candidate id that is absent from the re-resolved candidate set.
// candidates is the current set, returned so the client can choose again.
func NewSelectionNotFound(contactID string, candidates any) error {
	details := map[string]any{"contact_id": contactID}
	if candidates != nil {
		details["candidates"] = candidates
	}
	return NewDomainError(CodeSelectionNotFound, "selected contact not found, please try again",
		http.StatusUnprocessableEntity, details)
}

// NewInvalidTransition reports a step that is not legal from the current workflow state.
func NewInvalidTransition(from, action string) error {
	return NewDomainError(CodeInvalidTransition, fmt.Sprintf("%s is not allowed from %s", action, from),
		http.StatusConflict, map[string]any{"step": from, "action": action})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given DomainError code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
