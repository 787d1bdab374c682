package services

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorValidation         ErrorCode = "VALIDATION_ERROR"
	ErrorUnsupportedType    ErrorCode = "UNSUPPORTED_TYPE"
	ErrorUnreadable         ErrorCode = "UNREADABLE"
	ErrorParseFailure       ErrorCode = "PARSE_FAILURE"
	ErrorInvalidURL         ErrorCode = "INVALID_URL"
	ErrorFetchTimeout       ErrorCode = "FETCH_TIMEOUT"
	ErrorFetchFailed        ErrorCode = "FETCH_FAILED"
	ErrorNoDescriptionFound ErrorCode = "NO_DESCRIPTION_FOUND"
	ErrorServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrorServiceError       ErrorCode = "SERVICE_ERROR"
	ErrorInvalidResponse    ErrorCode = "INVALID_RESPONSE"
	ErrorInternal           ErrorCode = "INTERNAL_ERROR"
)

// Error is the typed failure returned by every service in this package.
// Message is safe to show to a user; Err keeps the original cause for logs.
type Error struct {
	Code    ErrorCode
	Message string
	// Status and Body are set for SERVICE_ERROR.
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d: %s)", msg, e.Status, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or
// ErrorInternal when there is none.
func CodeOf(err error) ErrorCode {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ErrorInternal
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	return "internal error"
}
