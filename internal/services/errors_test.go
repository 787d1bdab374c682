package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_UnwrapAndCode(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", newError(ErrorParseFailure, "could not parse", cause))

	require.Equal(t, ErrorParseFailure, CodeOf(err))
	require.Equal(t, "could not parse", MessageOf(err))
	require.ErrorIs(t, err, cause)
}

func TestError_ServiceErrorFormat(t *testing.T) {
	err := &Error{Code: ErrorServiceError, Message: "AI service returned an error", Status: 502, Body: "bad gateway"}
	require.Equal(t, "SERVICE_ERROR: AI service returned an error (status 502: bad gateway)", err.Error())
}

func TestCodeOf_PlainError(t *testing.T) {
	require.Equal(t, ErrorInternal, CodeOf(errors.New("boom")))
	require.Equal(t, "internal error", MessageOf(errors.New("boom")))
}
