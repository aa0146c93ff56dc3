package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to load jobs")

	assert.Equal(t, "failed to load jobs: connection refused", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestFromError(t *testing.T) {
	appErr := FromError(ErrReplanInFlight)
	assert.Equal(t, http.StatusConflict, appErr.Status)

	// A wrapped *Error surfaces through fmt wrapping layers.
	wrapped := fmt.Errorf("outer: %w", ErrDataInconsistency)
	appErr = FromError(wrapped)
	assert.Equal(t, ErrDataInconsistency.Code, appErr.Code)

	// Arbitrary errors normalise to internal.
	appErr = FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrSchedulerDisabled, "scheduler disabled by configuration")
	assert.Equal(t, "scheduler disabled by configuration", clone.Message)
	assert.Equal(t, "scheduler is disabled", ErrSchedulerDisabled.Message)
	assert.Equal(t, ErrSchedulerDisabled.Code, clone.Code)
}
