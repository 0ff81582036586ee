package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesSentinel(t *testing.T) {
	err := Clone(ErrFetchFailed, "journals: backend returned 500")
	assert.True(t, errors.Is(err, ErrFetchFailed))
	assert.False(t, errors.Is(err, ErrSessionExpired))
	assert.Equal(t, "journals: backend returned 500", err.Message)
	assert.Equal(t, "could not load data from backend", ErrFetchFailed.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, ErrInternal.Code, appErr.Code)

	wrapped := fmt.Errorf("list articles: %w", Clone(ErrSessionExpired, ""))
	assert.Equal(t, ErrSessionExpired.Code, FromError(wrapped).Code)
	assert.Nil(t, FromError(nil))
}
