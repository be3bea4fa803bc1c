package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewAppError(ErrValidation, "nothing to translate", nil)
	assert.Equal(t, "nothing to translate", err.Error())

	withDetails := NewAppErrorWithDetails(ErrClient, "API rejected the request", "invalid api key", nil)
	assert.Equal(t, "API rejected the request: invalid api key", withDetails.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAppError(ErrAPIConnection, "API request failed", cause)
	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	assert.True(t, errors.As(error(err), &appErr))
	assert.Equal(t, ErrAPIConnection, appErr.Code)
}

func TestProgressString(t *testing.T) {
	p := Progress{Percent: 40, Message: "translated chunk 2/5", ChunkIndex: 2, ChunkTotal: 5}
	assert.Equal(t, "40% (2/5) translated chunk 2/5", p.String())

	single := Progress{Percent: 100, Message: "translation complete"}
	assert.Equal(t, "100% translation complete", single.String())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCancelled, CodeOf(NewAppError(ErrCancelled, "translation cancelled", nil)))
	assert.Equal(t, ErrInternal, CodeOf(errors.New("plain")))
}
