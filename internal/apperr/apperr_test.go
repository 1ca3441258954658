package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NotFound("sentence pair %d", 42)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "[NOT_FOUND] sentence pair 42", err.Error())
}

func TestStorageWrapsCause(t *testing.T) {
	err := Storage("get record", sql.ErrConnDone)
	wrapped := fmt.Errorf("record attempt: %w", err)

	assert.True(t, errors.Is(wrapped, ErrStorageUnavailable))
	assert.True(t, errors.Is(wrapped, sql.ErrConnDone))
	assert.Equal(t, CodeStorageUnavailable, CodeOf(wrapped, CodeInvalidInput))
}

func TestCodeOfDefault(t *testing.T) {
	assert.Equal(t, CodeInvalidInput, CodeOf(errors.New("plain"), CodeInvalidInput))
}
