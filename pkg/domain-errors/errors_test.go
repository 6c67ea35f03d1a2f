package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndHasCode(t *testing.T) {
	err := New(CodeNotFound, "company not found")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeInternal))
	assert.Equal(t, "not_found: company not found", err.Error())
}

func TestWrap(t *testing.T) {
	t.Run("preserves the cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeUnavailable, "store unreachable")
		assert.True(t, HasCode(err, CodeUnavailable))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("nil cause yields nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("survives further wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeConflict, "duplicate domain"))
		assert.True(t, HasCode(err, CodeConflict))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeTimeout, CodeOf(New(CodeTimeout, "deadline")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}
