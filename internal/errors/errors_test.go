package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customError struct {
	Msg string
}

func (e customError) Error() string { return e.Msg }

func TestNew(t *testing.T) {
	err := New("test error")
	require.Error(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("wrap non-nil error", func(t *testing.T) {
		wrapped := Wrap(baseErr, "wrapped")
		require.Error(t, wrapped)
		assert.Equal(t, "wrapped: base error", wrapped.Error())
		assert.ErrorIs(t, wrapped, baseErr)
	})

	t.Run("wrap nil error", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "wrapped"))
	})
}

func TestWrapf(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("wrapf non-nil error", func(t *testing.T) {
		wrapped := Wrapf(baseErr, "wrapped %d", 123)
		require.Error(t, wrapped)
		assert.Equal(t, "wrapped 123: base error", wrapped.Error())
		assert.ErrorIs(t, wrapped, baseErr)
	})

	t.Run("wrapf nil error", func(t *testing.T) {
		assert.NoError(t, Wrapf(nil, "wrapped %d", 123))
	})
}

func TestIs(t *testing.T) {
	assert.True(t, Is(ErrNotFound, ErrNotFound))
	assert.True(t, Is(Wrap(ErrNotFound, "context"), ErrNotFound))
	assert.False(t, Is(ErrNotFound, ErrConflict))
	assert.False(t, Is(ErrUnauthorized, ErrConfiguration))
}

func TestAs(t *testing.T) {
	wrapped := Wrap(customError{Msg: "custom"}, "context")

	var target customError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "custom", target.Msg)
}

func TestStandardErrors(t *testing.T) {
	tests := []struct {
		err  error
		text string
	}{
		{ErrNotFound, "not found"},
		{ErrConflict, "conflict"},
		{ErrInvalidInput, "invalid input"},
		{ErrUnauthorized, "unauthorized"},
		{ErrConfiguration, "configuration error"},
		{ErrLocked, "locked"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.text, tt.err.Error())
	}
}
