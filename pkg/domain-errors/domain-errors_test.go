package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "visitor not found")
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestWrapPreservesOriginalCode(t *testing.T) {
	inner := New(CodeConflict, "stale version")
	wrapped := Wrap(inner, CodeInternal, "failed to update visitor")

	assert.True(t, HasCode(wrapped, CodeConflict))
	assert.Equal(t, "failed to update visitor", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)
}

func TestWrapNonDomainError(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := Wrap(cause, CodeInternal, "failed to load visitor")

	assert.True(t, HasCode(wrapped, CodeInternal))
	assert.ErrorIs(t, wrapped, cause)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeValidation, "name is required"))
	assert.ErrorIs(t, err, &Error{Code: CodeValidation})
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "visit has already ended", Message(fmt.Errorf("ctx: %w", New(CodeInvariantViolation, "visit has already ended"))))
	assert.Equal(t, string(CodeInternal), Message(New(CodeInternal, "")))
}
