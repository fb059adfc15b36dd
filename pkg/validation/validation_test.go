package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "visitorreg/pkg/domain-errors"
)

type sample struct {
	Name  string `json:"name" validate:"notblank,max=5"`
	Note  string `json:"note" validate:"max=3"`
	Level string `json:"level" validate:"omitempty,oneof=low high"`
}

func TestValidate_AccumulatesAllViolations(t *testing.T) {
	err := Validate(sample{Name: "  ", Note: "toolong", Level: "mid"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	msg := err.Error()
	assert.Contains(t, msg, "name is required")
	assert.Contains(t, msg, "note must be at most 3 characters")
	assert.Contains(t, msg, "level must be one of [low high]")
	assert.Equal(t, 2, strings.Count(msg, "; "))
}

func TestValidate_CountsRunesForMax(t *testing.T) {
	assert.NoError(t, Validate(sample{Name: "張三李四王"}))
	assert.Error(t, Validate(sample{Name: "張三李四王五"}))
}

func TestJoin(t *testing.T) {
	assert.NoError(t, Join(nil))
	err := Join([]string{"a is required", "b is required"})
	assert.EqualError(t, err, "a is required; b is required")
}

type window struct {
	From string `json:"from"`
}

type nested struct {
	Window window `json:"window" validate:"required"`
}

func TestValidate_RequiredStructChecksZeroValue(t *testing.T) {
	err := Validate(nested{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window is required")

	assert.NoError(t, Validate(nested{Window: window{From: "09:00"}}))
}
