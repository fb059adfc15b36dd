package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "visitorreg/pkg/domain-errors"
)

// TestParseVisitorID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseVisitorID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseVisitorID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseVisitorID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseVisitorID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		raw := uuid.New()
		id, err := ParseVisitorID(raw.String())
		require.NoError(t, err)
		assert.Equal(t, VisitorID(raw), id)
		assert.False(t, id.IsNil())
	})
}

func TestVisitorID_JSONRoundTrip(t *testing.T) {
	original := NewVisitorID()
	data, err := json.Marshal(struct {
		ID VisitorID `json:"id"`
	}{ID: original})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+original.String()+`"}`, string(data))

	var decoded struct {
		ID VisitorID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded.ID)
}
