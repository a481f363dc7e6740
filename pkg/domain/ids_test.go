package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "attesta/pkg/domain-errors"
)

func TestParseRequestID(t *testing.T) {
	t.Run("round-trips a valid uuid", func(t *testing.T) {
		raw := uuid.New().String()
		id, err := ParseRequestID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, id.String())
		assert.False(t, id.IsNil())
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParseRequestID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := ParseRequestID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestRequestIDSuffix(t *testing.T) {
	id, err := ParseRequestID("3e8f0a52-0b0e-4f9e-8a4a-6f1c2d3e4f5a")
	require.NoError(t, err)
	assert.Equal(t, "3e4f5a", id.Suffix(6))
	assert.Equal(t, id.String(), id.Suffix(100))
}

func TestHolderIDDistinctFromRequestID(t *testing.T) {
	// Compile-time property in spirit: values never compare as equal types.
	h := NewHolderID()
	r := NewRequestID()
	assert.NotEqual(t, h.String(), r.String())
}
