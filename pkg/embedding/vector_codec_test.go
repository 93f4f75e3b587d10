package embedding

import (
	"math"
	"testing"

	"github.com/on-par/vemorable-sub000/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForStorage(t *testing.T) {
	assert.Equal(t, "[]", FormatForStorage(nil))
	assert.Equal(t, "[]", FormatForStorage([]float32{}))
	assert.Equal(t, "[1,-2,0.5]", FormatForStorage([]float32{1, -2, 0.5}))
}

func TestVectorRoundTrip(t *testing.T) {
	vectors := [][]float32{
		{},
		{0},
		{1.5, -2.25, 0.0001},
		{float32(math.Pi), float32(-math.E)},
		{3.5e-07, 1e20, -1e-20},
		{math.MaxFloat32, math.SmallestNonzeroFloat32},
	}

	for _, vec := range vectors {
		literal := FormatForStorage(vec)
		parsed, err := ParseFromStorage(literal)
		require.NoError(t, err, "literal %q", literal)
		require.Len(t, parsed, len(vec))
		for i := range vec {
			// 'g'/-1 with bitSize 32 emits the shortest literal that
			// round-trips exactly at float32 precision.
			assert.Equal(t, vec[i], parsed[i], "index %d of %q", i, literal)
		}
	}
}

func TestParseFromStorage(t *testing.T) {
	t.Run("tolerates whitespace", func(t *testing.T) {
		parsed, err := ParseFromStorage("  [ 1 , 2.5 , -3 ]  ")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2.5, -3}, parsed)
	})

	t.Run("empty literal yields empty vector", func(t *testing.T) {
		parsed, err := ParseFromStorage("[]")
		require.NoError(t, err)
		assert.Empty(t, parsed)

		parsed, err = ParseFromStorage("[  ]")
		require.NoError(t, err)
		assert.Empty(t, parsed)
	})

	t.Run("rejects malformed literals", func(t *testing.T) {
		inputs := []string{
			"",
			"1,2,3",
			"[1,2",
			"1,2]",
			"[1,abc,3]",
			"[1,,3]",
			"[1 2 3]",
		}
		for _, input := range inputs {
			parsed, err := ParseFromStorage(input)
			assert.Nil(t, parsed, "input %q", input)

			var parseErr *apperr.ParseError
			assert.ErrorAs(t, err, &parseErr, "input %q", input)
		}
	})
}
