package snowflake

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitRejectsOutOfRange(t *testing.T) {
	require.Error(t, Init(32, 1))
	require.Error(t, Init(1, -1))
}

func TestNextIDUniqueAndIncreasing(t *testing.T) {
	require.NoError(t, Init(1, 1))

	prev, err := NextID()
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		id, err := NextID()
		require.NoError(t, err)
		require.Greater(t, id, prev)
		prev = id
	}
}
