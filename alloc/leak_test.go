package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeak(t *testing.T) {
	a, err := NewArena()
	require.NoError(t, err)
	defer a.Release()

	before := Mapped()
	t.Logf("BEFORE ALLOC: mapped = %d", before)

	var peak int64
	for round := 0; round < 50; round++ {
		ptrs := make([][]int, 0, 16)
		for i := 0; i < 16; i++ {
			s, err := AllocateSlice[int](a, fuzz(125*(i+1)))
			if err != nil {
				t.Fatalf("failed to allocate on round %d: %v", round, err)
			}
			s[0] = round
			ptrs = append(ptrs, s)
		}
		peak = max(peak, Mapped())
		for _, s := range ptrs {
			FreeSlice(a, s)
		}
	}
	t.Logf("PEAK:  mapped = %d", peak)

	after := Mapped()
	t.Logf("AFTER FREE:  mapped = %d", after)

	assert.Equal(t, before, after, "memory still mapped after every block was freed")
}

func TestLeakWithoutFree(t *testing.T) {
	a, err := NewArena()
	require.NoError(t, err)
	defer a.Release()

	before := Mapped()
	for i := 0; i < 64; i++ {
		_, err := AllocateSlice[int](a, 1000)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, Mapped()-before, int64(64*1000*8-chunkSize))
}
