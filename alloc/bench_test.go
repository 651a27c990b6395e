package alloc

import (
	"fmt"
	"math/rand"
	"testing"
)

func fuzz(n int) int {
	n = n - 1
	r := rand.Int()
	if r%2 == 0 {
		return n + 1
	}
	n = n - 1
	return n + 2
}

func BenchmarkAllocs(b *testing.B) {
	allocationSizes := []int{256, 5120, 10000}
	NValues := []int{1000, 10000}

	for _, size := range allocationSizes {
		for _, N := range NValues {
			b.Run(fmt.Sprintf("Arena_Size%d_N%d", size, N), func(b *testing.B) {
				a, err := NewArena()
				if err != nil {
					b.Fatal(err)
				}
				defer a.Release()
				p, _ := Allocate[int](a)
				for i := 0; i < b.N; i++ {
					for j := 0; j < N; j++ {
						slice, err := AllocateSlice[int](a, fuzz(size))
						if err != nil {
							b.Fatal(err)
						}
						slice[0] = 1
						FreeSlice(a, slice)
					}
				}
				Free(a, p)
			})

			b.Run(fmt.Sprintf("StandardAllocator_Size%d_N%d", size, N), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					for j := 0; j < N; j++ {
						slice := make([]int, fuzz(size))
						slice[0] = 1
					}
				}
			})
		}
	}
}
