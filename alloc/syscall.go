package alloc

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mapped counts bytes currently mapped by every arena in the process.
var mapped atomic.Int64

// Mapped reports the bytes currently mapped by all arenas in the process.
func Mapped() int64 {
	return mapped.Load()
}

func mmap(length int) (chunk, error) {
	mem, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return chunk{}, fmt.Errorf("mmap %d bytes: %w", length, err)
	}
	mapped.Add(int64(length))
	return chunk{mem: mem, base: unsafe.Pointer(unsafe.SliceData(mem)), size: length}, nil
}

func munmap(c chunk) {
	if err := unix.Munmap(c.mem); err != nil {
		panic(err)
	}
	mapped.Add(-int64(c.size))
}
