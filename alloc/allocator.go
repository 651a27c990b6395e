// Package alloc is a manual allocator that carves blocks out of anonymous
// mmap chunks. Memory handed out by an Arena is invisible to the Go garbage
// collector: it is only returned to the OS by Free (when the arena empties)
// or by Release. Types stored in arena memory must not contain Go pointers.
package alloc

import (
	"errors"
	"os"
	"unsafe"
)

var (
	chunkSize = os.Getpagesize()          // typically 4096
	dWordSize = unsafe.Sizeof(uintptr(0)) // size of one word (8 bytes on 64-bit)

	// a free block must hold its prev/next links
	minPayload = 2 * dWordSize
)

var ErrReleased = errors.New("alloc: arena released")

type chunk struct {
	mem  []byte
	base unsafe.Pointer
	size int
}

// Arena is a pool of mmap chunks. It is not safe for concurrent use.
type Arena struct {
	chunks   []chunk
	freeList unsafe.Pointer // head of the explicit free list
	classes  map[uintptr]unsafe.Pointer
	live     int
	released bool
}

func blockThresholds() []uintptr {
	return []uintptr{
		64,
		128,
		256,
		512,
		1024,
		2048,
		4096,
		8192,
	}
}

var blockThresholdsList = blockThresholds()

// NewArena maps the first chunk of a new arena.
func NewArena() (*Arena, error) {
	a := &Arena{classes: make(map[uintptr]unsafe.Pointer, len(blockThresholdsList))}
	if _, err := a.extend(0); err != nil {
		return nil, err
	}
	return a, nil
}

// Block layout & metadata
//
// [HEADER=8 bytes][PAYLOAD...][FOOTER=8 bytes]
//
// Each chunk starts with an allocated zero-size footer and ends with an
// allocated zero-size header so coalescing never crosses a chunk edge.
// For a free block, the payload's first two words store prevFree and
// nextFree pointers. Size-class blocks parked in a class cache keep their
// allocated bit and carry cachedBit, so neighbours never absorb them.

const (
	allocatedBit = 0x1
	cachedBit    = 0x2
	flagMask     = 0x7
)

type blockMetadata struct {
	// info has lower 3 bits for flags, upper bits for size
	info uintptr
}

func setMd(h unsafe.Pointer, size uintptr, flags uintptr) {
	md := (*blockMetadata)(h)
	md.info = size | flags
}

func blockSize(h unsafe.Pointer) uintptr {
	return (*blockMetadata)(h).info &^ flagMask
}

func blockFlags(h unsafe.Pointer) uintptr {
	return (*blockMetadata)(h).info & flagMask
}

func blockAllocated(h unsafe.Pointer) bool {
	return blockFlags(h)&allocatedBit != 0
}

func blockCached(h unsafe.Pointer) bool {
	return blockFlags(h)&cachedBit != 0
}

func byteOffset(h unsafe.Pointer, bytes int) unsafe.Pointer {
	return unsafe.Add(h, bytes)
}

// Returns pointer to the data area (after header)
func blockPayload(h unsafe.Pointer) unsafe.Pointer {
	return byteOffset(h, int(dWordSize))
}

func blockHeader(p unsafe.Pointer) unsafe.Pointer {
	return byteOffset(p, -int(dWordSize))
}

// Returns pointer to the footer's metadata
func blockFooter(h unsafe.Pointer) unsafe.Pointer {
	return byteOffset(h, int(dWordSize+blockSize(h)))
}

// setTags writes header and footer; the header must go first since the
// footer position depends on the size.
func setTags(h unsafe.Pointer, size uintptr, flags uintptr) {
	setMd(h, size, flags)
	setMd(blockFooter(h), size, flags)
}

func nextAdjBlock(h unsafe.Pointer) unsafe.Pointer {
	return byteOffset(h, int(blockSize(h)+2*dWordSize))
}

func blockPrevFree(h unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(blockPayload(h))
}

func blockNextFree(h unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(byteOffset(blockPayload(h), int(dWordSize)))
}

func setBlockPrevFree(h unsafe.Pointer, newPrev unsafe.Pointer) {
	*(*unsafe.Pointer)(blockPayload(h)) = newPrev
}

func setBlockNextFree(h unsafe.Pointer, newNext unsafe.Pointer) {
	*(*unsafe.Pointer)(byteOffset(blockPayload(h), int(dWordSize))) = newNext
}

func (a *Arena) removeFromFreeList(h unsafe.Pointer) {
	pf := blockPrevFree(h)
	nf := blockNextFree(h)

	if pf != nil {
		setBlockNextFree(pf, nf)
	} else {
		// h was the head
		a.freeList = nf
	}

	if nf != nil {
		setBlockPrevFree(nf, pf)
	}
}

func (a *Arena) insertAtFreeListHead(h unsafe.Pointer) {
	setBlockPrevFree(h, nil)
	setBlockNextFree(h, a.freeList)
	if a.freeList != nil {
		setBlockPrevFree(a.freeList, h)
	}
	a.freeList = h
}

func alignedSize(size int) uintptr {
	const alignment = 8
	return uintptr((size + alignment - 1) &^ (alignment - 1))
}

// classSize rounds asize up to a size class when it sits within 80% of it.
func classSize(asize uintptr) (uintptr, bool) {
	for _, threshold := range blockThresholdsList {
		if asize <= threshold && asize >= threshold*8/10 {
			return threshold, true
		}
	}
	return asize, false
}

func isClass(size uintptr) bool {
	for _, threshold := range blockThresholdsList {
		if size == threshold {
			return true
		}
	}
	return false
}

func (a *Arena) coalesce(h unsafe.Pointer) {
	// If next block is free, remove it and combine
	if n := nextAdjBlock(h); !blockAllocated(n) {
		a.removeFromFreeList(n)
		setTags(h, blockSize(h)+blockSize(n)+2*dWordSize, 0)
	}

	// The previous block's footer sits right before this header
	if pf := byteOffset(h, -int(dWordSize)); !blockAllocated(pf) {
		p := byteOffset(pf, -int(blockSize(pf)+dWordSize))
		a.removeFromFreeList(p)
		setTags(p, blockSize(p)+blockSize(h)+2*dWordSize, 0)
		h = p
	}

	a.insertAtFreeListHead(h)
}

// extend maps a new chunk large enough for a payload of need bytes and
// returns its single free block.
func (a *Arena) extend(need uintptr) (unsafe.Pointer, error) {
	size := int(need + 4*dWordSize)
	if size < chunkSize {
		size = chunkSize
	} else if remainder := size % chunkSize; remainder != 0 {
		size += chunkSize - remainder
	}

	c, err := mmap(size)
	if err != nil {
		return nil, err
	}
	a.chunks = append(a.chunks, c)

	setMd(c.base, 0, allocatedBit)                                  // prologue
	setMd(byteOffset(c.base, size-int(dWordSize)), 0, allocatedBit) // epilogue

	h := byteOffset(c.base, int(dWordSize))
	setTags(h, uintptr(size)-4*dWordSize, 0)
	a.insertAtFreeListHead(h)
	return h, nil
}

func (a *Arena) findFreeBlock(size uintptr) unsafe.Pointer {
	for c := a.freeList; c != nil; c = blockNextFree(c) {
		if blockSize(c) >= size {
			return c
		}
	}
	return nil
}

func (a *Arena) allocateBlock(h unsafe.Pointer, size uintptr) {
	a.removeFromFreeList(h)

	oldSize := blockSize(h)
	if oldSize < size+minPayload+2*dWordSize {
		setTags(h, oldSize, allocatedBit)
		return
	}

	// Split; the leftover's right neighbour was already adjacent to a free
	// block, so it cannot be free and no coalescing is needed.
	setTags(h, size, allocatedBit)
	spare := nextAdjBlock(h)
	setTags(spare, oldSize-size-2*dWordSize, 0)
	a.insertAtFreeListHead(spare)
}

// Alloc returns a pointer to at least size bytes of arena memory.
func (a *Arena) Alloc(size int) (unsafe.Pointer, error) {
	if a.released {
		return nil, ErrReleased
	}

	asize := alignedSize(size)
	if asize < minPayload {
		asize = minPayload
	}
	asize, class := classSize(asize)

	if class {
		if h := a.classes[asize]; h != nil {
			a.classes[asize] = *(*unsafe.Pointer)(blockPayload(h))
			setTags(h, asize, allocatedBit)
			a.live++
			return blockPayload(h), nil
		}
	}

	h := a.findFreeBlock(asize)
	if h == nil {
		var err error
		if h, err = a.extend(asize); err != nil {
			return nil, err
		}
	}

	a.allocateBlock(h, asize)
	a.live++
	return blockPayload(h), nil
}

// Free returns a block to the arena. Freeing nil, a foreign pointer's
// already-free block or a cached block is a no-op. When the last live block
// is freed the arena unmaps its chunks and starts over with one fresh chunk.
func (a *Arena) Free(p unsafe.Pointer) {
	if p == nil || a.released {
		return
	}

	h := blockHeader(p)
	if !blockAllocated(h) || blockCached(h) {
		return
	}
	a.live--

	if size := blockSize(h); isClass(size) {
		setTags(h, size, allocatedBit|cachedBit)
		*(*unsafe.Pointer)(p) = a.classes[size]
		a.classes[size] = h
	} else {
		setTags(h, size, 0)
		a.coalesce(h)
	}

	if a.live < 1 {
		a.trim()
	}
}

func (a *Arena) unmapAll() {
	for _, c := range a.chunks {
		munmap(c)
	}
	a.chunks = a.chunks[:0]
	a.freeList = nil
	for size := range a.classes {
		a.classes[size] = nil
	}
}

func (a *Arena) trim() {
	a.unmapAll()
	// A failed remap leaves the arena empty; the next Alloc extends it.
	_, _ = a.extend(0)
}

// Live reports the number of blocks handed out and not yet freed.
func (a *Arena) Live() int {
	return a.live
}

// MappedBytes reports the bytes this arena currently holds mapped.
func (a *Arena) MappedBytes() int64 {
	var n int64
	for _, c := range a.chunks {
		n += int64(c.size)
	}
	return n
}

// Release unmaps every chunk. The arena cannot be used afterwards and any
// pointer it handed out is invalid.
func (a *Arena) Release() {
	if a.released {
		return
	}
	a.unmapAll()
	a.live = 0
	a.released = true
}

// Allocate returns a zeroed *T carved from the arena.
func Allocate[T any](a *Arena) (*T, error) {
	var zero T
	p, err := a.Alloc(int(unsafe.Sizeof(zero)))
	if err != nil {
		return nil, err
	}
	t := (*T)(p)
	*t = zero
	return t, nil
}

// AllocateSlice returns a zeroed slice of length elements carved from the arena.
func AllocateSlice[T any](a *Arena, length int) ([]T, error) {
	if length <= 0 {
		return nil, nil
	}
	size := length * int(unsafe.Sizeof(*new(T)))
	p, err := a.Alloc(size)
	if err != nil {
		return nil, err
	}
	s := unsafe.Slice((*T)(p), length)
	clear(s)
	return s, nil
}

func Free[T any](a *Arena, ptr *T) {
	a.Free(unsafe.Pointer(ptr))
}

func FreeSlice[T any](a *Arena, slice []T) {
	if len(slice) == 0 {
		return
	}
	a.Free(unsafe.Pointer(unsafe.SliceData(slice)))
}
