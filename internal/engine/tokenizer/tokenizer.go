// Package tokenizer is a stand-in for a pooled morphological tokenizer. It
// splits text into script runs and allocates its lattice and token nodes
// from a per-session node pool (an alloc.Arena), and the caller-visible
// token records from an engine-lifetime result heap. Modes switch on the
// defect classes the leak harness has to tell apart.
package tokenizer

import (
	"errors"
	"fmt"
	"unicode/utf8"
	"unsafe"

	"github.com/shivam-909/leakcheck/alloc"
	"github.com/shivam-909/leakcheck/internal/engine"
)

type Mode string

const (
	// ModeSound frees results on Release and the node pool on Deinit.
	ModeSound Mode = "sound"
	// ModeLeakResults never frees anything on Release.
	ModeLeakResults Mode = "leak-results"
	// ModeLeakPool drops the node pool on Deinit without unmapping it.
	ModeLeakPool Mode = "leak-pool"
	// ModeHeap keeps everything on the Go heap; there is no manual pool.
	ModeHeap Mode = "heap"
)

func Modes() []Mode {
	return []Mode{ModeSound, ModeLeakResults, ModeLeakPool, ModeHeap}
}

const BuiltinDictionary = "builtin"

var (
	ErrAlreadyInitialized = errors.New("tokenizer already initialized")
	ErrNotInitialized     = errors.New("tokenizer not initialized")
	ErrEmptyInput         = errors.New("empty input")
	ErrInvalidUTF8        = errors.New("input is not valid UTF-8")
)

// latticeCell is one position of the scratch lattice, one per input byte.
type latticeCell struct {
	start, end int32
	class      Class
	cost       int32
}

// node is a token in the session pool.
type node struct {
	offset, length int32
	class          Class
	cost           int32
	prev, next     int32
	_              [2]int32
}

// feature is the per-token record handed to the caller.
type feature struct {
	offset, length int32
	class          Class
	pos            [13]int32
}

// handle is what a Result carries. Its slices point into arena memory in
// the pooled modes and into the Go heap in ModeHeap.
type handle struct {
	pool     *alloc.Arena
	nodes    []*node
	features []*feature
	surfaces [][]byte
	text     []byte
}

// Stats describes the engine's own view of its memory.
type Stats struct {
	Sessions      int
	Calls         int
	Tokens        int
	LeakedPools   int
	PoolBytes     int64
	ResultBytes   int64
	LiveResults   int
	ReleasedCalls int
}

// Engine implements engine.Engine. It is not safe for concurrent use.
type Engine struct {
	mode    Mode
	results *alloc.Arena // outlives sessions; nil in ModeHeap
	pool    *alloc.Arena // per session; nil in ModeHeap
	active  bool
	stats   Stats
	spare   []*handle // released handles, reused by the pooled modes
}

var _ engine.Engine = (*Engine)(nil)

// New creates an uninitialized engine. Close releases the result heap once
// the engine is no longer needed.
func New(mode Mode) (*Engine, error) {
	e := &Engine{mode: mode}
	switch mode {
	case ModeHeap:
	case ModeSound, ModeLeakResults, ModeLeakPool:
		results, err := alloc.NewArena()
		if err != nil {
			return nil, fmt.Errorf("map result heap: %w", err)
		}
		e.results = results
	default:
		return nil, fmt.Errorf("unknown tokenizer mode %q", mode)
	}
	return e, nil
}

func (e *Engine) Mode() Mode {
	return e.mode
}

func (e *Engine) Init(config string) error {
	if e.active {
		return ErrAlreadyInitialized
	}
	if config != "" && config != BuiltinDictionary {
		return fmt.Errorf("unknown dictionary %q", config)
	}
	if e.mode != ModeHeap {
		pool, err := alloc.NewArena()
		if err != nil {
			return fmt.Errorf("map node pool: %w", err)
		}
		e.pool = pool
	}
	e.active = true
	e.stats.Sessions++
	return nil
}

func (e *Engine) Process(text []byte, out *engine.Result) error {
	*out = engine.Result{}
	if !e.active {
		return ErrNotInitialized
	}
	if len(text) == 0 {
		return ErrEmptyInput
	}
	if !utf8.Valid(text) {
		return ErrInvalidUTF8
	}

	h, err := e.tokenize(text)
	if err != nil {
		return err
	}
	e.stats.Calls++
	e.stats.Tokens += len(h.nodes)
	e.stats.LiveResults++
	*out = engine.Result{Tokens: len(h.nodes), Handle: h}
	return nil
}

func (e *Engine) tokenize(text []byte) (*handle, error) {
	if e.mode == ModeHeap {
		return heapTokenize(text), nil
	}

	lattice, err := alloc.AllocateSlice[latticeCell](e.pool, len(text))
	if err != nil {
		return nil, err
	}
	defer alloc.FreeSlice(e.pool, lattice)

	h := e.newHandle()
	if h.text, err = alloc.AllocateSlice[byte](e.results, len(text)); err != nil {
		return nil, err
	}
	copy(h.text, text)

	var segErr error
	prev := int32(-1)
	segment(text, func(start, end int, class Class) {
		if segErr != nil {
			return
		}
		lattice[start] = latticeCell{start: int32(start), end: int32(end), class: class, cost: int32(end - start)}

		n, err := alloc.Allocate[node](e.pool)
		if err != nil {
			segErr = err
			return
		}
		*n = node{offset: int32(start), length: int32(end - start), class: class, cost: lattice[start].cost, prev: prev, next: -1}
		h.nodes = append(h.nodes, n)
		if prev >= 0 {
			h.nodes[prev].next = int32(len(h.nodes) - 1)
		}
		prev = int32(len(h.nodes) - 1)

		f, err := alloc.Allocate[feature](e.results)
		if err != nil {
			segErr = err
			return
		}
		f.offset, f.length, f.class = int32(start), int32(end-start), class
		h.features = append(h.features, f)

		s, err := alloc.AllocateSlice[byte](e.results, end-start)
		if err != nil {
			segErr = err
			return
		}
		copy(s, text[start:end])
		h.surfaces = append(h.surfaces, s)
	})
	if segErr != nil {
		e.free(h)
		return nil, segErr
	}
	return h, nil
}

// newHandle reuses a released handle so steady-state processing leaves no
// garbage on the Go heap.
func (e *Engine) newHandle() *handle {
	if n := len(e.spare); n > 0 {
		h := e.spare[n-1]
		e.spare = e.spare[:n-1]
		h.pool = e.pool
		return h
	}
	return &handle{pool: e.pool}
}

func heapTokenize(text []byte) *handle {
	lattice := make([]latticeCell, len(text))
	h := &handle{text: append([]byte(nil), text...)}
	prev := int32(-1)
	segment(text, func(start, end int, class Class) {
		lattice[start] = latticeCell{start: int32(start), end: int32(end), class: class, cost: int32(end - start)}
		h.nodes = append(h.nodes, &node{offset: int32(start), length: int32(end - start), class: class, cost: lattice[start].cost, prev: prev, next: -1})
		if prev >= 0 {
			h.nodes[prev].next = int32(len(h.nodes) - 1)
		}
		prev = int32(len(h.nodes) - 1)
		h.features = append(h.features, &feature{offset: int32(start), length: int32(end - start), class: class})
		h.surfaces = append(h.surfaces, append([]byte(nil), text[start:end]...))
	})
	return h
}

func (e *Engine) Release(res *engine.Result) {
	h, ok := res.Handle.(*handle)
	*res = engine.Result{}
	if !ok || h == nil {
		return
	}
	e.stats.LiveResults--
	e.stats.ReleasedCalls++
	if e.mode == ModeLeakResults {
		return
	}
	e.free(h)
}

func (e *Engine) free(h *handle) {
	if e.mode == ModeHeap {
		return
	}
	// Nodes of a session that has already ended went with its pool.
	if h.pool == e.pool && e.pool != nil {
		for _, n := range h.nodes {
			alloc.Free(e.pool, n)
		}
	}
	for _, f := range h.features {
		alloc.Free(e.results, f)
	}
	for _, s := range h.surfaces {
		alloc.FreeSlice(e.results, s)
	}
	alloc.FreeSlice(e.results, h.text)

	clear(h.nodes)
	clear(h.features)
	clear(h.surfaces)
	h.nodes, h.features, h.surfaces = h.nodes[:0], h.features[:0], h.surfaces[:0]
	h.text, h.pool = nil, nil
	e.spare = append(e.spare, h)
}

func (e *Engine) Deinit() {
	if !e.active {
		return
	}
	e.active = false
	if e.pool == nil {
		return
	}
	if e.mode == ModeLeakPool {
		e.stats.LeakedPools++
	} else {
		e.pool.Release()
	}
	e.pool = nil
}

// Close releases the result heap. Results still held become invalid.
func (e *Engine) Close() {
	e.Deinit()
	if e.results != nil {
		e.results.Release()
		e.results = nil
	}
	e.spare = nil
}

func (e *Engine) Stats() Stats {
	s := e.stats
	if e.pool != nil {
		s.PoolBytes = e.pool.MappedBytes()
	}
	if e.results != nil {
		s.ResultBytes = e.results.MappedBytes()
	}
	return s
}

// NodeSize is the pool footprint of one token node.
func NodeSize() int {
	return int(unsafe.Sizeof(node{}))
}
