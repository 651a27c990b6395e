// Package engine defines the four-call lifecycle of a pooled text-processing
// engine and a client that drives it while keeping the caller honest about
// releasing every result.
package engine

// Engine is the external lifecycle contract. Calls are sequential.
//
// Init must succeed before Process. Process fills out on success and leaves
// it zeroed on failure. Release must be called exactly once for every
// successful Process and is a no-op on a zero Result. Deinit frees every
// pooled resource held since Init; a new Init is needed afterwards.
type Engine interface {
	Init(config string) error
	Process(text []byte, out *Result) error
	Release(res *Result)
	Deinit()
}

// Result is the handle produced by Process. Handle belongs to the engine; the
// caller owns the Result until it is released and must not read it after.
type Result struct {
	Tokens int
	Handle any
}

func (r Result) IsZero() bool {
	return r.Tokens == 0 && r.Handle == nil
}

type State int

const (
	Uninitialized State = iota
	Initialized
)

func (s State) String() string {
	if s == Initialized {
		return "initialized"
	}
	return "uninitialized"
}
