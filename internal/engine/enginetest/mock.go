// Package enginetest provides a scripted engine.Engine for tests.
package enginetest

import (
	"errors"

	"github.com/shivam-909/leakcheck/internal/engine"
)

var (
	ErrInit    = errors.New("mock: init refused")
	ErrProcess = errors.New("mock: input refused")
)

// Mock records every lifecycle call. FailInit makes Init fail; FailProcess
// decides per call (1-based) whether Process fails. OnProcess and OnRelease,
// when set, run after the call is counted.
type Mock struct {
	FailInit    bool
	FailProcess func(call int, text []byte) bool
	OnProcess   func(text []byte)
	OnRelease   func()
	OnDeinit    func()

	Inits     int
	Processes int
	Failures  int
	Releases  int
	// ZeroReleases counts Release calls made with a zero Result.
	ZeroReleases int
	Deinits      int
	Live         int
	Initialized  bool
}

func (m *Mock) Init(string) error {
	if m.FailInit {
		return ErrInit
	}
	m.Inits++
	m.Initialized = true
	return nil
}

func (m *Mock) Process(text []byte, out *engine.Result) error {
	m.Processes++
	if m.FailProcess != nil && m.FailProcess(m.Processes, text) {
		m.Failures++
		return ErrProcess
	}
	m.Live++
	*out = engine.Result{Tokens: len(text), Handle: m.Processes}
	if m.OnProcess != nil {
		m.OnProcess(text)
	}
	return nil
}

func (m *Mock) Release(res *engine.Result) {
	if res.IsZero() {
		m.ZeroReleases++
		return
	}
	m.Releases++
	m.Live--
	*res = engine.Result{}
	if m.OnRelease != nil {
		m.OnRelease()
	}
}

func (m *Mock) Deinit() {
	m.Deinits++
	m.Initialized = false
	if m.OnDeinit != nil {
		m.OnDeinit()
	}
}

// FailEvery fails every nth Process call.
func FailEvery(n int) func(int, []byte) bool {
	return func(call int, _ []byte) bool {
		return call%n == 0
	}
}
