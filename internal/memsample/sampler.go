// Package memsample reads the operating system's view of this process's
// memory, in kilobytes.
package memsample

import (
	"errors"
	"fmt"
)

// ErrSamplingUnsupported is returned when the platform cannot report memory
// usage for the calling process.
var ErrSamplingUnsupported = errors.New("memory sampling unsupported on this platform")

// Sampler returns one memory reading in kilobytes.
type Sampler interface {
	Sample() (int64, error)
}

// Func adapts a plain function to a Sampler.
type Func func() (int64, error)

func (f Func) Sample() (int64, error) {
	return f()
}

const (
	SourcePeak     = "peak"
	SourceResident = "resident"
)

// New returns the sampler registered under source. An empty source selects
// the peak resident set size.
func New(source string) (Sampler, error) {
	switch source {
	case "", SourcePeak:
		return Peak{}, nil
	case SourceResident:
		return Resident{}, nil
	default:
		return nil, fmt.Errorf("unknown memory source %q (want %q or %q)", source, SourcePeak, SourceResident)
	}
}

// Check takes one reading so a run can fail fast before any work is done.
func Check(s Sampler) error {
	kb, err := s.Sample()
	if err != nil {
		return err
	}
	if kb < 0 {
		return fmt.Errorf("%w: negative reading %d", ErrSamplingUnsupported, kb)
	}
	return nil
}
