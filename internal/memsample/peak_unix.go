//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package memsample

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Peak reports the peak resident set size (ru_maxrss) of the process. The
// reading never decreases, so it shows growth but not its release.
type Peak struct{}

func (Peak) Sample() (int64, error) {
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		return 0, fmt.Errorf("%w: getrusage: %v", ErrSamplingUnsupported, err)
	}
	maxrss := int64(usage.Maxrss)
	// Darwin reports bytes, the others kilobytes.
	if runtime.GOOS == "darwin" {
		maxrss /= 1024
	}
	return maxrss, nil
}
