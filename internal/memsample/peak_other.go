//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package memsample

type Peak struct{}

func (Peak) Sample() (int64, error) {
	return 0, ErrSamplingUnsupported
}
