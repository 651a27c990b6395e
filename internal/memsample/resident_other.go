//go:build !linux

package memsample

type Resident struct{}

func (Resident) Sample() (int64, error) {
	return 0, ErrSamplingUnsupported
}
