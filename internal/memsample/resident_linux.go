//go:build linux

package memsample

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
)

var statusPath = "/proc/self/status"

// Resident reports the current resident set size (VmRSS), which drops
// again once the allocator hands pages back to the OS.
type Resident struct{}

func (Resident) Sample() (int64, error) {
	data, err := os.ReadFile(statusPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSamplingUnsupported, err)
	}
	return parseVmRSS(data)
}

// parseVmRSS extracts the kB value of a "VmRSS:    12345 kB" line.
func parseVmRSS(status []byte) (int64, error) {
	sc := bufio.NewScanner(bytes.NewReader(status))
	for sc.Scan() {
		line := sc.Bytes()
		if !bytes.HasPrefix(line, []byte("VmRSS:")) {
			continue
		}
		fields := bytes.Fields(line)
		if len(fields) < 2 {
			break
		}
		kb, err := strconv.ParseInt(string(fields[1]), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: parse VmRSS: %v", ErrSamplingUnsupported, err)
		}
		return kb, nil
	}
	return 0, fmt.Errorf("%w: no VmRSS line in %s", ErrSamplingUnsupported, statusPath)
}
