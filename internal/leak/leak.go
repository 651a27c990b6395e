// Package leak turns a memory delta into a pass/warn/fail verdict.
package leak

import (
	"errors"
	"fmt"
	"strings"
)

type Verdict int

const (
	Pass Verdict = iota
	Warn
	Fail
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "PASS"
	case Warn:
		return "WARN"
	case Fail:
		return "FAIL"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(v.String())), nil
}

func (v *Verdict) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "pass":
		*v = Pass
	case "warn":
		*v = Warn
	case "fail":
		*v = Fail
	default:
		return fmt.Errorf("unknown verdict %q", b)
	}
	return nil
}

// Worse reports whether v is a more severe verdict than other.
func (v Verdict) Worse(other Verdict) bool {
	return v > other
}

// Thresholds are growth limits in kilobytes. Growth above WarnKB warns,
// growth above FailKB fails. WarnKB == FailKB leaves no warn band.
type Thresholds struct {
	WarnKB int64 `yaml:"warn_kb" json:"warn_kb"`
	FailKB int64 `yaml:"fail_kb" json:"fail_kb"`
}

var ErrThresholds = errors.New("invalid thresholds")

func (t Thresholds) Validate() error {
	if t.WarnKB < 0 || t.FailKB < 0 {
		return fmt.Errorf("%w: negative limit (warn %d KB, fail %d KB)", ErrThresholds, t.WarnKB, t.FailKB)
	}
	if t.WarnKB > t.FailKB {
		return fmt.Errorf("%w: warn limit %d KB above fail limit %d KB", ErrThresholds, t.WarnKB, t.FailKB)
	}
	return nil
}

func (t Thresholds) String() string {
	if t.WarnKB == t.FailKB {
		return fmt.Sprintf("fail > %d KB", t.FailKB)
	}
	return fmt.Sprintf("warn > %d KB, fail > %d KB", t.WarnKB, t.FailKB)
}

// Classify maps a growth in kilobytes to a verdict. It is monotonic in
// deltaKB; shrinking memory passes.
func Classify(deltaKB int64, t Thresholds) Verdict {
	switch {
	case deltaKB > t.FailKB:
		return Fail
	case deltaKB > t.WarnKB:
		return Warn
	default:
		return Pass
	}
}

// Outcome is a classified delta for one scenario.
type Outcome struct {
	Scenario   string     `json:"scenario"`
	Verdict    Verdict    `json:"verdict"`
	DeltaKB    int64      `json:"delta_kb"`
	Thresholds Thresholds `json:"thresholds"`
}

// Worst returns the most severe verdict among outcomes, Pass when empty.
func Worst(outcomes []Outcome) Verdict {
	worst := Pass
	for _, o := range outcomes {
		if o.Verdict.Worse(worst) {
			worst = o.Verdict
		}
	}
	return worst
}
