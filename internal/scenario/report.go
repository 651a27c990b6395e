package scenario

import (
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pbnjay/memory"

	"github.com/shivam-909/leakcheck/internal/leak"
)

// Kind marks where in a scenario a sample was taken.
type Kind string

const (
	KindBaseline Kind = "baseline"
	KindCycle    Kind = "cycle"
	KindRound    Kind = "round"
	KindFinal    Kind = "final"
)

// Sample is one memory reading. Samples are never modified once recorded.
type Sample struct {
	Ordinal    int    `json:"ordinal"`
	Kind       Kind   `json:"kind"`
	Label      string `json:"label"`
	ResidentKB int64  `json:"resident_kb"`
}

// Check is a sample classified against its scenario's baseline.
type Check struct {
	Sample
	DeltaKB int64        `json:"delta_kb"`
	Verdict leak.Verdict `json:"verdict"`
}

// Series is the time series of one scenario run.
type Series struct {
	Scenario      string          `json:"scenario"`
	Engine        string          `json:"engine"`
	Thresholds    leak.Thresholds `json:"thresholds"`
	Checks        []Check         `json:"checks"`
	Processed     int             `json:"processed"`
	ProcessErrors int             `json:"process_errors"`
	Outcome       *leak.Outcome   `json:"outcome,omitempty"`
}

func (s *Series) record(kind Kind, label string, kb int64) Check {
	c := Check{Sample: Sample{Ordinal: len(s.Checks), Kind: kind, Label: label, ResidentKB: kb}}
	if len(s.Checks) > 0 {
		c.DeltaKB = kb - s.Checks[0].ResidentKB
	}
	c.Verdict = leak.Classify(c.DeltaKB, s.Thresholds)
	s.Checks = append(s.Checks, c)
	return c
}

// Samples returns the raw readings in order.
func (s *Series) Samples() []Sample {
	out := make([]Sample, len(s.Checks))
	for i, c := range s.Checks {
		out[i] = c.Sample
	}
	return out
}

func (s *Series) finish() leak.Outcome {
	o := leak.Outcome{Scenario: s.Scenario, Thresholds: s.Thresholds}
	if n := len(s.Checks); n > 0 {
		o.DeltaKB = s.Checks[n-1].DeltaKB
	}
	o.Verdict = leak.Classify(o.DeltaKB, s.Thresholds)
	s.Outcome = &o
	return o
}

// Growing reports whether every per-cycle (or per-round) sample is strictly
// above the one before it. Memory that plateaus is not growing.
func (s *Series) Growing() bool {
	var prev *Check
	steps := 0
	for i := range s.Checks {
		c := &s.Checks[i]
		if c.Kind != KindCycle && c.Kind != KindRound {
			continue
		}
		if prev != nil {
			if c.ResidentKB <= prev.ResidentKB {
				return false
			}
			steps++
		}
		prev = c
	}
	return steps > 0
}

// Host describes the machine a report was produced on.
type Host struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	PageSize      int    `json:"page_size"`
	TotalMemoryKB uint64 `json:"total_memory_kb"`
}

func CurrentHost() Host {
	return Host{
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		PageSize:      os.Getpagesize(),
		TotalMemoryKB: memory.TotalMemory() / 1024,
	}
}

// Report collects the series and verdicts of one harness run.
type Report struct {
	RunID    string         `json:"run_id"`
	Started  time.Time      `json:"started"`
	Host     Host           `json:"host"`
	Series   []*Series      `json:"series"`
	Verdicts []leak.Outcome `json:"verdicts"`
}

func NewReport(host Host) *Report {
	return &Report{RunID: uuid.NewString(), Started: time.Now(), Host: host}
}

// Add appends a finished series and its verdict. A series without an
// outcome never ran to completion and is not added.
func (r *Report) Add(s *Series) {
	if s.Outcome == nil {
		return
	}
	r.Series = append(r.Series, s)
	r.Verdicts = append(r.Verdicts, *s.Outcome)
}

// Overall is the worst verdict of the run.
func (r *Report) Overall() leak.Verdict {
	return leak.Worst(r.Verdicts)
}
