package report

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivam-909/leakcheck/internal/leak"
	"github.com/shivam-909/leakcheck/internal/scenario"
)

func TestMain(m *testing.M) {
	pterm.DisableColor()
	os.Exit(m.Run())
}

func sampleReport() *scenario.Report {
	th := leak.Thresholds{WarnKB: 2000, FailKB: 5000}
	sustained := &scenario.Series{
		Scenario:   scenario.Sustained,
		Engine:     "leak-results",
		Thresholds: th,
		Processed:  300,
		Checks: []scenario.Check{
			{Sample: scenario.Sample{Ordinal: 0, Kind: scenario.KindBaseline, Label: "baseline", ResidentKB: 10000}},
			{Sample: scenario.Sample{Ordinal: 1, Kind: scenario.KindCycle, Label: "cycle 1", ResidentKB: 13000}, DeltaKB: 3000, Verdict: leak.Warn},
			{Sample: scenario.Sample{Ordinal: 2, Kind: scenario.KindCycle, Label: "cycle 2", ResidentKB: 16500}, DeltaKB: 6500, Verdict: leak.Fail},
			{Sample: scenario.Sample{Ordinal: 3, Kind: scenario.KindFinal, Label: "final", ResidentKB: 16400}, DeltaKB: 6400, Verdict: leak.Fail},
		},
		Outcome: &leak.Outcome{Scenario: scenario.Sustained, Verdict: leak.Fail, DeltaKB: 6400, Thresholds: th},
	}
	reinitTh := leak.Thresholds{WarnKB: 1000, FailKB: 1000}
	reinit := &scenario.Series{
		Scenario:   scenario.Reinit,
		Engine:     "leak-results",
		Thresholds: reinitTh,
		Processed:  50,
		Checks: []scenario.Check{
			{Sample: scenario.Sample{Ordinal: 0, Kind: scenario.KindBaseline, Label: "baseline", ResidentKB: 16400}},
			{Sample: scenario.Sample{Ordinal: 1, Kind: scenario.KindRound, Label: "round 1", ResidentKB: 16600}, DeltaKB: 200, Verdict: leak.Pass},
		},
		Outcome: &leak.Outcome{Scenario: scenario.Reinit, Verdict: leak.Pass, DeltaKB: 200, Thresholds: reinitTh},
	}
	rep := &scenario.Report{RunID: "run-1", Host: scenario.Host{OS: "linux", Arch: "amd64", PageSize: 4096, TotalMemoryKB: 8 << 20}}
	rep.Add(sustained)
	rep.Add(reinit)
	return rep
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write("text", &buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "=== Leak check run-1 ===")
	assert.Contains(t, out, "host: linux/amd64, page size 4096 B, memory 8192 MB")
	assert.Contains(t, out, "--- sustained (engine: leak-results) ---")
	assert.Contains(t, out, "cycle 2")
	assert.Contains(t, out, "16500")
	assert.Contains(t, out, "+6500")
	assert.Contains(t, out, "trend: growing every step; processed 300, process errors 0")
	assert.Contains(t, out, "FAIL  growth +6400 KB (warn > 2000 KB, fail > 5000 KB)")
	assert.Contains(t, out, "--- reinit (engine: leak-results) ---")
	assert.Contains(t, out, "PASS  growth +200 KB (fail > 1000 KB): memory growth within limits")
	assert.Contains(t, out, "=== overall: FAIL ===")
}

func TestWriteTextNegativeGrowth(t *testing.T) {
	th := leak.Thresholds{WarnKB: 1000, FailKB: 1000}
	rep := &scenario.Report{RunID: "run-2"}
	rep.Add(&scenario.Series{
		Scenario:   scenario.Reinit,
		Engine:     "sound",
		Thresholds: th,
		Outcome:    &leak.Outcome{Scenario: scenario.Reinit, Verdict: leak.Pass, DeltaKB: -4, Thresholds: th},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, rep))
	assert.Contains(t, buf.String(), "PASS  growth -4 KB (fail > 1000 KB): memory growth within limits")
	assert.Contains(t, buf.String(), "trend: plateau")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write("json", &buf, sampleReport()))

	var decoded struct {
		RunID    string         `json:"run_id"`
		Verdicts []leak.Outcome `json:"verdicts"`
		Series   []struct {
			Scenario string `json:"scenario"`
			Checks   []struct {
				Label   string `json:"label"`
				DeltaKB int64  `json:"delta_kb"`
			} `json:"checks"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Verdicts, 2)
	assert.Equal(t, leak.Fail, decoded.Verdicts[0].Verdict)
	assert.Equal(t, leak.Pass, decoded.Verdicts[1].Verdict)
	require.Len(t, decoded.Series, 2)
	assert.Equal(t, int64(6500), decoded.Series[0].Checks[2].DeltaKB)
}

func TestUnknownFormat(t *testing.T) {
	err := Write("xml", &bytes.Buffer{}, sampleReport())
	assert.ErrorContains(t, err, "xml")
	assert.Equal(t, []string{"json", "text"}, Formats())
}
