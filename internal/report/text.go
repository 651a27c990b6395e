package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/shivam-909/leakcheck/internal/leak"
	"github.com/shivam-909/leakcheck/internal/scenario"
)

func paint(v leak.Verdict) string {
	switch v {
	case leak.Fail:
		return pterm.FgRed.Sprint(v.String())
	case leak.Warn:
		return pterm.FgYellow.Sprint(v.String())
	default:
		return pterm.FgGreen.Sprint(v.String())
	}
}

func signed(kb int64) string {
	if kb >= 0 {
		return "+" + strconv.FormatInt(kb, 10)
	}
	return strconv.FormatInt(kb, 10)
}

func explain(o leak.Outcome) string {
	switch o.Verdict {
	case leak.Fail:
		return fmt.Sprintf("memory grew by %d KB, more than the %d KB limit; pooled memory is not being returned", o.DeltaKB, o.Thresholds.FailKB)
	case leak.Warn:
		return fmt.Sprintf("memory grew by %d KB; may be start-up allocation, watch this run", o.DeltaKB)
	default:
		return "memory growth within limits"
	}
}

// WriteText renders one table per scenario followed by its verdict line.
func WriteText(w io.Writer, rep *scenario.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Leak check %s ===\n", rep.RunID)
	h := rep.Host
	fmt.Fprintf(&b, "host: %s/%s, page size %d B, memory %d MB\n", h.OS, h.Arch, h.PageSize, h.TotalMemoryKB/1024)

	for _, s := range rep.Series {
		fmt.Fprintf(&b, "\n--- %s (engine: %s) ---\n", s.Scenario, s.Engine)

		data := pterm.TableData{{"#", "checkpoint", "memory KB", "delta KB", "verdict"}}
		for _, c := range s.Checks {
			data = append(data, []string{
				strconv.Itoa(c.Ordinal),
				c.Label,
				strconv.FormatInt(c.ResidentKB, 10),
				signed(c.DeltaKB),
				c.Verdict.String(),
			})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return fmt.Errorf("render %s table: %w", s.Scenario, err)
		}
		b.WriteString(table)
		b.WriteString("\n")

		trend := "plateau"
		if s.Growing() {
			trend = "growing every step"
		}
		fmt.Fprintf(&b, "trend: %s; processed %d, process errors %d\n", trend, s.Processed, s.ProcessErrors)

		o := *s.Outcome
		fmt.Fprintf(&b, "%s  growth %s KB (%s): %s\n", paint(o.Verdict), signed(o.DeltaKB), o.Thresholds, explain(o))
	}

	fmt.Fprintf(&b, "\n=== overall: %s ===\n", paint(rep.Overall()))
	_, err := io.WriteString(w, b.String())
	return err
}
