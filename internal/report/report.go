// Package report renders a finished scenario.Report. It does no analysis of
// its own.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shivam-909/leakcheck/internal/scenario"
)

// Presenters maps an output format to its renderer.
var Presenters = map[string]func(w io.Writer, rep *scenario.Report) error{
	"text": WriteText,
	"json": WriteJSON,
}

// Formats lists the registered output formats.
func Formats() []string {
	out := make([]string, 0, len(Presenters))
	for f := range Presenters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func Write(format string, w io.Writer, rep *scenario.Report) error {
	fn, ok := Presenters[format]
	if !ok {
		return fmt.Errorf("unknown report format %q (want one of %v)", format, Formats())
	}
	return fn(w, rep)
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep *scenario.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
