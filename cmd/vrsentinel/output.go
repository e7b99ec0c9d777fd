package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"VRSentinel/internal/model"
)

type runOutput struct {
	RunID      string            `json:"run_id"`
	Benchmark  string            `json:"benchmark"`
	Start      string            `json:"start"`
	End        string            `json:"end"`
	DurationMS int64             `json:"duration_ms"`
	Results    []model.ResultRow `json:"results"`
}

func writeJSON(w io.Writer, res *model.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runOutput{
		RunID:      res.RunID,
		Benchmark:  res.Benchmark,
		Start:      res.Start.Format("2006-01-02"),
		End:        res.End.Format("2006-01-02"),
		DurationMS: res.Duration.Milliseconds(),
		Results:    res.Rows(),
	})
}

func writeTable(w io.Writer, res *model.BatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "SYMBOL\tVR\tDERI\tMEVAR\tN\tCLASS\tSPOT\tWEEK%%\tUPSIDE%%\tERROR\n")
	for _, row := range res.Rows() {
		spot, week, upside := "-", "-", "-"
		if s := row.Snapshot; s != nil {
			spot = fmt.Sprintf("%.2f", s.Spot)
			week = optional(s.WeeklyChange, "%+.1f")
			upside = optional(s.Upside, "%+.1f")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			row.Symbol,
			optional(row.VR, "%.2f"),
			optional(row.DERI, "%.4f"),
			optional(row.MEVAR, "%.4f"),
			row.SampleSize,
			row.Classification,
			spot, week, upside,
			row.ErrorKind,
		)
	}
	fmt.Fprintf(tw, "\nbenchmark %s, %s..%s, run %s\n", res.Benchmark,
		res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"), res.RunID)
	return tw.Flush()
}

func optional(v *float64, format string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *v)
}
