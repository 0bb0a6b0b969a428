package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Timing is the duration of one phase of a run
type Timing struct {
	Phase    string
	Duration time.Duration
}

// Timings groups stage durations into the loading, cleaning and metrics phases
func (s *RunState) Timings() []Timing {
	var load, clean, metrics time.Duration
	for _, st := range s.Stages() {
		switch {
		case st.ID == StageLoad:
			load += st.Duration()
		case strings.HasPrefix(st.ID, "clean_"):
			clean += st.Duration()
		default:
			metrics += st.Duration()
		}
	}
	return []Timing{
		{Phase: "Data loading", Duration: load},
		{Phase: "Data cleaning", Duration: clean},
		{Phase: "Metrics calculation", Duration: metrics},
	}
}

// WriteSummary prints the execution summary block with each phase's share of total
func WriteSummary(w io.Writer, timings []Timing, total time.Duration) error {
	rule := strings.Repeat("=", 50)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nETL PIPELINE EXECUTION SUMMARY\n%s\n", rule, rule)
	for _, t := range timings {
		fmt.Fprintf(&b, "%s time: %.2fs (%.1f%%)\n", t.Phase, t.Duration.Seconds(), share(t.Duration, total))
	}
	fmt.Fprintf(&b, "Total execution time: %.2fs\n%s\n", total.Seconds(), rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func share(part, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
