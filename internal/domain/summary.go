package domain

import (
	"fmt"
	"strings"
)

// TopCommitterLimit is how many author groups the report lists at most.
const TopCommitterLimit = 5

// CommitterCount is one author group in the top-committers ranking.
type CommitterCount struct {
	Author  string
	Commits int
}

// SummaryReport holds the aggregate statistics computed from a commit table
// and an issue table. Rates are nil when the issue table is empty and the
// statistic is undefined.
type SummaryReport struct {
	TotalCommits    int
	DistinctAuthors int
	TopCommitters   []CommitterCount
	TotalIssues     int
	ClosedIssues    int
	CloseRate       *float64
	AvgOpenDays     *float64
}

// String renders the report as human-readable text.
func (r *SummaryReport) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Top committers (%d commits total):\n", r.TotalCommits)
	if len(r.TopCommitters) == 0 {
		b.WriteString("  (no commits)\n")
	}
	for _, c := range r.TopCommitters {
		name := c.Author
		if name == "" {
			name = "<none>"
		}
		fmt.Fprintf(&b, "  %s: %d\n", name, c.Commits)
	}
	if r.DistinctAuthors > 0 && r.DistinctAuthors < TopCommitterLimit {
		fmt.Fprintf(&b, "  (only %d distinct committers, fewer than %d)\n", r.DistinctAuthors, TopCommitterLimit)
	}

	if r.CloseRate == nil {
		b.WriteString("Close rate: undefined (no issues)\n")
	} else {
		fmt.Fprintf(&b, "Close rate: %.2f (%d of %d issues closed)\n", *r.CloseRate, r.ClosedIssues, r.TotalIssues)
	}

	if r.AvgOpenDays == nil {
		b.WriteString("Average open duration: undefined (no issues)\n")
	} else {
		fmt.Fprintf(&b, "Average open duration: %.2f days across %d issues\n", *r.AvgOpenDays, r.TotalIssues)
	}

	return b.String()
}
