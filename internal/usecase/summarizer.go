package usecase

import (
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/swen746/repo-miner/internal/domain"
)

// Summarize reduces a commit table and an issue table into aggregate
// statistics. Inputs are read-only; tables loaded from disk and tables
// fresh from a fetch are treated identically.
func Summarize(commits []domain.CommitRecord, issues []domain.IssueRecord) *domain.SummaryReport {
	report := &domain.SummaryReport{
		TotalCommits: len(commits),
		TotalIssues:  len(issues),
	}

	// Group commits by author. A nil author is its own group, not dropped.
	// First-encounter order breaks ties between equally-sized groups.
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, c := range commits {
		author := ""
		if c.Author != nil {
			author = *c.Author
		}
		if _, ok := counts[author]; !ok {
			firstSeen[author] = len(firstSeen)
		}
		counts[author]++
	}
	report.DistinctAuthors = len(counts)

	ranked := make([]domain.CommitterCount, 0, len(counts))
	for author, n := range counts {
		ranked = append(ranked, domain.CommitterCount{Author: author, Commits: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Commits != ranked[j].Commits {
			return ranked[i].Commits > ranked[j].Commits
		}
		return firstSeen[ranked[i].Author] < firstSeen[ranked[j].Author]
	})
	if len(ranked) > domain.TopCommitterLimit {
		ranked = ranked[:domain.TopCommitterLimit]
	}
	report.TopCommitters = ranked

	// Both rates share the zero-denominator rule: no issues means the
	// statistic is undefined, reported as such rather than raised.
	if report.TotalIssues == 0 {
		return report
	}

	durations := make(stats.Float64Data, 0, len(issues))
	for _, issue := range issues {
		if issue.State == domain.IssueStateClosed {
			report.ClosedIssues++
			if issue.OpenDurationDays != nil {
				durations = append(durations, float64(*issue.OpenDurationDays))
			}
		}
	}

	closeRate, _ := stats.Round(float64(report.ClosedIssues)/float64(report.TotalIssues), 2)
	report.CloseRate = &closeRate

	var total float64
	if len(durations) > 0 {
		total, _ = stats.Sum(durations)
	}
	// The denominator is the total issue count, not the closed-issue count,
	// so the figure is duration-per-issue rather than a mean over closed
	// issues. TODO: confirm with stakeholders whether that is intended; a
	// true mean would divide by len(durations).
	avg, _ := stats.Round(total/float64(report.TotalIssues), 2)
	report.AvgOpenDays = &avg

	return report
}
