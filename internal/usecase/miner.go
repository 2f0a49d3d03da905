// Package usecase contains the business logic of the application: fetching
// and normalizing repository history, and summarizing the resulting tables.
package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/go-github/v62/github"
	"github.com/swen746/repo-miner/internal/domain"
	"github.com/swen746/repo-miner/internal/gateway"
)

// InvalidRepoError is returned when a repository identifier is not in
// "owner/name" form.
type InvalidRepoError struct {
	Repo string
}

func (e *InvalidRepoError) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected \"owner/name\"", e.Repo)
}

// Miner fetches commit and issue history through a gateway.Source and
// normalizes it into flat domain records.
type Miner struct {
	source gateway.Source
	logger *log.Logger
}

// NewMiner creates a new Miner instance.
func NewMiner(source gateway.Source, logger *log.Logger) *Miner {
	return &Miner{
		source: source,
		logger: logger,
	}
}

// FetchCommits pulls the commit history of repo ("owner/name") in server
// return order and normalizes each item into a CommitRecord. Every observed
// item yields exactly one row, even when its nested commit payload is
// entirely absent. A positive max is a hard stop on the number of rows;
// max <= 0 means fetch until the remote sequence is exhausted.
func (m *Miner) FetchCommits(ctx context.Context, repo string, max int) ([]domain.CommitRecord, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}
	m.logger.Printf("Fetching commits for %s...", repo)

	records := make([]domain.CommitRecord, 0)
	it := m.source.Commits(owner, name)
	for it.Next(ctx) {
		rec := normalizeCommit(it.Commit())
		if rec.SHA != nil {
			m.logger.Println(*rec.SHA)
		}
		records = append(records, rec)
		if max > 0 && len(records) >= max {
			break
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	m.logger.Printf("Fetched %d commits.", len(records))
	return records, nil
}

// FetchIssues pulls the issue history of repo filtered server-side by state
// ("all", "open" or "closed"). Items carrying pull-request linkage are
// discarded before any processing and do not count toward max.
func (m *Miner) FetchIssues(ctx context.Context, repo, state string, max int) ([]domain.IssueRecord, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}
	switch state {
	case domain.IssueStateAll, domain.IssueStateOpen, domain.IssueStateClosed:
	default:
		return nil, fmt.Errorf("invalid issue state %q: must be %q, %q or %q",
			state, domain.IssueStateAll, domain.IssueStateOpen, domain.IssueStateClosed)
	}
	m.logger.Printf("Fetching %s issues for %s...", state, repo)

	records := make([]domain.IssueRecord, 0)
	it := m.source.Issues(owner, name, state)
	for it.Next(ctx) {
		issue := it.Issue()
		// The issues listing includes pull requests; those never become rows.
		if issue.PullRequestLinks != nil {
			continue
		}
		records = append(records, normalizeIssue(issue))
		if max > 0 && len(records) >= max {
			break
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	m.logger.Printf("Fetched %d issues.", len(records))
	return records, nil
}

// splitRepo splits an "owner/name" identifier into its two parts.
func splitRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", &InvalidRepoError{Repo: repo}
	}
	return owner, name, nil
}

// normalizeCommit extracts a flat record from an API commit item. Absent
// optional branches become nil fields rather than errors: partial data is
// expected. When the nested commit payload is missing entirely, the whole
// record is nil-valued.
func normalizeCommit(rc *github.RepositoryCommit) domain.CommitRecord {
	var rec domain.CommitRecord
	c := rc.Commit
	if c == nil {
		return rec
	}
	rec.SHA = copyString(rc.SHA)
	if author := c.Author; author != nil {
		rec.Author = copyString(author.Name)
		rec.Email = copyString(author.Email)
		if author.Date != nil {
			t := author.Date.Time
			rec.Date = &t
		}
	}
	if c.Message != nil {
		line := firstLine(*c.Message)
		rec.Message = &line
	}
	return rec
}

// normalizeIssue extracts a flat record from an API issue item. The caller
// has already excluded pull requests.
func normalizeIssue(issue *github.Issue) domain.IssueRecord {
	rec := domain.IssueRecord{
		ID:       issue.GetID(),
		Number:   issue.GetNumber(),
		State:    issue.GetState(),
		Comments: issue.GetComments(),
	}
	rec.Title = copyString(issue.Title)
	if u := issue.User; u != nil {
		rec.User = copyString(u.Login)
	}
	if issue.CreatedAt != nil {
		t := issue.CreatedAt.Time
		rec.CreatedAt = &t
	}
	if issue.ClosedAt != nil {
		t := issue.ClosedAt.Time
		rec.ClosedAt = &t
	}
	rec.OpenDurationDays = domain.OpenDuration(rec.CreatedAt, rec.ClosedAt)
	return rec
}

// firstLine truncates a commit message to its first line.
func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSuffix(line, "\r")
}

// copyString clones an optional string so records do not alias API payloads.
func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
