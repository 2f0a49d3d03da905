// Package gateway provides a gateway to the GitHub API, exposing commit and
// issue history as lazily-paginated iterators.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// perPage is the page size requested from the API.
const perPage = 100

// CommitIter pulls commits one at a time. Usage follows the bufio.Scanner
// pattern: call Next until it returns false, then check Err.
type CommitIter interface {
	Next(ctx context.Context) bool
	Commit() *github.RepositoryCommit
	Err() error
}

// IssueIter pulls issues one at a time, same contract as CommitIter.
type IssueIter interface {
	Next(ctx context.Context) bool
	Issue() *github.Issue
	Err() error
}

// Source defines the behavior of a gateway for pulling commit and issue
// history from GitHub.
type Source interface {
	Commits(owner, repo string) CommitIter
	Issues(owner, repo, state string) IssueIter
}

// NotFoundError is returned when the remote service cannot resolve a
// repository identifier.
type NotFoundError struct {
	Repo string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("repository %q not found", e.Repo)
}

// Gateway is a thin wrapper around the go-github client.
type Gateway struct {
	client *github.Client
	logger *log.Logger
}

// NewGateway creates a Gateway. An empty token yields an unauthenticated
// client, which still works against public repositories. baseURL, when
// non-empty, overrides the API endpoint (GitHub Enterprise or a test server).
func NewGateway(token, baseURL string, logger *log.Logger) (Source, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	client := github.NewClient(httpClient)
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		client.BaseURL = u
	}
	return &Gateway{client: client, logger: logger}, nil
}

// Commits returns an iterator over the repository's commit history in
// server return order. Pages are fetched on demand as the consumer advances,
// so an early stop never pulls more pages than it needs.
func (g *Gateway) Commits(owner, repo string) CommitIter {
	return &CommitIterator{
		gw:    g,
		owner: owner,
		repo:  repo,
		opts:  github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: perPage}},
		idx:   -1,
	}
}

// Issues returns an iterator over the repository's issue history, filtered
// server-side by lifecycle state ("all", "open" or "closed"). The listing
// includes pull requests; callers that want issues only must filter on the
// pull-request linkage themselves.
func (g *Gateway) Issues(owner, repo, state string) IssueIter {
	return &IssueIterator{
		gw:    g,
		owner: owner,
		repo:  repo,
		opts: github.IssueListByRepoOptions{
			State:       state,
			ListOptions: github.ListOptions{PerPage: perPage},
		},
		idx: -1,
	}
}

// translateError maps a 404 to NotFoundError and wraps everything else.
func (g *Gateway) translateError(err error, repo, op string) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return &NotFoundError{Repo: repo}
	}
	return fmt.Errorf("failed to %s for %s: %w", op, repo, err)
}

// CommitIterator walks a repository's commits page by page.
type CommitIterator struct {
	gw    *Gateway
	owner string
	repo  string
	opts  github.CommitsListOptions
	buf   []*github.RepositoryCommit
	idx   int
	done  bool
	err   error
}

// Next advances the iterator, fetching the next page from the API when the
// buffered one is exhausted. It returns false at the end of the sequence or
// on error.
func (it *CommitIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if it.idx+1 < len(it.buf) {
		it.idx++
		return true
	}
	for !it.done {
		commits, resp, err := it.gw.client.Repositories.ListCommits(ctx, it.owner, it.repo, &it.opts)
		if err != nil {
			it.err = it.gw.translateError(err, it.owner+"/"+it.repo, "list commits")
			return false
		}
		if resp.NextPage == 0 {
			it.done = true
		} else {
			it.opts.Page = resp.NextPage
			it.gw.logger.Println("  Fetching next page of commits...")
		}
		if len(commits) > 0 {
			it.buf = commits
			it.idx = 0
			return true
		}
	}
	return false
}

// Commit returns the item the iterator currently points at. Only valid
// after a Next call that returned true.
func (it *CommitIterator) Commit() *github.RepositoryCommit {
	return it.buf[it.idx]
}

// Err returns the first error encountered during iteration, if any.
func (it *CommitIterator) Err() error {
	return it.err
}

// IssueIterator walks a repository's issues page by page, same contract as
// CommitIterator.
type IssueIterator struct {
	gw    *Gateway
	owner string
	repo  string
	opts  github.IssueListByRepoOptions
	buf   []*github.Issue
	idx   int
	done  bool
	err   error
}

// Next advances the iterator, fetching the next page from the API when the
// buffered one is exhausted.
func (it *IssueIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if it.idx+1 < len(it.buf) {
		it.idx++
		return true
	}
	for !it.done {
		issues, resp, err := it.gw.client.Issues.ListByRepo(ctx, it.owner, it.repo, &it.opts)
		if err != nil {
			it.err = it.gw.translateError(err, it.owner+"/"+it.repo, "list issues")
			return false
		}
		if resp.NextPage == 0 {
			it.done = true
		} else {
			it.opts.Page = resp.NextPage
			it.gw.logger.Println("  Fetching next page of issues...")
		}
		if len(issues) > 0 {
			it.buf = issues
			it.idx = 0
			return true
		}
	}
	return false
}

// Issue returns the item the iterator currently points at. Only valid after
// a Next call that returned true.
func (it *IssueIterator) Issue() *github.Issue {
	return it.buf[it.idx]
}

// Err returns the first error encountered during iteration, if any.
func (it *IssueIterator) Err() error {
	return it.err
}
