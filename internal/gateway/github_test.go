package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestGateway creates a Gateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*Gateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	gw := &Gateway{
		client: client,
		logger: log.New(io.Discard, "", 0),
	}
	return gw, server
}

func drainCommits(ctx context.Context, it CommitIter) ([]*github.RepositoryCommit, error) {
	var out []*github.RepositoryCommit
	for it.Next(ctx) {
		out = append(out, it.Commit())
	}
	return out, it.Err()
}

func TestGateway_Commits(t *testing.T) {
	t.Run("happy path - follows pagination until exhausted", func(t *testing.T) {
		var server *httptest.Server
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Path, "/repos/octo/widgets/commits")
			switch r.URL.Query().Get("page") {
			case "", "1":
				w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/widgets/commits?page=2>; rel="next"`, server.URL))
				fmt.Fprint(w, `[{"sha": "aaa", "commit": {"message": "first"}}, {"sha": "bbb", "commit": {"message": "second"}}]`)
			case "2":
				fmt.Fprint(w, `[{"sha": "ccc", "commit": {"message": "third"}}]`)
			default:
				t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
			}
		})
		gw, srv := setupTestGateway(t, handler)
		server = srv

		commits, err := drainCommits(context.Background(), gw.Commits("octo", "widgets"))
		require.NoError(t, err)
		require.Len(t, commits, 3)
		assert.Equal(t, "aaa", commits[0].GetSHA())
		assert.Equal(t, "ccc", commits[2].GetSHA())
	})

	t.Run("404 becomes NotFoundError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		})
		gw, _ := setupTestGateway(t, handler)

		_, err := drainCommits(context.Background(), gw.Commits("octo", "gone"))
		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "octo/gone", notFound.Repo)
	})

	t.Run("server error is surfaced as-is, no retry", func(t *testing.T) {
		var calls int
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message": "boom"}`)
		})
		gw, _ := setupTestGateway(t, handler)

		it := gw.Commits("octo", "widgets")
		assert.False(t, it.Next(context.Background()))
		assert.ErrorContains(t, it.Err(), "failed to list commits for octo/widgets")
		assert.Equal(t, 1, calls)

		// The iterator stays failed; it does not re-fetch.
		assert.False(t, it.Next(context.Background()))
		assert.Equal(t, 1, calls)
	})

	t.Run("early stop does not fetch further pages", func(t *testing.T) {
		var server *httptest.Server
		var pagesServed int
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pagesServed++
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/widgets/commits?page=2>; rel="next"`, server.URL))
			fmt.Fprint(w, `[{"sha": "aaa"}, {"sha": "bbb"}]`)
		})
		gw, srv := setupTestGateway(t, handler)
		server = srv

		it := gw.Commits("octo", "widgets")
		require.True(t, it.Next(context.Background()))
		assert.Equal(t, "aaa", it.Commit().GetSHA())
		// Caller stops here; only the first page was requested.
		assert.Equal(t, 1, pagesServed)
	})
}

func TestGateway_Issues(t *testing.T) {
	t.Run("passes the state filter to the server", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Path, "/repos/octo/widgets/issues")
			assert.Equal(t, "closed", r.URL.Query().Get("state"))
			fmt.Fprint(w, `[{"id": 7, "number": 1, "state": "closed"}]`)
		})
		gw, _ := setupTestGateway(t, handler)

		it := gw.Issues("octo", "widgets", "closed")
		require.True(t, it.Next(context.Background()))
		assert.Equal(t, int64(7), it.Issue().GetID())
		assert.False(t, it.Next(context.Background()))
		require.NoError(t, it.Err())
	})

	t.Run("pull request linkage survives into the raw item", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[{"id": 1, "number": 1, "state": "open", "pull_request": {"url": "https://example.com/pr/1"}}]`)
		})
		gw, _ := setupTestGateway(t, handler)

		it := gw.Issues("octo", "widgets", "all")
		require.True(t, it.Next(context.Background()))
		assert.NotNil(t, it.Issue().PullRequestLinks)
	})

	t.Run("404 becomes NotFoundError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		})
		gw, _ := setupTestGateway(t, handler)

		it := gw.Issues("octo", "gone", "all")
		assert.False(t, it.Next(context.Background()))
		var notFound *NotFoundError
		require.ErrorAs(t, it.Err(), &notFound)
		assert.Equal(t, "octo/gone", notFound.Repo)
	})
}

func TestNewGateway(t *testing.T) {
	logger := log.New(io.Discard, "", 0)

	t.Run("empty token builds an unauthenticated client", func(t *testing.T) {
		source, err := NewGateway("", "", logger)
		require.NoError(t, err)
		assert.NotNil(t, source)
	})

	t.Run("base URL override", func(t *testing.T) {
		source, err := NewGateway("tok", "https://ghe.example.com/api/v3", logger)
		require.NoError(t, err)
		gw, ok := source.(*Gateway)
		require.True(t, ok)
		assert.Equal(t, "https://ghe.example.com/api/v3/", gw.client.BaseURL.String())
	})

	t.Run("invalid base URL is rejected", func(t *testing.T) {
		_, err := NewGateway("tok", "://bad", logger)
		assert.Error(t, err)
	})
}
