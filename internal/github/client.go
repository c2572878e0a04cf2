// Package github provides the GitHub API client, webhook ingestion, and
// event formatting.
package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API client. All lookups are read-only and fallible;
// callers bound them with a context timeout and treat errors as a missing
// result, never retrying.
type Client struct {
	client *github.Client
}

// NewClient creates a new GitHub API client. If token is empty, an
// unauthenticated client is created (with lower rate limits).
func NewClient(token string) *Client {
	var client *github.Client

	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(context.Background(), ts)
		client = github.NewClient(tc)
	} else {
		client = github.NewClient(nil)
	}

	return &Client{client: client}
}

// GetUser retrieves a user's profile. An empty username resolves to the
// authenticated user.
func (c *Client) GetUser(ctx context.Context, username string) (*github.User, error) {
	user, _, err := c.client.Users.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUserRepositories returns a user's most recently updated repositories.
func (c *Client) ListUserRepositories(ctx context.Context, username string, limit int) ([]*github.Repository, error) {
	opts := &github.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: limit},
	}
	repos, _, err := c.client.Repositories.List(ctx, username, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	return repos, nil
}

// GetRepository retrieves detailed repository information.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	r, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	return r, nil
}

// ListCommits returns a repository's most recent commits.
func (c *Client) ListCommits(ctx context.Context, owner, repo string, limit int) ([]*github.RepositoryCommit, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: limit},
	}
	commits, _, err := c.client.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	return commits, nil
}

// ListOpenIssues returns a repository's open issues, excluding pull requests.
func (c *Client) ListOpenIssues(ctx context.Context, owner, repo string, limit int) ([]*github.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: limit},
	}
	all, _, err := c.client.Issues.ListByRepo(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}

	issues := make([]*github.Issue, 0, len(all))
	for _, issue := range all {
		if !issue.IsPullRequest() {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// SearchRepositories searches repositories, ordered by stars.
func (c *Client) SearchRepositories(ctx context.Context, query string, limit int) ([]*github.Repository, error) {
	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: limit},
	}
	result, _, err := c.client.Search.Repositories(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search repositories: %w", err)
	}
	return result.Repositories, nil
}

// ValidateRepository checks if a repository exists and is accessible.
func (c *Client) ValidateRepository(ctx context.Context, owner, repo string) (bool, error) {
	_, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if _, ok := err.(*github.RateLimitError); ok {
			return false, fmt.Errorf("rate limit exceeded")
		}
		// Repository not found or private.
		return false, nil
	}
	return true, nil
}

// GetRateLimit returns the current API rate limit status.
func (c *Client) GetRateLimit(ctx context.Context) (*github.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, err
	}
	return limits, nil
}
