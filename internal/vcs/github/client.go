package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
	"github.com/thomas-vilte/issuedigest/internal/logger"
	"github.com/thomas-vilte/issuedigest/internal/models"
	"github.com/thomas-vilte/issuedigest/internal/vcs"
	"golang.org/x/oauth2"
)

var _ vcs.IssueTracker = (*GitHubClient)(nil)

// PageSize is the number of results requested per call; only one page is read.
const PageSize = 100

type SearchService interface {
	Issues(ctx context.Context, query string, opts *github.SearchOptions) (*github.IssuesSearchResult, *github.Response, error)
}

type IssuesService interface {
	ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error)
}

type GitHubClient struct {
	searchService SearchService
	issuesService IssuesService
}

// NewGitHubClient creates a client authenticated with token. An empty token makes
// anonymous requests, which GitHub rate-limits much harder.
func NewGitHubClient(token string) *GitHubClient {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	return NewGitHubClientWithServices(client.Search, client.Issues)
}

func NewGitHubClientWithServices(searchService SearchService, issuesService IssuesService) *GitHubClient {
	return &GitHubClient{
		searchService: searchService,
		issuesService: issuesService,
	}
}

// SearchQuery builds the search expression for open issues of owner/repo updated
// after since.
func SearchQuery(owner, repo string, since time.Time) string {
	return fmt.Sprintf("repo:%s/%s is:issue state:open updated:>%s",
		owner, repo, since.UTC().Format(vcs.SinceLayout))
}

func (ghc *GitHubClient) SearchOpenIssues(ctx context.Context, owner, repo string, since time.Time) ([]models.Issue, error) {
	log := logger.FromContext(ctx)
	query := SearchQuery(owner, repo, since)

	log.Debug("searching github issues",
		"owner", owner,
		"repo", repo,
		"query", query)

	result, resp, err := ghc.searchService.Issues(ctx, query, &github.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: github.ListOptions{Page: 1, PerPage: PageSize},
	})
	if err != nil {
		log.Error("failed to search github issues",
			"error", err,
			"owner", owner,
			"repo", repo)
		return nil, classifyError(err, resp, domainErrors.ErrIssueQuery).
			WithContext("operation", "search issues").
			WithContext("repo", fmt.Sprintf("%s/%s", owner, repo))
	}

	issues := make([]models.Issue, 0, len(result.Issues))
	for _, issue := range result.Issues {
		if issue == nil || issue.IsPullRequest() {
			continue
		}
		issues = append(issues, toIssue(issue))
	}

	log.Debug("github issues fetched",
		"repo", fmt.Sprintf("%s/%s", owner, repo),
		"count", len(issues),
		"total", result.GetTotal())

	return issues, nil
}

func (ghc *GitHubClient) ListComments(ctx context.Context, owner, repo string, number int) ([]models.Comment, error) {
	log := logger.FromContext(ctx)

	comments, resp, err := ghc.issuesService.ListComments(ctx, owner, repo, number, &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{Page: 1, PerPage: PageSize},
	})
	if err != nil {
		log.Error("failed to fetch github issue comments",
			"error", err,
			"owner", owner,
			"repo", repo,
			"issue_number", number)
		return nil, classifyError(err, resp, domainErrors.ErrCommentFetch).
			WithContext("operation", "list comments").
			WithContext("issue_number", number)
	}

	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		out = append(out, models.Comment{
			Author: c.GetUser().GetLogin(),
			Body:   c.GetBody(),
		})
	}
	return out, nil
}

func toIssue(issue *github.Issue) models.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		if label.Name != nil {
			labels = append(labels, label.GetName())
		}
	}

	return models.Issue{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		Author:    issue.GetUser().GetLogin(),
		Labels:    labels,
		URL:       issue.GetHTMLURL(),
		UpdatedAt: issue.GetUpdatedAt().Time,
	}
}

// classifyError maps a failed GitHub call onto a domain error, falling back to
// fallback when the status gives nothing more specific.
func classifyError(err error, resp *github.Response, fallback *domainErrors.AppError) *domainErrors.AppError {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return domainErrors.ErrGitHubRateLimit.WithError(err)
	}

	if resp != nil && resp.Response != nil {
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return domainErrors.ErrGitHubRateLimit.
				WithContext("retry_after", resp.Header.Get("Retry-After")).
				WithError(err)
		case http.StatusNotFound, http.StatusUnprocessableEntity:
			return domainErrors.ErrRepositoryNotFound.WithError(err)
		}
	}

	return fallback.WithError(err)
}
