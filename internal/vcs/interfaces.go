package vcs

import (
	"context"
	"time"

	"github.com/thomas-vilte/issuedigest/internal/models"
)

// SinceLayout is the timestamp format used for the "updated since" cutoff.
const SinceLayout = "2006-01-02T15:04:05Z"

// IssueTracker defines the issue queries the digest needs from a hosting provider.
type IssueTracker interface {
	// SearchOpenIssues returns the open issues of owner/repo updated after since,
	// most recently updated first. Only the first page of results is returned.
	SearchOpenIssues(ctx context.Context, owner, repo string, since time.Time) ([]models.Issue, error)
	// ListComments returns the first page of comments posted on an issue.
	ListComments(ctx context.Context, owner, repo string, number int) ([]models.Comment, error)
}
