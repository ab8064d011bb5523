package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/issuedigest/internal/ai"
	"github.com/thomas-vilte/issuedigest/internal/models"
)

type (
	MockIssueTracker struct {
		mock.Mock
	}

	MockCompleter struct {
		mock.Mock
	}

	MockIssueSummarizer struct {
		mock.Mock
	}

	MockSender struct {
		mock.Mock
	}

	MockTokenBudget struct {
		mock.Mock
	}
)

func (m *MockIssueTracker) SearchOpenIssues(ctx context.Context, owner, repo string, since time.Time) ([]models.Issue, error) {
	args := m.Called(ctx, owner, repo, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Issue), args.Error(1)
}

func (m *MockIssueTracker) ListComments(ctx context.Context, owner, repo string, number int) ([]models.Comment, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ai.CompletionResponse), args.Error(1)
}

func (m *MockCompleter) ProviderName() string {
	return m.Called().String(0)
}

func (m *MockCompleter) ModelFor(tier ai.Tier) string {
	return m.Called(tier).String(0)
}

func (m *MockIssueSummarizer) Summarize(ctx context.Context, owner, repo string, issue models.Issue) (string, bool) {
	args := m.Called(ctx, owner, repo, issue)
	return args.String(0), args.Bool(1)
}

func (m *MockSender) Send(ctx context.Context, workspace, channel, text string) error {
	args := m.Called(ctx, workspace, channel, text)
	return args.Error(0)
}

func (m *MockTokenBudget) Reduce(text string, maxTokens int, split float64) string {
	args := m.Called(text, maxTokens, split)
	return args.String(0)
}
