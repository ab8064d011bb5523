package summarize

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/issuedigest/internal/chat"
	"github.com/thomas-vilte/issuedigest/internal/config"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
	"github.com/thomas-vilte/issuedigest/internal/models"
	"github.com/thomas-vilte/issuedigest/internal/services"
	"github.com/thomas-vilte/issuedigest/internal/trigger"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) RunBatch(ctx context.Context, msg models.ChatMessage, req trigger.Request) services.BatchReport {
	return m.Called(ctx, msg, req).Get(0).(services.BatchReport)
}

func setup(t *testing.T, runner DigestRunner) (*SummarizeCommand, *bytes.Buffer, *config.Config, *i18n.Translations) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	var out bytes.Buffer
	command := NewSummarizeCommand(func(context.Context, chat.Sender) (DigestRunner, error) {
		return runner, nil
	})
	command.out = &out
	return command, &out, config.Default(), trans
}

func TestSummarizeCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("should run one batch for the given repository", func(t *testing.T) {
		// Arrange
		runner := new(mockRunner)
		command, out, cfg, trans := setup(t, runner)
		runner.On("RunBatch", mock.Anything,
			mock.MatchedBy(func(msg models.ChatMessage) bool {
				return msg.Text == "flows summarize second-state/flows 14" && msg.Channel == "test-flow"
			}),
			trigger.Request{Owner: "second-state", Repo: "flows", Days: 14, RepoGiven: true},
		).Return(services.BatchReport{Found: 2, Sent: 2})

		// Act
		err := command.CreateCommand(trans, cfg).Run(ctx, []string{"summarize", "--days", "14", "second-state/flows"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "2 messages sent\n", out.String())
		runner.AssertExpectations(t)
	})

	t.Run("should fall back to the default repository and window", func(t *testing.T) {
		runner := new(mockRunner)
		command, out, cfg, trans := setup(t, runner)
		runner.On("RunBatch", mock.Anything, mock.Anything,
			trigger.Request{Owner: "WasmEdge", Repo: "WasmEdge", Days: 7},
		).Return(services.BatchReport{Found: 1, Sent: 1})

		err := command.CreateCommand(trans, cfg).Run(ctx, []string{"summarize"})

		require.NoError(t, err)
		assert.Equal(t, "1 message sent\n", out.String())
	})

	t.Run("should report an empty window", func(t *testing.T) {
		runner := new(mockRunner)
		command, out, cfg, trans := setup(t, runner)
		runner.On("RunBatch", mock.Anything, mock.Anything, mock.Anything).Return(services.BatchReport{})

		err := command.CreateCommand(trans, cfg).Run(ctx, []string{"summarize", "-d", "3", "org/repo"})

		require.NoError(t, err)
		assert.Equal(t, "No open issues of org/repo were updated in the last 3 days\n", out.String())
	})

	t.Run("should apply the limit flag", func(t *testing.T) {
		runner := new(mockRunner)
		command, _, cfg, trans := setup(t, runner)
		runner.On("RunBatch", mock.Anything, mock.Anything, mock.Anything).Return(services.BatchReport{Found: 1, Sent: 1})

		err := command.CreateCommand(trans, cfg).Run(ctx, []string{"summarize", "--limit", "3"})

		require.NoError(t, err)
		assert.Equal(t, 3, cfg.IssueLimit)
	})

	t.Run("should return the query error", func(t *testing.T) {
		runner := new(mockRunner)
		command, _, cfg, trans := setup(t, runner)
		runner.On("RunBatch", mock.Anything, mock.Anything, mock.Anything).
			Return(services.BatchReport{QueryError: domainErrors.ErrRepositoryNotFound})

		err := command.CreateCommand(trans, cfg).Run(ctx, []string{"summarize", "org/missing"})

		assert.ErrorIs(t, err, domainErrors.ErrRepositoryNotFound)
	})

	t.Run("should reject malformed repositories", func(t *testing.T) {
		for _, arg := range []string{"justowner", "/repo", "owner/", "a/b/c"} {
			t.Run(arg, func(t *testing.T) {
				runner := new(mockRunner)
				command, _, cfg, trans := setup(t, runner)

				err := command.CreateCommand(trans, cfg).Run(ctx, []string{"summarize", arg})

				require.Error(t, err)
				assert.Equal(t, "Pass the repository as owner/repo", err.Error())
				runner.AssertNotCalled(t, "RunBatch", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("should reject a non positive window", func(t *testing.T) {
		runner := new(mockRunner)
		command, _, cfg, trans := setup(t, runner)

		err := command.CreateCommand(trans, cfg).Run(ctx, []string{"summarize", "--days", "0"})

		require.Error(t, err)
		assert.Equal(t, "--days must be greater than 0", err.Error())
	})

	t.Run("should stop when the digest service cannot be built", func(t *testing.T) {
		trans, err := i18n.NewTranslations("en", "")
		require.NoError(t, err)
		boom := errors.New("no api key")
		command := NewSummarizeCommand(func(context.Context, chat.Sender) (DigestRunner, error) {
			return nil, boom
		})

		err = command.CreateCommand(trans, config.Default()).Run(ctx, []string{"summarize"})

		assert.ErrorIs(t, err, boom)
	})
}

func TestSummarizeCommand_PrintsThroughConsole(t *testing.T) {
	// Arrange
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	tracker := new(services.MockIssueTracker)
	tracker.On("SearchOpenIssues", mock.Anything, "org", "repo", mock.Anything).
		Return([]models.Issue{{Number: 1, URL: "https://github.com/org/repo/issues/1"}}, nil)
	summarizer := new(services.MockIssueSummarizer)
	summarizer.On("Summarize", mock.Anything, "org", "repo", mock.Anything).Return("Summary: fixed in main", true)

	var out bytes.Buffer
	command := NewSummarizeCommand(func(_ context.Context, sender chat.Sender) (DigestRunner, error) {
		return services.NewDigestService(
			services.WithIssueSearcher(tracker),
			services.WithIssueSummarizer(summarizer),
			services.WithSender(sender),
			services.WithTranslations(trans),
		), nil
	})
	command.out = &out

	// Act
	err = command.CreateCommand(trans, config.Default()).Run(context.Background(), []string{"summarize", "org/repo"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t,
		"── secondstate #test-flow\nSummary: fixed in main\nhttps://github.com/org/repo/issues/1\n\n1 message sent\n",
		out.String())
}
