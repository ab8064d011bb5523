package listen

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/issuedigest/internal/chat"
	"github.com/thomas-vilte/issuedigest/internal/config"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
	"github.com/thomas-vilte/issuedigest/internal/models"
	"github.com/thomas-vilte/issuedigest/internal/services"
)

type fakeClient struct {
	resolveErr error
	incoming   []models.ChatMessage
	sent       []string
}

func (f *fakeClient) Resolve(context.Context) error { return f.resolveErr }

func (f *fakeClient) Send(_ context.Context, _, _, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeClient) Listen(ctx context.Context, handler chat.Handler) error {
	for _, msg := range f.incoming {
		handler(ctx, msg)
	}
	return nil
}

type fakeDigests struct {
	digest *services.DigestService
	err    error
	sender chat.Sender
}

func (f *fakeDigests) GetDigestService(_ context.Context, sender chat.Sender) (*services.DigestService, error) {
	f.sender = sender
	return f.digest, f.err
}

func setup(t *testing.T) (*i18n.Translations, *config.Config) {
	t.Helper()
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)
	return trans, config.Default()
}

func TestListenCommand(t *testing.T) {
	t.Run("should answer trigger messages through the chat client", func(t *testing.T) {
		// Arrange
		trans, cfg := setup(t)
		client := &fakeClient{incoming: []models.ChatMessage{
			{Workspace: "secondstate", Channel: "test-flow", Text: "hello there"},
			{Workspace: "secondstate", Channel: "test-flow", Text: "flows summarize org/repo 2"},
		}}

		tracker := new(services.MockIssueTracker)
		tracker.On("SearchOpenIssues", mock.Anything, "org", "repo", mock.Anything).
			Return(nil, domainErrors.ErrRepositoryNotFound)
		digests := &fakeDigests{digest: services.NewDigestService(
			services.WithIssueSearcher(tracker),
			services.WithSender(client),
			services.WithTranslations(trans),
		)}

		var out bytes.Buffer
		command := NewListenCommand(digests, func(*config.Config) (Client, error) { return client, nil })
		command.out = &out
		cmd := command.CreateCommand(trans, cfg)

		// Act
		err := cmd.Run(context.Background(), []string{"listen"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Listening for \"flows summarize\" in secondstate #test-flow\n", out.String())
		assert.Same(t, client, digests.sender)
		require.Len(t, client.sent, 1)
		assert.Contains(t, client.sent[0], "flows summarize org/repo 2")
		tracker.AssertNumberOfCalls(t, "SearchOpenIssues", 1)
	})

	t.Run("should stop when the client cannot be created", func(t *testing.T) {
		trans, cfg := setup(t)
		command := NewListenCommand(&fakeDigests{}, func(*config.Config) (Client, error) {
			return nil, domainErrors.ErrTokenMissing
		})

		err := command.CreateCommand(trans, cfg).Run(context.Background(), []string{"listen"})

		assert.ErrorIs(t, err, domainErrors.ErrTokenMissing)
	})

	t.Run("should stop when the channel cannot be resolved", func(t *testing.T) {
		trans, cfg := setup(t)
		digests := &fakeDigests{}
		client := &fakeClient{resolveErr: domainErrors.ErrChatConnect}
		command := NewListenCommand(digests, func(*config.Config) (Client, error) { return client, nil })

		err := command.CreateCommand(trans, cfg).Run(context.Background(), []string{"listen"})

		assert.ErrorIs(t, err, domainErrors.ErrChatConnect)
		assert.Nil(t, digests.sender)
	})

	t.Run("should stop when the digest service cannot be built", func(t *testing.T) {
		trans, cfg := setup(t)
		boom := errors.New("no completer")
		command := NewListenCommand(&fakeDigests{err: boom}, func(*config.Config) (Client, error) {
			return &fakeClient{}, nil
		})
		command.out = &bytes.Buffer{}

		err := command.CreateCommand(trans, cfg).Run(context.Background(), []string{"listen"})

		assert.ErrorIs(t, err, boom)
	})
}
