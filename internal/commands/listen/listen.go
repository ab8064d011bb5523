package listen

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/thomas-vilte/issuedigest/internal/chat"
	"github.com/thomas-vilte/issuedigest/internal/commands/completion_helper"
	cfg "github.com/thomas-vilte/issuedigest/internal/config"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
	"github.com/thomas-vilte/issuedigest/internal/logger"
	"github.com/thomas-vilte/issuedigest/internal/services"
	"github.com/thomas-vilte/issuedigest/internal/ui"
	"github.com/urfave/cli/v3"
)

// Client is the chat connection the bot listens on and answers through.
type Client interface {
	chat.Sender
	chat.Listener
	Resolve(ctx context.Context) error
}

// ClientFactory opens the chat client described by the configuration.
type ClientFactory func(cfg *cfg.Config) (Client, error)

type digestProvider interface {
	GetDigestService(ctx context.Context, sender chat.Sender) (*services.DigestService, error)
}

type ListenCommand struct {
	digests   digestProvider
	newClient ClientFactory
	out       io.Writer
}

func NewListenCommand(digests digestProvider, newClient ClientFactory) *ListenCommand {
	return &ListenCommand{
		digests:   digests,
		newClient: newClient,
		out:       os.Stdout,
	}
}

func (c *ListenCommand) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "listen",
		Aliases:       []string{"l"},
		Usage:         t.GetMessage("cmd.listen.usage", 0, nil),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, _ *cli.Command) error {
			return c.run(ctx, t, config)
		},
	}
}

func (c *ListenCommand) run(ctx context.Context, t *i18n.Translations, config *cfg.Config) error {
	ctx = logger.With(ctx,
		"slack.workspace", config.SlackWorkspace,
		"slack.channel", config.SlackChannel)
	log := logger.FromContext(ctx)
	start := time.Now()

	log.Info("executing listen command",
		"trigger", config.TriggerWord,
		"default_repo", config.DefaultOwner+"/"+config.DefaultRepo)

	client, err := c.newClient(config)
	if err != nil {
		log.Error("failed to create chat client",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return err
	}
	connecting := t.GetMessage("cli.connecting", 0, map[string]interface{}{
		"Workspace": config.SlackWorkspace,
		"Channel":   config.SlackChannel,
	})
	if err := ui.WithSpinner(c.out, connecting, func() error { return client.Resolve(ctx) }); err != nil {
		log.Error("failed to resolve chat channel",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return err
	}

	digest, err := c.digests.GetDigestService(ctx, client)
	if err != nil {
		log.Error("failed to create digest service",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return err
	}

	fmt.Fprintln(c.out, t.GetMessage("cli.listening", 0, map[string]interface{}{
		"Phrase":    config.TriggerWord,
		"Workspace": config.SlackWorkspace,
		"Channel":   config.SlackChannel,
	}))

	return client.Listen(ctx, digest.HandleMessage)
}
