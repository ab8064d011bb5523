package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/thomas-vilte/issuedigest/internal/ai/gemini"
	"github.com/thomas-vilte/issuedigest/internal/ai/openai"
	"github.com/thomas-vilte/issuedigest/internal/chat"
	"github.com/thomas-vilte/issuedigest/internal/chat/slack"
	configcmd "github.com/thomas-vilte/issuedigest/internal/commands/config"
	"github.com/thomas-vilte/issuedigest/internal/commands/listen"
	"github.com/thomas-vilte/issuedigest/internal/commands/registry"
	"github.com/thomas-vilte/issuedigest/internal/commands/summarize"
	cfg "github.com/thomas-vilte/issuedigest/internal/config"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
	"github.com/thomas-vilte/issuedigest/internal/infrastructure/di"
	"github.com/thomas-vilte/issuedigest/internal/logger"
	"github.com/thomas-vilte/issuedigest/internal/ui"
	"github.com/thomas-vilte/issuedigest/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	app, translations, err := initializeApp()
	if err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		log.Fatalf("error starting issuedigest: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		os.Exit(1)
	}
}

// configPath returns the config location: ISSUEDIGEST_CONFIG when set, otherwise
// the user's home directory.
func configPath() (string, error) {
	if path := os.Getenv("ISSUEDIGEST_CONFIG"); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get the user home directory: %w", err)
	}
	return homeDir, nil
}

func initializeApp() (*cli.Command, *i18n.Translations, error) {
	if err := cfg.LoadDotEnv(".env"); err != nil {
		return nil, nil, err
	}

	path, err := configPath()
	if err != nil {
		return nil, nil, err
	}

	cfgApp, err := cfg.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}

	translations, err := i18n.NewTranslations(cfgApp.Language, "")
	if err != nil {
		return nil, nil, fmt.Errorf("error loading translations: %w", err)
	}

	container := di.NewContainer(cfgApp, translations)

	if err := container.RegisterAIProvider(openai.ProviderName, openai.NewProviderFactory()); err != nil {
		return nil, translations, err
	}
	if err := container.RegisterAIProvider(gemini.ProviderName, gemini.NewProviderFactory()); err != nil {
		return nil, translations, err
	}

	registerCommand := registry.NewRegistry(cfgApp, translations)

	if err := registerCommand.Register("listen", listen.NewListenCommand(container, newSlackClient)); err != nil {
		return nil, translations, err
	}

	digestProvider := func(ctx context.Context, sender chat.Sender) (summarize.DigestRunner, error) {
		digest, err := container.GetDigestService(ctx, sender)
		if err != nil {
			return nil, err
		}
		return digest, nil
	}
	if err := registerCommand.Register("summarize", summarize.NewSummarizeCommand(digestProvider)); err != nil {
		return nil, translations, err
	}

	if err := registerCommand.Register("config", configcmd.NewConfigCommandFactory()); err != nil {
		return nil, translations, err
	}

	return &cli.Command{
		Name:                  "issuedigest",
		Usage:                 translations.GetMessage("app.usage", 0, nil),
		Version:               version.FullVersion(),
		Commands:              registerCommand.CreateCommands(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: translations.GetMessage("flag.debug", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: translations.GetMessage("flag.verbose", 0, nil),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.Initialize(os.Stderr, logger.Options{
				Debug:   cmd.Bool("debug"),
				Verbose: cmd.Bool("verbose"),
				Pretty:  !color.NoColor,
			})
			logger.FromContext(ctx).Debug("configuration loaded",
				"path", cfgApp.PathFile,
				"provider", string(cfgApp.AIConfig.ActiveAI),
				"language", cfgApp.Language)
			return ctx, nil
		},
	}, translations, nil
}

func newSlackClient(config *cfg.Config) (listen.Client, error) {
	client, err := slack.NewClient(slack.Options{
		BotToken:  config.SlackBotToken,
		AppToken:  config.SlackAppToken,
		Workspace: config.SlackWorkspace,
		Channel:   config.SlackChannel,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
