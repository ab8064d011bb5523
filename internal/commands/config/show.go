package config

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/thomas-vilte/issuedigest/internal/config"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("cmd.config.show.usage", 0, nil),
		Action: func(_ context.Context, _ *cli.Command) error {
			c.printConfig(t, cfg)
			return nil
		},
	}
}

func (c *ConfigCommandFactory) printConfig(t *i18n.Translations, cfg *config.Config) {
	bold := color.New(color.Bold)
	line := func(id string, data map[string]interface{}) {
		fmt.Fprintln(c.out, t.GetMessage(id, 0, data))
	}

	_, _ = bold.Fprintln(c.out, t.GetMessage("config.show.header", 0, nil))
	fmt.Fprintln(c.out, "━━━━━━━━━━━━━━━━━━━━━━━")

	line("config.show.path", map[string]interface{}{"Path": cfg.PathFile})
	line("config.show.channel", map[string]interface{}{
		"Workspace": cfg.SlackWorkspace,
		"Channel":   cfg.SlackChannel,
	})
	if cfg.DebugChannel != "" {
		line("config.show.debug_channel", map[string]interface{}{"Channel": cfg.DebugChannel})
	}
	line("config.show.trigger", map[string]interface{}{
		"Phrase": cfg.TriggerWord,
		"Owner":  cfg.DefaultOwner,
		"Repo":   cfg.DefaultRepo,
	})
	line("config.show.provider", map[string]interface{}{
		"Provider":   cfg.AIConfig.ActiveAI,
		"Model":      cfg.AIConfig.Model,
		"LargeModel": cfg.AIConfig.LargeModel,
	})
	line("config.show.limit", map[string]interface{}{"Limit": cfg.IssueLimit})
	if cfg.CacheTTLHours > 0 {
		line("config.show.cache", map[string]interface{}{"Hours": cfg.CacheTTLHours})
	}
	line("config.show.language", map[string]interface{}{"Lang": cfg.Language})

	secrets := []struct {
		name  string
		value string
	}{
		{"SLACK_BOT_TOKEN", cfg.SlackBotToken},
		{"SLACK_APP_TOKEN", cfg.SlackAppToken},
		{"GITHUB_TOKEN", cfg.GitHubToken},
		{apiKeyName(cfg.AIConfig.ActiveAI), cfg.APIKey()},
	}
	for _, s := range secrets {
		if s.value == "" {
			color.New(color.FgYellow).Fprintln(c.out, t.GetMessage("config.secret_missing", 0, map[string]interface{}{"Name": s.name}))
		} else {
			color.New(color.FgGreen).Fprintln(c.out, t.GetMessage("config.secret_set", 0, map[string]interface{}{"Name": s.name}))
		}
	}
}

func apiKeyName(ai config.AI) string {
	if ai == config.AIGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}
