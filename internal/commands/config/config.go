package config

import (
	"io"
	"os"

	"github.com/thomas-vilte/issuedigest/internal/commands/completion_helper"
	"github.com/thomas-vilte/issuedigest/internal/config"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
	"github.com/urfave/cli/v3"
)

type ConfigCommandFactory struct {
	out io.Writer
}

func NewConfigCommandFactory() *ConfigCommandFactory {
	return &ConfigCommandFactory{out: os.Stdout}
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "config",
		Aliases:       []string{"c"},
		Usage:         t.GetMessage("cmd.config.usage", 0, nil),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Commands: []*cli.Command{
			c.newShowCommand(t, cfg),
			c.newInitCommand(t, cfg),
		},
	}
}
