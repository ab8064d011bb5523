package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/thomas-vilte/issuedigest/internal/config"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newInitCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: t.GetMessage("cmd.config.init.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("flag.force", 0, nil),
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			return c.initConfig(t, cfg.PathFile, command.Bool("force"))
		},
	}
}

// initConfig writes the default configuration to path. Secrets taken from the
// environment are never written.
func (c *ConfigCommandFactory) initConfig(t *i18n.Translations, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(t.GetMessage("config.exists", 0, map[string]interface{}{"Path": path}))
	}

	defaults := config.Default()
	defaults.PathFile = path
	defaults.AIConfig.Model = config.DefaultModelForAI(defaults.AIConfig.ActiveAI)
	defaults.AIConfig.LargeModel = config.LargeModelForAI(defaults.AIConfig.ActiveAI)

	if err := config.SaveConfig(defaults); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}

	fmt.Fprintln(c.out, t.GetMessage("config.saved", 0, map[string]interface{}{"Path": path}))
	return nil
}
