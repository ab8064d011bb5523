package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/thomas-vilte/issuedigest/internal/chat"
	"github.com/thomas-vilte/issuedigest/internal/commands/completion_helper"
	cfg "github.com/thomas-vilte/issuedigest/internal/config"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
	"github.com/thomas-vilte/issuedigest/internal/logger"
	"github.com/thomas-vilte/issuedigest/internal/models"
	"github.com/thomas-vilte/issuedigest/internal/services"
	"github.com/thomas-vilte/issuedigest/internal/trigger"
	"github.com/urfave/cli/v3"
)

// DigestRunner runs one batch and reports what it did.
type DigestRunner interface {
	RunBatch(ctx context.Context, msg models.ChatMessage, req trigger.Request) services.BatchReport
}

// DigestProvider builds a DigestRunner that posts through sender.
type DigestProvider func(ctx context.Context, sender chat.Sender) (DigestRunner, error)

type SummarizeCommand struct {
	provider DigestProvider
	out      io.Writer
}

func NewSummarizeCommand(provider DigestProvider) *SummarizeCommand {
	return &SummarizeCommand{
		provider: provider,
		out:      os.Stdout,
	}
}

func (c *SummarizeCommand) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "summarize",
		Aliases:   []string{"s"},
		Usage:     t.GetMessage("cmd.summarize.usage", 0, nil),
		ArgsUsage: "[owner/repo]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "days",
				Aliases: []string{"d"},
				Usage:   t.GetMessage("flag.days", 0, nil),
				Value:   trigger.DefaultDays,
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   t.GetMessage("flag.limit", 0, nil),
				Value:   config.IssueLimit,
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()

			req, err := parseTarget(cmd.Args().First(), config)
			if err != nil {
				return errors.New(t.GetMessage("cli.repo_required", 0, nil))
			}
			req.Days = cmd.Int("days")
			if req.Days <= 0 {
				return errors.New(t.GetMessage("cli.days_invalid", 0, nil))
			}
			if limit := cmd.Int("limit"); limit > 0 {
				config.IssueLimit = limit
			}

			log.Info("executing summarize command",
				"repo", req.Owner+"/"+req.Repo,
				"days", req.Days,
				"limit", config.IssueLimit)

			digest, err := c.provider(ctx, chat.NewConsoleSender(c.out))
			if err != nil {
				log.Error("failed to create digest service",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds())
				return err
			}

			msg := models.ChatMessage{
				Workspace: config.SlackWorkspace,
				Channel:   config.SlackChannel,
				User:      "cli",
				Text:      fmt.Sprintf("%s %s/%s %d", config.TriggerWord, req.Owner, req.Repo, req.Days),
			}

			report := digest.RunBatch(ctx, msg, req)
			if report.QueryError != nil {
				return report.QueryError
			}

			if report.Found == 0 {
				fmt.Fprintln(c.out, t.GetMessage("cli.no_issues", 0, map[string]interface{}{
					"Owner": req.Owner,
					"Repo":  req.Repo,
					"Days":  req.Days,
				}))
				return nil
			}

			fmt.Fprintln(c.out, t.GetMessage("cli.summarized", report.Sent, map[string]interface{}{
				"Count": report.Sent,
			}))

			log.Info("summarize command finished",
				"batch_id", report.ID,
				"sent", report.Sent,
				"duration_ms", time.Since(start).Milliseconds())
			return nil
		},
	}
}

// parseTarget reads an optional owner/repo argument. Without one the configured
// default repository is used.
func parseTarget(arg string, config *cfg.Config) (trigger.Request, error) {
	req := trigger.Request{Owner: config.DefaultOwner, Repo: config.DefaultRepo}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return req, nil
	}

	owner, repo, found := strings.Cut(arg, "/")
	owner, repo = strings.TrimSpace(owner), strings.TrimSpace(repo)
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return trigger.Request{}, fmt.Errorf("invalid repository %q", arg)
	}

	req.Owner, req.Repo, req.RepoGiven = owner, repo, true
	return req, nil
}
