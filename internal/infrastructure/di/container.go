package di

import (
	"context"
	"fmt"
	"time"

	"github.com/thomas-vilte/issuedigest/internal/ai"
	"github.com/thomas-vilte/issuedigest/internal/ai/registry"
	"github.com/thomas-vilte/issuedigest/internal/budget"
	"github.com/thomas-vilte/issuedigest/internal/cache"
	"github.com/thomas-vilte/issuedigest/internal/chat"
	"github.com/thomas-vilte/issuedigest/internal/config"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
	"github.com/thomas-vilte/issuedigest/internal/services"
	"github.com/thomas-vilte/issuedigest/internal/trigger"
	"github.com/thomas-vilte/issuedigest/internal/vcs"
	"github.com/thomas-vilte/issuedigest/internal/vcs/github"
)

// Container holds the application's dependencies and builds them on first use.
type Container struct {
	config       *config.Config
	translations *i18n.Translations

	aiRegistry *registry.ProviderRegistry
	retry      ai.RetryConfig

	// lazily initialized
	completer ai.Completer
	tracker   vcs.IssueTracker
	tokens    *budget.TokenReducer
	comments  *cache.Cache
}

func NewContainer(cfg *config.Config, trans *i18n.Translations) *Container {
	return &Container{
		config:       cfg,
		translations: trans,
		aiRegistry:   registry.NewProviderRegistry(),
		retry:        ai.DefaultRetryConfig(),
	}
}

func (c *Container) RegisterAIProvider(name string, factory registry.ProviderFactory) error {
	return c.aiRegistry.Register(name, factory)
}

func (c *Container) GetAIRegistry() *registry.ProviderRegistry {
	return c.aiRegistry
}

// SetRetryConfig replaces the retry policy wrapped around the completer.
func (c *Container) SetRetryConfig(cfg ai.RetryConfig) {
	c.retry = cfg
}

func (c *Container) SetIssueTracker(tracker vcs.IssueTracker) {
	c.tracker = tracker
}

// GetIssueTracker returns the GitHub client, authenticated when a token is set.
func (c *Container) GetIssueTracker() vcs.IssueTracker {
	if c.tracker == nil {
		c.tracker = github.NewGitHubClient(c.config.GitHubToken)
	}
	return c.tracker
}

// GetCompleter returns the active provider's completer wrapped in the retry
// policy.
func (c *Container) GetCompleter(ctx context.Context) (ai.Completer, error) {
	if c.completer != nil {
		return c.completer, nil
	}

	completer, err := c.aiRegistry.CreateFromConfig(ctx, c.config)
	if err != nil {
		return nil, err
	}

	c.completer = ai.NewRetryingCompleter(completer, c.retry)
	return c.completer, nil
}

func (c *Container) getTokenReducer() (*budget.TokenReducer, error) {
	if c.tokens != nil {
		return c.tokens, nil
	}
	enc, err := budget.NewEncoder()
	if err != nil {
		return nil, fmt.Errorf("error creating token encoder: %w", err)
	}
	c.tokens = budget.NewTokenReducer(enc)
	return c.tokens, nil
}

// GetIssueSummarizer builds the per-issue summarizer. Raw model replies are
// mirrored through sender when a debug channel is configured.
func (c *Container) GetIssueSummarizer(ctx context.Context, sender chat.Sender) (*services.IssueSummarizer, error) {
	completer, err := c.GetCompleter(ctx)
	if err != nil {
		return nil, err
	}

	tokens, err := c.getTokenReducer()
	if err != nil {
		return nil, err
	}

	opts := []services.SummarizerOption{
		services.WithCommentLister(c.GetIssueTracker()),
		services.WithCompleter(completer),
		services.WithTokenBudget(tokens),
		services.WithReplyMirror(sender, c.config.SlackWorkspace, c.config.DebugChannel),
	}

	comments, err := c.getCommentCache()
	if err != nil {
		return nil, err
	}
	if comments != nil {
		opts = append(opts, services.WithCommentCache(comments))
	}

	return services.NewIssueSummarizer(opts...), nil
}

// getCommentCache returns nil when caching is disabled.
func (c *Container) getCommentCache() (*cache.Cache, error) {
	if c.comments != nil || c.config.CacheTTLHours <= 0 {
		return c.comments, nil
	}
	comments, err := cache.NewCache(c.config.CacheDir(), time.Duration(c.config.CacheTTLHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("error creating comment cache: %w", err)
	}
	c.comments = comments
	return c.comments, nil
}

// GetDigestService builds a digest service that posts through sender.
func (c *Container) GetDigestService(ctx context.Context, sender chat.Sender) (*services.DigestService, error) {
	summarizer, err := c.GetIssueSummarizer(ctx, sender)
	if err != nil {
		return nil, err
	}

	return services.NewDigestService(
		services.WithIssueSearcher(c.GetIssueTracker()),
		services.WithIssueSummarizer(summarizer),
		services.WithSender(sender),
		services.WithTranslations(c.translations),
		services.WithGrammar(c.Grammar()),
		services.WithIssueLimit(c.config.IssueLimit),
	), nil
}

// Grammar returns the trigger grammar for the configured phrase and default
// repository.
func (c *Container) Grammar() trigger.Grammar {
	return trigger.NewGrammar(c.config.TriggerWord, c.config.DefaultOwner, c.config.DefaultRepo)
}

func (c *Container) GetConfig() *config.Config {
	return c.config
}

func (c *Container) GetTranslations() *i18n.Translations {
	return c.translations
}
