package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/thomas-vilte/issuedigest/internal/ai"
	"github.com/thomas-vilte/issuedigest/internal/budget"
	"github.com/thomas-vilte/issuedigest/internal/cache"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
	"github.com/thomas-vilte/issuedigest/internal/logger"
	"github.com/thomas-vilte/issuedigest/internal/models"
	"github.com/thomas-vilte/issuedigest/internal/services/cost"
	"github.com/thomas-vilte/issuedigest/internal/services/routing"
)

// Word budgets applied to each post before it joins the narrative.
const (
	// BodyWordLimit caps the opening post.
	BodyWordLimit = 500
	// CommentWordLimit caps each comment.
	CommentWordLimit = 300
	// WordHeadShare is the part of a word budget kept from the start of a post.
	WordHeadShare = 0.6
)

// Token budget of the whole narrative sent to the model.
const (
	// NarrativeTokenLimit caps the narrative in model tokens.
	NarrativeTokenLimit = 12000
	// TokenHeadShare is the part of NarrativeTokenLimit kept from the start.
	TokenHeadShare = 0.4
)

// Completion settings for one summary.
const (
	// SummaryTemperature is the sampling temperature of a summary request.
	SummaryTemperature = 0.7
	// SummaryMaxTokens caps the model's reply.
	SummaryMaxTokens = 256
)

// commentLister defines the comment query IssueSummarizer needs from the tracker.
type commentLister interface {
	ListComments(ctx context.Context, owner, repo string, number int) ([]models.Comment, error)
}

// tokenBudget trims a narrative to a token budget.
type tokenBudget interface {
	Reduce(text string, maxTokens int, split float64) string
}

// tierSelector picks the model tier from the narrative length.
type tierSelector interface {
	SelectTier(charLen int) ai.Tier
	GetRationale(tier ai.Tier) string
}

// costEstimator prices a completion's token usage in USD.
type costEstimator interface {
	EstimateCost(provider, model string, inputTokens, outputTokens int) float64
}

// commentCache stores fetched comment threads between runs.
type commentCache interface {
	Get(key string, dst any) (bool, error)
	Set(key string, value any) error
}

// IssueSummarizer turns one issue and its comments into a rendered summary.
type IssueSummarizer struct {
	comments  commentLister
	completer ai.Completer
	tokens    tokenBudget
	selector  tierSelector
	mirror    *mirror
	cache     commentCache
	costs     costEstimator
}

// mirror is where raw model replies are copied for inspection.
type mirror struct {
	sender    messageSender
	workspace string
	channel   string
}

type SummarizerOption func(*IssueSummarizer)

func WithCommentLister(c commentLister) SummarizerOption {
	return func(s *IssueSummarizer) {
		s.comments = c
	}
}

func WithCompleter(c ai.Completer) SummarizerOption {
	return func(s *IssueSummarizer) {
		s.completer = c
	}
}

func WithTokenBudget(t tokenBudget) SummarizerOption {
	return func(s *IssueSummarizer) {
		s.tokens = t
	}
}

func WithTierSelector(t tierSelector) SummarizerOption {
	return func(s *IssueSummarizer) {
		s.selector = t
	}
}

// WithReplyMirror posts every raw model reply to channel before it is parsed.
func WithReplyMirror(sender messageSender, workspace, channel string) SummarizerOption {
	return func(s *IssueSummarizer) {
		if sender != nil && channel != "" {
			s.mirror = &mirror{sender: sender, workspace: workspace, channel: channel}
		}
	}
}

// WithCommentCache reuses the comments of an issue that has not been updated since
// they were last fetched.
func WithCommentCache(c commentCache) SummarizerOption {
	return func(s *IssueSummarizer) {
		s.cache = c
	}
}

func NewIssueSummarizer(opts ...SummarizerOption) *IssueSummarizer {
	s := &IssueSummarizer{
		selector: routing.NewModelSelector(),
		costs:    cost.NewCalculator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Narrative builds the text the model is asked to analyze: the opening post
// followed by every comment, each reduced to its word budget.
func Narrative(issue models.Issue, comments []models.Comment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User '%s', opened an issue titled '%s', labeled '%s', with the following post: '%s'.",
		issue.Author,
		issue.Title,
		strings.Join(issue.Labels, ", "),
		budget.ReduceQuoted(issue.Body, BodyWordLimit, WordHeadShare))

	for _, c := range comments {
		fmt.Fprintf(&b, " %s commented: %s", c.Author, budget.ReduceQuoted(c.Body, CommentWordLimit, WordHeadShare))
	}
	return b.String()
}

// Summarize returns the rendered summary of issue, or false when no usable summary
// could be produced. Failures are logged and never returned.
func (s *IssueSummarizer) Summarize(ctx context.Context, owner, repo string, issue models.Issue) (string, bool) {
	log := logger.FromContext(ctx).With("issue", issue.Number)

	if s.completer == nil {
		log.Error("issue summarizer has no completer")
		return "", false
	}

	comments := s.listComments(ctx, owner, repo, issue)

	narrative := Narrative(issue, comments)
	if s.tokens != nil {
		narrative = s.tokens.Reduce(narrative, NarrativeTokenLimit, TokenHeadShare)
	}

	tier := s.selector.SelectTier(len(narrative))
	log.Debug("narrative built",
		"comments", len(comments),
		"length", len(narrative),
		"tier", string(tier),
		"reason", s.selector.GetRationale(tier))

	systemPrompt, err := ai.IssueSystemPrompt(issue.Author, issue.Title)
	if err != nil {
		log.Error("failed to render system prompt", "error", err)
		return "", false
	}
	userPrompt, err := ai.IssueUserPrompt(narrative)
	if err != nil {
		log.Error("failed to render user prompt", "error", err)
		return "", false
	}

	resp, err := s.completer.Complete(ctx, ai.CompletionRequest{
		SessionKey:   fmt.Sprintf("issue_%d", issue.Number),
		Prompt:       userPrompt,
		SystemPrompt: systemPrompt,
		Tier:         tier,
		Temperature:  SummaryTemperature,
		MaxTokens:    SummaryMaxTokens,
		Restart:      true,
	})
	if err != nil {
		log.Error("error generating issue summary", "error", err)
		return "", false
	}

	s.mirrorReply(ctx, resp.Choice)

	record := ai.ParseSummary(resp.Choice)
	if record.IsEmpty() {
		log.Error("error generating issue summary",
			"error", domainErrors.ErrInvalidAIOutput.WithContext("response_length", len(resp.Choice)))
		return "", false
	}

	if resp.Usage != nil {
		log.Info("issue summarized",
			"model", resp.Usage.Model,
			"tokens", resp.Usage.TotalTokens,
			"attempts", resp.Usage.Attempts,
			"cost_usd", s.costs.EstimateCost(s.completer.ProviderName(), resp.Usage.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens))
	}

	return record.Render(), true
}

// listComments fetches the issue's comments, or nil when they are unavailable.
// A cached thread is only reused while the issue's update time is unchanged.
func (s *IssueSummarizer) listComments(ctx context.Context, owner, repo string, issue models.Issue) []models.Comment {
	if s.comments == nil {
		return nil
	}
	log := logger.FromContext(ctx).With("issue", issue.Number)

	key := cache.Key(owner+"/"+repo, strconv.Itoa(issue.Number), issue.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if s.cache != nil {
		var cached []models.Comment
		found, err := s.cache.Get(key, &cached)
		if err != nil {
			log.Warn("comment cache unreadable", "error", err)
		}
		if found {
			log.Debug("comments served from cache", "comments", len(cached))
			return cached
		}
	}

	comments, err := s.comments.ListComments(ctx, owner, repo, issue.Number)
	if err != nil {
		log.Warn("comments unavailable, summarizing the opening post only", "error", err)
		return nil
	}

	if s.cache != nil {
		if err := s.cache.Set(key, comments); err != nil {
			log.Warn("failed to cache comments", "error", err)
		}
	}
	return comments
}

func (s *IssueSummarizer) mirrorReply(ctx context.Context, reply string) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.sender.Send(ctx, s.mirror.workspace, s.mirror.channel, reply); err != nil {
		logger.Warn(ctx, "failed to mirror model reply", "error", err)
	}
}
