package services

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
	"github.com/thomas-vilte/issuedigest/internal/logger"
	"github.com/thomas-vilte/issuedigest/internal/models"
	"github.com/thomas-vilte/issuedigest/internal/trigger"
)

// DefaultIssueLimit caps how many issues one trigger may summarize.
const DefaultIssueLimit = 10

// issueSearcher defines the issue query DigestService needs from the tracker.
type issueSearcher interface {
	SearchOpenIssues(ctx context.Context, owner, repo string, since time.Time) ([]models.Issue, error)
}

// issueSummarizer produces the summary of one issue.
type issueSummarizer interface {
	Summarize(ctx context.Context, owner, repo string, issue models.Issue) (string, bool)
}

// messageSender posts one message to a channel.
type messageSender interface {
	Send(ctx context.Context, workspace, channel, text string) error
}

// BatchReport describes what one batch did.
type BatchReport struct {
	ID         string
	Found      int
	Summarized int
	Failed     int
	Sent       int
	Truncated  bool
	QueryError error
}

// DigestService answers trigger messages with one summary per recently updated
// issue, in issue order and never more than the configured limit.
type DigestService struct {
	issues     issueSearcher
	summarizer issueSummarizer
	sender     messageSender
	trans      *i18n.Translations
	grammar    trigger.Grammar
	limit      int
	now        func() time.Time
}

type DigestOption func(*DigestService)

func WithIssueSearcher(s issueSearcher) DigestOption {
	return func(d *DigestService) {
		d.issues = s
	}
}

func WithIssueSummarizer(s issueSummarizer) DigestOption {
	return func(d *DigestService) {
		d.summarizer = s
	}
}

func WithSender(s messageSender) DigestOption {
	return func(d *DigestService) {
		d.sender = s
	}
}

func WithTranslations(t *i18n.Translations) DigestOption {
	return func(d *DigestService) {
		d.trans = t
	}
}

func WithGrammar(g trigger.Grammar) DigestOption {
	return func(d *DigestService) {
		d.grammar = g
	}
}

// WithIssueLimit overrides the per-batch cap; non-positive values are ignored.
func WithIssueLimit(limit int) DigestOption {
	return func(d *DigestService) {
		if limit > 0 {
			d.limit = limit
		}
	}
}

func WithClock(now func() time.Time) DigestOption {
	return func(d *DigestService) {
		d.now = now
	}
}

func NewDigestService(opts ...DigestOption) *DigestService {
	d := &DigestService{
		grammar: trigger.NewGrammar("", "", ""),
		limit:   DefaultIssueLimit,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.trans == nil {
		if t, err := i18n.NewTranslations("en", ""); err == nil {
			d.trans = t
		}
	}
	return d
}

// HandleMessage runs a batch when msg is a trigger and does nothing otherwise.
func (d *DigestService) HandleMessage(ctx context.Context, msg models.ChatMessage) {
	req, ok := d.grammar.Parse(msg.Text)
	if !ok {
		return
	}
	d.RunBatch(ctx, msg, req)
}

// RunBatch summarizes the open issues selected by req and posts the results to the
// channel msg came from. Issues are handled strictly one after the other.
func (d *DigestService) RunBatch(ctx context.Context, msg models.ChatMessage, req trigger.Request) BatchReport {
	report := BatchReport{ID: newBatchID(d.now())}
	ctx = logger.With(ctx,
		"batch_id", report.ID,
		"repo", req.Owner+"/"+req.Repo)
	log := logger.FromContext(ctx)

	since := d.now().UTC().AddDate(0, 0, -req.Days)
	log.Info("digest triggered",
		"user", msg.User,
		"days", req.Days,
		"since", since.Format(time.RFC3339))

	issues, err := d.issues.SearchOpenIssues(ctx, req.Owner, req.Repo, since)
	if err != nil {
		log.Error("error getting issues from target", "error", err)
		report.QueryError = err
		d.send(ctx, msg, &report, d.message("digest.query_failed", map[string]interface{}{"Text": msg.Text}))
		return report
	}
	report.Found = len(issues)

	remaining := d.limit
	for i, issue := range issues {
		if remaining <= 0 {
			report.Truncated = true
			log.Warn("issue limit reached",
				"limit", d.limit,
				"skipped", len(issues)-i)
			d.send(ctx, msg, &report, d.message("digest.limit_reached", map[string]interface{}{"Limit": d.limit}))
			break
		}
		remaining--

		text, ok := d.summarizer.Summarize(ctx, req.Owner, req.Repo, issue)
		if ok {
			report.Summarized++
			text = text + "\n" + issue.URL
		} else {
			report.Failed++
			text = d.message("digest.summary_failed", map[string]interface{}{"URL": issue.URL})
		}
		d.send(ctx, msg, &report, text)
	}

	log.Info("digest finished",
		"issues", report.Found,
		"summarized", report.Summarized,
		"failed", report.Failed,
		"sent", report.Sent)

	return report
}

func (d *DigestService) send(ctx context.Context, msg models.ChatMessage, report *BatchReport, text string) {
	if err := d.sender.Send(ctx, msg.Workspace, msg.Channel, text); err != nil {
		logger.Error(ctx, "failed to send message", err, "channel", msg.Channel)
		return
	}
	report.Sent++
}

func (d *DigestService) message(id string, data map[string]interface{}) string {
	if d.trans == nil {
		return id
	}
	return d.trans.GetMessage(id, 0, data)
}

func newBatchID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
