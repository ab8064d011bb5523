package slack

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"github.com/thomas-vilte/issuedigest/internal/chat"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
	"github.com/thomas-vilte/issuedigest/internal/logger"
	"github.com/thomas-vilte/issuedigest/internal/models"
)

var (
	_ chat.Sender   = (*Client)(nil)
	_ chat.Listener = (*Client)(nil)
)

// API is the part of the Slack Web API the bot uses.
type API interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type acker interface {
	Ack(req socketmode.Request, payload ...interface{})
}

type Options struct {
	BotToken  string
	AppToken  string
	Workspace string
	Channel   string
}

// Client listens to one channel of one workspace over Socket Mode and posts
// replies through the Web API.
type Client struct {
	api       API
	socket    *socketmode.Client
	workspace string
	channel   string

	mu        sync.Mutex
	teamID    string
	channelID string
}

func NewClient(opts Options) (*Client, error) {
	if opts.BotToken == "" || opts.AppToken == "" {
		return nil, domainErrors.ErrTokenMissing
	}

	api := slack.New(opts.BotToken, slack.OptionAppLevelToken(opts.AppToken))
	c := NewClientWithAPI(api, opts.Workspace, opts.Channel)
	c.socket = socketmode.New(api)
	return c, nil
}

// NewClientWithAPI builds a client that can send but has no Socket Mode
// connection of its own.
func NewClientWithAPI(api API, workspace, channel string) *Client {
	return &Client{
		api:       api,
		workspace: workspace,
		channel:   strings.TrimPrefix(channel, "#"),
	}
}

// Resolve checks that the bot token belongs to the configured workspace and looks
// up the id of the configured channel.
func (c *Client) Resolve(ctx context.Context) error {
	log := logger.FromContext(ctx)

	auth, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return domainErrors.ErrChatConnect.WithError(err)
	}
	if !matchesWorkspace(auth, c.workspace) {
		return domainErrors.ErrChatConnect.
			WithContext("workspace", c.workspace).
			WithContext("team", auth.Team)
	}

	channelID, err := c.findChannel(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.teamID = auth.TeamID
	c.channelID = channelID
	c.mu.Unlock()

	log.Info("slack channel resolved",
		"workspace", c.workspace,
		"channel", c.channel,
		"channel_id", channelID)
	return nil
}

func (c *Client) findChannel(ctx context.Context) (string, error) {
	params := &slack.GetConversationsParameters{
		Types:           []string{"public_channel", "private_channel"},
		ExcludeArchived: true,
		Limit:           200,
	}
	for {
		channels, cursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return "", domainErrors.ErrChatConnect.WithError(err)
		}
		for _, ch := range channels {
			if ch.Name == c.channel || ch.ID == c.channel {
				return ch.ID, nil
			}
		}
		if cursor == "" {
			return "", domainErrors.ErrChatConnect.
				WithContext("channel", c.channel).
				WithSuggestion("Invite the bot to the channel or check SLACK_CHANNEL")
		}
		params.Cursor = cursor
	}
}

// Send posts text to channel. The configured channel is addressed by its resolved
// id; any other channel is passed to Slack as given.
func (c *Client) Send(ctx context.Context, _ string, channel, text string) error {
	target := strings.TrimPrefix(channel, "#")

	c.mu.Lock()
	if target == c.channel && c.channelID != "" {
		target = c.channelID
	}
	c.mu.Unlock()

	if _, _, err := c.api.PostMessageContext(ctx, target, slack.MsgOptionText(text, false)); err != nil {
		return domainErrors.ErrChatSend.WithError(err).WithContext("channel", channel)
	}
	return nil
}

// Listen connects over Socket Mode and hands every new human message of the
// configured channel to handler, one at a time, until ctx is done.
func (c *Client) Listen(ctx context.Context, handler chat.Handler) error {
	if c.socket == nil {
		return domainErrors.ErrChatConnect.WithContext("reason", "socket mode is not configured")
	}
	if err := c.Resolve(ctx); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	runErr := make(chan error, 1)
	go func() {
		runErr <- c.socket.RunContext(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("slack listener stopped")
			return nil
		case err := <-runErr:
			if ctx.Err() != nil {
				return nil
			}
			return domainErrors.ErrChatConnect.WithError(err)
		case evt, ok := <-c.socket.Events:
			if !ok {
				return nil
			}
			c.dispatch(ctx, evt, c.socket, handler)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, evt socketmode.Event, ack acker, handler chat.Handler) {
	log := logger.FromContext(ctx)

	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Debug("connecting to slack socket mode")
	case socketmode.EventTypeConnected:
		log.Info("connected to slack socket mode")
	case socketmode.EventTypeConnectionError:
		log.Warn("slack socket mode connection error")
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		if evt.Request != nil {
			ack.Ack(*evt.Request)
		}
		if msg, ok := c.toMessage(apiEvent); ok {
			handler(ctx, msg)
		}
	}
}

// toMessage keeps plain user messages posted in the configured channel.
func (c *Client) toMessage(apiEvent slackevents.EventsAPIEvent) (models.ChatMessage, bool) {
	if apiEvent.Type != slackevents.CallbackEvent {
		return models.ChatMessage{}, false
	}
	ev, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok || ev.BotID != "" || ev.SubType != "" || strings.TrimSpace(ev.Text) == "" {
		return models.ChatMessage{}, false
	}

	c.mu.Lock()
	teamID, channelID := c.teamID, c.channelID
	c.mu.Unlock()

	if teamID != "" && apiEvent.TeamID != "" && apiEvent.TeamID != teamID {
		return models.ChatMessage{}, false
	}
	if ev.Channel != channelID {
		return models.ChatMessage{}, false
	}

	return models.ChatMessage{
		Workspace: c.workspace,
		Channel:   c.channel,
		User:      ev.User,
		Text:      ev.Text,
	}, true
}

// matchesWorkspace accepts the team id, the team name or the subdomain of the
// workspace URL.
func matchesWorkspace(auth *slack.AuthTestResponse, workspace string) bool {
	if workspace == "" {
		return true
	}
	if strings.EqualFold(workspace, auth.TeamID) || strings.EqualFold(workspace, auth.Team) {
		return true
	}
	u, err := url.Parse(auth.URL)
	if err != nil {
		return false
	}
	domain, _, _ := strings.Cut(u.Hostname(), ".")
	return strings.EqualFold(workspace, domain)
}
