package chat

import (
	"context"

	"github.com/thomas-vilte/issuedigest/internal/models"
)

// Sender posts a message to a channel of a workspace.
type Sender interface {
	Send(ctx context.Context, workspace, channel, text string) error
}

// Handler receives every message seen in the watched channel.
type Handler func(ctx context.Context, msg models.ChatMessage)

// Listener delivers channel messages to a handler until ctx is done.
type Listener interface {
	Listen(ctx context.Context, handler Handler) error
}
