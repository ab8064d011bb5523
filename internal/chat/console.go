package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
)

// ConsoleSender prints messages to a writer instead of a chat workspace. The
// summarize command uses it to run a digest from the terminal.
type ConsoleSender struct {
	mu sync.Mutex
	w  io.Writer
}

var _ Sender = (*ConsoleSender)(nil)

func NewConsoleSender(w io.Writer) *ConsoleSender {
	return &ConsoleSender{w: w}
}

func (s *ConsoleSender) Send(_ context.Context, workspace, channel, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header := color.New(color.FgCyan, color.Bold).Sprintf("── %s #%s", workspace, channel)
	body := strings.TrimRight(text, "\n")

	if _, err := fmt.Fprintf(s.w, "%s\n%s\n\n", header, body); err != nil {
		return domainErrors.ErrChatSend.WithError(err).WithContext("channel", channel)
	}
	return nil
}
