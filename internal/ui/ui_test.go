package ui

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
)

func noColor(t *testing.T) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })
}

func TestHandleAppError(t *testing.T) {
	t.Run("should print type, cause and suggestion of an AppError", func(t *testing.T) {
		// Arrange
		noColor(t)
		var out bytes.Buffer
		err := fmt.Errorf("listen: %w", domainErrors.ErrTokenMissing.WithError(errors.New("SLACK_APP_TOKEN is empty")))

		// Act
		HandleAppError(&out, err, nil)

		// Assert
		assert.Equal(t,
			"❌ CONFIGURATION: Slack token is missing\n"+
				"   Details: SLACK_APP_TOKEN is empty\n"+
				"💡 Try: Set SLACK_BOT_TOKEN and SLACK_APP_TOKEN\n",
			out.String())
	})

	t.Run("should use translated labels", func(t *testing.T) {
		noColor(t)
		trans, err := i18n.NewTranslations("es", "")
		require.NoError(t, err)
		var out bytes.Buffer

		HandleAppError(&out, domainErrors.ErrChatSend.WithError(errors.New("timeout")), trans)

		assert.Equal(t, "❌ CHAT: failed to send chat message\n   Detalles: timeout\n", out.String())
	})

	t.Run("should print plain errors", func(t *testing.T) {
		noColor(t)
		var out bytes.Buffer

		HandleAppError(&out, errors.New("boom"), nil)

		assert.Equal(t, "❌ boom\n", out.String())
	})

	t.Run("should ignore nil", func(t *testing.T) {
		var out bytes.Buffer

		HandleAppError(&out, nil, nil)

		assert.Empty(t, out.String())
	})
}

func TestWithSpinner(t *testing.T) {
	t.Run("should stay silent on success", func(t *testing.T) {
		noColor(t)
		var out bytes.Buffer

		err := WithSpinner(&out, "connecting", func() error { return nil })

		assert.NoError(t, err)
		assert.Empty(t, out.String())
	})

	t.Run("should print and return the error", func(t *testing.T) {
		noColor(t)
		var out bytes.Buffer
		boom := errors.New("channel not found")

		err := WithSpinner(&out, "connecting", func() error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "❌ channel not found\n", out.String())
	})
}
