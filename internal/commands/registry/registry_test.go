package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/issuedigest/internal/config"
	"github.com/thomas-vilte/issuedigest/internal/i18n"
	"github.com/urfave/cli/v3"
)

type mockCommandFactory struct {
	name string
}

func (m *mockCommandFactory) CreateCommand(_ *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name: m.name,
	}
}

func newTestRegistry(t *testing.T) (*Registry, *config.Config, *i18n.Translations) {
	t.Helper()
	cfg := config.Default()
	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)
	return NewRegistry(cfg, translations), cfg, translations
}

func TestNewRegistry(t *testing.T) {
	t.Run("should create new registry with empty factories", func(t *testing.T) {
		// Act
		registry, cfg, translations := newTestRegistry(t)

		// Assert
		assert.NotNil(t, registry)
		assert.Empty(t, registry.factories)
		assert.Equal(t, cfg, registry.config)
		assert.Equal(t, translations, registry.t)
	})
}

func TestRegistry_Register(t *testing.T) {
	t.Run("should register new factory successfully", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)

		// act
		err := registry.Register("listen", &mockCommandFactory{name: "listen"})

		// assert
		assert.NoError(t, err)
		assert.Len(t, registry.factories, 1)
		assert.Contains(t, registry.factories, "listen")
	})

	t.Run("should return error when registering duplicate factory", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)
		factory := &mockCommandFactory{name: "listen"}

		// act
		_ = registry.Register("listen", factory)
		err := registry.Register("listen", factory)

		// assert
		require.Error(t, err)
		assert.Equal(t, "command 'listen' is already registered", err.Error())
		assert.Len(t, registry.factories, 1)
	})
}

func TestRegistry_CreateCommands(t *testing.T) {
	t.Run("should create commands in registration order", func(t *testing.T) {
		// Arrange
		registry, _, _ := newTestRegistry(t)
		for _, name := range []string{"listen", "summarize", "config"} {
			require.NoError(t, registry.Register(name, &mockCommandFactory{name: name}))
		}

		// Act
		commands := registry.CreateCommands()

		// Assert
		require.Len(t, commands, 3)
		assert.Equal(t, "listen", commands[0].Name)
		assert.Equal(t, "summarize", commands[1].Name)
		assert.Equal(t, "config", commands[2].Name)
	})

	t.Run("should return empty slice when no factories registered", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)

		assert.Empty(t, registry.CreateCommands())
	})
}
