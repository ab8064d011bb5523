package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/thomas-vilte/issuedigest/internal/ai"
	"github.com/thomas-vilte/issuedigest/internal/config"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
)

// ProviderFactory builds the completer of one AI provider.
type ProviderFactory interface {
	// CreateCompleter creates a completer from the provider's settings in cfg.
	CreateCompleter(ctx context.Context, cfg *config.Config) (ai.Completer, error)

	// ValidateConfig checks that cfg carries what the provider needs.
	ValidateConfig(cfg *config.Config) error

	Name() string
}

// ProviderRegistry maps provider names to their factories.
type ProviderRegistry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		factories: make(map[string]ProviderFactory),
	}
}

func (r *ProviderRegistry) Register(name string, factory ProviderFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("AI provider '%s' is already registered", name)
	}

	r.factories[name] = factory
	return nil
}

func (r *ProviderRegistry) Get(name string) (ProviderFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, domainErrors.ErrProviderNotSupported.WithContext("provider", name)
	}

	return factory, nil
}

// List returns the registered provider names, sorted.
func (r *ProviderRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]string, 0, len(r.factories))
	for name := range r.factories {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}

func (r *ProviderRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// CreateFromConfig validates and builds the completer of the active provider.
func (r *ProviderRegistry) CreateFromConfig(ctx context.Context, cfg *config.Config) (ai.Completer, error) {
	factory, err := r.Get(string(cfg.AIConfig.ActiveAI))
	if err != nil {
		return nil, err
	}
	if err := factory.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return factory.CreateCompleter(ctx, cfg)
}
