package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
)

type (
	Config struct {
		SlackWorkspace string `json:"slack_workspace"`
		SlackChannel   string `json:"slack_channel"`
		DebugChannel   string `json:"debug_channel,omitempty"`
		TriggerWord    string `json:"trigger_word"`
		DefaultOwner   string `json:"default_owner"`
		DefaultRepo    string `json:"default_repo"`
		Language       string `json:"language"`
		IssueLimit     int    `json:"issue_limit"`
		// CacheTTLHours keeps comment threads of unchanged issues for that many hours.
		// Zero disables the cache.
		CacheTTLHours int `json:"cache_ttl_hours,omitempty"`

		SlackBotToken string `json:"slack_bot_token,omitempty"`
		SlackAppToken string `json:"slack_app_token,omitempty"`
		GitHubToken   string `json:"github_token,omitempty"`

		AIConfig AIConfig `json:"ai_config"`

		PathFile string `json:"-"`
	}

	AIConfig struct {
		ActiveAI     AI     `json:"active_ai"`
		OpenAIAPIKey string `json:"openai_api_key,omitempty"`
		GeminiAPIKey string `json:"gemini_api_key,omitempty"`
		Model        Model  `json:"model,omitempty"`
		LargeModel   Model  `json:"large_model,omitempty"`
	}
)

const (
	LangEN = "en"
	LangES = "es"

	DirName  = ".issuedigest"
	FileName = "config.json"

	defaultWorkspace   = "secondstate"
	defaultChannel     = "test-flow"
	defaultTriggerWord = "flows summarize"
	defaultOwner       = "WasmEdge"
	defaultRepo        = "WasmEdge"
	defaultIssueLimit  = 10
)

// Default returns the configuration used when no file and no environment
// variables are present.
func Default() *Config {
	return &Config{
		SlackWorkspace: defaultWorkspace,
		SlackChannel:   defaultChannel,
		TriggerWord:    defaultTriggerWord,
		DefaultOwner:   defaultOwner,
		DefaultRepo:    defaultRepo,
		Language:       LangEN,
		IssueLimit:     defaultIssueLimit,
		AIConfig: AIConfig{
			ActiveAI: AIOpenAI,
		},
	}
}

// ResolvePath returns path itself when it names a .json file, otherwise the
// config file under path/.issuedigest.
func ResolvePath(path string) string {
	if filepath.Ext(path) == ".json" {
		return path
	}
	return filepath.Join(path, DirName, FileName)
}

// LoadDotEnv loads a .env file into the process environment. Variables already
// set win, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads the JSON file at path (see ResolvePath), overlays the
// environment and validates the result. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	configPath := ResolvePath(path)

	config := Default()
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, domainErrors.ErrConfigInvalid.
			WithError(fmt.Errorf("error reading config file: %w", err)).
			WithContext("path", configPath)
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, domainErrors.ErrConfigInvalid.
				WithError(fmt.Errorf("error decoding JSON file: %w", err)).
				WithContext("path", configPath)
		}
	}
	config.PathFile = configPath

	if err := applyEnv(config, lookup); err != nil {
		return nil, err
	}
	fillModels(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// envString looks a setting up under its upper-case and lower-case names, in
// that order.
func envString(lookup func(string) (string, bool), name string) (string, bool) {
	for _, key := range []string{strings.ToUpper(name), strings.ToLower(name)} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func applyEnv(config *Config, lookup func(string) (string, bool)) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"SLACK_WORKSPACE", &config.SlackWorkspace},
		{"SLACK_CHANNEL", &config.SlackChannel},
		{"DEBUG_CHANNEL", &config.DebugChannel},
		{"TRIGGER_WORD", &config.TriggerWord},
		{"DEFAULT_OWNER", &config.DefaultOwner},
		{"DEFAULT_REPO", &config.DefaultRepo},
		{"LANGUAGE", &config.Language},
		{"SLACK_BOT_TOKEN", &config.SlackBotToken},
		{"SLACK_APP_TOKEN", &config.SlackAppToken},
		{"GITHUB_TOKEN", &config.GitHubToken},
		{"OPENAI_API_KEY", &config.AIConfig.OpenAIAPIKey},
		{"GEMINI_API_KEY", &config.AIConfig.GeminiAPIKey},
	}
	for _, s := range strs {
		if v, ok := envString(lookup, s.name); ok {
			*s.dst = v
		}
	}

	if v, ok := envString(lookup, "AI_PROVIDER"); ok {
		config.AIConfig.ActiveAI = AI(strings.ToLower(v))
	}
	if v, ok := envString(lookup, "AI_MODEL"); ok {
		config.AIConfig.Model = Model(v)
	}
	if v, ok := envString(lookup, "AI_LARGE_MODEL"); ok {
		config.AIConfig.LargeModel = Model(v)
	}

	if v, ok := envString(lookup, "ISSUE_LIMIT"); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return domainErrors.ErrConfigInvalid.
				WithError(fmt.Errorf("ISSUE_LIMIT must be an integer: %w", err)).
				WithContext("ISSUE_LIMIT", v)
		}
		config.IssueLimit = limit
	}

	if v, ok := envString(lookup, "CACHE_TTL_HOURS"); ok {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return domainErrors.ErrConfigInvalid.
				WithError(fmt.Errorf("CACHE_TTL_HOURS must be an integer: %w", err)).
				WithContext("CACHE_TTL_HOURS", v)
		}
		config.CacheTTLHours = hours
	}
	return nil
}

func fillModels(config *Config) {
	if config.AIConfig.Model == "" {
		config.AIConfig.Model = DefaultModelForAI(config.AIConfig.ActiveAI)
	}
	if config.AIConfig.LargeModel == "" {
		config.AIConfig.LargeModel = LargeModelForAI(config.AIConfig.ActiveAI)
	}
}

// APIKey returns the key of the active AI provider.
func (c *Config) APIKey() string {
	switch c.AIConfig.ActiveAI {
	case AIOpenAI:
		return c.AIConfig.OpenAIAPIKey
	case AIGemini:
		return c.AIConfig.GeminiAPIKey
	default:
		return ""
	}
}

// CacheDir is where cached comment threads live, next to the config file.
func (c *Config) CacheDir() string {
	return filepath.Join(filepath.Dir(c.PathFile), "cache")
}

// SaveConfig writes config to its PathFile. The file holds tokens, so it is
// only readable by the owner.
func SaveConfig(config *Config) error {
	if err := validateConfig(config); err != nil {
		return err
	}

	if config.PathFile == "" {
		return domainErrors.ErrConfigInvalid.WithError(errors.New("config file path is not set"))
	}

	if err := os.MkdirAll(filepath.Dir(config.PathFile), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.WriteFile(config.PathFile, data, 0o600); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	return nil
}

func validateConfig(config *Config) error {
	invalid := func(field string, err error) error {
		return domainErrors.ErrConfigInvalid.WithError(err).WithContext("field", field)
	}

	if config.Language != LangEN && config.Language != LangES {
		return invalid("language", fmt.Errorf("language '%s' not supported", config.Language))
	}
	if config.IssueLimit <= 0 {
		return invalid("issue_limit", errors.New("issue limit must be greater than 0"))
	}
	if config.CacheTTLHours < 0 {
		return invalid("cache_ttl_hours", errors.New("cache ttl must not be negative"))
	}
	if strings.TrimSpace(config.TriggerWord) == "" {
		return invalid("trigger_word", errors.New("trigger word must not be empty"))
	}
	if strings.TrimSpace(config.SlackWorkspace) == "" || strings.TrimSpace(config.SlackChannel) == "" {
		return invalid("slack_channel", errors.New("slack workspace and channel are required"))
	}
	if !IsSupportedAI(config.AIConfig.ActiveAI) {
		return domainErrors.ErrProviderNotSupported.WithContext("provider", string(config.AIConfig.ActiveAI))
	}
	return nil
}
