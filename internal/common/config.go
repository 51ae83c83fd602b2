package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/custos/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	LLM         LLMConfig       `toml:"llm"`
	Assistant   AssistantConfig `toml:"assistant"`
	Knowledge   KnowledgeConfig `toml:"knowledge"`
	Status      StatusConfig    `toml:"status"`
	Keys        KeysDirConfig   `toml:"keys"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// RetrievalConfig contains configuration for the external search index
type RetrievalConfig struct {
	Enabled       bool    `toml:"enabled"`        // Allow index retrieval when callers request RAG
	Endpoint      string  `toml:"endpoint"`       // Search index base URL
	APIKey        string  `toml:"api_key"`        // Search index API key
	IndexID       string  `toml:"index_id"`       // Configured index identifier
	MinConfidence float64 `toml:"min_confidence"` // Minimum passage confidence in [0,1] (default: 0.3)
	PageSize      int     `toml:"page_size"`      // Candidate passages requested per query (default: 5)
	Timeout       string  `toml:"timeout"`        // Query timeout as duration string (default: "10s")
	RateLimit     int     `toml:"rate_limit"`     // Outbound requests per second (default: 10)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model id (default: "claude-sonnet-4-20250514")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 2000)
	Timeout     string  `toml:"timeout"`     // Completion timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model id (default: "gemini-3-flash-preview")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 2000)
	Timeout     string  `toml:"timeout"`     // Completion timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "claude" or "gemini" (default: "claude")
	AuditEnabled    bool        `toml:"audit_enabled"`    // Record completion calls to the audit log
	AuditQueries    bool        `toml:"audit_queries"`    // Include question text in audit entries
}

// AssistantConfig contains configuration for the answering pipeline
type AssistantConfig struct {
	MaxContextPassages int `toml:"max_context_passages"` // Passages embedded per prompt (default: 3)
}

// KnowledgeConfig contains configuration for the fallback knowledge base
type KnowledgeConfig struct {
	EntriesFile string `toml:"entries_file"` // Optional YAML file merged over the built-in entries
}

// StatusConfig contains configuration for scheduled dependency probes
type StatusConfig struct {
	ProbeSchedule string `toml:"probe_schedule"` // Cron schedule with seconds field (default: "0 */5 * * * *")
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are exposed in custos.toml; technical parameters
// are hardcoded here for production stability.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Retrieval: RetrievalConfig{
			Enabled:       true,
			Endpoint:      "",                // Operator must provide the index endpoint
			IndexID:       "compliance-docs", // Default index identifier
			MinConfidence: 0.3,               // Matches the index's low-confidence floor
			PageSize:      5,
			Timeout:       "10s",
			RateLimit:     10,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   2000,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			MaxTokens:   2000,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
			AuditEnabled:    true,
			AuditQueries:    false, // Question text stays out of the audit log unless opted in
		},
		Assistant: AssistantConfig{
			MaxContextPassages: 3,
		},
		Knowledge: KnowledgeConfig{
			EntriesFile: "",
		},
		Status: StatusConfig{
			ProbeSchedule: "0 */5 * * * *", // Every 5 minutes
		},
		Keys: KeysDirConfig{
			Dir: "./keys",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files. Later files override
// earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment (highest priority: CUSTOS_ENV, fallback: GO_ENV)
	if env := os.Getenv("CUSTOS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("CUSTOS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CUSTOS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("CUSTOS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("CUSTOS_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("CUSTOS_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("CUSTOS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Retrieval configuration
	if endpoint := os.Getenv("CUSTOS_RETRIEVAL_ENDPOINT"); endpoint != "" {
		config.Retrieval.Endpoint = endpoint
	}
	if indexID := os.Getenv("CUSTOS_RETRIEVAL_INDEX_ID"); indexID != "" {
		config.Retrieval.IndexID = indexID
	}
	if minConfidence := os.Getenv("CUSTOS_RETRIEVAL_MIN_CONFIDENCE"); minConfidence != "" {
		if mc, err := strconv.ParseFloat(minConfidence, 64); err == nil {
			config.Retrieval.MinConfidence = mc
		}
	}
	if enabled := os.Getenv("CUSTOS_RETRIEVAL_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Retrieval.Enabled = e
		}
	}

	// Claude configuration
	if model := os.Getenv("CUSTOS_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("CUSTOS_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if temperature := os.Getenv("CUSTOS_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}

	// Gemini configuration
	if model := os.Getenv("CUSTOS_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}

	// LLM provider selection
	if provider := os.Getenv("CUSTOS_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Retrieval.MinConfidence < 0 || c.Retrieval.MinConfidence > 1 {
		return fmt.Errorf("retrieval.min_confidence must be in [0,1], got %v", c.Retrieval.MinConfidence)
	}
	if c.Claude.Temperature < 0 || c.Claude.Temperature > 1 {
		return fmt.Errorf("claude.temperature must be in [0,1], got %v", c.Claude.Temperature)
	}
	if c.Claude.MaxTokens <= 0 {
		return fmt.Errorf("claude.max_tokens must be positive, got %d", c.Claude.MaxTokens)
	}
	switch c.LLM.DefaultProvider {
	case LLMProviderClaude, LLMProviderGemini:
	default:
		return fmt.Errorf("unknown llm.default_provider: %q", c.LLM.DefaultProvider)
	}
	return nil
}

// ResolveAPIKey resolves an API key with priority: environment variable ->
// KV store -> config fallback. kvStorage may be nil (resolution skips it).
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"anthropic_api_key": {"ANTHROPIC_API_KEY", "CUSTOS_CLAUDE_API_KEY"},
		"gemini_api_key":    {"GEMINI_API_KEY", "CUSTOS_GEMINI_API_KEY"},
		"retrieval_api_key": {"CUSTOS_RETRIEVAL_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}
