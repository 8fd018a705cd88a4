package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/study-helper/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Binary identifies which entry point is loading the configuration. Each
// binary has its own set of required variables.
type Binary string

const (
	BinaryExtractor Binary = "content-extractor"
	BinaryGenerator Binary = "study-generator"
	BinaryChat      Binary = "chat-response"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// Overall deadline of one invocation
	CommandTimeout time.Duration `env:"COMMAND_TIMEOUT" envDefault:"5m"`

	Database DatabaseConfig `envPrefix:"DB_"`

	// External model endpoints
	ChatLLM    ChatLLMConfig    `envPrefix:"CHAT_LLM_"`
	QuizLLM    ChatLLMConfig    `envPrefix:"QUIZ_LLM_"`
	SummaryLLM SummaryLLMConfig `envPrefix:"SUMMARY_LLM_"`

	Content    ContentConfig    `envPrefix:"CONTENT_"`
	Chat       ChatConfig       `envPrefix:"CHAT_"`
	Generation GenerationConfig `envPrefix:"GENERATION_"`

	ExportDir string `env:"EXPORT_DIR" envDefault:"exports"`
	// Optional UTF-8 TTF font for PDF exports
	ExportFontPath string `env:"EXPORT_FONT_PATH"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type DatabaseConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"postgres"`
	URL             string        `env:"URL"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"study_helper.db"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"false"`
	MaxConns        int           `env:"MAX_CONNS" envDefault:"4"`
	MinConns        int           `env:"MIN_CONNS" envDefault:"0"`
	MaxConnLifetime time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"30m"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// Configured reports whether any store connection parameters were supplied.
func (c DatabaseConfig) Configured() bool {
	if c.Driver == DriverSQLite {
		return c.SQLitePath != ""
	}
	return c.URL != ""
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"30s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// ChatLLMConfig configures an OpenAI-compatible chat completion endpoint.
type ChatLLMConfig struct {
	HTTPClientConfig
	CompletionsEndpoint string               `env:"COMPLETIONS_ENDPOINT" envDefault:"/chat/completions"`
	Model               string               `env:"MODEL"`
	MaxTokens           int                  `env:"MAX_TOKENS"`
	Temperature         float64              `env:"TEMPERATURE"`
	TopP                float64              `env:"TOP_P"`
	MaxPromptTokens     int                  `env:"MAX_PROMPT_TOKENS" envDefault:"0"`
	Retry               pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// SummaryLLMConfig configures the single-prompt summarization endpoint.
type SummaryLLMConfig struct {
	HTTPClientConfig
	Model           string               `env:"MODEL" envDefault:"gemini-2.5-flash"`
	Temperature     float64              `env:"TEMPERATURE" envDefault:"0.3"`
	MaxOutputTokens int                  `env:"MAX_OUTPUT_TOKENS" envDefault:"0"`
	Retry           pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type ContentConfig struct {
	// Directory that /uploads/... storage references resolve against
	StorageRoot     string `env:"STORAGE_ROOT" envDefault:"."`
	GroundingChars  int    `env:"GROUNDING_CHARS" envDefault:"4000"`
	ChatMaxPages    int    `env:"CHAT_MAX_PAGES" envDefault:"5"`
	ChatStopAtChars int    `env:"CHAT_STOP_AT_CHARS" envDefault:"4000"`
}

type ChatConfig struct {
	Policy              string `env:"POLICY" envDefault:"strict"`
	HistoryTurns        int    `env:"HISTORY_TURNS" envDefault:"10"`
	PromptTemplatesFile string `env:"PROMPT_TEMPLATES_FILE"`
}

type GenerationConfig struct {
	MaxInputTokens int    `env:"MAX_INPUT_TOKENS" envDefault:"0"`
	TokenEncoding  string `env:"TOKEN_ENCODING" envDefault:"cl100k_base"`
}

// Load reads the .env file for environment and parses the process
// environment into a Config, then checks what binary requires.
func Load(binary Binary, environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := defaultConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	// Validate configuration
	if err := validateConfig(cfg, binary); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// defaultConfig seeds the per-endpoint model settings. The chat and quiz
// endpoints share a config type but not their defaults, so envDefault tags
// cannot express them. env.Parse keeps these values unless the variable is
// set, so an explicit 0 (e.g. CHAT_LLM_TEMPERATURE=0) is honoured.
func defaultConfig() *Config {
	const openRouter = "https://openrouter.ai/api/v1"

	cfg := &Config{}
	cfg.ChatLLM = ChatLLMConfig{
		Model:       "openai/gpt-3.5-turbo",
		MaxTokens:   1000,
		Temperature: 0.3,
		TopP:        0.9,
	}
	cfg.ChatLLM.Url = openRouter

	// top_p 0 is never sent for quizzes; the provider default applies.
	cfg.QuizLLM = ChatLLMConfig{
		Model:       "openai/gpt-4o-mini",
		MaxTokens:   2000,
		Temperature: 0.7,
	}
	cfg.QuizLLM.Url = openRouter

	cfg.SummaryLLM.Url = "https://generativelanguage.googleapis.com/v1beta"
	return cfg
}

func validateConfig(cfg *Config, binary Binary) error {
	var missing []string
	var errors []string

	requireDB := func() {
		switch cfg.Database.Driver {
		case DriverPostgres:
			if cfg.Database.URL == "" {
				missing = append(missing, "DB_URL")
			}
		case DriverSQLite:
			if cfg.Database.SQLitePath == "" {
				missing = append(missing, "DB_SQLITE_PATH")
			}
		default:
			errors = append(errors, fmt.Sprintf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, cfg.Database.Driver))
		}
	}

	switch binary {
	case BinaryExtractor:
		requireDB()
	case BinaryGenerator:
		requireDB()
		if !cfg.EnableMocks {
			if cfg.SummaryLLM.Token == "" {
				missing = append(missing, "SUMMARY_LLM_TOKEN")
			}
			if cfg.QuizLLM.Token == "" {
				missing = append(missing, "QUIZ_LLM_TOKEN")
			}
		}
	case BinaryChat:
		if !cfg.EnableMocks && cfg.ChatLLM.Token == "" {
			missing = append(missing, "CHAT_LLM_TOKEN")
		}
	}

	if len(missing) > 0 {
		errors = append(errors, "missing required environment variables: "+strings.Join(missing, ", "))
	}

	// Validate Database configuration
	if cfg.Database.MaxConns < 1 || cfg.Database.MaxConns > 50 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 50, got %d", cfg.Database.MaxConns))
	}

	if cfg.Database.MinConns < 0 || cfg.Database.MinConns > cfg.Database.MaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.Database.MaxConns, cfg.Database.MinConns))
	}

	if cfg.Content.GroundingChars < 1 {
		errors = append(errors, fmt.Sprintf("CONTENT_GROUNDING_CHARS must be positive, got %d", cfg.Content.GroundingChars))
	}

	if cfg.Chat.HistoryTurns < 0 {
		errors = append(errors, fmt.Sprintf("CHAT_HISTORY_TURNS must not be negative, got %d", cfg.Chat.HistoryTurns))
	}

	if cfg.CommandTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("COMMAND_TIMEOUT must be positive, got %s", cfg.CommandTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development", "":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
