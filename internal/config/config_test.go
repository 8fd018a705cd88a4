package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := &Config{
		CommandTimeout: time.Minute,
		Database: DatabaseConfig{
			Driver:   DriverPostgres,
			URL:      "postgres://localhost/study",
			MaxConns: 4,
		},
		Content: ContentConfig{GroundingChars: 4000},
		Chat:    ChatConfig{HistoryTurns: 10},
	}
	cfg.SummaryLLM.Token = "s"
	cfg.QuizLLM.Token = "q"
	cfg.ChatLLM.Token = "c"
	return cfg
}

func TestValidateConfig_RequiredPerBinary(t *testing.T) {
	tests := []struct {
		name    string
		binary  Binary
		mutate  func(*Config)
		missing []string
	}{
		{
			name:   "extractor ok",
			binary: BinaryExtractor,
			mutate: func(c *Config) {},
		},
		{
			name:    "extractor needs db url",
			binary:  BinaryExtractor,
			mutate:  func(c *Config) { c.Database.URL = "" },
			missing: []string{"DB_URL"},
		},
		{
			name:   "sqlite needs no url",
			binary: BinaryExtractor,
			mutate: func(c *Config) {
				c.Database.Driver = DriverSQLite
				c.Database.URL = ""
				c.Database.SQLitePath = "notes.db"
			},
		},
		{
			name:    "generator reports every missing token",
			binary:  BinaryGenerator,
			mutate:  func(c *Config) { c.SummaryLLM.Token, c.QuizLLM.Token = "", "" },
			missing: []string{"SUMMARY_LLM_TOKEN", "QUIZ_LLM_TOKEN"},
		},
		{
			name:   "generator mocks need no tokens",
			binary: BinaryGenerator,
			mutate: func(c *Config) {
				c.SummaryLLM.Token, c.QuizLLM.Token = "", ""
				c.EnableMocks = true
			},
		},
		{
			name:   "chat needs no database",
			binary: BinaryChat,
			mutate: func(c *Config) { c.Database.URL = "" },
		},
		{
			name:    "chat needs a token",
			binary:  BinaryChat,
			mutate:  func(c *Config) { c.ChatLLM.Token = "" },
			missing: []string{"CHAT_LLM_TOKEN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg, tt.binary)
			if len(tt.missing) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error naming %v", tt.missing)
			}
			for _, name := range tt.missing {
				if !strings.Contains(err.Error(), name) {
					t.Errorf("error %q does not name %s", err, name)
				}
			}
		})
	}
}

func TestValidateConfig_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "DB_DRIVER"},
		{"too many conns", func(c *Config) { c.Database.MaxConns = 51 }, "DB_MAX_CONNS"},
		{"min above max", func(c *Config) { c.Database.MinConns = 5 }, "DB_MIN_CONNS"},
		{"grounding chars", func(c *Config) { c.Content.GroundingChars = 0 }, "CONTENT_GROUNDING_CHARS"},
		{"negative history", func(c *Config) { c.Chat.HistoryTurns = -1 }, "CHAT_HISTORY_TURNS"},
		{"no timeout", func(c *Config) { c.CommandTimeout = 0 }, "COMMAND_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg, BinaryExtractor)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_SQLITE_PATH", "notes.db")
	t.Setenv("DB_URL", "")
}

func TestLoad_ModelDefaults(t *testing.T) {
	useSQLite(t)
	t.Setenv("QUIZ_LLM_MODEL", "custom/model")

	cfg, err := Load(BinaryExtractor, "test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ChatLLM.Model != "openai/gpt-3.5-turbo" || cfg.ChatLLM.MaxTokens != 1000 {
		t.Errorf("chat defaults = %q/%d", cfg.ChatLLM.Model, cfg.ChatLLM.MaxTokens)
	}
	if cfg.ChatLLM.Temperature != 0.3 || cfg.ChatLLM.TopP != 0.9 {
		t.Errorf("chat sampling = %v/%v", cfg.ChatLLM.Temperature, cfg.ChatLLM.TopP)
	}
	if cfg.QuizLLM.Model != "custom/model" {
		t.Errorf("quiz model = %q", cfg.QuizLLM.Model)
	}
	if cfg.QuizLLM.MaxTokens != 2000 || cfg.QuizLLM.Temperature != 0.7 || cfg.QuizLLM.TopP != 0 {
		t.Errorf("quiz sampling = %d/%v/%v", cfg.QuizLLM.MaxTokens, cfg.QuizLLM.Temperature, cfg.QuizLLM.TopP)
	}
	if cfg.ChatLLM.Url == "" || cfg.QuizLLM.Url == "" || cfg.SummaryLLM.Url == "" {
		t.Error("base urls not defaulted")
	}
	if cfg.ChatLLM.RequestTimeout != 60*time.Second {
		t.Errorf("request timeout = %s", cfg.ChatLLM.RequestTimeout)
	}
}

func TestLoad_ExplicitZeroTemperature(t *testing.T) {
	useSQLite(t)
	t.Setenv("CHAT_LLM_TEMPERATURE", "0")
	t.Setenv("QUIZ_LLM_TEMPERATURE", "0")

	cfg, err := Load(BinaryExtractor, "test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ChatLLM.Temperature != 0 || cfg.QuizLLM.Temperature != 0 {
		t.Errorf("temperatures = %v/%v, want 0/0", cfg.ChatLLM.Temperature, cfg.QuizLLM.Temperature)
	}
	if cfg.ChatLLM.TopP != 0.9 {
		t.Errorf("chat top_p = %v", cfg.ChatLLM.TopP)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	useSQLite(t)
	t.Setenv("CHAT_POLICY", "adjacent")
	t.Setenv("CHAT_LLM_RETRY_ATTEMPTS", "3")

	cfg, err := Load(BinaryExtractor, "test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "test" {
		t.Errorf("environment = %q", cfg.Environment)
	}
	if cfg.Chat.Policy != "adjacent" || cfg.Chat.HistoryTurns != 10 {
		t.Errorf("chat config = %+v", cfg.Chat)
	}
	if cfg.ChatLLM.Retry.Attempts != 3 {
		t.Errorf("retry attempts = %d", cfg.ChatLLM.Retry.Attempts)
	}
	if cfg.Database.ConnectTimeout != 10*time.Second {
		t.Errorf("connect timeout = %s", cfg.Database.ConnectTimeout)
	}
}

func TestGetEnvFile(t *testing.T) {
	for env, want := range map[string]string{
		"":           ".env.local",
		"dev":        ".env.local",
		"production": ".env.prod",
		"staging":    ".env.staging",
	} {
		if got := getEnvFile(env); got != want {
			t.Errorf("getEnvFile(%q) = %q, want %q", env, got, want)
		}
	}
}
