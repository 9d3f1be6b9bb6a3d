// Package config provides configuration loading, validation, and management
// for the Eather bot. It layers defaults, an optional config.yaml file, and
// environment variable overrides, then validates the result.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// TaskConfig controls a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Schedule string `koanf:"schedule"`
}

// SchedulerConfig holds the scheduled task table, keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `koanf:"tasks"`
}

// Messages holds every user-visible reply text the bot can send.
type Messages struct {
	EmptyPrompt  string `koanf:"empty_prompt"  validate:"required"`
	Cooldown     string `koanf:"cooldown"      validate:"required"`
	RateLimited  string `koanf:"rate_limited"  validate:"required"`
	GeneralError string `koanf:"general_error" validate:"required"`
}

// Config defines the application configuration parameters for all components
// of the bot: Discord gateway, command handling, AI integration, storage,
// the health server, and logging.
type Config struct {
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `koanf:"log_json"`

	DiscordToken string `koanf:"discord_token" validate:"required"`

	CommandPrefix    string        `koanf:"command_prefix"    validate:"required"`
	CommandFoldCase  bool          `koanf:"command_fold_case"`
	CooldownWindow   time.Duration `koanf:"cooldown_window"   validate:"min=100ms,max=1h"`
	MaxReplyLength   int           `koanf:"max_reply_length"  validate:"min=100,max=4000"`
	TruncationMarker string        `koanf:"truncation_marker"`

	AIBackend     string        `koanf:"ai_backend"     validate:"oneof=groq gemini"`
	AIToken       string        `koanf:"ai_token"       validate:"required"`
	AIBaseURL     string        `koanf:"ai_base_url"    validate:"url"`
	AIModel       string        `koanf:"ai_model"       validate:"required"`
	AITemperature float32       `koanf:"ai_temperature" validate:"min=0,max=2"`
	AIMaxTokens   int           `koanf:"ai_max_tokens"  validate:"min=1,max=32768"`
	AIInstruction string        `koanf:"ai_instruction" validate:"required"`
	AITimeout     time.Duration `koanf:"ai_timeout"     validate:"min=1s,max=10m"`

	HTTPPort int    `koanf:"http_port" validate:"min=1,max=65535"`
	SelfURL  string `koanf:"self_url"  validate:"omitempty,url"`

	DBPath string `koanf:"db_path" validate:"required"`

	Messages  Messages        `koanf:"messages"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
}

// envKeys maps the environment variables the bot recognizes onto koanf keys.
// The deployment surface stays compatible with the original hosting setup
// (DISCORD_TOKEN, GROQ_API_KEY, PORT, SELF_URL); the EATHER_* names cover the
// rest of the knobs that are worth flipping without a config file.
var envKeys = map[string]string{
	"DISCORD_TOKEN":         "discord_token",
	"GROQ_API_KEY":          "ai_token",
	"PORT":                  "http_port",
	"SELF_URL":              "self_url",
	"EATHER_LOG_LEVEL":      "log_level",
	"EATHER_COMMAND_PREFIX": "command_prefix",
	"EATHER_AI_BACKEND":     "ai_backend",
	"EATHER_AI_MODEL":       "ai_model",
	"EATHER_AI_BASE_URL":    "ai_base_url",
	"EATHER_DB_PATH":        "db_path",
}

// Load reads configuration from config.yaml (optional), applies environment
// overrides, fills defaults for everything unset, and validates the result.
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	startTime := time.Now()
	slog.Info("loading configuration", "path", path)

	config := &Config{}
	setDefaults(config)

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load configuration file", "error", err, "path", path)
			return nil, fmt.Errorf("failed to load configuration file: %w", err)
		}
		slog.Info("configuration file not found, using defaults", "path", path)
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		slog.Error("failed to load environment overrides", "error", err)
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if err := k.Unmarshal("", config); err != nil {
		slog.Error("failed to parse configuration", "error", err)
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// The self-ping task only makes sense when a public URL is configured.
	if config.SelfURL == "" {
		task := config.Scheduler.Tasks["self_ping"]
		task.Enabled = false
		config.Scheduler.Tasks["self_ping"] = task
	}

	if err := validator.New().Struct(config); err != nil {
		slog.Error("configuration validation failed", "error", err)
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	slog.Info("configuration loaded successfully",
		"log_level", config.LogLevel,
		"ai_backend", config.AIBackend,
		"ai_model", config.AIModel,
		"command_prefix", config.CommandPrefix,
		"db_path", config.DBPath,
		"duration_ms", time.Since(startTime).Milliseconds())

	slog.Debug("detailed configuration",
		"cooldown_window", config.CooldownWindow,
		"max_reply_length", config.MaxReplyLength,
		"ai_temperature", config.AITemperature,
		"ai_max_tokens", config.AIMaxTokens,
		"ai_timeout", config.AITimeout,
		"http_port", config.HTTPPort,
		"self_ping", config.SelfURL != "")

	return config, nil
}

func setDefaults(config *Config) {
	config.LogLevel = "info"
	config.LogJSON = true

	config.CommandPrefix = "!eather"
	config.CommandFoldCase = false
	config.CooldownWindow = 3 * time.Second
	config.MaxReplyLength = 2000
	config.TruncationMarker = "\n…[truncated]"

	config.AIBackend = "groq"
	config.AIBaseURL = "https://api.groq.com/openai/v1"
	config.AIModel = "llama-3.1-8b-instant"
	config.AITemperature = 0.3
	config.AIMaxTokens = 800
	config.AITimeout = 15 * time.Second
	config.AIInstruction = "You are a genius programmer AI. Your name is Eather. " +
		"You know ALL programming languages and explain clearly with examples. " +
		"Keep responses short enough to fit in Discord messages under 2000 characters. " +
		"Always format code in triple backticks with language."

	config.HTTPPort = 3000

	config.DBPath = "eather.db"

	config.Messages = Messages{
		EmptyPrompt:  "❌ Please provide a prompt.",
		Cooldown:     "⏳ Slow down! Try again in a few seconds.",
		RateLimited:  "🚦 Rate limit hit. Please wait a few seconds.",
		GeneralError: "❌ Groq API error. Try again.",
	}

	config.Scheduler = SchedulerConfig{
		Tasks: map[string]TaskConfig{
			"self_ping":       {Enabled: true, Schedule: "0 */4 * * * *"},
			"cooldown_sweep":  {Enabled: true, Schedule: "0 */5 * * * *"},
			"sql_maintenance": {Enabled: true, Schedule: "0 0 4 * * *"},
		},
	}
}
