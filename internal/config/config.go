package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderBedrock LLMProvider = "bedrock"
	ProviderOpenAI  LLMProvider = "openai"
	ProviderGemini  LLMProvider = "gemini"
	ProviderYandex  LLMProvider = "yandex"
)

// LockPolicy decides how chat turns are serialized.
type LockPolicy string

const (
	LockPerUser LockPolicy = "per-user"
	LockGlobal  LockPolicy = "global"
)

// PromptScope decides who owns the system prompt.
type PromptScope string

const (
	PromptPerSession PromptScope = "session"
	PromptGlobal     PromptScope = "global"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	AdminChatID      int64  `env:"ADMIN_CHAT_ID"`

	// LLM settings
	LLMProvider    LLMProvider   `env:"LLM_PROVIDER" envDefault:"bedrock"`
	MaxTokens      int64         `env:"LLM_MAX_TOKENS" envDefault:"1024"`
	ModelTimeout   time.Duration `env:"MODEL_TIMEOUT" envDefault:"0s"`
	BedrockProfile string        `env:"BEDROCK_PROFILE" envDefault:"bedrock"`
	BedrockRegion  string        `env:"BEDROCK_REGION"`
	BedrockModelID string        `env:"BEDROCK_MODEL_ID" envDefault:"anthropic.claude-3-sonnet-20240229-v1:0"`
	OpenAIAPIKey   string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string        `env:"OPENAI_BASE_URL"`
	OpenAIModel    string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	YandexOAuth    string        `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID string        `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Conversation behaviour
	Greeting                 string      `env:"GREETING" envDefault:"Hello there, I am Claude Sonnet from AWS Bedrock. How can I help you?"`
	LiteSystemPrompt         string      `env:"LITE_SYSTEM_PROMPT" envDefault:"You're a very knowledgeable assistant. Please provide answers responsibly."`
	SystemPromptScope        PromptScope `env:"SYSTEM_PROMPT_SCOPE" envDefault:"session"`
	LockPolicy               LockPolicy  `env:"LOCK_POLICY" envDefault:"per-user"`
	ContextDuplicateLastTurn bool        `env:"CONTEXT_DUPLICATE_LAST_TURN" envDefault:"false"`

	// Storage
	SnapshotPath       string `env:"SNAPSHOT_PATH" envDefault:"data/persistent_memory.json"`
	SnapshotRecover    bool   `env:"SNAPSHOT_RECOVER" envDefault:"false"`
	InteractionLogPath string `env:"INTERACTION_LOG_PATH" envDefault:"logs/interactions.jsonl"`

	// Transport
	UpdateWorkers      int           `env:"UPDATE_WORKERS" envDefault:"8"`
	StreamEditInterval time.Duration `env:"STREAM_EDIT_INTERVAL" envDefault:"1s"`

	// Reports
	ReportCron string `env:"REPORT_CRON" envDefault:"0 21 * * *"`

	// Logging
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogOutputPath string `env:"LOG_OUTPUT_PATH"`
}

// New parses the environment. Callers decide whether an error is fatal.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderBedrock, ProviderOpenAI, ProviderGemini, ProviderYandex:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLMProvider)
	}
	switch c.LockPolicy {
	case LockPerUser, LockGlobal:
	default:
		return fmt.Errorf("unknown lock policy: %s", c.LockPolicy)
	}
	switch c.SystemPromptScope {
	case PromptPerSession, PromptGlobal:
	default:
		return fmt.Errorf("unknown system prompt scope: %s", c.SystemPromptScope)
	}
	if c.UpdateWorkers < 1 {
		return fmt.Errorf("UPDATE_WORKERS must be positive, got %d", c.UpdateWorkers)
	}
	return nil
}
