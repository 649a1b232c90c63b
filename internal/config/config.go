package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DatetimePlaceholder is the token in the scheduled-report prompt template
// that gets replaced with the rendered date expression.
const DatetimePlaceholder = "%DATETIME%"

// Config holds every runtime setting the bot needs. Everything comes from
// the environment; the composition root loads it once and passes pieces down.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	TelegramChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"true"`
	WebhookSecret    string `envconfig:"TELEGRAM_WEBHOOK_SECRET" required:"true"`

	OpenAIKey     string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	OpenAIProject string `envconfig:"OPENAI_PROJECT"`

	ExtractModel        string `envconfig:"EXTRACT_MODEL" default:"gpt-4o-mini"`
	ExtractSystemPrompt string `envconfig:"EXTRACT_SYSTEM_PROMPT" required:"true"`
	ExtractUserPrompt   string `envconfig:"EXTRACT_USER_PROMPT" required:"true"`

	AssistantID   string `envconfig:"ASSISTANT_ID" required:"true"`
	VectorStoreID string `envconfig:"VECTOR_STORE_ID" required:"true"`

	ReportPrompt string `envconfig:"REPORT_PROMPT_TEMPLATE" required:"true"`

	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"500ms"`
	PollMaxAttempts int           `envconfig:"POLL_MAX_ATTEMPTS" default:"240"`

	// Optional GCS bucket; when set, stored records are also archived there.
	ArchiveBucket string `envconfig:"ARCHIVE_BUCKET"`
}

// Load reads and validates the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if !strings.Contains(cfg.ReportPrompt, DatetimePlaceholder) {
		return nil, fmt.Errorf("config: REPORT_PROMPT_TEMPLATE must contain %s", DatetimePlaceholder)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("config: POLL_INTERVAL must be positive")
	}
	if cfg.PollMaxAttempts <= 0 {
		return nil, fmt.Errorf("config: POLL_MAX_ATTEMPTS must be positive")
	}
	return &cfg, nil
}
