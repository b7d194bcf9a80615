package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds bot process configuration.
type Config struct {
	TelegramAPIBase     string
	TelegramFileAPIBase string
	PollTimeout         int
	DropPending         bool

	DeepSeekAPIKey  string
	DeepSeekChatURL string
	DeepSeekModel   string

	OpenAIAPIKey  string
	OpenAIChatURL string
	OpenAIModel   string

	WhisperURL   string
	WhisperModel string

	GoogleSearchAPIKey string
	SearchEngineID     string
	SearchURL          string
	SearchResultCount  int

	HealthchecksPingURL      string
	HeartbeatIntervalSeconds int

	MaxMessageLength int
	SystemPromptFile string
	StatsDBPath      string
}

// Load reads bot configuration from environment variables.
func Load() (Config, error) {
	token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if token == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required in environment")
	}

	deepseekKey := strings.TrimSpace(os.Getenv("DEEPSEEK_API_KEY"))
	openaiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if deepseekKey == "" && openaiKey == "" {
		return Config{}, fmt.Errorf("either DEEPSEEK_API_KEY or OPENAI_API_KEY must be set")
	}

	return Config{
		TelegramAPIBase:     fmt.Sprintf("https://api.telegram.org/bot%s", token),
		TelegramFileAPIBase: fmt.Sprintf("https://api.telegram.org/file/bot%s", token),
		PollTimeout:         envIntOrDefault("TG_TIMEOUT", 30),
		DropPending:         envBoolOrDefault("TG_DROP_PENDING", true),

		DeepSeekAPIKey:  deepseekKey,
		DeepSeekChatURL: envOrDefault("DEEPSEEK_CHAT_COMPLETIONS_URL", "https://api.deepseek.com/v1/chat/completions"),
		DeepSeekModel:   envOrDefault("DEEPSEEK_MODEL", "deepseek-chat"),

		OpenAIAPIKey:  openaiKey,
		OpenAIChatURL: envOrDefault("OPENAI_CHAT_COMPLETIONS_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIModel:   envOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),

		WhisperURL:   envOrDefault("OPENAI_TRANSCRIPTIONS_URL", "https://api.openai.com/v1/audio/transcriptions"),
		WhisperModel: envOrDefault("WHISPER_MODEL", "whisper-1"),

		GoogleSearchAPIKey: strings.TrimSpace(os.Getenv("GOOGLE_SEARCH_API_KEY")),
		SearchEngineID:     strings.TrimSpace(os.Getenv("CUSTOM_SEARCH_ENGINE_ID")),
		SearchURL:          envOrDefault("GOOGLE_SEARCH_URL", "https://www.googleapis.com/customsearch/v1"),
		SearchResultCount:  envIntOrDefault("SEARCH_RESULT_COUNT", 5),

		HealthchecksPingURL:      strings.TrimSpace(os.Getenv("HEALTHCHECKS_PING_URL")),
		HeartbeatIntervalSeconds: envIntOrDefault("HEARTBEAT_INTERVAL_SEC", 300),

		MaxMessageLength: envIntOrDefault("MAX_MESSAGE_LENGTH", 4000),
		SystemPromptFile: envOrDefault("BOT_KNOWLEDGE_FILE", "bot_knowledge.md"),
		StatsDBPath:      envOrDefault("STATS_DB_PATH", "bot_stats.db"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolOrDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "1" || strings.EqualFold(v, "true")
}
