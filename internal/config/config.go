package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port             int
	DatabaseURL      string
	NatsURL          string
	NatsToken        string
	LogLevel         string
	OpenAIAPIKey     string
	ChatModel        string
	AssistantModel   string
	RegistryPath     string
	WorkRoot         string
	CurriculumStages int
	RunPollTimeout   int
}

func Load() Config {
	return Config{
		Port:             envInt("TUTORD_PORT", 5001),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		NatsURL:          envStr("NATS_URL", ""),
		NatsToken:        envStr("NATS_TOKEN", ""),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:     envStr("OPENAI_API_KEY", ""),
		ChatModel:        envStr("TUTORD_CHAT_MODEL", "gpt-4o-mini"),
		AssistantModel:   envStr("TUTORD_ASSISTANT_MODEL", "gpt-4-turbo-preview"),
		RegistryPath:     envStr("TUTORD_REGISTRY_PATH", "data/assistants.json"),
		WorkRoot:         envStr("TUTORD_WORK_ROOT", "data/work"),
		CurriculumStages: envInt("CURRICULUM_STAGES", 3),
		RunPollTimeout:   envInt("RUN_POLL_TIMEOUT_SECONDS", 300),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
