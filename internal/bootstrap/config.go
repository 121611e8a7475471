package bootstrap

import (
	"os"
	"strconv"

	"github.com/eleven-am/voice-relay/internal/realtime"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	HMACKey   string
	JWTIssuer string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LiveKitURL       string
	LiveKitAPIKey    string
	LiveKitAPISecret string

	OpenAIURL    string
	OpenAIAPIKey string
	OpenAIModel  string

	AgentVoice        string
	AgentInstructions string
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		HMACKey:   getEnv("HMAC_KEY", "change-me-in-production"),
		JWTIssuer: getEnv("JWT_ISSUER", "voice-relay"),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LiveKitURL:       getEnv("LIVEKIT_URL", "ws://localhost:7880"),
		LiveKitAPIKey:    getEnv("LIVEKIT_API_KEY", ""),
		LiveKitAPISecret: getEnv("LIVEKIT_API_SECRET", ""),

		OpenAIURL:    getEnv("OPENAI_REALTIME_URL", realtime.DefaultURL),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_REALTIME_MODEL", realtime.DefaultModel),

		AgentVoice: getEnv("AGENT_VOICE", "alloy"),
		AgentInstructions: getEnv("AGENT_INSTRUCTIONS",
			"You are a patient, encouraging voice tutor. Keep answers short and conversational."),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
