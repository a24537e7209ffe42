package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Keys     APIKeys
	Ai       AIConfig
	Storage  StorageConfig
	Quota    QuotaConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret          string
	TokenTTL           time.Duration
	TurnstileSecretKey string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type APIKeys struct {
	GoogleGemini string
	Groq         string
}

type AIConfig struct {
	GroqBaseURL       string
	OllamaBaseURL     string
	OllamaModel       string
	DefaultChatModel  string
	MaxStreamDuration time.Duration
}

type StorageConfig struct {
	AwsAccessKey  string
	AwsSecretKey  string
	AwsRegion     string
	BucketName    string
	MaxUploadSize int
}

type QuotaConfig struct {
	MessagesPerDay int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:          getEnv("JWT_SECRET", ""),
			TokenTTL:           getEnvAsDuration("JWT_TTL", 7*24*time.Hour),
			TurnstileSecretKey: getEnv("TURNSTILE_SECRET_KEY", ""),
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/api/auth/google/callback"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GENERATIVE_AI_API_KEY", ""),
			Groq:         getEnv("GROQ_API_KEY", ""),
		},
		Ai: AIConfig{
			GroqBaseURL:       getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_MODEL", ""),
			DefaultChatModel:  getEnv("DEFAULT_CHAT_MODEL", "chat-gemini-2.5-flash-lite"),
			MaxStreamDuration: getEnvAsDuration("MAX_STREAM_DURATION", 60*time.Second),
		},
		Storage: StorageConfig{
			AwsAccessKey:  getEnv("AWS_ACCESS_KEY_ID", ""),
			AwsSecretKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
			AwsRegion:     getEnv("AWS_REGION", ""),
			BucketName:    getEnv("S3_BUCKET_NAME", ""),
			MaxUploadSize: getEnvAsInt("MAX_UPLOAD_SIZE", 5*1024*1024),
		},
		Quota: QuotaConfig{
			MessagesPerDay: getEnvAsInt("MESSAGES_PER_DAY", 100),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "ai-chatbot-backend"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
