package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

const defaultSystemPrompt = "You are BizPilot, an AI business copilot for SMB owners. " +
	"You can search the web when needed using the tavily_search tool. Always cite sources succinctly."

type Config struct {
	AppPort   int    `mapstructure:"APP_PORT"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	ClientURL string `mapstructure:"CLIENT_URL"`

	StoreBackend        string `mapstructure:"STORE_BACKEND"`
	StoreRequireDurable bool   `mapstructure:"STORE_REQUIRE_DURABLE"`
	DatabasePath        string `mapstructure:"DATABASE_PATH"`
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	RedisDB             int    `mapstructure:"REDIS_DB"`
	MongoURI            string `mapstructure:"MONGO_URI"`
	MongoDatabase       string `mapstructure:"MONGO_DATABASE"`

	AuthDisabled bool   `mapstructure:"AUTH_DISABLED"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`

	LLMProvider  string `mapstructure:"LLM_PROVIDER"`
	OfflineMode  bool   `mapstructure:"OFFLINE_MODE"`
	SystemPrompt string `mapstructure:"SYSTEM_PROMPT"`
	AgentEnabled bool   `mapstructure:"AGENT_ENABLED"`

	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel   string `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"`

	GroqAPIKey  string `mapstructure:"GROQ_API_KEY"`
	GroqModel   string `mapstructure:"GROQ_MODEL"`
	GroqBaseURL string `mapstructure:"GROQ_BASE_URL"`

	OpenRouterAPIKey  string `mapstructure:"OPENROUTER_API_KEY"`
	OpenRouterModel   string `mapstructure:"OPENROUTER_MODEL"`
	OpenRouterBaseURL string `mapstructure:"OPENROUTER_BASE_URL"`

	OllamaURL   string `mapstructure:"OLLAMA_URL"`
	OllamaModel string `mapstructure:"OLLAMA_MODEL"`

	TavilyAPIKey string `mapstructure:"TAVILY_API_KEY"`
	TavilyURL    string `mapstructure:"TAVILY_URL"`

	ChatRatePerMinute int   `mapstructure:"CHAT_RATE_PER_MINUTE"`
	ChatRateBurst     int   `mapstructure:"CHAT_RATE_BURST"`
	UploadMaxBytes    int64 `mapstructure:"UPLOAD_MAX_BYTES"`
}

// HasProviderCredentials reports whether any remote response backend is configured.
func (c *Config) HasProviderCredentials() bool {
	return c.OpenAIAPIKey != "" || c.GroqAPIKey != "" || c.OpenRouterAPIKey != "" || c.OllamaURL != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", 8000)
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CLIENT_URL", "http://localhost:5173")

	v.SetDefault("STORE_BACKEND", BackendSQLite)
	v.SetDefault("STORE_REQUIRE_DURABLE", false)
	v.SetDefault("DATABASE_PATH", "./data/bizpilot.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "bizpilot")

	v.SetDefault("AUTH_DISABLED", false)
	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("LLM_PROVIDER", "")
	v.SetDefault("OFFLINE_MODE", false)
	v.SetDefault("SYSTEM_PROMPT", defaultSystemPrompt)
	v.SetDefault("AGENT_ENABLED", true)

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("GROQ_API_KEY", "")
	v.SetDefault("GROQ_MODEL", "llama-3.1-8b-instant")
	v.SetDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("OPENROUTER_API_KEY", "")
	v.SetDefault("OPENROUTER_MODEL", "mistralai/mistral-7b-instruct:free")
	v.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("OLLAMA_URL", "")
	v.SetDefault("OLLAMA_MODEL", "llama3.2")

	v.SetDefault("TAVILY_API_KEY", "")
	v.SetDefault("TAVILY_URL", "https://api.tavily.com/search")

	v.SetDefault("CHAT_RATE_PER_MINUTE", 30)
	v.SetDefault("CHAT_RATE_BURST", 10)
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
}

// LoadConfig reads configuration from an optional .env file and the environment.
// Environment variables win over the file; every key has a default.
func LoadConfig() (*Config, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))

	return &cfg, nil
}
