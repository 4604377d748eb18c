package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Classifier ClassifierConfig `mapstructure:"classifier" validate:"required"`
	Task       TaskConfig       `mapstructure:"task"       validate:"required"`
	Store      StoreConfig      `mapstructure:"store"      validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	UploadDir       string        `mapstructure:"upload_dir"`
	MaxUploadMB     int           `mapstructure:"max_upload_mb"    validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// LLMConfig contains the settings for the text generation collaborator.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`
	// PromptTemplatePath overrides the built-in recommendation prompt when set.
	PromptTemplatePath string        `mapstructure:"prompt_template_path"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
}

// ClassifierConfig selects and configures the image classification collaborator.
type ClassifierConfig struct {
	Backend      string   `mapstructure:"backend"       validate:"required,oneof=gemini http"`
	ModelName    string   `mapstructure:"model_name"    validate:"required_if=Backend gemini"`
	Endpoint     string   `mapstructure:"endpoint"      validate:"required_if=Backend http"`
	Labels       []string `mapstructure:"labels"        validate:"required_if=Backend gemini,dive,required"`
	MaxDimension int      `mapstructure:"max_dimension" validate:"gt=0"`
}

// TaskConfig contains the background job runner settings.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"gt=0"`
	// JobTimeout bounds a single classification; zero disables the bound.
	JobTimeout time.Duration `mapstructure:"job_timeout" validate:"gte=0"`
	// TTL evicts finished records from the memory store; zero keeps them forever.
	TTL time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// StoreConfig selects the task store backend.
type StoreConfig struct {
	Driver      string        `mapstructure:"driver"       validate:"required,oneof=memory postgres redis"`
	DatabaseURL string        `mapstructure:"database_url" validate:"required_if=Driver postgres"`
	RedisAddr   string        `mapstructure:"redis_addr"   validate:"required_if=Driver redis"`
	RedisTTL    time.Duration `mapstructure:"redis_ttl"    validate:"gte=0"`
}

// AuthConfig enables bearer token authentication when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
}

// Enabled reports whether protected routes require a token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// SentryConfig configures error reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}
