package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the service reads.
const EnvPrefix = "SKINCARE"

// DefaultLabels are the skin conditions the vision classifier chooses from
// unless configured otherwise.
var DefaultLabels = []string{
	"acne",
	"actinic keratosis",
	"atopic dermatitis",
	"basal cell carcinoma",
	"eczema",
	"melanoma",
	"psoriasis",
	"rosacea",
	"seborrheic keratosis",
	"tinea",
	"urticaria",
	"vitiligo",
	"warts",
	"healthy skin",
}

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	cfg, err := loadUnvalidated()
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadAuth reads and validates only the auth section, for commands that do
// not need the model credentials.
func LoadAuth() (AuthConfig, error) {
	cfg, err := loadUnvalidated()
	if err != nil {
		return AuthConfig{}, err
	}
	if err := validator.New().Struct(cfg.Auth); err != nil {
		return AuthConfig{}, fmt.Errorf("auth config validation failed: %w", err)
	}
	return cfg.Auth, nil
}

// LoadStore reads and validates only the store section.
func LoadStore() (StoreConfig, error) {
	cfg, err := loadUnvalidated()
	if err != nil {
		return StoreConfig{}, err
	}
	if err := validator.New().Struct(cfg.Store); err != nil {
		return StoreConfig{}, fmt.Errorf("store config validation failed: %w", err)
	}
	return cfg.Store, nil
}

// loadUnvalidated unmarshals the whole tree so environment overrides of
// nested keys apply.
func loadUnvalidated() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// newViper layers defaults, the optional config file and the environment.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	// Optional config file: explicit path first, then ./config.yaml
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The bare GEMINI_API_KEY is accepted for compatibility with existing deployments.
	if err := v.BindEnv("llm.gemini_api_key", EnvPrefix+"_LLM_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind gemini api key: %w", err)
	}

	return v, nil
}

// Validate checks a Config against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.upload_dir", os.TempDir())
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.5-flash")
	v.SetDefault("llm.prompt_template_path", "")
	v.SetDefault("llm.request_timeout", 60*time.Second)

	v.SetDefault("classifier.backend", "gemini")
	v.SetDefault("classifier.model_name", "gemini-2.5-flash")
	v.SetDefault("classifier.endpoint", "")
	v.SetDefault("classifier.labels", DefaultLabels)
	v.SetDefault("classifier.max_dimension", 512)

	v.SetDefault("task.worker_count", 4)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.job_timeout", time.Duration(0))
	v.SetDefault("task.ttl", time.Duration(0))

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.redis_ttl", time.Duration(0))

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
}
