package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("ARIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without ARIA_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "ARIA_HTTP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "ARIA_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "ARIA_REDIS_URL")
	viper.BindEnv("nats.url", "NATS_URL", "ARIA_NATS_URL")
	viper.BindEnv("rabbitmq.url", "RABBITMQ_URL", "ARIA_RABBITMQ_URL")
	viper.BindEnv("jwt.secret", "JWT_SECRET", "ARIA_JWT_SECRET")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY", "ARIA_OPENAI_API_KEY")
	viper.BindEnv("gemini.api_key", "GEMINI_API_KEY", "ARIA_GEMINI_API_KEY")
	viper.BindEnv("vault.address", "VAULT_ADDR")
	viper.BindEnv("vault.token", "VAULT_TOKEN")
	viper.BindEnv("app.environment", "ARIA_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file: env vars and defaults only
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "aria")
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("jwt.access_token_duration", "168h")
	viper.SetDefault("jwt.refresh_token_duration", "720h")
	viper.SetDefault("jwt.issuer", "aria")
	viper.SetDefault("interpreter.timeout", "8s")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("assistant.default_name", "Aria")
	viper.SetDefault("assistant.default_locale", "en-US")
	viper.SetDefault("assistant.history_limit", 50)
	viper.SetDefault("assistant.greet_on_connect", true)
	viper.SetDefault("uploads.dir", "./uploads")
	viper.SetDefault("uploads.max_size_bytes", 5*1024*1024)
	viper.SetDefault("prometheus.path", "/metrics")
	viper.SetDefault("logging.level", "info")
}
