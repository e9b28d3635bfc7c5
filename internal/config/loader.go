package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("agent.name", "lull")
	viper.SetDefault("agent.base_wait_seconds", 300.0)
	viper.SetDefault("agent.jitter_ratio", 0.2)

	viper.SetDefault("scheduler.summary_interval_seconds", 1800)
	viper.SetDefault("scheduler.channel_sync_interval_seconds", 3600)

	viper.SetDefault("memory.transcript_limit", 200)
	viper.SetDefault("memory.retention_hours", 72)

	viper.SetDefault("llm.model", "claude-sonnet-4-5")
	viper.SetDefault("llm.max_tokens", 1024)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("delivery.rate_per_second", 1.0)
	viper.SetDefault("delivery.burst", 3)

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("logging.level", "info")
}

func bindEnvVariables() {
	viper.BindEnv("discord.token", "DISCORD_TOKEN")

	viper.BindEnv("llm.api_key", "LLM_API_KEY", "ANTHROPIC_API_KEY")
	viper.BindEnv("llm.model", "LLM_MODEL")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("agent.base_wait_seconds", "AGENT_BASE_WAIT_SECONDS")
	viper.BindEnv("agent.jitter_ratio", "AGENT_JITTER_RATIO")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("logging.level", "LOGGING_LEVEL")
}
