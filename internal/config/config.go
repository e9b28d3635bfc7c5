package config

type Config struct {
	Agent     AgentConfig     `mapstructure:"agent"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	Discord   DiscordConfig   `mapstructure:"discord"`
	Filter    FilterConfig    `mapstructure:"filter"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AgentConfig controls the judgment-gated response protocol. BaseWaitSeconds
// is the ambient-message debounce window; JitterRatio randomizes it by up to
// the given fraction in either direction.
type AgentConfig struct {
	Name            string  `mapstructure:"name"`
	BaseWaitSeconds float64 `mapstructure:"base_wait_seconds"`
	JitterRatio     float64 `mapstructure:"jitter_ratio"`
}

type SchedulerConfig struct {
	SummaryIntervalSeconds     int    `mapstructure:"summary_interval_seconds"`
	ChannelSyncIntervalSeconds int    `mapstructure:"channel_sync_interval_seconds"`
	SummaryCron                string `mapstructure:"summary_cron"`
}

type MemoryConfig struct {
	TranscriptLimit int `mapstructure:"transcript_limit"`
	RetentionHours  int `mapstructure:"retention_hours"`
}

type DiscordConfig struct {
	Token     string   `mapstructure:"token"`
	AllowFrom []string `mapstructure:"allow_from"`
}

type FilterConfig struct {
	Expression string `mapstructure:"expression"`
}

type LLMConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DeliveryConfig struct {
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
