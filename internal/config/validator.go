package config

import (
	"fmt"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateAgent(cfg.Agent); err != nil {
		errors = append(errors, err)
	}

	if err := validateScheduler(cfg.Scheduler); err != nil {
		errors = append(errors, err)
	}

	if err := validateMemory(cfg.Memory); err != nil {
		errors = append(errors, err)
	}

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateDelivery(cfg.Delivery); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateAgent(cfg AgentConfig) error {
	if cfg.BaseWaitSeconds < 0 {
		return &ValidationError{
			Field:   "agent.base_wait_seconds",
			Message: fmt.Sprintf("base wait must be non-negative, got %v", cfg.BaseWaitSeconds),
		}
	}

	if cfg.JitterRatio < 0 || cfg.JitterRatio > 1 {
		return &ValidationError{
			Field:   "agent.jitter_ratio",
			Message: fmt.Sprintf("jitter ratio must be in [0,1], got %v", cfg.JitterRatio),
		}
	}

	return nil
}

func validateScheduler(cfg SchedulerConfig) error {
	if cfg.SummaryIntervalSeconds <= 0 && cfg.SummaryCron == "" {
		return &ValidationError{
			Field:   "scheduler.summary_interval_seconds",
			Message: "summary interval must be positive when no cron expression is set",
		}
	}

	if cfg.ChannelSyncIntervalSeconds <= 0 {
		return &ValidationError{
			Field:   "scheduler.channel_sync_interval_seconds",
			Message: "channel sync interval must be positive",
		}
	}

	return nil
}

func validateMemory(cfg MemoryConfig) error {
	if cfg.TranscriptLimit <= 0 {
		return &ValidationError{
			Field:   "memory.transcript_limit",
			Message: "transcript limit must be positive",
		}
	}

	if cfg.RetentionHours <= 0 {
		return &ValidationError{
			Field:   "memory.retention_hours",
			Message: "retention must be positive",
		}
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateDelivery(cfg DeliveryConfig) error {
	if cfg.RatePerSecond <= 0 {
		return &ValidationError{
			Field:   "delivery.rate_per_second",
			Message: "delivery rate must be positive",
		}
	}

	if cfg.Burst < 1 {
		return &ValidationError{
			Field:   "delivery.burst",
			Message: "delivery burst must be at least 1",
		}
	}

	return nil
}
