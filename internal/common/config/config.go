// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Assistant    AssistantConfig    `mapstructure:"assistant"`
	Platform     PlatformConfig     `mapstructure:"platform"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Resolver     ResolverConfig     `mapstructure:"resolver"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// AssistantConfig holds settings for the remote assistant endpoint.
type AssistantConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

// PlatformConfig holds settings for the project-management backend.
type PlatformConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ConversationConfig bounds the rolling history and the streaming emulation.
type ConversationConfig struct {
	HistorySize   int `mapstructure:"history_size"`
	StreamDelayMs int `mapstructure:"stream_delay_ms"`
}

// ResolverConfig bounds the workspace-listing lookup used for
// name-to-slug resolution.
type ResolverConfig struct {
	LookupTimeout int `mapstructure:"lookup_timeout"` // milliseconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (a AssistantConfig) RequestTimeout() time.Duration {
	return time.Duration(a.Timeout) * time.Millisecond
}

func (p PlatformConfig) RequestTimeout() time.Duration {
	return time.Duration(p.Timeout) * time.Millisecond
}

func (r ResolverConfig) Timeout() time.Duration {
	return time.Duration(r.LookupTimeout) * time.Millisecond
}

func (c ConversationConfig) StreamDelay() time.Duration {
	return time.Duration(c.StreamDelayMs) * time.Millisecond
}
