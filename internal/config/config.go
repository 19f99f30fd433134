package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mailmind/")
	v.AddConfigPath("$HOME/.mailmind")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("MAILMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Reasoning provider defaults
	v.SetDefault("llm.provider", "llmsuite")

	// LLMSuite / OpenAI-compatible defaults (base_url and api_key usually
	// come from the profile file instead)
	v.SetDefault("llmsuite.base_url", "")
	v.SetDefault("llmsuite.api_key", "")
	v.SetDefault("llmsuite.model", "gpt-4o")
	v.SetDefault("llmsuite.max_tokens", 4000)
	v.SetDefault("llmsuite.temperature", 0.1)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 4000)
	v.SetDefault("gemini.temperature", 0.1)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 4000)
	v.SetDefault("bedrock.temperature", 0.1)

	// Graph endpoints (overridable for testing)
	v.SetDefault("graph.base_url", "")
	v.SetDefault("graph.login_base_url", "")

	// Fetch defaults
	v.SetDefault("fetch.top", 50)
	v.SetDefault("fetch.unread_only", true)

	// Classification defaults
	v.SetDefault("classify.batch_size", 10)

	// Auto-sync defaults
	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.interval_minutes", 5)

	// Analytics history defaults
	v.SetDefault("history.type", "memory")
	v.SetDefault("history.sqlite_path", "mailmind_history.db")
	v.SetDefault("history.mysql_dsn", "user:password@tcp(localhost:3306)/mailmind")

	// Profile file (credentials, llmsuite endpoint, rules)
	v.SetDefault("profile.path", "mailmind.json")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetFloat64 gets a float value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
