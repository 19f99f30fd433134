package config

// LLMConfig selects the reasoning provider
type LLMConfig struct {
	Provider string
}

// LLMSuiteConfig represents the configuration for an OpenAI-compatible
// LLMSuite endpoint
type LLMSuiteConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
}

// GraphConfig represents the mail provider endpoints
type GraphConfig struct {
	BaseURL      string
	LoginBaseURL string
}

// FetchConfig represents the message listing defaults
type FetchConfig struct {
	Top        int
	UnreadOnly bool
}

// SyncConfig represents the auto-sync defaults
type SyncConfig struct {
	Enabled         bool
	IntervalMinutes int
}

// HistoryConfig represents the analytics history backend
type HistoryConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// GetLLM returns the reasoning provider selection
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetLLMSuite returns the LLMSuite configuration
func (c *Config) GetLLMSuite() LLMSuiteConfig {
	return LLMSuiteConfig{
		BaseURL:     c.GetString("llmsuite.base_url"),
		APIKey:      c.GetString("llmsuite.api_key"),
		Model:       c.GetString("llmsuite.model"),
		MaxTokens:   c.GetInt("llmsuite.max_tokens"),
		Temperature: float32(c.GetFloat64("llmsuite.temperature")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
	}
}

// GetGraph returns the mail provider endpoints
func (c *Config) GetGraph() GraphConfig {
	return GraphConfig{
		BaseURL:      c.GetString("graph.base_url"),
		LoginBaseURL: c.GetString("graph.login_base_url"),
	}
}

// GetFetch returns the message listing defaults
func (c *Config) GetFetch() FetchConfig {
	return FetchConfig{
		Top:        c.GetInt("fetch.top"),
		UnreadOnly: c.GetBool("fetch.unread_only"),
	}
}

// GetSync returns the auto-sync defaults
func (c *Config) GetSync() SyncConfig {
	return SyncConfig{
		Enabled:         c.GetBool("sync.enabled"),
		IntervalMinutes: c.GetInt("sync.interval_minutes"),
	}
}

// GetHistory returns the analytics history backend selection
func (c *Config) GetHistory() HistoryConfig {
	return HistoryConfig{
		Type:       c.GetString("history.type"),
		SQLitePath: c.GetString("history.sqlite_path"),
		MySQLDSN:   c.GetString("history.mysql_dsn"),
	}
}
