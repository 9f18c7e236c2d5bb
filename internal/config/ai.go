package config

import "os"

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Phrasing is for conversational question rephrasing (needs to be fast)
	Phrasing string `json:"phrasing"`

	// Recommend is for per-gap remediation suggestions (needs to be fast)
	Recommend string `json:"recommend"`

	// Report is for cross-session report summaries (deep analysis, not blocking)
	Report string `json:"report"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			Phrasing:  getEnvOrDefault("GEMINI_MODEL_PHRASING", "gemini-2.0-flash"),
			Recommend: getEnvOrDefault("GEMINI_MODEL_RECOMMEND", "gemini-2.0-flash"),
			Report:    getEnvOrDefault("GEMINI_MODEL_REPORT", "gemini-2.0-flash"),
		},
		TimeoutMS: 10000, // 10 second default timeout
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
