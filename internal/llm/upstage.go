package llm

import "fmt"

const upstageBaseURL = "https://api.upstage.ai/v1"

// upstageModels maps friendly names to Upstage Solar model IDs.
var upstageModels = map[string]string{
	"solar-pro":  "solar-pro2",
	"solar-mini": "solar-mini",
}

// NewUpstageProvider creates a provider for Upstage's Solar models.
// Upstage speaks the OpenAI chat protocol, so this is the OpenAI provider
// pointed at the Upstage endpoint.
func NewUpstageProvider(cfg UpstageConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("upstage API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = upstageBaseURL
	}

	return NewOpenAIProvider(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   resolveModel(cfg.Model, upstageModels),
		BaseURL: baseURL,
	})
}
