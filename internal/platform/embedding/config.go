package embedding

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderGemini = "gemini"

	DefaultModel       = "text-embedding-3-small"
	DefaultGeminiModel = "gemini-embedding-001"
	DefaultTimeout     = 15 * time.Second
	DefaultMaxRetries  = 2
)

type Config struct {
	Provider   string        `yaml:"provider"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`

	// OpenAI / Azure OpenAI
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	APIVersion string `yaml:"api_version"`

	// Gemini
	GoogleAPIKey string `yaml:"google_api_key"`
}

func (c Config) withDefaults() Config {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		c.Model = DefaultModelFor(c.Provider)
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}

// DefaultModelFor returns the model used when none is configured. OpenAI and
// Azure share the OpenAI model id.
func DefaultModelFor(provider string) string {
	if strings.EqualFold(strings.TrimSpace(provider), ProviderGemini) {
		return DefaultGeminiModel
	}
	return DefaultModel
}

// Model ids that only one provider family serves.
var (
	openAIOnlyModelPrefixes = []string{"text-embedding-3-", "text-embedding-ada-"}
	geminiOnlyModelPrefixes = []string{"gemini-", "models/", "embedding-001"}
)

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Validate checks a config after defaults are applied.
func (c Config) Validate() error { return c.withDefaults().validate() }

func (c Config) validate() error {
	if c.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", c.Dimensions)
	}
	model := strings.ToLower(c.Model)
	switch c.Provider {
	case ProviderOpenAI, ProviderAzure:
		if c.Provider == ProviderAzure && c.BaseURL == "" {
			return fmt.Errorf("azure embeddings require OPENAI_BASE_URL")
		}
		if hasAnyPrefix(model, geminiOnlyModelPrefixes) {
			return fmt.Errorf("embedding model %q is a Gemini model; provider is %q", c.Model, c.Provider)
		}
	case ProviderGemini:
		if hasAnyPrefix(model, openAIOnlyModelPrefixes) {
			return fmt.Errorf("embedding model %q is an OpenAI model; provider is %q", c.Model, c.Provider)
		}
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Provider)
	}
	return nil
}
