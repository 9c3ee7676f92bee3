package llm

import (
	"log/slog"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/config"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/observability"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/tools"
)

// Provider families accepted by LLM_PROVIDER.
const (
	FamilyOpenAI     = "openai"
	FamilyGroq       = "groq"
	FamilyOpenRouter = "openrouter"
	FamilyOllama     = "ollama"
)

const directTemperature = 0.4

// NewChainFromConfig builds the provider chain in preference order: agent,
// OpenAI, Groq, OpenRouter, Ollama. Providers without credentials are left
// out, LLM_PROVIDER keeps a single family, and offline mode keeps none.
func NewChainFromConfig(cfg *config.Config, functionTools []tools.FunctionTool, metrics *observability.Metrics) *Chain {
	if cfg.OfflineMode {
		slog.Warn("OFFLINE_MODE is set, using the local fallback responder")
		return NewChain(nil, nil, metrics)
	}
	if !cfg.HasProviderCredentials() {
		slog.Warn("No provider credentials configured, using the local fallback responder")
		return NewChain(nil, nil, metrics)
	}

	allowed := func(family string) bool {
		return cfg.LLMProvider == "" || cfg.LLMProvider == family
	}

	var providers []Provider
	if allowed(FamilyOpenAI) && cfg.OpenAIAPIKey != "" {
		if cfg.AgentEnabled {
			providers = append(providers, NewAgentProvider(AgentConfig{
				APIKey:       cfg.OpenAIAPIKey,
				BaseURL:      cfg.OpenAIBaseURL,
				Model:        cfg.OpenAIModel,
				SystemPrompt: cfg.SystemPrompt,
				Tools:        functionTools,
			}))
		}
		providers = append(providers, NewOpenAICompatProvider(OpenAICompatConfig{
			Name:         FamilyOpenAI,
			APIKey:       cfg.OpenAIAPIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			Model:        cfg.OpenAIModel,
			Temperature:  directTemperature,
			SystemPrompt: cfg.SystemPrompt,
		}))
	}
	if allowed(FamilyGroq) && cfg.GroqAPIKey != "" {
		providers = append(providers, NewOpenAICompatProvider(OpenAICompatConfig{
			Name:         FamilyGroq,
			APIKey:       cfg.GroqAPIKey,
			BaseURL:      cfg.GroqBaseURL,
			Model:        cfg.GroqModel,
			Temperature:  directTemperature,
			SystemPrompt: cfg.SystemPrompt,
		}))
	}
	if allowed(FamilyOpenRouter) && cfg.OpenRouterAPIKey != "" {
		providers = append(providers, NewOpenAICompatProvider(OpenAICompatConfig{
			Name:        FamilyOpenRouter,
			APIKey:      cfg.OpenRouterAPIKey,
			BaseURL:     cfg.OpenRouterBaseURL,
			Model:       cfg.OpenRouterModel,
			Temperature: directTemperature,
			Headers: map[string]string{
				"HTTP-Referer": cfg.ClientURL,
				"X-Title":      "BizPilot",
			},
			SystemPrompt: cfg.SystemPrompt,
		}))
	}
	if allowed(FamilyOllama) && cfg.OllamaURL != "" {
		providers = append(providers, NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel, cfg.SystemPrompt))
	}

	if len(providers) == 0 {
		slog.Warn("LLM_PROVIDER matches no configured provider, using the local fallback responder", "llm_provider", cfg.LLMProvider)
	}
	chain := NewChain(providers, nil, metrics)
	slog.Info("Provider chain configured", "providers", chain.Names())
	return chain
}
