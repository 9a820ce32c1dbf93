package agent

import (
	"context"
	"fmt"
	"log/slog"

	"bundesanzeiger/pkg/core/llm"
)

// Config selects LLM providers globally and per agent. It is loaded
// from config/models.yaml by the entrypoints.
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Model       string `yaml:"model"`    // Optional model override
	Description string `yaml:"description"`
}

// Manager routes prompt execution to the configured provider.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
	log       *slog.Logger
}

func NewManager(config Config, log *slog.Logger) *Manager {
	if config.ActiveProvider == "" {
		config.ActiveProvider = "openrouter"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"gemini":     &llm.GeminiProvider{},
			"openrouter": &llm.OpenRouterProvider{},
		},
		log: log,
	}
}

// GetProvider resolves the provider for an agent type, preferring the
// per-agent override, then the global active provider.
func (m *Manager) GetProvider(agentType string) llm.Provider {
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}

	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}

	return m.providers["openrouter"]
}

// ExecutePrompt handles instruction adaptation before sending to the model.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(agentType)

	if options == nil {
		options = map[string]interface{}{}
	}
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Model != "" {
		if _, set := options["model"]; !set {
			options["model"] = agentConfig.Model
		}
	}

	m.log.Debug("executing prompt", "agent", agentType, "provider", fmt.Sprintf("%T", provider))

	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)
	return provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, options)
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	return nil
}

func (m *Manager) GetActiveProvider() string {
	return m.config.ActiveProvider
}
