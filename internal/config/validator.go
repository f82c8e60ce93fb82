package config

import (
	"fmt"
)

// Validate checks the configuration for values that would break a run.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "groq", "anthropic":
	default:
		return fmt.Errorf("unsupported provider: %s", c.LLM.Provider)
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1")
	}
	if c.LLM.BackoffMS < 0 {
		return fmt.Errorf("backoff cannot be negative")
	}

	b := c.Arena.Budgets
	if b.Quick <= 0 || b.Standard <= 0 || b.Deep <= 0 {
		return fmt.Errorf("token budgets must be positive")
	}
	if !(b.Quick < b.Standard && b.Standard < b.Deep) {
		return fmt.Errorf("token budgets must increase with depth (quick < standard < deep)")
	}

	for name, temp := range map[string]float64{
		"builder":    c.Arena.Temperatures.Builder,
		"challenger": c.Arena.Temperatures.Challenger,
		"judge":      c.Arena.Temperatures.Judge,
	} {
		if temp < 0 || temp > 2 {
			return fmt.Errorf("%s temperature must be between 0 and 2", name)
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.TimeoutSeconds <= 0 {
		return fmt.Errorf("server timeout must be positive")
	}

	return nil
}
