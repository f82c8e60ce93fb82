package config

// Config represents the main arena configuration
type Config struct {
	// LLM call layer
	LLM LLMConfig `json:"llm" mapstructure:"llm"`

	// Arena generation knobs
	Arena ArenaConfig `json:"arena" mapstructure:"arena"`

	// HTTP server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// LLMConfig holds provider and resilience settings
type LLMConfig struct {
	Provider       string   `json:"provider" mapstructure:"provider"` // groq, anthropic
	Model          string   `json:"model" mapstructure:"model"`
	FallbackModels []string `json:"fallback_models" mapstructure:"fallback_models"`
	MaxAttempts    int      `json:"max_attempts" mapstructure:"max_attempts"`
	BackoffMS      int      `json:"backoff_ms" mapstructure:"backoff_ms"` // initial delay, doubles per retry
}

// ArenaConfig holds the depth→budget table and per-role temperatures
type ArenaConfig struct {
	Budgets      BudgetsConfig      `json:"budgets" mapstructure:"budgets"`
	Temperatures TemperaturesConfig `json:"temperatures" mapstructure:"temperatures"`
}

// BudgetsConfig maps depth to output token budget
type BudgetsConfig struct {
	Quick    int `json:"quick" mapstructure:"quick"`
	Standard int `json:"standard" mapstructure:"standard"`
	Deep     int `json:"deep" mapstructure:"deep"`
}

// TemperaturesConfig holds per-role generation temperatures
type TemperaturesConfig struct {
	Builder    float64 `json:"builder" mapstructure:"builder"`
	Challenger float64 `json:"challenger" mapstructure:"challenger"`
	Judge      float64 `json:"judge" mapstructure:"judge"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host               string `json:"host" mapstructure:"host"`
	Port               int    `json:"port" mapstructure:"port"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute"`
	TimeoutSeconds     int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	File   string `json:"file" mapstructure:"file"`
	Pretty bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "groq",
			Model:    "llama-3.3-70b-versatile",
			FallbackModels: []string{
				"llama-3.1-8b-instant",
				"llama3-70b-8192",
				"llama3-8b-8192",
			},
			MaxAttempts: 3,
			BackoffMS:   1000,
		},
		Arena: ArenaConfig{
			Budgets: BudgetsConfig{
				Quick:    400,
				Standard: 900,
				Deep:     1600,
			},
			Temperatures: TemperaturesConfig{
				Builder:    0.4,
				Challenger: 0.7,
				Judge:      0.4,
			},
		},
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               3001,
			RateLimitPerMinute: 100,
			TimeoutSeconds:     180,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
