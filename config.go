package main

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`

	LLMProvider     string `yaml:"llm_provider"` // "ollama" or "anthropic"
	LLMModel        string `yaml:"llm_model"`
	OllamaURL       string `yaml:"ollama_url"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	LLMConcurrency    int `yaml:"llm_concurrency"`
	LLMTimeoutSeconds int `yaml:"llm_timeout_seconds"`

	CacheTTLMinutes    int    `yaml:"cache_ttl_minutes"`
	CacheClearSchedule string `yaml:"cache_clear_schedule"` // cron spec, empty = disabled

	KeywordRulesPath string `yaml:"keyword_rules_path"`
	ProjectType      string `yaml:"project_type"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.OllamaURL, "OLLAMA_URL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverrideInt(&cfg.LLMConcurrency, "LLM_CONCURRENCY")
	envOverrideInt(&cfg.LLMTimeoutSeconds, "LLM_TIMEOUT_SECONDS")
	envOverrideInt(&cfg.CacheTTLMinutes, "CACHE_TTL_MINUTES")
	envOverride(&cfg.CacheClearSchedule, "CACHE_CLEAR_SCHEDULE")
	envOverride(&cfg.KeywordRulesPath, "KEYWORD_RULES_PATH")
	envOverride(&cfg.ProjectType, "PROJECT_TYPE")

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./firesched.db"
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "ollama"
	}
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = "http://localhost:11434"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultOllamaModel
	}
	if cfg.LLMConcurrency == 0 {
		cfg.LLMConcurrency = 5
	}
	if cfg.LLMTimeoutSeconds == 0 {
		cfg.LLMTimeoutSeconds = 30
	}
	if cfg.CacheTTLMinutes == 0 {
		cfg.CacheTTLMinutes = 60
	}
	if cfg.ProjectType == "" {
		cfg.ProjectType = "commercial"
	}

	// Validate
	switch cfg.LLMProvider {
	case "ollama":
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	default:
		log.Fatalf("llm_provider must be 'ollama' or 'anthropic', got '%s'", cfg.LLMProvider)
	}
	if cfg.LLMConcurrency < 1 {
		log.Fatalf("invalid llm_concurrency '%d': must be >= 1", cfg.LLMConcurrency)
	}
	if cfg.LLMTimeoutSeconds < 1 {
		log.Fatalf("invalid llm_timeout_seconds '%d': must be >= 1", cfg.LLMTimeoutSeconds)
	}
	if cfg.CacheTTLMinutes < 1 {
		log.Fatalf("invalid cache_ttl_minutes '%d': must be >= 1", cfg.CacheTTLMinutes)
	}
	if cfg.KeywordRulesPath != "" {
		if _, err := LoadKeywordRules(cfg.KeywordRulesPath); err != nil {
			log.Fatalf("invalid keyword_rules_path '%s': %v", cfg.KeywordRulesPath, err)
		}
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
