package main

import (
	"log"
	"time"
)

func main() {
	cfg := LoadConfig()
	appliedTimeout := ConfigureExternalHTTPClient(cfg.LLMTimeoutSeconds)
	log.Printf(
		"Config loaded. Provider=%s Model=%s Concurrency=%d CacheTTL=%dm Timeout=%s Listen=%s",
		cfg.LLMProvider, cfg.LLMModel, cfg.LLMConcurrency, cfg.CacheTTLMinutes, appliedTimeout, cfg.ListenAddr,
	)

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	rules, err := LoadKeywordRules(cfg.KeywordRulesPath)
	if err != nil {
		log.Fatalf("Failed to load keyword rules: %v", err)
	}

	cache := NewClassificationCache(time.Duration(cfg.CacheTTLMinutes) * time.Minute)
	svc := NewEnhancementService(cfg, cache)
	corrections := NewCorrectionStore(db)

	StartCacheClearScheduler(cfg, cache)

	server := NewServer(cfg, rules, cache, svc, corrections)
	log.Printf("Starting fire-protection schedule service on %s", cfg.ListenAddr)
	if err := server.Router().Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
