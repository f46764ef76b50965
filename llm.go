package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"
)

const defaultOllamaModel = "llama3.1"
const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// Low sampling temperature keeps repeated classifications of the same row
// stable enough to be cacheable.
const llmTemperature = 0.1

const maxContextLines = 2

// EnhancementService refines heuristic classifications through an external
// inference endpoint, consulting the shared classification cache first and
// degrading to a fixed fallback result on any failure. Failures are never
// cached, so a later retry reaches the endpoint again.
type EnhancementService struct {
	cfg   Config
	cache *ClassificationCache
}

func NewEnhancementService(cfg Config, cache *ClassificationCache) *EnhancementService {
	return &EnhancementService{cfg: cfg, cache: cache}
}

// Classify returns the LLM verdict for one activity, with up to two
// neighboring rows as context. Cache hits skip the external call entirely.
func (s *EnhancementService) Classify(ctx context.Context, activityText string, contextLines []string, projectType string) ClassificationResult {
	if len(contextLines) > maxContextLines {
		contextLines = contextLines[:maxContextLines]
	}
	key := CacheKey(activityText, contextLines, projectType)
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	systemPrompt, userPrompt := buildClassificationPrompts(activityText, contextLines, projectType)

	var reply string
	var err error
	switch s.cfg.LLMProvider {
	case "anthropic":
		model := s.cfg.LLMModel
		if model == "" {
			model = defaultAnthropicModel
		}
		reply, err = callAnthropic(ctx, s.cfg.AnthropicAPIKey, model, systemPrompt, userPrompt)
	default:
		model := s.cfg.LLMModel
		if model == "" {
			model = defaultOllamaModel
		}
		reply, err = callOllama(ctx, s.cfg.OllamaURL, model, systemPrompt+"\n\n"+userPrompt)
	}
	if err != nil {
		log.Printf("llm classify error provider=%s err=%v", s.cfg.LLMProvider, err)
		return fallbackResult(err)
	}

	result, err := parseClassificationReply(reply)
	if err != nil {
		log.Printf("llm classify invalid reply provider=%s err=%v", s.cfg.LLMProvider, err)
		return fallbackResult(err)
	}

	s.cache.Set(key, result)
	return result
}

// HealthStatus reports whether the inference endpoint is worth calling.
type HealthStatus struct {
	Reachable      bool `json:"reachable"`
	ModelAvailable bool `json:"model_available"`
	CacheSize      int  `json:"cache_size"`
}

// Health probes the configured endpoint before any batch run. For Ollama it
// checks /api/tags for the configured model; for Anthropic only a key is
// required. Probes use the short health timeout, not the classify budget.
func (s *EnhancementService) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{CacheSize: s.cache.Len()}

	if s.cfg.LLMProvider == "anthropic" {
		status.Reachable = s.cfg.AnthropicAPIKey != ""
		status.ModelAvailable = status.Reachable
		return status
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.OllamaURL+"/api/tags", nil)
	if err != nil {
		return status
	}
	resp, err := healthHTTPClient.Do(req)
	if err != nil {
		log.Printf("llm health probe failed url=%s err=%v", s.cfg.OllamaURL, err)
		return status
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return status
	}
	status.Reachable = true

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return status
	}
	model := s.cfg.LLMModel
	if model == "" {
		model = defaultOllamaModel
	}
	for _, name := range gjson.GetBytes(body, "models.#.name").Array() {
		tag := name.String()
		if tag == model || strings.SplitN(tag, ":", 2)[0] == model {
			status.ModelAvailable = true
			break
		}
	}
	return status
}

func buildClassificationPrompts(activityText string, contextLines []string, projectType string) (string, string) {
	systemPrompt := `You classify construction schedule line items for fire-protection scope.

Rules:
- Sprinkler, standpipe, fire pump, fire main, FDC, deluge and pre-action work is fire protection.
- Generic trades (concrete, drywall, electrical, plumbing) are NOT fire protection unless the line explicitly ties them to fire-protection systems.
- "Test", "flush" and "inspection" lines are fire protection only when the surrounding scope is a fire-protection system.
- Ceiling close-in and above-ceiling inspection lines usually gate sprinkler trim and should be treated as fire protection.
- phase is one of: mobilization, underground, overhead_rough_in, testing, inspections, trim_final, commissioning, unknown.
- category is one of: sprinkler, standpipe, fire_pump, underground_main, alarm_interface, unknown.

Examples:
Input: "DH-1200 ROUGH-IN SPRINKLER LEVEL 2"
Output: {"isFireProtection": true, "confidence": 0.95, "category": "sprinkler", "reasoning": "Explicit sprinkler rough-in scope", "suggestion": "Sprinkler Rough-In Level 2", "phase": "overhead_rough_in"}

Input: "Concrete Pour Foundation"
Output: {"isFireProtection": false, "confidence": 0.98, "category": "unknown", "reasoning": "Structural concrete scope, no fire-protection tie-in", "suggestion": "", "phase": "unknown"}

Respond with JSON only (no markdown):
{"isFireProtection": true, "confidence": 0.9, "category": "sprinkler", "reasoning": "...", "suggestion": "...", "phase": "testing"}`

	var userPrompt strings.Builder
	fmt.Fprintf(&userPrompt, "Project type: %s\n", projectType)
	if len(contextLines) > 0 {
		userPrompt.WriteString("Neighboring schedule lines:\n")
		for _, line := range contextLines {
			fmt.Fprintf(&userPrompt, "- %s\n", strings.TrimSpace(line))
		}
	}
	fmt.Fprintf(&userPrompt, "\nClassify this schedule line:\n%s\n", strings.TrimSpace(activityText))
	return systemPrompt, userPrompt.String()
}

var fencedJSONBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")

// parseClassificationReply extracts and validates the JSON payload from a raw
// model reply. Stage one strips a fenced wrapper if present; stage two
// strict-parses the remainder. A reply is accepted only when isFireProtection
// is a boolean, confidence is numeric, and reasoning is a string.
func parseClassificationReply(raw string) (ClassificationResult, error) {
	body := strings.TrimSpace(raw)
	if m := fencedJSONBlock.FindStringSubmatch(body); m != nil {
		body = m[1]
	}
	if !gjson.Valid(body) {
		return ClassificationResult{}, fmt.Errorf("malformed JSON in LLM reply")
	}

	fp := gjson.Get(body, "isFireProtection")
	conf := gjson.Get(body, "confidence")
	reasoning := gjson.Get(body, "reasoning")
	if fp.Type != gjson.True && fp.Type != gjson.False {
		return ClassificationResult{}, fmt.Errorf("LLM reply: isFireProtection is not a boolean")
	}
	if conf.Type != gjson.Number {
		return ClassificationResult{}, fmt.Errorf("LLM reply: confidence is not numeric")
	}
	if reasoning.Type != gjson.String {
		return ClassificationResult{}, fmt.Errorf("LLM reply: reasoning is not a string")
	}

	category := gjson.Get(body, "category").String()
	if category == "" {
		category = "unknown"
	}
	return ClassificationResult{
		IsFireProtection: fp.Bool(),
		Confidence:       conf.Float(),
		Category:         category,
		Reasoning:        reasoning.String(),
		Suggestion:       gjson.Get(body, "suggestion").String(),
		Phase:            gjson.Get(body, "phase").String(),
	}, nil
}

// fallbackResult is returned for any LLM-path failure. It is intentionally
// not cached so a later retry can succeed once the transient condition
// clears; the heuristic Activity fields remain the baseline.
func fallbackResult(err error) ClassificationResult {
	return ClassificationResult{
		IsFireProtection: false,
		Confidence:       0,
		Category:         "unknown",
		Reasoning:        "LLM classification unavailable, keyword heuristics retained",
		Suggestion:       "",
		Error:            err.Error(),
	}
}

// --- Ollama ---

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func callOllama(ctx context.Context, baseURL, model, prompt string) (string, error) {
	reqBody, err := json.Marshal(ollamaGenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions{Temperature: llmTemperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var genResp ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("parsing Ollama response: %w", err)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("Ollama API error: %s", genResp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Ollama API status %d", resp.StatusCode)
	}

	log.Printf("llm ollama response model=%s size=%d", model, len(genResp.Response))
	return genResp.Response, nil
}

// --- Anthropic ---

func callAnthropic(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(externalHTTPClient),
	)

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   1024,
		Temperature: anthropic.Float(llmTemperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response model=%s size=%d tokens_in=%d tokens_out=%d",
				model, len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic response")
}
