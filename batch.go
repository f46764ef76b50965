package main

import (
	"context"
	"log"
	"sync"
)

// ClassifyBatch fans enhancement calls out over activities in contiguous
// windows of the configured concurrency. The next window starts only after
// the current one fully resolves, which caps the inference endpoint's
// concurrent load at a constant. Results land at the same index as their
// input regardless of completion order, and each call's neighbor context is
// taken from the original list, not the window, so context stays correct
// across window boundaries.
func (s *EnhancementService) ClassifyBatch(ctx context.Context, activities []Activity, projectType string) []ClassificationResult {
	results := make([]ClassificationResult, len(activities))
	window := s.cfg.LLMConcurrency
	if window < 1 {
		window = 5
	}

	for start := 0; start < len(activities); start += window {
		end := start + window
		if end > len(activities) {
			end = len(activities)
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = s.Classify(ctx, activities[idx].RawText, neighborContext(activities, idx), projectType)
			}(i)
		}
		wg.Wait()
	}
	return results
}

// neighborContext returns the raw text of the immediately preceding and
// following activities in the full list.
func neighborContext(activities []Activity, idx int) []string {
	var lines []string
	if idx > 0 {
		lines = append(lines, activities[idx-1].RawText)
	}
	if idx+1 < len(activities) {
		lines = append(lines, activities[idx+1].RawText)
	}
	return lines
}

// EnhanceSummary is the enhance operation's response payload.
type EnhanceSummary struct {
	Activities          []Activity `json:"activities"`
	Total               int        `json:"total"`
	FireProtectionCount int        `json:"fire_protection_count"`
}

// EnhanceActivities overlays LLM verdicts onto a copy of the activity list.
// The health probe runs first: when the endpoint is unreachable or the model
// is missing, the whole batch is skipped and the heuristic results stand.
// Input activities are never mutated; enhancement only adds overlay fields.
func (s *EnhancementService) EnhanceActivities(ctx context.Context, activities []Activity, projectType string) EnhanceSummary {
	enhanced := make([]Activity, len(activities))
	copy(enhanced, activities)
	summary := EnhanceSummary{Activities: enhanced, Total: len(enhanced)}

	health := s.Health(ctx)
	if !health.Reachable || !health.ModelAvailable {
		log.Printf("llm unavailable reachable=%t model_available=%t activities=%d, keeping heuristic-only results",
			health.Reachable, health.ModelAvailable, len(enhanced))
		summary.FireProtectionCount = len(enhanced)
		return summary
	}

	results := s.ClassifyBatch(ctx, enhanced, projectType)
	for i, r := range results {
		enhanced[i].LLM = overlayFrom(r)
		if r.Error != "" {
			// Fallback result: the heuristic verdict stands, and the
			// assembler only admits fire-protection rows.
			summary.FireProtectionCount++
			continue
		}
		if r.IsFireProtection {
			summary.FireProtectionCount++
		}
	}
	return summary
}
