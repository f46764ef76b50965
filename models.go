package main

import (
	"math"
	"time"
)

// Phase is one construction lifecycle stage for a fire-protection activity.
type Phase string

const (
	PhaseMobilization  Phase = "mobilization"
	PhaseUnderground   Phase = "underground"
	PhaseOverhead      Phase = "overhead_rough_in"
	PhaseTesting       Phase = "testing"
	PhaseInspections   Phase = "inspections"
	PhaseTrimFinal     Phase = "trim_final"
	PhaseCommissioning Phase = "commissioning"
	PhaseUnknown       Phase = "unknown"
)

// ConfidenceTier is the heuristic-only certainty bucket, distinct from the
// LLM's continuous [0,1] confidence.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// Activity is one candidate unit of schedule work extracted from a document.
// Base fields are set once at assembly; LLM stays nil until enhancement runs
// and enhancement never clears a base field.
type Activity struct {
	RawText    string         `json:"raw_text"`
	Name       string         `json:"name"`
	ActivityID string         `json:"activity_id,omitempty"`
	Phase      Phase          `json:"phase"`
	StartDate  *time.Time     `json:"start_date,omitempty"`
	FinishDate *time.Time     `json:"finish_date,omitempty"`
	Duration   *int           `json:"duration_days,omitempty"`
	Confidence ConfidenceTier `json:"confidence"`
	Keywords   []string       `json:"keywords"`
	LLM        *LLMOverlay    `json:"llm,omitempty"`
}

// LLMOverlay carries the enhancement fields layered onto an Activity after a
// classification call (or its fallback) resolves.
type LLMOverlay struct {
	IsFireProtection bool    `json:"is_fire_protection"`
	Confidence       float64 `json:"confidence"`
	Category         string  `json:"category"`
	Reasoning        string  `json:"reasoning"`
	SuggestedName    string  `json:"suggested_name,omitempty"`
	Phase            string  `json:"phase,omitempty"`
}

// ClassificationResult is the payload produced by either the LLM path or the
// heuristic fallback. Structurally identical regardless of origin; this is
// the unit stored in the classification cache.
type ClassificationResult struct {
	IsFireProtection bool    `json:"is_fire_protection"`
	Confidence       float64 `json:"confidence"`
	Category         string  `json:"category"`
	Reasoning        string  `json:"reasoning"`
	Suggestion       string  `json:"suggestion"`
	Phase            string  `json:"phase,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// durationDays returns ceil(finish-start) in days. When a row's dates are
// reverse-ordered the result is negative and passed through verbatim so the
// anomaly in the source document stays visible to the reviewer.
func durationDays(start, finish time.Time) int {
	return int(math.Ceil(finish.Sub(start).Hours() / 24))
}

func overlayFrom(r ClassificationResult) *LLMOverlay {
	return &LLMOverlay{
		IsFireProtection: r.IsFireProtection,
		Confidence:       r.Confidence,
		Category:         r.Category,
		Reasoning:        r.Reasoning,
		SuggestedName:    r.Suggestion,
		Phase:            r.Phase,
	}
}
