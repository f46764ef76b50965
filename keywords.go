package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordRules holds the tiered detection vocabulary and the per-phase term
// tables. The built-in tables cover the standard fire-protection scope; a
// yaml extension file can add project-specific terms on top (tables are only
// ever extended, never replaced).
type KeywordRules struct {
	StrongCore []string
	MEPContext []string
	Ceiling    []string
	WeakCore   []string
	PhaseTerms map[Phase][]string
}

// keywordExtensions mirrors the yaml extension file shape.
type keywordExtensions struct {
	StrongCore []string            `yaml:"strong_core"`
	MEPContext []string            `yaml:"mep_context"`
	Ceiling    []string            `yaml:"ceiling"`
	WeakCore   []string            `yaml:"weak_core"`
	Phases     map[string][]string `yaml:"phases"`
}

// DefaultKeywordRules returns the built-in vocabulary.
func DefaultKeywordRules() *KeywordRules {
	return &KeywordRules{
		StrongCore: []string{
			"sprinkler", "fire protection", "fire pump", "fire suppression",
			"standpipe", "fire main", "fire service main", "fire riser",
			"deluge", "pre-action", "preaction", "jockey pump", "fire hydrant",
			"fdc", "fire department connection",
		},
		MEPContext: []string{
			"fp rough", "fp install", "fp trim", "wet pipe", "dry pipe",
			"fire line", "riser room", "mep rough-in",
		},
		Ceiling: []string{
			"ceiling grid", "hard ceiling", "above ceiling", "ceiling close",
			"ceiling",
		},
		WeakCore: []string{
			"fp", "spk", "sprk", "heads",
		},
		PhaseTerms: map[Phase][]string{
			PhaseTesting: {
				"hydro", "hydrostatic", "flush", "pressure test", "flow test", "test",
			},
			PhaseInspections: {
				"inspection", "inspect", "fire marshal", "ahj",
			},
			PhaseTrimFinal: {
				"trim", "escutcheon", "head swap", "drops", "final", "punch",
			},
			PhaseUnderground: {
				"underground", "u/g", "site main", "thrust block", "trench", "bury",
			},
			PhaseOverhead: {
				"overhead", "oh rough", "rough-in", "rough in", "branch line",
				"mains", "hanger", "bracing",
			},
			PhaseCommissioning: {
				"commission", "startup", "turnover", "closeout", "demonstration",
			},
			PhaseMobilization: {
				"mobilization", "mobilize", "permit", "submittal", "submit",
				"shop drawing", "procurement", "delivery", "coordination", "bim",
			},
		},
	}
}

// LoadKeywordRules returns the defaults merged with the extension file at
// path, if one is configured.
func LoadKeywordRules(path string) (*KeywordRules, error) {
	rules := DefaultKeywordRules()
	if strings.TrimSpace(path) == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword extensions: %w", err)
	}
	var ext keywordExtensions
	if err := yaml.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("parse keyword extensions yaml: %w", err)
	}
	rules.StrongCore = appendTerms(rules.StrongCore, ext.StrongCore)
	rules.MEPContext = appendTerms(rules.MEPContext, ext.MEPContext)
	rules.Ceiling = appendTerms(rules.Ceiling, ext.Ceiling)
	rules.WeakCore = appendTerms(rules.WeakCore, ext.WeakCore)
	for name, terms := range ext.Phases {
		phase, ok := phaseByName(name)
		if !ok {
			return nil, fmt.Errorf("keyword extensions: unknown phase %q", name)
		}
		rules.PhaseTerms[phase] = appendTerms(rules.PhaseTerms[phase], terms)
	}
	return rules, nil
}

func appendTerms(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, t := range base {
		seen[normalizeTerm(t)] = true
	}
	for _, t := range extra {
		n := normalizeTerm(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		base = append(base, n)
	}
	return base
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func phaseByName(name string) (Phase, bool) {
	switch normalizeTerm(name) {
	case "mobilization":
		return PhaseMobilization, true
	case "underground":
		return PhaseUnderground, true
	case "overhead_rough_in", "overhead":
		return PhaseOverhead, true
	case "testing":
		return PhaseTesting, true
	case "inspections":
		return PhaseInspections, true
	case "trim_final", "trim":
		return PhaseTrimFinal, true
	case "commissioning":
		return PhaseCommissioning, true
	default:
		return PhaseUnknown, false
	}
}
