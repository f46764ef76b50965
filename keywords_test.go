package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadKeywordRulesDefaultsWhenUnconfigured(t *testing.T) {
	rules, err := LoadKeywordRules("")
	if err != nil {
		t.Fatalf("LoadKeywordRules: %v", err)
	}
	if len(rules.StrongCore) == 0 || len(rules.PhaseTerms) == 0 {
		t.Fatal("built-in tables should not be empty")
	}
}

func TestLoadKeywordRulesMergesExtensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	content := `
strong_core:
  - clean agent
  - sprinkler
phases:
  testing:
    - main drain
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write extensions: %v", err)
	}

	rules, err := LoadKeywordRules(path)
	if err != nil {
		t.Fatalf("LoadKeywordRules: %v", err)
	}

	c := rules.ClassifyRow("Clean agent discharge test room 104")
	if !c.IsFireProtection {
		t.Fatal("extension strong-core term should classify")
	}
	if p := rules.ClassifyRow("Sprinkler main drain level 1"); p.Phase != PhaseTesting {
		t.Fatalf("extension phase term not applied, phase = %s", p.Phase)
	}

	// Duplicates are not re-added.
	count := 0
	for _, term := range rules.StrongCore {
		if term == "sprinkler" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("duplicate term appended, sprinkler appears %d times", count)
	}
}

func TestLoadKeywordRulesRejectsUnknownPhase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	if err := os.WriteFile(path, []byte("phases:\n  demolition:\n    - wreck\n"), 0644); err != nil {
		t.Fatalf("write extensions: %v", err)
	}
	if _, err := LoadKeywordRules(path); err == nil {
		t.Fatal("unknown phase name should be rejected")
	}
}
