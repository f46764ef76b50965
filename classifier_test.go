package main

import "testing"

func TestClassifyRowStrongCore(t *testing.T) {
	rules := DefaultKeywordRules()
	for _, text := range []string{
		"Install Sprinkler Mains Level 3",
		"FIRE PROTECTION ROUGH-IN",
		"Set Fire Pump and Jockey Pump",
		"Standpipe riser install",
	} {
		if c := rules.ClassifyRow(text); !c.IsFireProtection {
			t.Fatalf("strong-core text %q should classify as fire protection", text)
		}
	}
}

func TestClassifyRowRejectsUnrelatedTrades(t *testing.T) {
	rules := DefaultKeywordRules()
	for _, text := range []string{
		"Concrete Pour Foundation",
		"Hang Drywall Level 2",
		"Paint Corridor Walls",
	} {
		if c := rules.ClassifyRow(text); c.IsFireProtection {
			t.Fatalf("unrelated text %q should not classify as fire protection (keywords: %v)", text, c.Keywords)
		}
	}
}

func TestClassifyRowCeilingNeedsQualifier(t *testing.T) {
	rules := DefaultKeywordRules()
	// The bare phase vocabulary also has to stay silent for the tier-3 gate
	// to be observable, so use ceiling-only wording.
	with := rules.ClassifyRow("Above ceiling inspection area B")
	if !with.IsFireProtection {
		t.Fatal("ceiling term with qualifier should classify as fire protection")
	}
	if with.Phase != PhaseInspections {
		t.Fatalf("phase = %s, want inspections to outrank ceiling in the priority table", with.Phase)
	}
	if without := rules.ClassifyRow("Hard ceiling layout area B"); without.IsFireProtection {
		t.Fatal("ceiling term without a qualifier should not classify")
	}
}

func TestClassifyRowWeakCoreNeedsContext(t *testing.T) {
	rules := DefaultKeywordRules()
	if c := rules.ClassifyRow("FP scope meeting agenda"); c.IsFireProtection {
		t.Fatal("weak token without activity context should not classify")
	}
	if c := rules.ClassifyRow("FP overhead level 2"); !c.IsFireProtection {
		t.Fatal("weak token with activity context should classify")
	}
}

func TestAssignPhasePriority(t *testing.T) {
	rules := DefaultKeywordRules()
	cases := []struct {
		text string
		want Phase
	}{
		{"Sprinkler hydrostatic test underground main", PhaseTesting},
		{"Fire marshal inspection of sprinkler trim", PhaseInspections},
		{"Sprinkler head trim and escutcheons", PhaseTrimFinal},
		{"Underground fire main u/g", PhaseUnderground},
		{"Sprinkler branch line rough-in", PhaseOverhead},
		{"Fire pump startup and commissioning", PhaseCommissioning},
		{"Fire protection permit and submittal", PhaseMobilization},
		{"Sprinkler piping level 4", PhaseOverhead},
		{"Fire protection scope tbd", PhaseUnknown},
	}
	for _, tc := range cases {
		if c := rules.ClassifyRow(tc.text); c.Phase != tc.want {
			t.Fatalf("phase for %q = %s, want %s", tc.text, c.Phase, tc.want)
		}
	}
}

func TestScoreTiers(t *testing.T) {
	rules := DefaultKeywordRules()

	// strong-core (+3) + phase hint (+1) + >=2 keywords (+1) + id (+1) = 6
	c := rules.ClassifyRow("DH-1200 ROUGH-IN SPRINKLER")
	score, tier := c.Score(true, false)
	if tier != ConfidenceHigh {
		t.Fatalf("score=%d tier=%s, want high", score, tier)
	}

	// Single weak signal stays low.
	c = rules.ClassifyRow("submit paperwork")
	if _, tier := c.Score(false, false); tier != ConfidenceLow {
		t.Fatalf("tier = %s, want low", tier)
	}
}

// Adding a second distinct keyword never lowers the computed tier.
func TestScoreMonotonicInKeywords(t *testing.T) {
	rules := DefaultKeywordRules()
	one := rules.ClassifyRow("Sprinkler level 2")
	two := rules.ClassifyRow("Sprinkler rough-in level 2")

	rank := map[ConfidenceTier]int{ConfidenceLow: 0, ConfidenceMedium: 1, ConfidenceHigh: 2}
	for _, hasID := range []bool{false, true} {
		for _, hasDate := range []bool{false, true} {
			_, t1 := one.Score(hasID, hasDate)
			_, t2 := two.Score(hasID, hasDate)
			if rank[t2] < rank[t1] {
				t.Fatalf("adding a keyword lowered confidence: %s -> %s (id=%t date=%t)", t1, t2, hasID, hasDate)
			}
		}
	}
}

func TestKeywordsDeduplicated(t *testing.T) {
	rules := DefaultKeywordRules()
	c := rules.ClassifyRow("sprinkler sprinkler test test")
	seen := map[string]bool{}
	for _, k := range c.Keywords {
		if seen[k] {
			t.Fatalf("keyword %q appears twice in %v", k, c.Keywords)
		}
		seen[k] = true
	}
}
