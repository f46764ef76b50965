package main

import (
	"sort"
	"strings"
	"unicode"
)

// RowClassification is the keyword classifier's verdict for one row of text.
// It is pure and deterministic: no external calls, no shared state.
type RowClassification struct {
	IsFireProtection bool
	Phase            Phase
	Keywords         []string

	strongCore bool
	mepContext bool
	phaseHint  bool
}

// ceilingQualifiers gate tier 3: ceiling vocabulary alone is too generic, it
// only signals fire-protection work next to one of these.
var ceilingQualifiers = []string{"inspection", "install", "close"}

// weakContexts gate tier 4: short tokens like "fp" count only alongside an
// activity-context term.
var weakContexts = []string{"rough", "overhead", "oh ", "underground", "u/g", "test", "inspection"}

// ClassifyRow runs the five-tier detection cascade and the phase priority
// table over one row of text. Each tier is consulted only when no earlier
// tier matched; phase assignment is independent of which tier fired.
func (r *KeywordRules) ClassifyRow(text string) RowClassification {
	lower := strings.ToLower(text)

	strong := matchTerms(lower, r.StrongCore)
	mep := matchTerms(lower, r.MEPContext)
	ceiling := matchTerms(lower, r.Ceiling)
	weak := matchTerms(lower, r.WeakCore)

	phaseMatches := make(map[Phase][]string, len(r.PhaseTerms))
	var anyPhase []string
	for phase, terms := range r.PhaseTerms {
		m := matchTerms(lower, terms)
		phaseMatches[phase] = m
		anyPhase = append(anyPhase, m...)
	}

	detected := false
	switch {
	case len(strong) > 0:
		detected = true
	case len(mep) > 0:
		detected = true
	case len(ceiling) > 0 && matchesAny(lower, ceilingQualifiers):
		detected = true
	case len(weak) > 0 && matchesAny(lower, weakContexts):
		detected = true
	case len(anyPhase) > 0:
		detected = true
	}

	c := RowClassification{
		IsFireProtection: detected,
		Phase:            r.assignPhase(lower, phaseMatches, ceiling, mep),
		strongCore:       len(strong) > 0,
		mepContext:       len(mep) > 0,
		phaseHint:        len(anyPhase) > 0,
	}
	c.Keywords = dedupeTerms(strong, mep, ceiling, weak, anyPhase)
	return c
}

// assignPhase walks the fixed priority table top to bottom; the first bucket
// with a match wins regardless of which detection tier fired.
func (r *KeywordRules) assignPhase(lower string, phaseMatches map[Phase][]string, ceiling, mep []string) Phase {
	switch {
	case len(phaseMatches[PhaseTesting]) > 0:
		return PhaseTesting
	case len(phaseMatches[PhaseInspections]) > 0:
		return PhaseInspections
	case len(phaseMatches[PhaseTrimFinal]) > 0:
		return PhaseTrimFinal
	case len(ceiling) > 0:
		return PhaseTrimFinal
	case len(phaseMatches[PhaseUnderground]) > 0:
		return PhaseUnderground
	case len(phaseMatches[PhaseOverhead]) > 0 || len(mep) > 0:
		return PhaseOverhead
	case len(phaseMatches[PhaseCommissioning]) > 0:
		return PhaseCommissioning
	case len(phaseMatches[PhaseMobilization]) > 0:
		return PhaseMobilization
	case strings.Contains(lower, "rough") || strings.Contains(lower, "piping"):
		return PhaseOverhead
	case strings.Contains(lower, "permit") || strings.Contains(lower, "submit"):
		return PhaseMobilization
	default:
		return PhaseUnknown
	}
}

// Score computes the additive heuristic confidence for a classified row:
// strong-core +3, MEP-context +2, two or more distinct keywords +1, extracted
// activity ID +1, extracted date +1, phase indicator +1. The tier cutoffs are
// >=5 high and >=3 medium.
func (c RowClassification) Score(hasID, hasDate bool) (int, ConfidenceTier) {
	score := 0
	if c.strongCore {
		score += 3
	}
	if c.mepContext {
		score += 2
	}
	if len(c.Keywords) >= 2 {
		score++
	}
	if hasID {
		score++
	}
	if hasDate {
		score++
	}
	if c.phaseHint {
		score++
	}

	switch {
	case score >= 5:
		return score, ConfidenceHigh
	case score >= 3:
		return score, ConfidenceMedium
	default:
		return score, ConfidenceLow
	}
}

// matchTerms returns every term found in the lowered text. Short single
// tokens match on word boundaries so "fp" cannot fire inside an unrelated
// word; phrases match as substrings.
func matchTerms(lower string, terms []string) []string {
	var out []string
	for _, term := range terms {
		if termMatches(lower, term) {
			out = append(out, term)
		}
	}
	return out
}

func matchesAny(lower string, terms []string) bool {
	for _, term := range terms {
		if termMatches(lower, term) {
			return true
		}
	}
	return false
}

func termMatches(lower, term string) bool {
	if len(term) <= 4 && !strings.Contains(term, " ") {
		return containsWord(lower, term)
	}
	return strings.Contains(lower, term)
}

func containsWord(lower, word string) bool {
	for start := 0; ; {
		idx := strings.Index(lower[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)
		beforeOK := idx == 0 || !isWordChar(rune(lower[idx-1]))
		afterOK := end == len(lower) || !isWordChar(rune(lower[end]))
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func dedupeTerms(groups ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range groups {
		for _, term := range group {
			if seen[term] {
				continue
			}
			seen[term] = true
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}
