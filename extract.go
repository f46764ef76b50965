package main

import (
	"regexp"
	"strings"
)

// Activity ID patterns in fixed priority order: a short letter prefix with
// digits (DH-1200), a bare numeric token at the start of the row (1040 ...),
// then a dotted numeric path (3.2.14). First pattern with a match wins.
var activityIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Za-z]{1,3}-?\d{2,}\b`),
	regexp.MustCompile(`^(\d{1,5})\s`),
	regexp.MustCompile(`\b\d+(?:\.\d+)+\b`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

const minRowChars = 5

// maskDates blanks date tokens in place so ID patterns cannot fire inside
// them ("Jul-24" would otherwise look like a prefixed code). Equal-length
// padding keeps positions stable for the start-anchored pattern.
func maskDates(text string) string {
	for _, re := range []*regexp.Regexp{reDayMonYear, reSlashDate, reISODate} {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return strings.Repeat(" ", len(m))
		})
	}
	return text
}

// extractActivityID returns the first ID-like token under the fixed pattern
// priority, or "" when the row carries none.
func extractActivityID(text string) string {
	text = maskDates(text)
	for _, re := range activityIDPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if len(m) > 1 {
				return strings.TrimSpace(m[1])
			}
			return strings.TrimSpace(m[0])
		}
	}
	return ""
}

// cleanActivityName strips the extracted ID from the raw row, trims stray
// punctuation, and collapses whitespace runs.
func cleanActivityName(raw, activityID string) string {
	name := raw
	if activityID != "" {
		name = strings.Replace(name, activityID, "", 1)
	}
	name = whitespaceRun.ReplaceAllString(name, " ")
	return strings.Trim(name, " \t.,;:|-*")
}

// AssembleActivity turns one reconstructed row into an Activity. The keyword
// classifier is an unconditional gate: rows it rejects, and rows shorter than
// minRowChars after trimming, produce no Activity at all.
func AssembleActivity(rowText string, rules *KeywordRules) (Activity, bool) {
	text := strings.TrimSpace(rowText)
	if len(text) < minRowChars {
		return Activity{}, false
	}

	c := rules.ClassifyRow(text)
	if !c.IsFireProtection {
		return Activity{}, false
	}

	id := extractActivityID(text)
	dates := extractDates(text)

	a := Activity{
		RawText:    text,
		Name:       cleanActivityName(text, id),
		ActivityID: id,
		Phase:      c.Phase,
		Keywords:   c.Keywords,
	}
	if len(dates) > 0 {
		start := dates[0]
		a.StartDate = &start
	}
	if len(dates) > 1 {
		finish := dates[1]
		a.FinishDate = &finish
		days := durationDays(dates[0], dates[1])
		a.Duration = &days
	}

	_, a.Confidence = c.Score(id != "", len(dates) > 0)
	return a, true
}

// ExtractActivities runs the full extraction pipeline over decoded document
// pages: rows are reconstructed per page, top of page first, and every
// qualifying row becomes one Activity in document order.
func ExtractActivities(pages [][]Fragment, rules *KeywordRules) []Activity {
	var activities []Activity
	for _, page := range pages {
		for _, row := range ReconstructRows(page) {
			if a, ok := AssembleActivity(row.Text(), rules); ok {
				activities = append(activities, a)
			}
		}
	}
	return activities
}
