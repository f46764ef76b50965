package main

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Schedule exports mix date formats freely, sometimes within one row. Three
// pattern families are recognized, tried in a fixed order:
//
//	1. DD-MMM-YY[YY]   (Primavera style, e.g. 01-Jul-24)
//	2. MM/DD/YY[YY]
//	3. YYYY-MM-DD
//
// The first family that structurally matches a string is used exclusively;
// a string that matches family 1 but fails calendar validation is never
// retried against family 2.
var (
	reDayMonYear = regexp.MustCompile(`(?i)\b(\d{1,2})-(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)-(\d{4}|\d{2})\b`)
	reSlashDate  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})\b`)
	reISODate    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseScheduleDate parses a single date-like string into a calendar date
// (midnight UTC, no time-of-day component). Returns false when no family
// matches structurally or the matched family yields an invalid calendar date.
func ParseScheduleDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	if m := reDayMonYear.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthAbbrevs[strings.ToLower(m[2])]
		return makeDate(expandYear(m[3]), month, day)
	}
	if m := reSlashDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return time.Time{}, false
		}
		return makeDate(expandYear(m[3]), time.Month(month), day)
	}
	if m := reISODate.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 {
			return time.Time{}, false
		}
		return makeDate(year, time.Month(month), day)
	}
	return time.Time{}, false
}

// expandYear widens a 2-digit year: <50 lands in the 2000s, >=50 in the 1900s.
func expandYear(s string) int {
	year, _ := strconv.Atoi(s)
	if len(s) == 4 {
		return year
	}
	if year < 50 {
		return 2000 + year
	}
	return 1900 + year
}

// makeDate rejects values time.Date would silently normalize (day 32 etc.).
func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// extractDates finds every parseable date substring in a row, deduplicated by
// exact timestamp and sorted chronologically. The assembler takes the
// earliest as start and the second-earliest as finish.
func extractDates(text string) []time.Time {
	var out []time.Time
	seen := make(map[time.Time]bool)
	for _, re := range []*regexp.Regexp{reDayMonYear, reSlashDate, reISODate} {
		for _, m := range re.FindAllString(text, -1) {
			d, ok := ParseScheduleDate(m)
			if !ok || seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
