// Package normalize turns the raw date and amount tokens found in uploaded
// statements into canonical values. Statement exports disagree wildly on
// formatting, so both parsers try a fixed sequence of interpretations and
// fail loudly instead of guessing.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"receipt-reconciliation-backend/internal/apperr"
)

// CanonicalDateLayout is the output form for every parsed date.
const CanonicalDateLayout = "2006-01-02"

type datePattern struct {
	re             *regexp.Regexp
	year, mon, day int // capture group indexes
}

// Ordered: first structural match wins, then the captured parts must
// survive a calendar round-trip (rejects day=31 in April and the like).
var datePatterns = []datePattern{
	{regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), 1, 2, 3},   // YYYY-MM-DD
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), 3, 1, 2},   // MM/DD/YYYY, M/D/YYYY
	{regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), 3, 1, 2},   // MM-DD-YYYY
	{regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`), 1, 2, 3},   // YYYY/MM/DD
	{regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`), 3, 2, 1}, // DD.MM.YYYY, D.M.YYYY
}

// Layouts for the permissive fallback pass.
var fallbackLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2 2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"01/02/06",
}

var concatDate = regexp.MustCompile(`^(\d{2})(\d{2})(\d{4})$`) // MMDDYYYY

// ParseDate parses an arbitrary date token into a UTC calendar date.
// It never returns an unvalidated value: any interpretation that does not
// round-trip as a real calendar date is a parse failure.
func ParseDate(token string) (time.Time, error) {
	s := strings.TrimSpace(token)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &apperr.Error{Kind: apperr.ParseError, Field: "date", Msg: "empty date"}
	}

	if t, ok := matchPatterns(s); ok {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	// Substitution edge cases: separator confusion and bare concatenation.
	if strings.Contains(s, "/") {
		if t, ok := matchPatterns(strings.ReplaceAll(s, "/", "-")); ok {
			return t, nil
		}
	}
	if strings.Contains(s, ".") {
		if t, ok := matchPatterns(strings.ReplaceAll(s, ".", "-")); ok {
			return t, nil
		}
	}
	if m := concatDate.FindStringSubmatch(s); m != nil {
		if t, ok := buildDate(m[3], m[1], m[2]); ok {
			return t, nil
		}
	}

	return time.Time{}, &apperr.Error{
		Kind:  apperr.ParseError,
		Field: "date",
		Msg:   fmt.Sprintf("unrecognized date %q", token),
	}
}

func matchPatterns(s string) (time.Time, bool) {
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if t, ok := buildDate(m[p.year], m[p.mon], m[p.day]); ok {
			return t, true
		}
		// Structural match with an impossible date: keep trying the
		// remaining patterns rather than failing outright.
	}
	return time.Time{}, false
}

// buildDate assembles a date from captured parts and validates the
// round-trip (time.Date silently normalizes overflow, e.g. Apr 31 -> May 1).
func buildDate(ys, ms, ds string) (time.Time, bool) {
	year, _ := strconv.Atoi(ys)
	month, _ := strconv.Atoi(ms)
	day, _ := strconv.Atoi(ds)
	if year < 1000 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders t in the canonical YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format(CanonicalDateLayout)
}
