package dataprocessing

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var (
	commonDisallowed  = regexp.MustCompile(`[^a-zA-Z0-9:/ -]`)
	dateDisallowed    = regexp.MustCompile(`[^0-9:/ -]`)
	nameDisallowed    = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	isoDatePattern    = regexp.MustCompile(`[0-9]{4}-[0-9]{2}-[0-9]{2}`)
	leadingHyphens    = regexp.MustCompile(`^-+`)
	trailingNonAmount = regexp.MustCompile(`[^0-9.]+$`)
)

// fallbackTimeLayouts are tried after cast's built-in layouts. The first entry
// matches a timestamp whose seconds were cut by NormalizeDateText.
var fallbackTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// CleanCommon trims v and removes every character outside [A-Za-z0-9 :/-]
func CleanCommon(v string) string {
	return commonDisallowed.ReplaceAllString(strings.TrimSpace(v), "")
}

// NormalizeDateText keeps only [0-9:/ -] and cuts the last three characters
// when more than ten remain, which drops the seconds of a full timestamp.
func NormalizeDateText(v string) string {
	v = dateDisallowed.ReplaceAllString(v, "")
	if len(v) > 10 {
		v = v[:len(v)-3]
	}
	return v
}

// StripNameSymbols removes everything except ASCII letters, digits and whitespace, then trims
func StripNameSymbols(v string) string {
	return strings.TrimSpace(nameDisallowed.ReplaceAllString(v, ""))
}

// StripLeadingHyphens removes a run of leading '-' characters
func StripLeadingHyphens(v string) string {
	return leadingHyphens.ReplaceAllString(v, "")
}

// ExtractISODate finds the first YYYY-MM-DD substring of v and parses it.
// ok is false when there is none or it is not a real calendar date.
func ExtractISODate(v string) (t time.Time, ok bool) {
	m := isoDatePattern.FindString(v)
	if m == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", m)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CoerceFloat parses a numeric field. Unparseable, empty or non-finite input
// ("inf", "NaN") yields NaN, which fails every ordered comparison, so range
// checks drop the row and cleaned values are always finite.
func CoerceFloat(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return math.NaN()
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// CoerceAmount parses a money amount after removing trailing non-numeric
// characters (currency codes, stray symbols) and comma thousands separators.
func CoerceAmount(v string) float64 {
	v = trailingNonAmount.ReplaceAllString(strings.TrimSpace(v), "")
	return CoerceFloat(strings.ReplaceAll(v, ",", ""))
}

// ParseTimestamp parses a date or date-time in any common layout
func ParseTimestamp(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	if t, err := cast.ToTimeE(v); err == nil {
		return t, true
	}
	for _, layout := range fallbackTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
