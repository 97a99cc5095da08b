package persona

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dmyDateRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
)

// fallbackDateLayouts are tried in order once the ISO and day/month/year
// forms have been ruled out.
var fallbackDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// ParseDate converts a user-entered birth date to ISO form (YYYY-MM-DD).
//
// ISO input passes through. Day-first input separated by "/" or "-" is
// zero-padded, and two-digit years are read as 19xx. The second return value
// is false when nothing matched.
func ParseDate(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if isoDateRe.MatchString(v) {
		return v, true
	}
	if m := dmyDateRe.FindStringSubmatch(v); m != nil {
		year := m[3]
		if len(year) == 2 {
			year = "19" + year
		}
		return fmt.Sprintf("%s-%s-%s", year, pad2(m[2]), pad2(m[1])), true
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}

// NormalizeDate returns the ISO form of v when it parses, otherwise v
// unchanged so that no user input is lost.
func NormalizeDate(v string) string {
	if iso, ok := ParseDate(v); ok {
		return iso
	}
	return v
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
