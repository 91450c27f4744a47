// Package swimtime converts free-text race times and dates into canonical
// values. Race times are kept as integer milliseconds; the zero value is a
// valid time, so every parser reports an explicit ok flag instead.
package swimtime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The format chain is ordered: hours:minutes:seconds, then minutes:seconds,
// then bare seconds. Swapping the order changes acceptance (1:23 must read as
// minutes:seconds), so each format gets its own anchored pattern.
var (
	reHours   = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})(?:[.,](\d{1,3}))?$`)
	reMinutes = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:[.,](\d{1,3}))?$`)
	reSeconds = regexp.MustCompile(`^(\d{1,2})(?:[.,](\d{1,3}))?$`)
)

func fracToMillis(frac string) int {
	if frac == "" {
		return 0
	}
	ms, _ := strconv.Atoi(frac + strings.Repeat("0", 3-len(frac)))
	return ms
}

// ParseMillis parses a race time into milliseconds. Accepted forms are
// H:MM:SS[.fff], M:SS[.fff], S[.fff] and a bare decimal number of seconds,
// with either "." or "," as the fraction separator. Unparsable input returns
// ok=false, never a zero time.
func ParseMillis(value string) (int, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return 0, false
	}
	if m := reHours.FindStringSubmatch(text); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		seconds, _ := strconv.Atoi(m[3])
		return ((hours*60+minutes)*60+seconds)*1000 + fracToMillis(m[4]), true
	}
	if m := reMinutes.FindStringSubmatch(text); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		return (minutes*60+seconds)*1000 + fracToMillis(m[3]), true
	}
	if m := reSeconds.FindStringSubmatch(text); m != nil {
		seconds, _ := strconv.Atoi(m[1])
		return seconds*1000 + fracToMillis(m[2]), true
	}
	total, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil || total < 0 {
		return 0, false
	}
	return int(total*1000 + 0.5), true
}

// FormatMillis renders milliseconds for display. The hours component is
// omitted when zero, minutes likewise, and a fraction of exactly zero is
// dropped together with its separator.
func FormatMillis(ms int) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds, millis := ms/1000, ms%1000
	minutes, seconds := totalSeconds/60, totalSeconds%60
	hours, minutes := minutes/60, minutes%60

	var out string
	switch {
	case hours > 0:
		out = fmt.Sprintf("%d:%02d:%02d.%03d", hours, minutes, seconds, millis)
	case minutes > 0:
		out = fmt.Sprintf("%d:%02d.%03d", minutes, seconds, millis)
	default:
		out = fmt.Sprintf("%d.%03d", seconds, millis)
	}
	out = strings.TrimRight(out, "0")
	return strings.TrimRight(out, ".")
}

var dateLayouts = []string{"2006-01-02", "02.01.2006", "20060102"}

// ParseDate accepts ISO (YYYY-MM-DD), dotted (DD.MM.YYYY) and compact
// (YYYYMMDD) dates, tried in that order.
func ParseDate(value string) (time.Time, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// Free-standing time fragments embedded in longer labels. RE2 has no
// lookbehind, so a one-char non-digit prefix group stands in for (?<!\d);
// only the inner group is the fragment.
var (
	reFragHours   = regexp.MustCompile(`(?:^|[^0-9])(\d{1,2}:\d{2}:\d{2}(?:[.,]\d{1,3})?)`)
	reFragMinutes = regexp.MustCompile(`(?:^|[^0-9])(\d{1,2}:\d{2}(?:[.,]\d{1,3})?)`)
	reFragSeconds = regexp.MustCompile(`(?:^|[^0-9])(\d{1,2}[.,]\d{1,3})(?:[^0-9]|$)`)
)

// FindFragment locates the first time-looking fragment inside text and
// returns its byte span. Patterns are tried in the same order as ParseMillis
// formats.
func FindFragment(text string) (start, end int, ok bool) {
	for _, re := range []*regexp.Regexp{reFragHours, reFragMinutes, reFragSeconds} {
		if loc := re.FindStringSubmatchIndex(text); loc != nil {
			return loc[2], loc[3], true
		}
	}
	return 0, 0, false
}
