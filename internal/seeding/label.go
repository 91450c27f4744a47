package seeding

import (
	"regexp"
	"strings"

	"swim-engine/internal/swimtime"
)

var (
	reSpaces   = regexp.MustCompile(`\s+`)
	reBrackets = regexp.MustCompile(`[()\[\]{}]`)
)

func cleanLabel(value string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(value, " "))
}

func normalizeKey(value string) string {
	return strings.ToLower(cleanLabel(value))
}

// ParsedDistance is the outcome of splitting a participant's free-text
// distance field.
type ParsedDistance struct {
	Session      string
	Distance     string
	SeedTimeMs   *int
	SeedTimeText string
}

// extractTimeFragment pulls the first embedded time out of a label. The
// fragment is removed from the label; leftover brackets and separators are
// stripped. When removal would leave nothing, the original text stands.
func extractTimeFragment(text string) (cleaned string, timeMs *int, display string) {
	start, end, ok := swimtime.FindFragment(text)
	if !ok {
		return cleanLabel(text), nil, ""
	}
	candidate := text[start:end]
	if ms, parsed := swimtime.ParseMillis(candidate); parsed {
		timeMs = &ms
		display = strings.ReplaceAll(candidate, ",", ".")
	}
	without := reBrackets.ReplaceAllString(text[:start]+text[end:], "")
	cleaned = strings.Trim(cleanLabel(without), " -–—;,:")
	cleaned = cleanLabel(cleaned)
	if cleaned == "" {
		cleaned = strings.TrimSpace(text)
	}
	return cleaned, timeMs, display
}

// SplitDistance parses the "session|distance" field format. The pipe prefix
// is optional; an embedded time fragment becomes the seed time.
func SplitDistance(raw string) ParsedDistance {
	sessionLabel := ""
	distancePart := strings.TrimSpace(raw)
	if idx := strings.Index(distancePart, "|"); idx >= 0 {
		sessionLabel = cleanLabel(distancePart[:idx])
		distancePart = distancePart[idx+1:]
	}
	distancePart = strings.TrimSpace(distancePart)

	cleaned, timeMs, display := extractTimeFragment(distancePart)
	if cleaned == "" {
		cleaned = strings.TrimSpace(raw)
	}
	return ParsedDistance{
		Session:      sessionLabel,
		Distance:     cleaned,
		SeedTimeMs:   timeMs,
		SeedTimeText: display,
	}
}
