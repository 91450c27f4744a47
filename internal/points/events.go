package points

import (
	"strconv"
	"strings"
)

// Stroke keywords matched case-insensitively by substring against the
// combined distance+stroke label. The list is ordered (not a map) so that
// detection is deterministic; English terms first, then the Russian swimming
// vocabulary.
var strokeAliases = []struct {
	alias string
	code  string
}{
	{"freestyle", "FR"},
	{"free", "FR"},
	{"вольный", "FR"},
	{"вольн", "FR"},
	{"кроль", "FR"},
	{"в/с", "FR"},
	{"backstroke", "BK"},
	{"back", "BK"},
	{"на спине", "BK"},
	{"спина", "BK"},
	{"breaststroke", "BR"},
	{"breast", "BR"},
	{"брасс", "BR"},
	{"butterfly", "FL"},
	{"fly", "FL"},
	{"баттерфляй", "FL"},
	{"дельфин", "FL"},
	{"medley", "IM"},
	{"complex", "IM"},
	{"комплексное", "IM"},
	{"комплекс", "IM"},
	{"im", "IM"},
}

var supportedDistances = map[int]bool{
	25: true, 50: true, 100: true, 150: true,
	200: true, 400: true, 800: true, 1500: true,
}

func extractDistance(text string) (int, bool) {
	distance := 0
	seen := false
	for _, r := range text {
		if r >= '0' && r <= '9' {
			distance = distance*10 + int(r-'0')
			seen = true
		} else if seen {
			break
		}
	}
	return distance, seen
}

func detectStroke(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, a := range strokeAliases {
		if strings.Contains(lowered, a.alias) {
			return a.code, true
		}
	}
	return "", false
}

// NormalizeEventCode derives the canonical event code (e.g. "100FR") from
// free-text distance and stroke labels. It is total: an unsupported
// distance/stroke combination reports ok=false rather than an error.
// Medley is only swum over 100/200/400.
func NormalizeEventCode(distanceLabel, strokeLabel string) (string, bool) {
	combined := strings.TrimSpace(distanceLabel + " " + strokeLabel)
	distance, ok := extractDistance(combined)
	if !ok {
		return "", false
	}
	stroke, ok := detectStroke(combined)
	if !ok {
		return "", false
	}
	if stroke == "IM" && distance != 100 && distance != 200 && distance != 400 {
		return "", false
	}
	if !supportedDistances[distance] {
		return "", false
	}
	return strconv.Itoa(distance) + stroke, true
}
