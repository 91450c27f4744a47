// Package points computes standardized performance points for a swim from a
// reference table of base times. Points follow the inverse-cube rule used by
// the FINA tables: 1000 * (base / swim)^3, rounded to the nearest integer.
package points

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// Table maps gender -> course -> event code -> base time in seconds. It is
// injected into the Calculator so a revised table can be loaded without a
// code change.
type Table map[string]map[string]map[string]float64

// LoadTable reads a JSON-encoded base-time table.
func LoadTable(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("base times: %w", err)
	}
	var t Table
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("base times %s: %w", path, err)
	}
	return t, nil
}

type Calculator struct {
	table Table
}

func NewCalculator(table Table) *Calculator {
	if table == nil {
		table = DefaultTable()
	}
	return &Calculator{table: table}
}

// Points returns the score for the given swim, or ok=false when the event is
// not covered by the table or the time is not positive.
func (c *Calculator) Points(gender, eventCode string, timeMs int, course string) (int, bool) {
	if timeMs <= 0 {
		return 0, false
	}
	base, ok := c.baseTime(gender, course, eventCode)
	if !ok {
		return 0, false
	}
	ratio := base / (float64(timeMs) / 1000.0)
	if ratio <= 0 {
		return 0, false
	}
	pts := int(math.Round(1000 * ratio * ratio * ratio))
	if pts < 0 {
		pts = 0
	}
	return pts, true
}

func (c *Calculator) baseTime(gender, course, eventCode string) (float64, bool) {
	courses, ok := c.table[strings.ToUpper(strings.TrimSpace(gender))]
	if !ok {
		return 0, false
	}
	events, ok := courses[NormalizeCourse(course)]
	if !ok {
		return 0, false
	}
	base, ok := events[eventCode]
	return base, ok
}

// NormalizeCourse maps free-text pool descriptions to LCM/SCM/SCY. A bare
// "50" means a long course pool, "25" a short one; anything unrecognized
// passes through uppercased.
func NormalizeCourse(value string) string {
	candidate := strings.ToUpper(strings.TrimSpace(value))
	if candidate == "" {
		return "LCM"
	}
	switch candidate {
	case "LC", "LCM", "L":
		return "LCM"
	case "SC", "SCM", "S":
		return "SCM"
	case "SCY", "Y":
		return "SCY"
	}
	if strings.Contains(candidate, "50") {
		return "LCM"
	}
	if strings.Contains(candidate, "25") {
		return "SCM"
	}
	return candidate
}
