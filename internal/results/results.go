// Package results ingests raw measurement rows (one swim per row), resolves
// them to registered athletes and upserts SwimResult records. Unresolvable
// rows are skipped and logged; they never fail the batch.
package results

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"swim-engine/internal/points"
	"swim-engine/internal/swimtime"
)

// Row is one parsed measurement line from a results CSV.
type Row struct {
	FullName      string
	DistanceLabel string
	TimeText      string
	Course        string
	Gender        string
	Email         string
	Username      string
	BirthDate     *time.Time
	Stroke        string
	SwimDate      *time.Time
	Stage         string
	Heat          string
	Place         *int
}

// TimeMs parses the row's free-text time.
func (r *Row) TimeMs() (int, bool) {
	return swimtime.ParseMillis(r.TimeText)
}

func pick(record map[string]string, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(record[name]); v != "" {
			return v
		}
	}
	return ""
}

func pickDate(record map[string]string, names ...string) *time.Time {
	if v := pick(record, names...); v != "" {
		if d, ok := swimtime.ParseDate(v); ok {
			return &d
		}
	}
	return nil
}

// DecodeCSV checks the byte stream is UTF-8 (optionally BOM-prefixed) and
// returns the decoded text. A bad encoding is a malformed-input error that
// aborts the whole import.
func DecodeCSV(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("csv must be UTF-8 encoded")
	}
	return string(data), nil
}

// ParseCSV reads measurement rows. Column aliases mirror the files exported
// by common timing software. Rows missing a name, distance, time, or with an
// unparsable time are skipped with a log line.
func ParseCSV(decoded string) ([]*Row, error) {
	reader := csv.NewReader(strings.NewReader(decoded))
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows []*Row
	for line := 2; ; line++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		record := map[string]string{}
		for i, value := range fields {
			if i < len(header) {
				record[header[i]] = value
			}
		}

		fullName := pick(record, "full_name", "name")
		if fullName == "" {
			parts := []string{
				pick(record, "last_name"),
				pick(record, "first_name"),
				pick(record, "middle_name"),
			}
			nonEmpty := parts[:0]
			for _, p := range parts {
				if p != "" {
					nonEmpty = append(nonEmpty, p)
				}
			}
			fullName = strings.Join(nonEmpty, " ")
		}
		if fullName == "" {
			log.Printf("results csv line %d skipped: missing full name", line)
			continue
		}
		distance := pick(record, "distance", "event", "race")
		if distance == "" {
			log.Printf("results csv line %d skipped: missing distance label", line)
			continue
		}
		timeText := pick(record, "time", "result_time", "swim_time")
		if timeText == "" {
			log.Printf("results csv line %d skipped: missing time", line)
			continue
		}

		row := &Row{
			FullName:      fullName,
			DistanceLabel: distance,
			TimeText:      timeText,
			Course:        points.NormalizeCourse(pick(record, "course", "pool", "course_type")),
			Gender:        pick(record, "gender", "sex"),
			Email:         pick(record, "email", "user_email"),
			Username:      pick(record, "username"),
			BirthDate:     pickDate(record, "birth_date", "dob"),
			Stroke:        pick(record, "stroke", "style"),
			SwimDate:      pickDate(record, "date", "swim_date", "race_date"),
			Stage:         pick(record, "stage", "round", "phase"),
			Heat:          pick(record, "heat", "run"),
		}
		if place := pick(record, "place", "rank", "position"); place != "" {
			if v, err := strconv.Atoi(place); err == nil {
				row.Place = &v
			}
		}
		if _, ok := row.TimeMs(); !ok {
			log.Printf("results csv line %d skipped: unparsable time %q", line, timeText)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
