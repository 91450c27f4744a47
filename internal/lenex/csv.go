package lenex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"swim-engine/internal/models"
	"swim-engine/internal/results"
	"swim-engine/internal/util"
)

var registrationColumns = []string{
	"team_name",
	"representative_name",
	"representative_phone",
	"representative_email",
	"status",
	"last_name",
	"first_name",
	"middle_name",
	"gender",
	"birth_date",
	"age_category",
	"distance",
}

var resultDocumentColumns = []string{"label", "kind", "filename", "content_base64"}

func readCSV(data []byte) ([]string, [][]string, error) {
	decoded, err := results.DecodeCSV(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	reader := csv.NewReader(strings.NewReader(decoded))
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: empty csv", ErrFormat)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return header, records, nil
}

func missingColumns(header []string, required []string) []string {
	present := map[string]bool{}
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

func field(header, record []string, name string) string {
	for i, h := range header {
		if h == name && i < len(record) {
			return strings.TrimSpace(record[i])
		}
	}
	return ""
}

// ParseRegistrationsCSV reads the registration column set; rows sharing a
// (team, representative email) pair collapse into one team with many
// participants. Missing required columns abort the parse.
func ParseRegistrationsCSV(data []byte) ([]*Team, error) {
	header, records, err := readCSV(data)
	if err != nil {
		return nil, err
	}
	if missing := missingColumns(header, registrationColumns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrFormat, strings.Join(missing, ", "))
	}

	index := map[teamKey]*Team{}
	var teams []*Team
	for i, record := range records {
		line := i + 2
		teamName := field(header, record, "team_name")
		if teamName == "" {
			return nil, fmt.Errorf("%w: line %d: team_name is empty", ErrFormat, line)
		}
		repEmail := field(header, record, "representative_email")
		key := keyForTeam(teamName, repEmail)
		team := index[key]
		if team == nil {
			team = &Team{
				TeamName:            teamName,
				RepresentativeName:  field(header, record, "representative_name"),
				RepresentativePhone: field(header, record, "representative_phone"),
				RepresentativeEmail: repEmail,
				Status:              strings.ToLower(statusOr(field(header, record, "status"), "pending")),
			}
			index[key] = team
			teams = append(teams, team)
		}
		lastName := field(header, record, "last_name")
		firstName := field(header, record, "first_name")
		if lastName == "" && firstName == "" {
			continue
		}
		birth, err := parseBirthDate(field(header, record, "birth_date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		team.Participants = append(team.Participants, &ParticipantInfo{
			LastName:    lastName,
			FirstName:   firstName,
			MiddleName:  field(header, record, "middle_name"),
			Gender:      strings.ToUpper(statusOr(field(header, record, "gender"), "U")),
			BirthDate:   birth,
			AgeCategory: field(header, record, "age_category"),
			Distance:    field(header, record, "distance"),
		})
	}
	return teams, nil
}

// ParseResultDocumentsCSV reads the attachment column set: one base64
// payload per row, matched later by label.
func ParseResultDocumentsCSV(data []byte) ([]*ResultDocument, error) {
	header, records, err := readCSV(data)
	if err != nil {
		return nil, err
	}
	if missing := missingColumns(header, resultDocumentColumns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrFormat, strings.Join(missing, ", "))
	}

	var documents []*ResultDocument
	for i, record := range records {
		line := i + 2
		label := field(header, record, "label")
		if label == "" {
			return nil, fmt.Errorf("%w: line %d: label is empty", ErrFormat, line)
		}
		kind := strings.ToLower(statusOr(field(header, record, "kind"), "pdf"))
		filename := field(header, record, "filename")
		if filename == "" {
			filename = util.Slugify(label) + "." + kind
		}
		payload := field(header, record, "content_base64")
		if payload == "" {
			return nil, fmt.Errorf("%w: line %d: content_base64 is empty", ErrFormat, line)
		}
		content, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: content_base64 is not valid base64", ErrFormat, line)
		}
		documents = append(documents, &ResultDocument{
			Label:    label,
			Kind:     kind,
			Filename: filename,
			Content:  content,
		})
	}
	return documents, nil
}

// ImportRegistrationsCSV merges the registration CSV into an existing
// competition with the same team-upsert semantics as the XML import.
func ImportRegistrationsCSV(ctx context.Context, store Store, competitionID int64, data []byte) (*models.Competition, error) {
	competition, err := store.CompetitionByID(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	if competition == nil {
		return nil, fmt.Errorf("competition %d not found", competitionID)
	}
	teams, err := ParseRegistrationsCSV(data)
	if err != nil {
		return nil, err
	}
	if err := mergeTeams(ctx, store, competition, teams); err != nil {
		return nil, err
	}
	return competition, nil
}

// ImportResultsCSV accepts either variant of the results CSV: attachment
// rows (label/kind/filename/content_base64) or raw measurement rows handed
// to the results persister.
func ImportResultsCSV(
	ctx context.Context,
	store Store,
	files FileStore,
	persister *results.Persister,
	competitionID int64,
	data []byte,
) (*models.Competition, error) {
	competition, err := store.CompetitionByID(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	if competition == nil {
		return nil, fmt.Errorf("competition %d not found", competitionID)
	}

	header, _, err := readCSV(data)
	if err != nil {
		return nil, err
	}
	if len(missingColumns(header, resultDocumentColumns)) == 0 {
		documents, err := ParseResultDocumentsCSV(data)
		if err != nil {
			return nil, err
		}
		if err := mergeDocuments(ctx, store, files, competition, documents); err != nil {
			return nil, err
		}
		return competition, nil
	}

	decoded, err := results.DecodeCSV(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	rows, err := results.ParseCSV(decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: csv has neither result rows nor attachment columns", ErrFormat)
	}
	if _, err := persister.Persist(ctx, competition, rows); err != nil {
		return nil, err
	}
	return competition, nil
}

// ExportRegistrationsCSV emits the registration column set, one row per
// participant (or a single bare row for a team with no participants).
func ExportRegistrationsCSV(ctx context.Context, store Store, competitionID int64) ([]byte, error) {
	_, registrations, _, err := loadCompetition(ctx, store, competitionID)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(registrationColumns); err != nil {
		return nil, err
	}
	for _, reg := range registrations {
		if reg.IsDeleted {
			continue
		}
		base := []string{
			reg.TeamName,
			reg.RepresentativeName,
			reg.RepresentativePhone,
			reg.RepresentativeEmail,
			reg.Status,
		}
		if len(reg.Participants) == 0 {
			if err := writer.Write(append(base, "", "", "", "", "", "", "")); err != nil {
				return nil, err
			}
			continue
		}
		for _, p := range reg.Participants {
			birth := ""
			if p.BirthDate != nil {
				birth = p.BirthDate.Format("2006-01-02")
			}
			row := append(append([]string(nil), base...),
				p.LastName, p.FirstName, p.MiddleName, p.Gender, birth, p.AgeCategory, p.Distance)
			if err := writer.Write(row); err != nil {
				return nil, err
			}
		}
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}

// ExportResultsCSV emits one attachment row per stored result file. A
// missing file on disk aborts the export naming the path.
func ExportResultsCSV(ctx context.Context, store Store, files FileStore, competitionID int64) ([]byte, error) {
	_, _, resultFiles, err := loadCompetition(ctx, store, competitionID)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(resultDocumentColumns); err != nil {
		return nil, err
	}
	for _, rf := range resultFiles {
		content, err := files.ReadResultFile(rf.FilePath)
		if err != nil {
			return nil, fmt.Errorf("result file %q: %w", rf.FilePath, err)
		}
		row := []string{
			rf.Label,
			rf.Kind,
			filepath.Base(rf.FilePath),
			base64.StdEncoding.EncodeToString(content),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}
