// Package lenex reads and writes the competition interchange format: a
// LENEX-style XML document (and CSV variants) carrying the competition, its
// teams with participants, and base64-encoded result-file attachments.
// Imports are idempotent upserts; heats and lanes are not part of the format.
package lenex

import (
	"errors"
	"time"
)

// ErrFormat wraps every malformed-input failure. Callers can treat any error
// wrapping it as "reject the whole upload, nothing was written".
var ErrFormat = errors.New("interchange format error")

type CompetitionInfo struct {
	Title     string
	Slug      string
	City      string
	PoolName  string
	Address   string
	Stage     string
	StartDate *time.Time
	EndDate   *time.Time
}

type ParticipantInfo struct {
	LastName    string
	FirstName   string
	MiddleName  string
	Gender      string
	BirthDate   *time.Time
	AgeCategory string
	Distance    string
}

type Team struct {
	TeamName            string
	RepresentativeName  string
	RepresentativePhone string
	RepresentativeEmail string
	Status              string
	Participants        []*ParticipantInfo
}

type ResultDocument struct {
	Label    string
	Kind     string
	Filename string
	Content  []byte
}

// Document is the in-memory interchange tree. It exists only during
// import/export and is never persisted as-is.
type Document struct {
	Competition CompetitionInfo
	Teams       []*Team
	Documents   []*ResultDocument
}
