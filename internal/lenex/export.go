package lenex

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"swim-engine/internal/models"
)

type outContact struct {
	Name  string `xml:"NAME,omitempty"`
	Phone string `xml:"PHONE,omitempty"`
	Email string `xml:"EMAIL,omitempty"`
}

type outClub struct {
	Name    string     `xml:"name,attr"`
	Contact outContact `xml:"CONTACT"`
	Status  string     `xml:"STATUS"`
}

type outAthlete struct {
	LastName    string `xml:"LASTNAME"`
	FirstName   string `xml:"FIRSTNAME"`
	MiddleName  string `xml:"MIDDLENAME,omitempty"`
	Gender      string `xml:"GENDER"`
	BirthDate   string `xml:"BIRTHDATE,omitempty"`
	AgeCategory string `xml:"AGECATEGORY,omitempty"`
	Distance    string `xml:"DISTANCE,omitempty"`
}

type outEntry struct {
	ClubName string     `xml:"clubName,attr"`
	Athlete  outAthlete `xml:"ATHLETE"`
}

type outPool struct {
	Name    string `xml:"NAME,omitempty"`
	Address string `xml:"ADDRESS,omitempty"`
}

type outDocument struct {
	Label    string `xml:"label,attr"`
	Kind     string `xml:"kind,attr"`
	Filename string `xml:"filename,attr"`
	Encoding string `xml:"encoding,attr"`
	Payload  string `xml:",chardata"`
}

type outMeet struct {
	Code      string        `xml:"CODE"`
	Name      string        `xml:"NAME"`
	City      string        `xml:"CITY,omitempty"`
	Stage     string        `xml:"STAGE,omitempty"`
	StartDate string        `xml:"STARTDATE"`
	EndDate   string        `xml:"ENDDATE,omitempty"`
	Pool      *outPool      `xml:"POOL,omitempty"`
	Clubs     []outClub     `xml:"CLUBS>CLUB"`
	Entries   []outEntry    `xml:"ENTRIES>ENTRY"`
	Documents []outDocument `xml:"DOCUMENTS>DOCUMENT"`
}

type outRoot struct {
	XMLName xml.Name  `xml:"LENEX"`
	Version string    `xml:"version,attr"`
	Meets   []outMeet `xml:"MEETS>MEET"`
}

const dateTimeLayout = "2006-01-02T15:04:05"

// Export serializes a competition with its teams, participants and result
// attachments. Heat/lane state is deliberately not part of the format. A
// missing attachment file aborts the export naming the path.
func Export(ctx context.Context, store Store, files FileStore, competitionID int64) ([]byte, error) {
	competition, registrations, resultFiles, err := loadCompetition(ctx, store, competitionID)
	if err != nil {
		return nil, err
	}

	meet := outMeet{
		Code:  competition.Slug,
		Name:  competition.Title,
		City:  competition.City,
		Stage: competition.Stage,
	}
	start := competition.StartDate
	if start.IsZero() {
		start = time.Now().UTC()
	}
	meet.StartDate = start.Format(dateTimeLayout)
	if competition.EndDate != nil {
		meet.EndDate = competition.EndDate.Format(dateTimeLayout)
	}
	if competition.PoolName != "" || competition.Address != "" {
		meet.Pool = &outPool{Name: competition.PoolName, Address: competition.Address}
	}

	sort.Slice(registrations, func(i, j int) bool {
		a, b := registrations[i], registrations[j]
		an, bn := strings.ToLower(a.DisplayTeamName()), strings.ToLower(b.DisplayTeamName())
		if an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
	for _, reg := range registrations {
		if reg.IsDeleted {
			continue
		}
		meet.Clubs = append(meet.Clubs, outClub{
			Name: reg.DisplayTeamName(),
			Contact: outContact{
				Name:  reg.RepresentativeName,
				Phone: reg.RepresentativePhone,
				Email: reg.RepresentativeEmail,
			},
			Status: statusOr(reg.Status, "pending"),
		})
		participants := append([]*models.Participant(nil), reg.Participants...)
		sort.Slice(participants, func(i, j int) bool {
			a, b := participants[i], participants[j]
			al, bl := strings.ToLower(a.LastName), strings.ToLower(b.LastName)
			if al != bl {
				return al < bl
			}
			return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
		})
		for _, p := range participants {
			athlete := outAthlete{
				LastName:    p.LastName,
				FirstName:   p.FirstName,
				MiddleName:  p.MiddleName,
				Gender:      strings.ToUpper(statusOr(p.Gender, "U")),
				AgeCategory: p.AgeCategory,
				Distance:    p.Distance,
			}
			if p.BirthDate != nil {
				athlete.BirthDate = p.BirthDate.Format("2006-01-02")
			}
			meet.Entries = append(meet.Entries, outEntry{
				ClubName: reg.DisplayTeamName(),
				Athlete:  athlete,
			})
		}
	}

	sort.Slice(resultFiles, func(i, j int) bool {
		return strings.ToLower(resultFiles[i].Label) < strings.ToLower(resultFiles[j].Label)
	})
	for _, rf := range resultFiles {
		content, err := files.ReadResultFile(rf.FilePath)
		if err != nil {
			return nil, fmt.Errorf("result file %q: %w", rf.FilePath, err)
		}
		kind := rf.Kind
		if kind == "" {
			kind = statusOr(strings.TrimPrefix(filepath.Ext(rf.FilePath), "."), "pdf")
		}
		meet.Documents = append(meet.Documents, outDocument{
			Label:    rf.Label,
			Kind:     kind,
			Filename: filepath.Base(rf.FilePath),
			Encoding: "base64",
			Payload:  base64.StdEncoding.EncodeToString(content),
		})
	}

	payload, err := xml.Marshal(outRoot{Version: "3.0", Meets: []outMeet{meet}})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), payload...), nil
}

func loadCompetition(ctx context.Context, store Store, competitionID int64) (*models.Competition, []*models.TeamRegistration, []*models.ResultFile, error) {
	competition, err := store.CompetitionByID(ctx, competitionID)
	if err != nil {
		return nil, nil, nil, err
	}
	if competition == nil {
		return nil, nil, nil, fmt.Errorf("competition %d not found", competitionID)
	}
	registrations, err := store.RegistrationsWithParticipants(ctx, competition.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	resultFiles, err := store.ResultFilesForCompetition(ctx, competition.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return competition, registrations, resultFiles, nil
}
