package lenex

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"swim-engine/internal/util"
)

// The wire schema tolerates both attribute and child-element spellings for
// most fields, matching the files produced by the meet-management tools in
// circulation.
type xmlRoot struct {
	XMLName xml.Name
	Meets   struct {
		Meet *xmlMeet `xml:"MEET"`
	} `xml:"MEETS"`
}

type xmlMeet struct {
	Name      string     `xml:"NAME"`
	ShortName string     `xml:"SHORTNAME"`
	Code      string     `xml:"CODE"`
	StartDate string     `xml:"STARTDATE"`
	EndDate   string     `xml:"ENDDATE"`
	City      string     `xml:"CITY"`
	Stage     string     `xml:"STAGE"`
	Address   string     `xml:"ADDRESS"`
	Pool      *xmlPool   `xml:"POOL"`
	Clubs     []xmlClub  `xml:"CLUBS>CLUB"`
	Entries   []xmlEntry `xml:"ENTRIES>ENTRY"`
	Documents []xmlDoc   `xml:"DOCUMENTS>DOCUMENT"`
}

type xmlPool struct {
	Name    string `xml:"NAME"`
	Address string `xml:"ADDRESS"`
}

type xmlClub struct {
	NameAttr string `xml:"name,attr"`
	Name     string `xml:"NAME"`
	Contact  struct {
		Name  string `xml:"NAME"`
		Phone string `xml:"PHONE"`
		Email string `xml:"EMAIL"`
	} `xml:"CONTACT"`
	Status string `xml:"STATUS"`
}

type xmlEntry struct {
	ClubNameAttr string       `xml:"clubName,attr"`
	ClubName     string       `xml:"CLUBNAME"`
	StatusAttr   string       `xml:"status,attr"`
	Status       string       `xml:"STATUS"`
	Athletes     []xmlAthlete `xml:"ATHLETE"`
}

type xmlAthlete struct {
	LastName    string `xml:"LASTNAME"`
	FirstName   string `xml:"FIRSTNAME"`
	MiddleName  string `xml:"MIDDLENAME"`
	Gender      string `xml:"GENDER"`
	BirthDate   string `xml:"BIRTHDATE"`
	AgeCategory string `xml:"AGECATEGORY"`
	Distance    string `xml:"DISTANCE"`
}

type xmlDoc struct {
	LabelAttr    string `xml:"label,attr"`
	Label        string `xml:"LABEL"`
	KindAttr     string `xml:"kind,attr"`
	Kind         string `xml:"KIND"`
	TypeAttr     string `xml:"type,attr"`
	FilenameAttr string `xml:"filename,attr"`
	Filename     string `xml:"FILENAME"`
	Encoding     string `xml:"encoding,attr"`
	Payload      string `xml:",chardata"`
}

func firstOf(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

var dateTimeLayouts = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseDateTime(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: bad date/time %q", ErrFormat, value)
}

func parseBirthDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", "02.01.2006", "20060102"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: bad birth date %q", ErrFormat, value)
}

// Parse decodes interchange XML bytes into a Document. Any structural
// problem aborts the parse; nothing about the input is repaired silently
// except missing optional fields.
func Parse(xmlBytes []byte) (*Document, error) {
	if !utf8.Valid(xmlBytes) {
		return nil, fmt.Errorf("%w: document is not valid UTF-8", ErrFormat)
	}
	var root xmlRoot
	if err := xml.Unmarshal(xmlBytes, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if !strings.EqualFold(root.XMLName.Local, "LENEX") {
		return nil, fmt.Errorf("%w: expected LENEX root element, got %q", ErrFormat, root.XMLName.Local)
	}
	meet := root.Meets.Meet
	if meet == nil {
		return nil, fmt.Errorf("%w: missing MEETS/MEET block", ErrFormat)
	}

	title := firstOf(meet.Name, meet.ShortName)
	if title == "" {
		return nil, fmt.Errorf("%w: competition title is empty", ErrFormat)
	}
	slug := strings.TrimSpace(meet.Code)
	if slug == "" {
		slug = util.Slugify(title)
	}
	startDate, err := parseDateTime(meet.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDateTime(meet.EndDate)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Competition: CompetitionInfo{
			Title:     title,
			Slug:      slug,
			City:      strings.TrimSpace(meet.City),
			Stage:     strings.TrimSpace(meet.Stage),
			StartDate: startDate,
			EndDate:   endDate,
		},
	}
	if meet.Pool != nil {
		doc.Competition.PoolName = strings.TrimSpace(meet.Pool.Name)
		doc.Competition.Address = strings.TrimSpace(meet.Pool.Address)
	}
	if doc.Competition.Address == "" {
		doc.Competition.Address = strings.TrimSpace(meet.Address)
	}

	// Clubs and entries both contribute teams; entries may reference a club
	// that has no CLUBS record. Order of first appearance is preserved.
	teamIndex := map[string]*Team{}
	addTeam := func(key string, team *Team) {
		teamIndex[key] = team
		doc.Teams = append(doc.Teams, team)
	}
	for _, club := range meet.Clubs {
		teamName := firstOf(club.NameAttr, club.Name)
		if teamName == "" {
			continue
		}
		addTeam(strings.ToLower(teamName), &Team{
			TeamName:            teamName,
			RepresentativeName:  strings.TrimSpace(club.Contact.Name),
			RepresentativePhone: strings.TrimSpace(club.Contact.Phone),
			RepresentativeEmail: strings.TrimSpace(club.Contact.Email),
			Status:              strings.ToLower(firstOf(club.Status, "pending")),
		})
	}
	for _, entry := range meet.Entries {
		clubName := firstOf(entry.ClubNameAttr, entry.ClubName)
		if clubName == "" {
			continue
		}
		key := strings.ToLower(clubName)
		team := teamIndex[key]
		if team == nil {
			team = &Team{TeamName: clubName, Status: "pending"}
			addTeam(key, team)
		}
		if status := firstOf(entry.StatusAttr, entry.Status); status != "" {
			team.Status = strings.ToLower(status)
		}
		for _, athlete := range entry.Athletes {
			birth, err := parseBirthDate(athlete.BirthDate)
			if err != nil {
				return nil, err
			}
			gender := strings.ToUpper(strings.TrimSpace(athlete.Gender))
			if gender == "" {
				gender = "U"
			}
			team.Participants = append(team.Participants, &ParticipantInfo{
				LastName:    strings.TrimSpace(athlete.LastName),
				FirstName:   strings.TrimSpace(athlete.FirstName),
				MiddleName:  strings.TrimSpace(athlete.MiddleName),
				Gender:      gender,
				BirthDate:   birth,
				AgeCategory: strings.TrimSpace(athlete.AgeCategory),
				Distance:    strings.TrimSpace(athlete.Distance),
			})
		}
	}

	for i, d := range meet.Documents {
		kind := strings.ToLower(firstOf(d.KindAttr, d.Kind, d.TypeAttr))
		if kind == "" {
			kind = "pdf"
		}
		filename := firstOf(d.FilenameAttr, d.Filename)
		if filename == "" {
			filename = fmt.Sprintf("%s-%d.%s", slug, i+1, kind)
		}
		encoding := strings.ToLower(firstOf(d.Encoding, "base64"))
		if encoding != "base64" {
			return nil, fmt.Errorf("%w: unsupported attachment encoding %q", ErrFormat, encoding)
		}
		label := firstOf(d.LabelAttr, d.Label)
		payload := strings.TrimSpace(d.Payload)
		var content []byte
		if payload != "" {
			content, err = base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return nil, fmt.Errorf("%w: attachment %q is not valid base64", ErrFormat, label)
			}
		}
		if label == "" {
			label = filename
		}
		doc.Documents = append(doc.Documents, &ResultDocument{
			Label:    label,
			Kind:     kind,
			Filename: path.Base(filename),
			Content:  content,
		})
	}
	return doc, nil
}
