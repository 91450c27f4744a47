package lenex

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"swim-engine/internal/models"
	"swim-engine/internal/util"
)

// Store is the repository slice the codec needs. Import runs its whole merge
// inside one transaction supplied by the caller.
type Store interface {
	CompetitionByID(ctx context.Context, id int64) (*models.Competition, error)
	CompetitionBySlug(ctx context.Context, slug string) (*models.Competition, error)
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)
	CreateCompetition(ctx context.Context, c *models.Competition) error
	UpdateCompetition(ctx context.Context, c *models.Competition) error

	RegistrationsWithParticipants(ctx context.Context, competitionID int64) ([]*models.TeamRegistration, error)
	CreateRegistration(ctx context.Context, r *models.TeamRegistration) error
	UpdateRegistration(ctx context.Context, r *models.TeamRegistration) error
	ReplaceParticipants(ctx context.Context, registrationID int64, participants []*models.Participant) error

	ResultFilesForCompetition(ctx context.Context, competitionID int64) ([]*models.ResultFile, error)
	CreateResultFile(ctx context.Context, f *models.ResultFile) error
	UpdateResultFile(ctx context.Context, f *models.ResultFile) error
}

// FileStore persists attachment bytes. The on-disk directory is keyed by the
// competition slug.
type FileStore interface {
	WriteResultFile(slug, filename string, content []byte) (string, error)
	ReadResultFile(path string) ([]byte, error)
}

// Import merges a parsed-from-XML document into the store. The competition
// is matched by slug (created when absent); teams are matched by team name +
// representative email; attachments by label. Matching is case-insensitive
// and the merge is idempotent.
func Import(ctx context.Context, store Store, files FileStore, xmlBytes []byte) (*models.Competition, error) {
	doc, err := Parse(xmlBytes)
	if err != nil {
		return nil, err
	}
	return merge(ctx, store, files, doc)
}

func merge(ctx context.Context, store Store, files FileStore, doc *Document) (*models.Competition, error) {
	info := doc.Competition
	rawSlug := info.Slug
	if rawSlug == "" {
		rawSlug = util.Slugify(info.Title)
	}
	competition, err := store.CompetitionBySlug(ctx, rawSlug)
	if err != nil {
		return nil, err
	}
	created := false
	if competition == nil {
		slug, err := ensureUniqueSlug(ctx, store, rawSlug, 0)
		if err != nil {
			return nil, err
		}
		competition = &models.Competition{Slug: slug, Title: info.Title, StartDate: time.Now().UTC()}
		if err := store.CreateCompetition(ctx, competition); err != nil {
			return nil, err
		}
		created = true
	}

	competition.Title = info.Title
	competition.City = info.City
	competition.PoolName = info.PoolName
	competition.Address = info.Address
	competition.Stage = info.Stage
	if info.StartDate != nil {
		competition.StartDate = *info.StartDate
	}
	competition.EndDate = info.EndDate
	if err := store.UpdateCompetition(ctx, competition); err != nil {
		return nil, err
	}
	if created {
		log.Printf("lenex import: created competition %q (%s)", competition.Title, competition.Slug)
	}

	if err := mergeTeams(ctx, store, competition, doc.Teams); err != nil {
		return nil, err
	}
	if err := mergeDocuments(ctx, store, files, competition, doc.Documents); err != nil {
		return nil, err
	}
	return competition, nil
}

func ensureUniqueSlug(ctx context.Context, store Store, base string, excludeID int64) (string, error) {
	if base == "" {
		base = "competition"
	}
	candidate := base
	for counter := 1; ; counter++ {
		taken, err := store.SlugTaken(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

type teamKey struct {
	name  string
	email string
}

func keyForTeam(name, email string) teamKey {
	return teamKey{
		name:  strings.ToLower(strings.TrimSpace(name)),
		email: strings.ToLower(strings.TrimSpace(email)),
	}
}

// mergeTeams upserts registrations and fully replaces each matched team's
// participant list. Teams are never diffed member-by-member.
func mergeTeams(ctx context.Context, store Store, competition *models.Competition, teams []*Team) error {
	existing, err := store.RegistrationsWithParticipants(ctx, competition.ID)
	if err != nil {
		return err
	}
	index := make(map[teamKey]*models.TeamRegistration, len(existing))
	for _, reg := range existing {
		index[keyForTeam(reg.DisplayTeamName(), reg.RepresentativeEmail)] = reg
	}

	for _, team := range teams {
		if team.TeamName == "" && team.RepresentativeName == "" {
			continue
		}
		name := team.TeamName
		if name == "" {
			name = team.RepresentativeName
		}
		key := keyForTeam(name, team.RepresentativeEmail)
		reg := index[key]
		if reg == nil {
			reg = &models.TeamRegistration{
				CompetitionID:       competition.ID,
				TeamName:            team.TeamName,
				RepresentativeName:  team.RepresentativeName,
				RepresentativePhone: team.RepresentativePhone,
				RepresentativeEmail: team.RepresentativeEmail,
				Status:              statusOr(team.Status, "pending"),
			}
			if err := store.CreateRegistration(ctx, reg); err != nil {
				return err
			}
			index[key] = reg
		} else {
			reg.TeamName = team.TeamName
			reg.RepresentativeName = team.RepresentativeName
			reg.RepresentativePhone = team.RepresentativePhone
			reg.RepresentativeEmail = team.RepresentativeEmail
			reg.Status = statusOr(team.Status, reg.Status)
			reg.IsDeleted = false
			if err := store.UpdateRegistration(ctx, reg); err != nil {
				return err
			}
		}

		participants := make([]*models.Participant, 0, len(team.Participants))
		for _, p := range team.Participants {
			if p.LastName == "" || p.FirstName == "" {
				continue
			}
			participants = append(participants, &models.Participant{
				TeamID:      reg.ID,
				LastName:    p.LastName,
				FirstName:   p.FirstName,
				MiddleName:  p.MiddleName,
				Gender:      strings.ToUpper(statusOr(p.Gender, "U")),
				BirthDate:   p.BirthDate,
				AgeCategory: p.AgeCategory,
				Distance:    p.Distance,
			})
		}
		if err := store.ReplaceParticipants(ctx, reg.ID, participants); err != nil {
			return err
		}
	}
	return nil
}

func statusOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// mergeDocuments writes each attachment to disk under the competition slug
// and upserts the ResultFile row matched by label.
func mergeDocuments(ctx context.Context, store Store, files FileStore, competition *models.Competition, documents []*ResultDocument) error {
	existing, err := store.ResultFilesForCompetition(ctx, competition.ID)
	if err != nil {
		return err
	}
	byLabel := make(map[string]*models.ResultFile, len(existing))
	for _, rf := range existing {
		byLabel[strings.ToLower(rf.Label)] = rf
	}

	for _, doc := range documents {
		filename := doc.Filename
		if filename == "" {
			filename = uuid.NewString() + "." + statusOr(doc.Kind, "dat")
		}
		destPath, err := files.WriteResultFile(competition.Slug, filename, doc.Content)
		if err != nil {
			return fmt.Errorf("write attachment %q: %w", doc.Label, err)
		}
		target := byLabel[strings.ToLower(doc.Label)]
		if target == nil {
			target = &models.ResultFile{
				CompetitionID: competition.ID,
				Label:         doc.Label,
				Kind:          doc.Kind,
				FilePath:      destPath,
			}
			if err := store.CreateResultFile(ctx, target); err != nil {
				return err
			}
			byLabel[strings.ToLower(doc.Label)] = target
		} else {
			target.Label = doc.Label
			target.Kind = doc.Kind
			target.FilePath = destPath
			if err := store.UpdateResultFile(ctx, target); err != nil {
				return err
			}
		}
	}
	return nil
}
