package results

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"swim-engine/internal/bests"
	"swim-engine/internal/models"
	"swim-engine/internal/points"
	"swim-engine/internal/swimtime"
)

// Store is the data-layer slice the persister needs; everything runs in the
// caller's transaction so best-flag recalculation sees the fresh writes.
type Store interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByFullName(ctx context.Context, fullName string, birthDate *time.Time) (*models.User, error)
	UserByUsernameSubstring(ctx context.Context, fragment string) (*models.User, error)

	ResultByAttempt(ctx context.Context, userID, competitionID int64, eventCode, stage, heat string) (*models.SwimResult, error)
	CreateResult(ctx context.Context, r *models.SwimResult) error
	UpdateResult(ctx context.Context, r *models.SwimResult) error
}

type Persister struct {
	store   Store
	calc    *points.Calculator
	tracker *bests.Tracker
}

func NewPersister(store Store, calc *points.Calculator, tracker *bests.Tracker) *Persister {
	return &Persister{store: store, calc: calc, tracker: tracker}
}

// ResolveUser finds the athlete a row belongs to. Priority: exact username,
// exact email, normalized full name (narrowed by birth date when present),
// then a username substring match. A nil user means the row is skipped.
func ResolveUser(ctx context.Context, store Store, row *Row) (*models.User, error) {
	if row.Username != "" {
		user, err := store.UserByUsername(ctx, row.Username)
		if err != nil || user != nil {
			return user, err
		}
	}
	if row.Email != "" {
		user, err := store.UserByEmail(ctx, row.Email)
		if err != nil || user != nil {
			return user, err
		}
	}
	normalized := strings.Join(strings.Fields(row.FullName), " ")
	if normalized == "" {
		return nil, nil
	}
	user, err := store.UserByFullName(ctx, normalized, row.BirthDate)
	if err != nil || user != nil {
		return user, err
	}
	return store.UserByUsernameSubstring(ctx, normalized)
}

// Persist upserts one SwimResult per row (unique per user, competition,
// event, stage, heat) and then recomputes personal bests for every touched
// (user, event, course) key. Row-level failures degrade gracefully.
func (p *Persister) Persist(ctx context.Context, competition *models.Competition, rows []*Row) ([]*models.SwimResult, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	var stored []*models.SwimResult
	touched := map[bests.Key]struct{}{}

	for _, row := range rows {
		user, err := ResolveUser(ctx, p.store, row)
		if err != nil {
			return nil, err
		}
		if user == nil {
			log.Printf("result for %q skipped: user not found", row.FullName)
			continue
		}
		timeMs, ok := row.TimeMs()
		if !ok {
			continue
		}
		eventCode, ok := points.NormalizeEventCode(row.DistanceLabel, row.Stroke)
		if !ok {
			log.Printf("result for %q skipped: unsupported distance %q", row.FullName, row.DistanceLabel)
			continue
		}
		gender := user.Gender
		if gender == "" {
			gender = row.Gender
		}
		var finaPoints *int
		if pts, ok := p.calc.Points(gender, eventCode, timeMs, row.Course); ok {
			finaPoints = &pts
		}

		result, err := p.upsertResult(ctx, user, competition, row, eventCode, timeMs, finaPoints)
		if err != nil {
			return nil, err
		}
		stored = append(stored, result)
		touched[bests.Key{UserID: user.ID, EventCode: eventCode, Course: row.Course}] = struct{}{}
	}

	if err := p.tracker.RecalculateAll(ctx, touched); err != nil {
		return nil, fmt.Errorf("recalculate personal bests: %w", err)
	}
	return stored, nil
}

func (p *Persister) upsertResult(
	ctx context.Context,
	user *models.User,
	competition *models.Competition,
	row *Row,
	eventCode string,
	timeMs int,
	finaPoints *int,
) (*models.SwimResult, error) {
	existing, err := p.store.ResultByAttempt(ctx, user.ID, competition.ID, eventCode, row.Stage, row.Heat)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		result := &models.SwimResult{
			UserID:        user.ID,
			CompetitionID: competition.ID,
			EventCode:     eventCode,
			DistanceLabel: row.DistanceLabel,
			Stroke:        row.Stroke,
			Course:        row.Course,
			TimeMs:        timeMs,
			TimeText:      swimtime.FormatMillis(timeMs),
			FinaPoints:    finaPoints,
			SwimDate:      row.SwimDate,
			Stage:         row.Stage,
			Heat:          row.Heat,
			Place:         row.Place,
		}
		if err := p.store.CreateResult(ctx, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	existing.DistanceLabel = row.DistanceLabel
	if row.Stroke != "" {
		existing.Stroke = row.Stroke
	}
	existing.Course = row.Course
	existing.TimeMs = timeMs
	existing.TimeText = swimtime.FormatMillis(timeMs)
	existing.FinaPoints = finaPoints
	existing.SwimDate = row.SwimDate
	existing.Stage = row.Stage
	existing.Heat = row.Heat
	existing.Place = row.Place
	if err := p.store.UpdateResult(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}
