package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"swim-engine/internal/bests"
	"swim-engine/internal/models"
)

// scanOne normalizes the no-rows case to a nil entity.
func scanOne(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

// ---------- users ----------

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	err := s.db.NewSelect().Model(user).Where("username = ?", username).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := new(models.User)
	err := s.db.NewSelect().Model(user).Where("email = ?", email).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (s *Store) UserByFullName(ctx context.Context, fullName string, birthDate *time.Time) (*models.User, error) {
	user := new(models.User)
	q := s.db.NewSelect().Model(user).Where("lower(full_name) = lower(?)", fullName)
	if birthDate != nil {
		q = q.Where("birth_date = ?", *birthDate)
	}
	err := q.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (s *Store) UserByUsernameSubstring(ctx context.Context, fragment string) (*models.User, error) {
	user := new(models.User)
	err := s.db.NewSelect().Model(user).
		Where("lower(username) LIKE ?", "%"+strings.ToLower(fragment)+"%").
		Order("id ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

// ---------- competitions ----------

func (s *Store) CompetitionByID(ctx context.Context, id int64) (*models.Competition, error) {
	c := new(models.Competition)
	err := s.db.NewSelect().Model(c).Where("c.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *Store) CompetitionBySlug(ctx context.Context, slug string) (*models.Competition, error) {
	c := new(models.Competition)
	err := s.db.NewSelect().Model(c).Where("slug = ?", slug).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *Store) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	q := s.db.NewSelect().Model((*models.Competition)(nil)).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	return q.Exists(ctx)
}

func (s *Store) CreateCompetition(ctx context.Context, c *models.Competition) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NewInsert().Model(c).Exec(ctx)
	return err
}

func (s *Store) UpdateCompetition(ctx context.Context, c *models.Competition) error {
	_, err := s.db.NewUpdate().Model(c).WherePK().Exec(ctx)
	return err
}

// ---------- registrations and participants ----------

func (s *Store) RegistrationsWithParticipants(ctx context.Context, competitionID int64) ([]*models.TeamRegistration, error) {
	var regs []*models.TeamRegistration
	err := s.db.NewSelect().Model(&regs).
		Relation("Participants").
		Where("tr.competition_id = ?", competitionID).
		Order("tr.id ASC").
		Scan(ctx)
	return regs, scanOne(err)
}

func (s *Store) CreateRegistration(ctx context.Context, r *models.TeamRegistration) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NewInsert().Model(r).Exec(ctx)
	return err
}

func (s *Store) UpdateRegistration(ctx context.Context, r *models.TeamRegistration) error {
	_, err := s.db.NewUpdate().Model(r).WherePK().Exec(ctx)
	return err
}

// ReplaceParticipants swaps a registration's whole participant list. The
// import merge never diffs members.
func (s *Store) ReplaceParticipants(ctx context.Context, registrationID int64, participants []*models.Participant) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx *Store) error {
		if _, err := tx.db.NewDelete().
			Model((*models.Participant)(nil)).
			Where("team_id = ?", registrationID).
			Exec(ctx); err != nil {
			return err
		}
		if len(participants) == 0 {
			return nil
		}
		for _, p := range participants {
			p.TeamID = registrationID
		}
		_, err := tx.db.NewInsert().Model(&participants).Exec(ctx)
		return err
	})
}

// ---------- result files ----------

func (s *Store) ResultFilesForCompetition(ctx context.Context, competitionID int64) ([]*models.ResultFile, error) {
	var files []*models.ResultFile
	err := s.db.NewSelect().Model(&files).
		Where("competition_id = ?", competitionID).
		Order("id ASC").
		Scan(ctx)
	return files, scanOne(err)
}

func (s *Store) CreateResultFile(ctx context.Context, f *models.ResultFile) error {
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	_, err := s.db.NewInsert().Model(f).Exec(ctx)
	return err
}

func (s *Store) UpdateResultFile(ctx context.Context, f *models.ResultFile) error {
	_, err := s.db.NewUpdate().Model(f).WherePK().Exec(ctx)
	return err
}

// ---------- swim results and personal bests ----------

func (s *Store) ResultByAttempt(ctx context.Context, userID, competitionID int64, eventCode, stage, heat string) (*models.SwimResult, error) {
	r := new(models.SwimResult)
	err := s.db.NewSelect().Model(r).
		Where("user_id = ?", userID).
		Where("competition_id = ?", competitionID).
		Where("event_code = ?", eventCode).
		Where("stage = ?", stage).
		Where("heat = ?", heat).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (s *Store) CreateResult(ctx context.Context, r *models.SwimResult) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	_, err := s.db.NewInsert().Model(r).Exec(ctx)
	return err
}

func (s *Store) UpdateResult(ctx context.Context, r *models.SwimResult) error {
	r.UpdatedAt = time.Now().UTC()
	_, err := s.db.NewUpdate().Model(r).WherePK().Exec(ctx)
	return err
}

func (s *Store) ResultsForKey(ctx context.Context, key bests.Key) ([]*models.SwimResult, error) {
	var results []*models.SwimResult
	err := s.db.NewSelect().Model(&results).
		Where("user_id = ?", key.UserID).
		Where("event_code = ?", key.EventCode).
		Where("course = ?", key.Course).
		Order("time_ms ASC").
		OrderExpr("swim_date ASC NULLS LAST").
		Order("id ASC").
		Scan(ctx)
	return results, scanOne(err)
}

func (s *Store) UpdateResultBestFlag(ctx context.Context, resultID int64, isBest bool) error {
	_, err := s.db.NewUpdate().Model((*models.SwimResult)(nil)).
		Set("is_personal_best = ?", isBest).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", resultID).
		Exec(ctx)
	return err
}

func (s *Store) PersonalBestForKey(ctx context.Context, key bests.Key) (*models.PersonalBest, error) {
	pb := new(models.PersonalBest)
	err := s.db.NewSelect().Model(pb).
		Where("user_id = ?", key.UserID).
		Where("event_code = ?", key.EventCode).
		Where("course = ?", key.Course).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return pb, err
}

func (s *Store) UpsertPersonalBest(ctx context.Context, pb *models.PersonalBest) error {
	pb.UpdatedAt = time.Now().UTC()
	if pb.ID == 0 {
		_, err := s.db.NewInsert().Model(pb).Exec(ctx)
		return err
	}
	_, err := s.db.NewUpdate().Model(pb).WherePK().Exec(ctx)
	return err
}

func (s *Store) DeletePersonalBest(ctx context.Context, id int64) error {
	_, err := s.db.NewDelete().Model((*models.PersonalBest)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}
