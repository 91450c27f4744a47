package storage

import (
	"context"

	"github.com/uptrace/bun"

	"swim-engine/internal/models"
	"swim-engine/internal/seeding"
)

// SeedingParticipants returns every participant eligible for seeding:
// members of non-soft-deleted team registrations of the competition, with
// the team loaded so the engine can check its status.
func (s *Store) SeedingParticipants(ctx context.Context, competitionID int64) ([]*models.Participant, error) {
	var participants []*models.Participant
	err := s.db.NewSelect().Model(&participants).
		Relation("Team").
		Where("team.competition_id = ?", competitionID).
		Where("team.is_deleted = ?", false).
		Order("p.id ASC").
		Scan(ctx)
	return participants, scanOne(err)
}

// ReplaceHeats atomically swaps the heats (and their lanes) inside the
// scope for the given set. Session/distance scope matching is
// case-insensitive; an empty filter matches everything. A failure rolls the
// whole replacement back.
func (s *Store) ReplaceHeats(ctx context.Context, scope seeding.ReplaceScope, heats []*models.Heat) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx *Store) error {
		sel := tx.db.NewSelect().Model((*models.Heat)(nil)).
			Column("id").
			Where("competition_id = ?", scope.CompetitionID)
		if scope.Session != "" {
			sel = sel.Where("lower(session_name) = lower(?)", scope.Session)
		}
		if scope.Distance != "" {
			sel = sel.Where("lower(distance) = lower(?)", scope.Distance)
		}
		var heatIDs []int64
		if err := sel.Scan(ctx, &heatIDs); err != nil {
			return err
		}
		if len(heatIDs) > 0 {
			if _, err := tx.db.NewDelete().Model((*models.Lane)(nil)).
				Where("heat_id IN (?)", bun.In(heatIDs)).
				Exec(ctx); err != nil {
				return err
			}
			if _, err := tx.db.NewDelete().Model((*models.Heat)(nil)).
				Where("id IN (?)", bun.In(heatIDs)).
				Exec(ctx); err != nil {
				return err
			}
		}

		for _, heat := range heats {
			if _, err := tx.db.NewInsert().Model(heat).Exec(ctx); err != nil {
				return err
			}
			if len(heat.Lanes) == 0 {
				continue
			}
			for _, lane := range heat.Lanes {
				lane.HeatID = heat.ID
			}
			if _, err := tx.db.NewInsert().Model(&heat.Lanes).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// HeatsForCompetition loads the stored assignments, lanes ordered within
// each heat, for reporting.
func (s *Store) HeatsForCompetition(ctx context.Context, competitionID int64) ([]*models.Heat, error) {
	var heats []*models.Heat
	err := s.db.NewSelect().Model(&heats).
		Relation("Lanes", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("lane_number ASC")
		}).
		Where("h.competition_id = ?", competitionID).
		Order("h.session_name ASC").
		Order("h.distance ASC").
		Order("h.age_category ASC").
		Order("h.heat_number ASC").
		Scan(ctx)
	return heats, scanOne(err)
}
