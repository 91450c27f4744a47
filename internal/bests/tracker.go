// Package bests maintains each athlete's personal-best record. A best is
// recomputed from the full result set for its (user, event, course) key, so
// the denormalized PersonalBest row can never diverge from the results.
package bests

import (
	"context"
	"fmt"
	"sort"

	"swim-engine/internal/models"
)

// Key identifies the scope of one personal-best record.
type Key struct {
	UserID    int64
	EventCode string
	Course    string
}

// Store is the slice of the data layer the tracker needs. All calls are
// expected to run inside the same transaction as the result writes that
// triggered the recalculation.
type Store interface {
	ResultsForKey(ctx context.Context, key Key) ([]*models.SwimResult, error)
	UpdateResultBestFlag(ctx context.Context, resultID int64, isBest bool) error
	PersonalBestForKey(ctx context.Context, key Key) (*models.PersonalBest, error)
	UpsertPersonalBest(ctx context.Context, pb *models.PersonalBest) error
	DeletePersonalBest(ctx context.Context, id int64) error
}

type Tracker struct {
	store Store
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Best picks the winning result: fastest time, then earliest swim date with
// undated results last, then lowest id. The sort is stable and total, so the
// outcome is deterministic for any input order.
func Best(results []*models.SwimResult) *models.SwimResult {
	if len(results) == 0 {
		return nil
	}
	ordered := make([]*models.SwimResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.TimeMs != b.TimeMs {
			return a.TimeMs < b.TimeMs
		}
		switch {
		case a.SwimDate == nil && b.SwimDate != nil:
			return false
		case a.SwimDate != nil && b.SwimDate == nil:
			return true
		case a.SwimDate != nil && b.SwimDate != nil && !a.SwimDate.Equal(*b.SwimDate):
			return a.SwimDate.Before(*b.SwimDate)
		}
		return a.ID < b.ID
	})
	return ordered[0]
}

// Recalculate re-derives the best flag and the PersonalBest row for one key.
// Exactly one result keeps isPersonalBest=true; an empty result set removes
// the PersonalBest row entirely.
func (t *Tracker) Recalculate(ctx context.Context, key Key) error {
	results, err := t.store.ResultsForKey(ctx, key)
	if err != nil {
		return fmt.Errorf("results for %s/%s: %w", key.EventCode, key.Course, err)
	}
	best := Best(results)
	for _, r := range results {
		want := best != nil && r.ID == best.ID
		if r.IsPersonalBest == want {
			continue
		}
		if err := t.store.UpdateResultBestFlag(ctx, r.ID, want); err != nil {
			return err
		}
		r.IsPersonalBest = want
	}

	pb, err := t.store.PersonalBestForKey(ctx, key)
	if err != nil {
		return err
	}
	if best == nil {
		if pb != nil {
			return t.store.DeletePersonalBest(ctx, pb.ID)
		}
		return nil
	}
	if pb == nil {
		pb = &models.PersonalBest{
			UserID:    key.UserID,
			EventCode: key.EventCode,
			Course:    key.Course,
		}
	}
	pb.TimeMs = best.TimeMs
	pb.TimeText = best.TimeText
	pb.FinaPoints = best.FinaPoints
	pb.ResultID = best.ID
	return t.store.UpsertPersonalBest(ctx, pb)
}

// RecalculateAll processes the touched keys of a batch import in a stable
// order so repeated runs behave identically.
func (t *Tracker) RecalculateAll(ctx context.Context, keys map[Key]struct{}) error {
	ordered := make([]Key, 0, len(keys))
	for key := range keys {
		ordered = append(ordered, key)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if a.EventCode != b.EventCode {
			return a.EventCode < b.EventCode
		}
		return a.Course < b.Course
	})
	for _, key := range ordered {
		if err := t.Recalculate(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
