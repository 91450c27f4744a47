// Package seeding assigns competition entries to heats and lanes. Entries
// are grouped by session, distance and age category, ordered by seed time
// and distributed with a serpentine pattern: the fastest block fills the
// final heat, lanes are taken center-out.
package seeding

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"swim-engine/internal/models"
	"swim-engine/internal/swimtime"
)

// Entry is one participant's claim on a heat lane. Entries are derived per
// recalculation and never persisted themselves.
type Entry struct {
	Participant  *models.Participant
	SessionLabel string
	DistLabel    string
	AgeCategory  string
	SeedTimeMs   *int
	SeedTimeText string
}

// GroupKey identifies one seeded event: normalization is trim + collapse
// whitespace + lowercase on every component.
type GroupKey struct {
	Session     string
	Distance    string
	AgeCategory string
}

// ReplaceScope selects the heats a recalculation replaces. Empty Session or
// Distance means "all". Matching is case-insensitive.
type ReplaceScope struct {
	CompetitionID int64
	Session       string
	Distance      string
}

// Store is the data-layer slice the engine needs. ReplaceHeats must delete
// the scoped heats (lanes cascading) and create the new set inside a single
// transaction; a partially applied replacement must never persist.
type Store interface {
	SeedingParticipants(ctx context.Context, competitionID int64) ([]*models.Participant, error)
	ReplaceHeats(ctx context.Context, scope ReplaceScope, heats []*models.Heat) error
}

// Options narrow a recalculation to one session and/or distance and set the
// pool width.
type Options struct {
	Session   string
	Distance  string
	LaneCount int
}

type GroupSummary struct {
	Session      string `json:"session"`
	Distance     string `json:"distance"`
	AgeCategory  string `json:"age_category"`
	Participants int    `json:"participants"`
	Heats        int    `json:"heats"`
}

type Summary struct {
	CompetitionID int64          `json:"competition_id"`
	Session       string         `json:"session"`
	Distance      string         `json:"distance"`
	LaneCount     int            `json:"lane_count"`
	HeatsCreated  int            `json:"heats_created"`
	LanesAssigned int            `json:"lanes_assigned"`
	Groups        []GroupSummary `json:"groups"`
}

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Recalculate rebuilds heat and lane assignments for the scoped events.
// Existing heats in scope are fully replaced, never patched.
func (e *Engine) Recalculate(ctx context.Context, competitionID int64, opts Options) (*Summary, error) {
	if opts.LaneCount <= 0 {
		return nil, ErrLaneCount
	}
	sessionClean := cleanLabel(opts.Session)
	distanceClean := cleanLabel(opts.Distance)

	groups, err := e.collect(ctx, competitionID, sessionClean, distanceClean)
	if err != nil {
		return nil, err
	}

	keys := make([]GroupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Session != b.Session {
			return a.Session < b.Session
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return a.AgeCategory < b.AgeCategory
	})

	summary := &Summary{
		CompetitionID: competitionID,
		Session:       sessionClean,
		Distance:      distanceClean,
		LaneCount:     opts.LaneCount,
	}
	var heats []*models.Heat

	for _, key := range keys {
		entries := groups[key]
		if len(entries) == 0 {
			continue
		}
		orderEntries(entries)

		assigned, err := serpentineAssign(entries, opts.LaneCount)
		if err != nil {
			return nil, err
		}
		for i, assignments := range assigned {
			heat := &models.Heat{
				CompetitionID: competitionID,
				SessionName:   entries[0].SessionLabel,
				Distance:      entries[0].DistLabel,
				AgeCategory:   entries[0].AgeCategory,
				HeatNumber:    i + 1,
			}
			for _, a := range assignments {
				display := a.entry.SeedTimeText
				if display == "" && a.entry.SeedTimeMs != nil {
					display = swimtime.FormatMillis(*a.entry.SeedTimeMs)
				}
				pid := a.entry.Participant.ID
				heat.Lanes = append(heat.Lanes, &models.Lane{
					LaneNumber:    a.laneNumber,
					ParticipantID: &pid,
					SeedTimeMs:    a.entry.SeedTimeMs,
					SeedTimeText:  display,
				})
				summary.LanesAssigned++
			}
			heats = append(heats, heat)
			summary.HeatsCreated++
		}

		summary.Groups = append(summary.Groups, GroupSummary{
			Session:      entries[0].SessionLabel,
			Distance:     entries[0].DistLabel,
			AgeCategory:  entries[0].AgeCategory,
			Participants: len(entries),
			Heats:        len(assigned),
		})
	}

	scope := ReplaceScope{CompetitionID: competitionID, Session: sessionClean, Distance: distanceClean}
	if err := e.store.ReplaceHeats(ctx, scope, heats); err != nil {
		return nil, fmt.Errorf("replace heats: %w", err)
	}
	return summary, nil
}

// orderEntries sorts a group fastest-first: untimed entries after all timed
// ones, ties broken by last name, first name, then participant id.
func orderEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if (a.SeedTimeMs == nil) != (b.SeedTimeMs == nil) {
			return a.SeedTimeMs != nil
		}
		at, bt := 0, 0
		if a.SeedTimeMs != nil {
			at = *a.SeedTimeMs
		}
		if b.SeedTimeMs != nil {
			bt = *b.SeedTimeMs
		}
		if at != bt {
			return at < bt
		}
		if a.Participant.LastName != b.Participant.LastName {
			return a.Participant.LastName < b.Participant.LastName
		}
		if a.Participant.FirstName != b.Participant.FirstName {
			return a.Participant.FirstName < b.Participant.FirstName
		}
		return a.Participant.ID < b.Participant.ID
	})
}

// collect walks the competition's participants, parses each distance field
// and buckets the surviving entries by group key. Participants of rejected
// teams and entries with no distance label are excluded. A session filter
// adopts unlabelled entries into the filtered session.
func (e *Engine) collect(ctx context.Context, competitionID int64, sessionFilter, distanceFilter string) (map[GroupKey][]*Entry, error) {
	participants, err := e.store.SeedingParticipants(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("collect participants: %w", err)
	}

	sessionNormFilter := normalizeKey(sessionFilter)
	distanceNormFilter := normalizeKey(distanceFilter)
	groups := make(map[GroupKey][]*Entry)

	for _, participant := range participants {
		if participant.Team != nil && normalizeKey(participant.Team.Status) == "rejected" {
			continue
		}
		parsed := SplitDistance(participant.Distance)
		if cleanLabel(parsed.Distance) == "" {
			continue
		}
		ageCategory := cleanLabel(participant.AgeCategory)

		sessionNorm := normalizeKey(parsed.Session)
		distanceNorm := normalizeKey(parsed.Distance)

		if distanceNormFilter != "" && distanceNorm != distanceNormFilter {
			continue
		}
		sessionLabel := parsed.Session
		if sessionNormFilter != "" {
			if sessionNorm != "" && sessionNorm != sessionNormFilter {
				continue
			}
			sessionLabel = sessionFilter
			sessionNorm = sessionNormFilter
		}

		display := parsed.SeedTimeText
		if display == "" && parsed.SeedTimeMs != nil {
			display = swimtime.FormatMillis(*parsed.SeedTimeMs)
		}
		key := GroupKey{
			Session:     sessionNorm,
			Distance:    distanceNorm,
			AgeCategory: strings.ToLower(ageCategory),
		}
		groups[key] = append(groups[key], &Entry{
			Participant:  participant,
			SessionLabel: cleanLabel(sessionLabel),
			DistLabel:    cleanLabel(parsed.Distance),
			AgeCategory:  ageCategory,
			SeedTimeMs:   parsed.SeedTimeMs,
			SeedTimeText: display,
		})
	}
	return groups, nil
}
