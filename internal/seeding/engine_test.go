package seeding

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"swim-engine/internal/models"
)

type fakeStore struct {
	participants []*models.Participant
	scope        ReplaceScope
	heats        []*models.Heat
	replaced     int
}

func (f *fakeStore) SeedingParticipants(_ context.Context, _ int64) ([]*models.Participant, error) {
	return f.participants, nil
}

func (f *fakeStore) ReplaceHeats(_ context.Context, scope ReplaceScope, heats []*models.Heat) error {
	f.scope = scope
	f.heats = heats
	f.replaced++
	return nil
}

func approvedTeam() *models.TeamRegistration {
	return &models.TeamRegistration{ID: 1, Status: "approved"}
}

func swimmers(n int, distance func(i int) string) []*models.Participant {
	team := approvedTeam()
	out := make([]*models.Participant, n)
	for i := range out {
		out[i] = &models.Participant{
			ID:       int64(i + 1),
			LastName: fmt.Sprintf("Swimmer%02d", i+1),
			Distance: distance(i),
			Team:     team,
		}
	}
	return out
}

func TestRecalculateSeventeenEntries(t *testing.T) {
	store := &fakeStore{
		// Participant i seeds at i+1 seconds, so participant 1 is fastest.
		participants: swimmers(17, func(i int) string {
			return fmt.Sprintf("100 м вольный стиль (1:%02d.0)", i+1)
		}),
	}
	engine := NewEngine(store)

	summary, err := engine.Recalculate(context.Background(), 7, Options{LaneCount: 8})
	if err != nil {
		t.Fatal(err)
	}
	if summary.HeatsCreated != 3 || summary.LanesAssigned != 17 {
		t.Fatalf("summary = %d heats / %d lanes, want 3 / 17", summary.HeatsCreated, summary.LanesAssigned)
	}
	if len(summary.Groups) != 1 || summary.Groups[0].Participants != 17 {
		t.Fatalf("groups = %+v", summary.Groups)
	}
	if len(store.heats) != 3 {
		t.Fatalf("%d heats stored, want 3", len(store.heats))
	}
	if store.scope.CompetitionID != 7 {
		t.Errorf("scope competition = %d, want 7", store.scope.CompetitionID)
	}

	sizes := []int{len(store.heats[0].Lanes), len(store.heats[1].Lanes), len(store.heats[2].Lanes)}
	if !reflect.DeepEqual(sizes, []int{1, 8, 8}) {
		t.Fatalf("heat sizes = %v, want [1 8 8]", sizes)
	}
	for i, heat := range store.heats {
		if heat.HeatNumber != i+1 {
			t.Errorf("heat %d numbered %d", i, heat.HeatNumber)
		}
	}

	// Fastest participant takes the center lane of the final heat.
	final := store.heats[2]
	for _, lane := range final.Lanes {
		if lane.LaneNumber == 4 {
			if lane.ParticipantID == nil || *lane.ParticipantID != 1 {
				t.Errorf("final heat lane 4 holds %v, want participant 1", lane.ParticipantID)
			}
			if lane.SeedTimeMs == nil || *lane.SeedTimeMs != 61000 {
				t.Errorf("final heat lane 4 seed = %v, want 61000", lane.SeedTimeMs)
			}
		}
	}
	// The lone swimmer of the first heat is the slowest one, centered.
	first := store.heats[0]
	if len(first.Lanes) != 1 || first.Lanes[0].LaneNumber != 4 || *first.Lanes[0].ParticipantID != 17 {
		t.Errorf("first heat = %+v", first.Lanes[0])
	}
}

func TestRecalculateDeterministic(t *testing.T) {
	build := func() *fakeStore {
		return &fakeStore{participants: swimmers(11, func(i int) string {
			return fmt.Sprintf("50 брасс 0:%02d.5", 30+i)
		})}
	}
	storeA, storeB := build(), build()
	if _, err := NewEngine(storeA).Recalculate(context.Background(), 1, Options{LaneCount: 6}); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(storeB).Recalculate(context.Background(), 1, Options{LaneCount: 6}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(render(storeA.heats), render(storeB.heats)) {
		t.Error("two runs over the same data produced different assignments")
	}
}

func render(heats []*models.Heat) []string {
	var out []string
	for _, h := range heats {
		for _, l := range h.Lanes {
			out = append(out, fmt.Sprintf("%s/%s/%d/%d/%v", h.Distance, h.AgeCategory, h.HeatNumber, l.LaneNumber, *l.ParticipantID))
		}
	}
	return out
}

func TestRecalculateSkipsRejectedAndEmpty(t *testing.T) {
	rejected := &models.TeamRegistration{ID: 2, Status: "REJECTED"}
	store := &fakeStore{participants: []*models.Participant{
		{ID: 1, LastName: "A", Distance: "100 кроль", Team: approvedTeam()},
		{ID: 2, LastName: "B", Distance: "100 кроль", Team: rejected},
		{ID: 3, LastName: "C", Distance: "   ", Team: approvedTeam()},
	}}

	summary, err := NewEngine(store).Recalculate(context.Background(), 1, Options{LaneCount: 8})
	if err != nil {
		t.Fatal(err)
	}
	if summary.LanesAssigned != 1 {
		t.Fatalf("%d lanes assigned, want 1 (rejected team and empty label skipped)", summary.LanesAssigned)
	}
	if *store.heats[0].Lanes[0].ParticipantID != 1 {
		t.Errorf("wrong participant seeded: %d", *store.heats[0].Lanes[0].ParticipantID)
	}
}

func TestRecalculateUntimedSeedLast(t *testing.T) {
	team := approvedTeam()
	store := &fakeStore{participants: []*models.Participant{
		{ID: 1, LastName: "Slow", Distance: "100 кроль 1:20.0", Team: team},
		{ID: 2, LastName: "Untimed", Distance: "100 кроль", Team: team},
		{ID: 3, LastName: "Fast", Distance: "100 кроль 1:00.0", Team: team},
	}}

	_, err := NewEngine(store).Recalculate(context.Background(), 1, Options{LaneCount: 4})
	if err != nil {
		t.Fatal(err)
	}
	heat := store.heats[0]
	byLane := map[int]int64{}
	for _, l := range heat.Lanes {
		byLane[l.LaneNumber] = *l.ParticipantID
	}
	// Base order for 4 lanes is 2,3,1,4: fastest center-left, untimed last.
	want := map[int]int64{2: 3, 3: 1, 1: 2}
	if !reflect.DeepEqual(byLane, want) {
		t.Errorf("lanes = %v, want %v", byLane, want)
	}
}

func TestRecalculateSessionFilterAdoptsUnlabelled(t *testing.T) {
	team := approvedTeam()
	store := &fakeStore{participants: []*models.Participant{
		{ID: 1, LastName: "A", Distance: "Утро|100 кроль", Team: team},
		{ID: 2, LastName: "B", Distance: "100 кроль", Team: team},
		{ID: 3, LastName: "C", Distance: "Вечер|100 кроль", Team: team},
	}}

	summary, err := NewEngine(store).Recalculate(context.Background(), 1, Options{Session: "Утро", LaneCount: 8})
	if err != nil {
		t.Fatal(err)
	}
	if summary.LanesAssigned != 2 {
		t.Fatalf("%d lanes, want 2 (unlabelled entry adopted, other session excluded)", summary.LanesAssigned)
	}
	if store.scope.Session != "Утро" {
		t.Errorf("scope session = %q", store.scope.Session)
	}
	for _, heat := range store.heats {
		if heat.SessionName != "Утро" {
			t.Errorf("heat session = %q, want Утро", heat.SessionName)
		}
	}
}

func TestRecalculateRejectsBadLaneCount(t *testing.T) {
	store := &fakeStore{}
	_, err := NewEngine(store).Recalculate(context.Background(), 1, Options{LaneCount: 0})
	if !errors.Is(err, ErrLaneCount) {
		t.Fatalf("err = %v, want ErrLaneCount", err)
	}
	if store.replaced != 0 {
		t.Error("nothing may be replaced when the lane count is invalid")
	}
}
