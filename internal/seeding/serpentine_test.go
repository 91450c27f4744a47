package seeding

import (
	"errors"
	"reflect"
	"strconv"
	"testing"

	"swim-engine/internal/models"
)

func TestBaseLaneOrder(t *testing.T) {
	cases := []struct {
		lanes int
		want  []int
	}{
		{8, []int{4, 5, 3, 6, 2, 7, 1, 8}},
		{6, []int{3, 4, 2, 5, 1, 6}},
		{10, []int{5, 6, 4, 7, 3, 8, 2, 9, 1, 10}},
		{7, []int{4, 3, 5, 2, 6, 1, 7}},
		{5, []int{3, 2, 4, 1, 5}},
		{1, []int{1}},
	}
	for _, c := range cases {
		got, err := baseLaneOrder(c.lanes)
		if err != nil {
			t.Fatalf("baseLaneOrder(%d): %v", c.lanes, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("baseLaneOrder(%d) = %v, want %v", c.lanes, got, c.want)
		}
	}

	for _, lanes := range []int{0, -3} {
		if _, err := baseLaneOrder(lanes); !errors.Is(err, ErrLaneCount) {
			t.Errorf("baseLaneOrder(%d) err = %v, want ErrLaneCount", lanes, err)
		}
	}
}

func makeEntries(n int) []*Entry {
	entries := make([]*Entry, n)
	for i := range entries {
		ms := (i + 1) * 1000
		entries[i] = &Entry{
			Participant: &models.Participant{ID: int64(i + 1), LastName: "P" + strconv.Itoa(i+1)},
			SeedTimeMs:  &ms,
		}
	}
	return entries
}

func TestSerpentineSeventeenOverEight(t *testing.T) {
	heats, err := serpentineAssign(makeEntries(17), 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(heats) != 3 {
		t.Fatalf("%d heats, want 3", len(heats))
	}
	if len(heats[0]) != 1 || len(heats[1]) != 8 || len(heats[2]) != 8 {
		t.Fatalf("heat sizes %d/%d/%d, want 1/8/8", len(heats[0]), len(heats[1]), len(heats[2]))
	}

	// The fastest eight land in the last heat, in center-out order; the
	// single slowest entry gets the center lane of the first heat.
	fastest := heats[2]
	byLane := map[int]int64{}
	for _, a := range fastest {
		byLane[a.laneNumber] = a.entry.Participant.ID
	}
	wantLanes := map[int]int64{4: 1, 5: 2, 3: 3, 6: 4, 2: 5, 7: 6, 1: 7, 8: 8}
	if !reflect.DeepEqual(byLane, wantLanes) {
		t.Errorf("final heat lanes = %v, want %v", byLane, wantLanes)
	}
	if heats[0][0].laneNumber != 4 || heats[0][0].entry.Participant.ID != 17 {
		t.Errorf("first heat = lane %d participant %d, want lane 4 participant 17",
			heats[0][0].laneNumber, heats[0][0].entry.Participant.ID)
	}

	// Lanes come back sorted within each heat.
	for i, heat := range heats {
		for j := 1; j < len(heat); j++ {
			if heat[j-1].laneNumber >= heat[j].laneNumber {
				t.Errorf("heat %d lanes not ascending: %d then %d", i, heat[j-1].laneNumber, heat[j].laneNumber)
			}
		}
	}
}

func TestSerpentineEmptyAndError(t *testing.T) {
	heats, err := serpentineAssign(nil, 8)
	if err != nil || heats != nil {
		t.Errorf("empty input: (%v, %v), want (nil, nil)", heats, err)
	}
	if _, err := serpentineAssign(makeEntries(3), 0); !errors.Is(err, ErrLaneCount) {
		t.Errorf("zero lanes err = %v, want ErrLaneCount", err)
	}
}
