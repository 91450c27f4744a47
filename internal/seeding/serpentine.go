package seeding

import (
	"errors"
	"sort"
)

// ErrLaneCount is returned for zero or negative lane counts. Nothing is
// deleted or written in that case.
var ErrLaneCount = errors.New("lane count must be positive")

// baseLaneOrder builds the center-out lane sequence: the central lane(s)
// first, then alternating left/right outward. For 8 lanes this yields
// 4,5,3,6,2,7,1,8. Even counts pair two central lanes; odd counts have a
// single center.
func baseLaneOrder(laneCount int) ([]int, error) {
	if laneCount <= 0 {
		return nil, ErrLaneCount
	}
	centerLeft := (laneCount + 1) / 2
	centerRight := centerLeft
	if laneCount%2 == 0 {
		centerLeft = laneCount / 2
		centerRight = centerLeft + 1
	}
	order := make([]int, 0, laneCount)
	for offset := 0; len(order) < laneCount; offset++ {
		if offset == 0 {
			order = append(order, centerLeft)
			if centerRight != centerLeft {
				order = append(order, centerRight)
			}
			continue
		}
		if left := centerLeft - offset; left >= 1 {
			order = append(order, left)
		}
		if right := centerRight + offset; right <= laneCount {
			order = append(order, right)
		}
	}
	return order[:laneCount], nil
}

type laneAssignment struct {
	laneNumber int
	entry      *Entry
}

// serpentineAssign distributes already-ordered entries (fastest first) over
// heats. The fastest block of laneCount entries lands in the last heat;
// alternating blocks reverse the lane order (the snake). Within each heat
// assignments come back sorted by lane number.
func serpentineAssign(entries []*Entry, laneCount int) ([][]laneAssignment, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	baseOrder, err := baseLaneOrder(laneCount)
	if err != nil {
		return nil, err
	}
	reversed := make([]int, laneCount)
	for i, lane := range baseOrder {
		reversed[laneCount-1-i] = lane
	}

	heatCount := (len(entries) + laneCount - 1) / laneCount
	heats := make([][]laneAssignment, heatCount)

	for index, entry := range entries {
		block := index / laneCount
		heatIndex := heatCount - 1 - block
		order := baseOrder
		if block%2 == 1 {
			order = reversed
		}
		heats[heatIndex] = append(heats[heatIndex], laneAssignment{
			laneNumber: order[index%laneCount],
			entry:      entry,
		})
	}

	for _, assignments := range heats {
		a := assignments
		sort.Slice(a, func(i, j int) bool { return a[i].laneNumber < a[j].laneNumber })
	}
	return heats, nil
}
