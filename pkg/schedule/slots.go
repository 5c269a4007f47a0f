package schedule

import (
	"fmt"
	"sort"
)

// ResolvedSlot pairs a slot with its resolved time interval [Start, End).
type ResolvedSlot struct {
	Slot  Slot  `json:"slot"`
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect.
// Slots that only touch at a boundary do not overlap, and an empty interval
// overlaps nothing.
func (r ResolvedSlot) Overlaps(other ResolvedSlot) bool {
	if r.Start >= r.End || other.Start >= other.End {
		return false
	}
	return r.Start < other.End && other.Start < r.End
}

// ResolveDay resolves the start and end of every slot on a day and returns them
// ordered by start, then end, then slot id.
//
// A chained slot starts when its immediate predecessor ends. The chain is still
// walked back to its root so that cycles and rootless chains are rejected with a
// CycleError or MalformedSlotError instead of looping.
func (s *Snapshot) ResolveDay(dayID string) ([]ResolvedSlot, error) {
	if _, ok := s.dayIndex[dayID]; !ok {
		return nil, fmt.Errorf("unknown day '%s'", dayID)
	}

	// Slots already proven to reach a root; shared across walks on this day.
	rooted := make(map[int]bool)

	var resolved []ResolvedSlot
	for i := range s.slots {
		sl := s.slots[i]
		if sl.DayID != dayID {
			continue
		}

		if err := s.checkChain(i, rooted); err != nil {
			return nil, err
		}

		start := s.startOf(i)
		if sl.End <= start {
			return nil, &MalformedSlotError{
				DayID:  dayID,
				SlotID: sl.ID,
				Reason: fmt.Sprintf("ends at %s, not after it starts at %s", sl.End, start),
			}
		}

		resolved = append(resolved, ResolvedSlot{Slot: s.slotAt(i), Start: start, End: sl.End})
	}

	sort.Slice(resolved, func(i, j int) bool {
		a, b := resolved[i], resolved[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Slot.ID < b.Slot.ID
	})

	return resolved, nil
}

// startOf returns the start of a slot whose chain has already been checked.
func (s *Snapshot) startOf(i int) Clock {
	sl := s.slots[i]
	if sl.Start != nil {
		return *sl.Start
	}
	return s.slots[s.slotIndex[sl.PreviousSlotID]].End
}

// checkChain walks previous-slot links from slot i until it reaches a root
// (explicit start) or a slot already known to be rooted.
func (s *Snapshot) checkChain(i int, rooted map[int]bool) error {
	visited := make(map[int]int) // arena index -> position in path
	var path []int

	cur := i
	for !rooted[cur] {
		if pos, seen := visited[cur]; seen {
			cycle := make([]string, 0, len(path)-pos)
			for _, idx := range path[pos:] {
				cycle = append(cycle, s.slots[idx].ID)
			}
			return &CycleError{DayID: s.slots[i].DayID, SlotIDs: cycle}
		}
		visited[cur] = len(path)
		path = append(path, cur)

		sl := s.slots[cur]
		switch {
		case sl.Start != nil && sl.PreviousSlotID != "":
			return &MalformedSlotError{DayID: sl.DayID, SlotID: sl.ID, Reason: "has both a start time and a previous slot"}
		case sl.Start != nil:
			for _, idx := range path {
				rooted[idx] = true
			}
			return nil
		case sl.PreviousSlotID == "":
			return &MalformedSlotError{DayID: sl.DayID, SlotID: sl.ID, Reason: "has neither a start time nor a previous slot"}
		}

		prev := s.slotIndex[sl.PreviousSlotID]
		if s.slots[prev].DayID != sl.DayID {
			return &MalformedSlotError{
				DayID:  sl.DayID,
				SlotID: sl.ID,
				Reason: fmt.Sprintf("previous slot '%s' is on day '%s'", sl.PreviousSlotID, s.slots[prev].DayID),
			}
		}
		cur = prev
	}

	for _, idx := range path {
		rooted[idx] = true
	}
	return nil
}
