package schedule

import (
	"errors"
	"fmt"
	"sort"
)

// Position identifies one venue/slot cell of the schedule.
type Position struct {
	VenueID string `json:"venue_id"`
	SlotID  string `json:"slot_id"`
}

// FindOverlappingSlots returns every slot whose [start, end) interval
// intersects another slot's on the same day, ordered by id.
// Days whose slots cannot be resolved are skipped and reported in the error.
func (s *Snapshot) FindOverlappingSlots() ([]Slot, error) {
	var overlapping []Slot
	var errs []error

	for _, day := range s.Days() {
		resolved, err := s.ResolveDay(day.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		implicated := make([]bool, len(resolved))
		for i := range resolved {
			for j := i + 1; j < len(resolved); j++ {
				if resolved[i].Overlaps(resolved[j]) {
					implicated[i] = true
					implicated[j] = true
				}
			}
		}
		for i, hit := range implicated {
			if hit {
				overlapping = append(overlapping, resolved[i].Slot)
			}
		}
	}

	sort.Slice(overlapping, func(i, j int) bool { return overlapping[i].ID < overlapping[j].ID })
	return overlapping, errors.Join(errs...)
}

// FindClashes returns the venue/slot positions occupied by more than one item.
func (s *Snapshot) FindClashes() map[Position][]ScheduleItem {
	byPosition := make(map[Position][]ScheduleItem)
	for _, item := range s.Items() {
		seen := make(map[string]bool)
		for _, slotID := range item.SlotIDs {
			if seen[slotID] {
				continue
			}
			seen[slotID] = true
			pos := Position{VenueID: item.VenueID, SlotID: slotID}
			byPosition[pos] = append(byPosition[pos], item)
		}
	}

	clashes := make(map[Position][]ScheduleItem)
	for pos, items := range byPosition {
		if len(items) > 1 {
			clashes[pos] = items
		}
	}
	return clashes
}

// ValidateItems returns items whose content cannot be shown: both a talk and a
// page, a talk that is missing or not accepted, a missing page, or no reference
// and no free-text details.
func (s *Snapshot) ValidateItems() []ScheduleItem {
	var invalid []ScheduleItem
	for _, item := range s.Items() {
		if !s.contentValid(item) {
			invalid = append(invalid, item)
		}
	}
	return invalid
}

func (s *Snapshot) contentValid(item ScheduleItem) bool {
	switch item.Content.Kind() {
	case ContentConflict:
		return false
	case ContentTalk:
		talkID, _ := item.Content.TalkID()
		talk, ok := s.Talk(talkID)
		return ok && talk.Status.Schedulable()
	case ContentPage:
		pageID, _ := item.Content.PageID()
		_, ok := s.Page(pageID)
		return ok
	default:
		return item.Details != ""
	}
}

// FindDuplicateScheduleItems returns every item whose talk or page is also
// referenced by another item.
func (s *Snapshot) FindDuplicateScheduleItems() []ScheduleItem {
	byContent := make(map[string][]ScheduleItem)
	for _, item := range s.Items() {
		for _, key := range item.Content.keys() {
			byContent[key] = append(byContent[key], item)
		}
	}

	dupes := make(map[string]ScheduleItem)
	for _, items := range byContent {
		if len(items) < 2 {
			continue
		}
		for _, item := range items {
			dupes[item.ID] = item
		}
	}

	return sortedItemSet(dupes)
}

// FindInvalidVenues maps venue ids to the items that use the venue on a day
// outside its permitted-day set.
func (s *Snapshot) FindInvalidVenues() map[string][]ScheduleItem {
	invalid := make(map[string][]ScheduleItem)
	for _, item := range s.Items() {
		venue, ok := s.Venue(item.VenueID)
		if !ok || !venue.Restricted() {
			continue
		}
		for _, slotID := range item.SlotIDs {
			slot, _ := s.Slot(slotID)
			if !venue.PermitsDay(slot.DayID) {
				invalid[venue.ID] = append(invalid[venue.ID], item)
				break
			}
		}
	}
	return invalid
}

// FindNonContiguousItems returns items attached to slots of one venue and day
// that are not consecutive rows of that day's table. Such items render as
// several separate cells.
func (s *Snapshot) FindNonContiguousItems() ([]ScheduleItem, error) {
	found := make(map[string]ScheduleItem)
	var errs []error

	for _, day := range s.Days() {
		resolved, err := s.ResolveDay(day.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rowOf := make(map[string]int, len(resolved))
		for r, rs := range resolved {
			rowOf[rs.Slot.ID] = r
		}

		for _, item := range s.Items() {
			var rows []int
			seen := make(map[int]bool)
			for _, slotID := range item.SlotIDs {
				if r, ok := rowOf[slotID]; ok && !seen[r] {
					seen[r] = true
					rows = append(rows, r)
				}
			}
			sort.Ints(rows)
			for k := 1; k < len(rows); k++ {
				if rows[k] != rows[k-1]+1 {
					found[item.ID] = item
					break
				}
			}
		}
	}

	return sortedItemSet(found), errors.Join(errs...)
}

// Report collects the result of every check over one snapshot.
type Report struct {
	OverlappingSlots   []Slot                      `json:"overlapping_slots"`
	Clashes            map[Position][]ScheduleItem `json:"-"`
	InvalidItems       []ScheduleItem              `json:"invalid_items"`
	DuplicateItems     []ScheduleItem              `json:"duplicate_items"`
	InvalidVenues      map[string][]ScheduleItem   `json:"invalid_venues"`
	NonContiguousItems []ScheduleItem              `json:"non_contiguous_items"`
	Errors             []error                     `json:"-"`
}

// Validate runs every check and collects the findings. Structural errors of
// individual days are collected in Errors; the remaining days are still checked.
func (s *Snapshot) Validate() Report {
	var report Report

	overlapping, err := s.FindOverlappingSlots()
	report.OverlappingSlots = overlapping
	if err != nil {
		report.Errors = append(report.Errors, unjoin(err)...)
	}

	report.Clashes = s.FindClashes()
	report.InvalidItems = s.ValidateItems()
	report.DuplicateItems = s.FindDuplicateScheduleItems()
	report.InvalidVenues = s.FindInvalidVenues()

	// Resolution errors were already collected above.
	report.NonContiguousItems, _ = s.FindNonContiguousItems()

	return report
}

// Findings returns the number of reported problems, excluding structural errors.
func (r Report) Findings() int {
	n := len(r.OverlappingSlots) + len(r.InvalidItems) + len(r.DuplicateItems) + len(r.NonContiguousItems)
	n += len(r.Clashes)
	for _, items := range r.InvalidVenues {
		n += len(items)
	}
	return n
}

// Clean reports whether the snapshot has no findings and no structural errors.
func (r Report) Clean() bool {
	return r.Findings() == 0 && len(r.Errors) == 0
}

// SortedClashes returns the clash positions ordered by venue then slot id.
func (r Report) SortedClashes() []Position {
	positions := make([]Position, 0, len(r.Clashes))
	for pos := range r.Clashes {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].VenueID != positions[j].VenueID {
			return positions[i].VenueID < positions[j].VenueID
		}
		return positions[i].SlotID < positions[j].SlotID
	})
	return positions
}

func (p Position) String() string {
	return fmt.Sprintf("%s@%s", p.VenueID, p.SlotID)
}

func sortedItemSet(set map[string]ScheduleItem) []ScheduleItem {
	items := make([]ScheduleItem, 0, len(set))
	for _, item := range set {
		items = append(items, item)
	}
	sortItems(items)
	return items
}

// unjoin splits an errors.Join result back into its parts.
func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
