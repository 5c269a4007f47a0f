// Package schedule builds the per-day agenda grid of a conference and checks a
// schedule for problems an editor needs to fix before publishing.
//
// # Overview
//
// A conference runs over Days. Each day is divided into Slots (time intervals)
// and takes place in Venues (rooms or tracks). A ScheduleItem places one piece
// of content, either a Talk or a static Page, in a venue for one or more slots.
//
// All read operations work on a Snapshot: an immutable, indexed copy of the
// schedule taken from one consistent read of the persistence layer. A Snapshot
// never changes after NewSnapshot returns and can be shared freely between
// goroutines.
//
// # Slot Chains
//
// A slot either carries an explicit start time or names a previous slot, in
// which case it starts when that slot ends. ResolveDay follows these chains and
// rejects cycles (CycleError) and chains with no root (MalformedSlotError).
//
// # Table Layout
//
// BuildTable lays out one day as rows (slots ordered by start time) and columns
// (permitted venues in display order):
//
//   - an item attached to consecutive slots of its venue becomes a single cell
//     with a rowspan;
//   - an empty column is merged into the nearest occupied cell to its left in
//     the same row, or to its right when there is none on the left.
//
// Cells never overlap, and every row that has cells is fully covered.
//
// # Checks
//
// Five checks report problems without modifying anything:
//
//	FindOverlappingSlots        slots on one day whose intervals intersect
//	FindClashes                 venue/slot positions holding more than one item
//	ValidateItems               items with missing, unaccepted or conflicting content
//	FindDuplicateScheduleItems  talks or pages scheduled more than once
//	FindInvalidVenues           items in a venue on a day it is not available
//
// Validate runs all of them, plus FindNonContiguousItems, and collects a Report.
//
// # Usage Example
//
//	snap, err := schedule.NewSnapshot(data)
//	if err != nil {
//		return err
//	}
//
//	rows, err := snap.BuildTable("day-1")
//	if err != nil {
//		return err
//	}
//
//	report := snap.Validate()
//	if !report.Clean() {
//		fmt.Printf("%d problems found\n", report.Findings())
//	}
package schedule
