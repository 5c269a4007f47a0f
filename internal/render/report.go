package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dyluth/agenda/pkg/schedule"
)

// FormatReport writes validation findings as text, one section per check.
// Returns the number of findings written.
func FormatReport(w io.Writer, snap *schedule.Snapshot, report schedule.Report) int {
	if report.Clean() {
		fmt.Fprintf(w, "No problems found\n")
		return 0
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "Structural errors:\n")
		for _, err := range report.Errors {
			fmt.Fprintf(w, "  - %v\n", err)
		}
		fmt.Fprintln(w)
	}

	if len(report.OverlappingSlots) > 0 {
		fmt.Fprintf(w, "Overlapping slots:\n")
		for _, slot := range report.OverlappingSlots {
			fmt.Fprintf(w, "  - %s\n", describeSlot(snap, slot))
		}
		fmt.Fprintln(w)
	}

	if len(report.Clashes) > 0 {
		fmt.Fprintf(w, "Clashes:\n")
		for _, pos := range report.SortedClashes() {
			slot, _ := snap.Slot(pos.SlotID)
			fmt.Fprintf(w, "  - %s, %s: %s\n", venueName(snap, pos.VenueID), describeSlot(snap, slot),
				describeItems(snap, report.Clashes[pos]))
		}
		fmt.Fprintln(w)
	}

	writeItems(w, snap, "Invalid items", report.InvalidItems)
	writeItems(w, snap, "Duplicate items", report.DuplicateItems)

	if len(report.InvalidVenues) > 0 {
		fmt.Fprintf(w, "Venues used on unavailable days:\n")
		for _, venueID := range sortedKeys(report.InvalidVenues) {
			fmt.Fprintf(w, "  - %s: %s\n", venueName(snap, venueID), describeItems(snap, report.InvalidVenues[venueID]))
		}
		fmt.Fprintln(w)
	}

	writeItems(w, snap, "Items split across non-consecutive slots", report.NonContiguousItems)

	findings := report.Findings()
	noun := "problem"
	if findings != 1 {
		noun = "problems"
	}
	fmt.Fprintf(w, "%d %s found\n", findings, noun)

	return findings
}

func writeItems(w io.Writer, snap *schedule.Snapshot, title string, items []schedule.ScheduleItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", describeItem(snap, item))
	}
	fmt.Fprintln(w)
}

func describeItem(snap *schedule.Snapshot, item schedule.ScheduleItem) string {
	return fmt.Sprintf("%s (%s, %s)", item.ID, ItemTitle(snap, item), item.Content)
}

func describeItems(snap *schedule.Snapshot, items []schedule.ScheduleItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, describeItem(snap, item))
	}
	return strings.Join(parts, ", ")
}

func describeSlot(snap *schedule.Snapshot, slot schedule.Slot) string {
	day, _ := snap.Day(slot.DayID)
	when := "?"
	if slot.Start != nil {
		when = slot.Start.String()
	} else if prev, ok := snap.Slot(slot.PreviousSlotID); ok {
		when = prev.End.String()
	}
	return fmt.Sprintf("%s %s %s-%s", slot.ID, day.Date.Format("2006-01-02"), when, slot.End)
}

func venueName(snap *schedule.Snapshot, id string) string {
	if v, ok := snap.Venue(id); ok {
		return v.Name
	}
	return id
}

func sortedKeys(m map[string][]schedule.ScheduleItem) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReportJSON is the machine-readable form of a validation report. Items are
// referenced by id.
type ReportJSON struct {
	Conference         string              `json:"conference"`
	SnapshotID         string              `json:"snapshot_id,omitempty"`
	Clean              bool                `json:"clean"`
	Findings           int                 `json:"findings"`
	OverlappingSlots   []string            `json:"overlapping_slots"`
	Clashes            []ClashJSON         `json:"clashes"`
	InvalidItems       []string            `json:"invalid_items"`
	DuplicateItems     []string            `json:"duplicate_items"`
	InvalidVenues      map[string][]string `json:"invalid_venues"`
	NonContiguousItems []string            `json:"non_contiguous_items"`
	Errors             []string            `json:"errors"`
}

// ClashJSON is one clashing position.
type ClashJSON struct {
	VenueID string   `json:"venue_id"`
	SlotID  string   `json:"slot_id"`
	Items   []string `json:"items"`
}

// NewReportJSON converts a report to its JSON form.
func NewReportJSON(conference, snapshotID string, report schedule.Report) ReportJSON {
	out := ReportJSON{
		Conference:         conference,
		SnapshotID:         snapshotID,
		Clean:              report.Clean(),
		Findings:           report.Findings(),
		OverlappingSlots:   []string{},
		Clashes:            []ClashJSON{},
		InvalidItems:       ids(report.InvalidItems),
		DuplicateItems:     ids(report.DuplicateItems),
		InvalidVenues:      make(map[string][]string, len(report.InvalidVenues)),
		NonContiguousItems: ids(report.NonContiguousItems),
		Errors:             []string{},
	}

	for _, slot := range report.OverlappingSlots {
		out.OverlappingSlots = append(out.OverlappingSlots, slot.ID)
	}
	for _, pos := range report.SortedClashes() {
		out.Clashes = append(out.Clashes, ClashJSON{VenueID: pos.VenueID, SlotID: pos.SlotID, Items: ids(report.Clashes[pos])})
	}
	for venueID, items := range report.InvalidVenues {
		out.InvalidVenues[venueID] = ids(items)
	}
	for _, err := range report.Errors {
		out.Errors = append(out.Errors, err.Error())
	}

	return out
}

// FormatReportJSON writes a validation report as pretty-printed JSON.
func FormatReportJSON(w io.Writer, conference, snapshotID string, report schedule.Report) error {
	data, err := json.MarshalIndent(NewReportJSON(conference, snapshotID, report), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

func ids(items []schedule.ScheduleItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
