package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dyluth/agenda/internal/render"
	"github.com/dyluth/agenda/pkg/schedule"
)

// Options controls calendar export.
type Options struct {
	Conference   string         // Used in event UIDs
	CalendarName string         // X-WR-CALNAME
	Location     *time.Location // Zone the slot times are in; UTC if nil
	Stamp        time.Time      // DTSTAMP of every event; now if zero
}

// Build converts built day tables into a calendar with one VEVENT per item cell.
// The event runs from the start of the cell's first row to the end of its last
// row. Filler cells and days that failed to lay out are skipped.
func Build(snap *schedule.Snapshot, tables []schedule.DayTable, opts Options) *ical.Calendar {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//agenda//" + opts.Conference + "//EN")
	if opts.CalendarName != "" {
		cal.SetXWRCalName(opts.CalendarName)
	}
	cal.SetXWRTimezone(loc.String())

	for _, table := range tables {
		if table.Err != nil {
			continue
		}
		for r, row := range table.Rows {
			for _, cell := range row.Cells {
				if cell.Item == nil {
					continue
				}
				last := table.Rows[r+cell.Rowspan-1].Slot

				event := cal.AddEvent(EventUID(opts.Conference, cell.Item.ID, row.Slot.Slot.ID))
				event.SetDtStampTime(stamp)
				event.SetStartAt(row.Slot.Start.On(table.Day.Date, loc))
				event.SetEndAt(last.End.On(table.Day.Date, loc))
				event.SetSummary(render.Title(snap, *cell.Item))
				event.SetLocation(cell.Venue.Name)
				if desc := description(*cell.Item); desc != "" {
					event.SetDescription(desc)
				}
			}
		}
	}

	return cal
}

// Export writes the calendar for the given tables to w.
func Export(w io.Writer, snap *schedule.Snapshot, tables []schedule.DayTable, opts Options) error {
	cal := Build(snap, tables, opts)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// EventUID identifies the event of an item run starting at a slot. It stays the
// same across exports so calendar clients update events instead of duplicating them.
func EventUID(conference, itemID, slotID string) string {
	return fmt.Sprintf("%s-%s@%s.agenda", itemID, slotID, uidDomain(conference))
}

// uidDomain lowercases the conference name and collapses every run of
// characters other than ASCII letters and digits into a single hyphen.
func uidDomain(conference string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(conference) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	if b.Len() == 0 {
		return "conference"
	}
	return b.String()
}

func description(item schedule.ScheduleItem) string {
	if item.Content.Kind() == schedule.ContentNone {
		// Details already serve as the summary.
		return ""
	}
	return strings.TrimSpace(item.Details)
}
