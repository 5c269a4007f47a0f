package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fixture accumulates schedule data for a test and turns it into a Snapshot.
type fixture struct {
	data Data
}

func newFixture() *fixture {
	return &fixture{}
}

func (f *fixture) day(id, date string) *fixture {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	f.data.Days = append(f.data.Days, Day{ID: id, Date: d})
	return f
}

func (f *fixture) venue(id string, order int, days ...string) *fixture {
	f.data.Venues = append(f.data.Venues, Venue{ID: id, Name: "Venue " + id, Order: order, DayIDs: days})
	return f
}

// slot adds a slot with an explicit start.
func (f *fixture) slot(id, day, start, end string) *fixture {
	s := mustClock(start)
	f.data.Slots = append(f.data.Slots, Slot{ID: id, DayID: day, Start: &s, End: mustClock(end)})
	return f
}

// chained adds a slot that starts when previous ends.
func (f *fixture) chained(id, day, previous, end string) *fixture {
	f.data.Slots = append(f.data.Slots, Slot{ID: id, DayID: day, PreviousSlotID: previous, End: mustClock(end)})
	return f
}

// hourly adds one-hour slots from 10:00, the first with an explicit start and
// the rest chained.
func (f *fixture) hourly(day string, ids ...string) *fixture {
	for i, id := range ids {
		end := NewClock(11+i, 0, 0).String()
		if i == 0 {
			f.slot(id, day, "10:00", end)
		} else {
			f.chained(id, day, ids[i-1], end)
		}
	}
	return f
}

func (f *fixture) item(id, venue string, slots ...string) *fixture {
	f.data.Items = append(f.data.Items, ScheduleItem{ID: id, VenueID: venue, SlotIDs: slots, Details: "Item " + id})
	return f
}

func (f *fixture) itemWith(id, venue string, content ContentRef, slots ...string) *fixture {
	f.data.Items = append(f.data.Items, ScheduleItem{ID: id, VenueID: venue, SlotIDs: slots, Content: content})
	return f
}

func (f *fixture) talk(id string, status TalkStatus) *fixture {
	f.data.Talks = append(f.data.Talks, Talk{ID: id, Title: "Talk " + id, Status: status})
	return f
}

func (f *fixture) page(id string) *fixture {
	f.data.Pages = append(f.data.Pages, Page{ID: id, Name: "Page " + id, Slug: id})
	return f
}

func (f *fixture) snapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(f.data)
	require.NoError(t, err)
	return snap
}

func mustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// span is the observable shape of a cell: item id ("" for filler) and extent.
type span struct {
	Item    string
	Column  int
	Rowspan int
	Colspan int
}

func spansOf(row Row) []span {
	spans := make([]span, 0, len(row.Cells))
	for _, c := range row.Cells {
		id := ""
		if c.Item != nil {
			id = c.Item.ID
		}
		spans = append(spans, span{Item: id, Column: c.Column, Rowspan: c.Rowspan, Colspan: c.Colspan})
	}
	return spans
}

func itemIDs(items []ScheduleItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func slotIDs(slots []Slot) []string {
	ids := make([]string, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	return ids
}
