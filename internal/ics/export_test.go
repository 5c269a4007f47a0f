package ics

import (
	"bytes"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/dyluth/agenda/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(t *testing.T) *schedule.Snapshot {
	t.Helper()

	start := schedule.NewClock(9, 0, 0)
	snap, err := schedule.NewSnapshot(schedule.Data{
		Days: []schedule.Day{
			{ID: "d1", Date: time.Date(2013, 9, 22, 0, 0, 0, 0, time.UTC)},
			{ID: "d2", Date: time.Date(2013, 9, 23, 0, 0, 0, 0, time.UTC)},
		},
		Venues: []schedule.Venue{{ID: "hall", Name: "Main Hall", Order: 1}, {ID: "room", Name: "Room 2", Order: 2}},
		Slots: []schedule.Slot{
			{ID: "s1", DayID: "d1", Start: &start, End: schedule.NewClock(10, 0, 0)},
			{ID: "s2", DayID: "d1", PreviousSlotID: "s1", End: schedule.NewClock(11, 30, 0)},
			{ID: "bad", DayID: "d2", PreviousSlotID: "bad", End: schedule.NewClock(11, 0, 0)},
		},
		Talks: []schedule.Talk{{ID: "t1", Title: "Concurrency in Practice", Status: schedule.TalkStatusAccepted}},
		Items: []schedule.ScheduleItem{
			{ID: "i1", VenueID: "hall", SlotIDs: []string{"s1", "s2"}, Content: schedule.TalkContent("t1"), Details: "Bring a laptop"},
			{ID: "i2", VenueID: "room", SlotIDs: []string{"s2"}, Details: "Open space"},
		},
	})
	require.NoError(t, err)
	return snap
}

func TestExport(t *testing.T) {
	snap := testSnapshot(t)
	tables, _ := snap.BuildSchedule()

	loc := time.FixedZone("SAST", 2*60*60)
	var buf bytes.Buffer
	err := Export(&buf, snap, tables, Options{
		Conference:   "pycon",
		CalendarName: "PyCon ZA",
		Location:     loc,
		Stamp:        time.Date(2013, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	events := cal.Events()
	// The filler in row one and the broken day produce no events.
	require.Len(t, events, 2)

	byUID := make(map[string]*ical.VEvent)
	for _, ev := range events {
		byUID[ev.Id()] = ev
	}

	talk := byUID[EventUID("pycon", "i1", "s1")]
	require.NotNil(t, talk)
	assert.Equal(t, "Concurrency in Practice", talk.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Main Hall", talk.GetProperty(ical.ComponentPropertyLocation).Value)
	assert.Equal(t, "Bring a laptop", talk.GetProperty(ical.ComponentPropertyDescription).Value)

	startAt, err := talk.GetStartAt()
	require.NoError(t, err)
	endAt, err := talk.GetEndAt()
	require.NoError(t, err)
	assert.True(t, startAt.Equal(time.Date(2013, 9, 22, 9, 0, 0, 0, loc)), "start %s", startAt)
	assert.True(t, endAt.Equal(time.Date(2013, 9, 22, 11, 30, 0, 0, loc)), "end %s", endAt)

	open := byUID[EventUID("pycon", "i2", "s2")]
	require.NotNil(t, open)
	assert.Equal(t, "Open space", open.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Nil(t, open.GetProperty(ical.ComponentPropertyDescription))
}

func TestEventUID(t *testing.T) {
	tests := []struct {
		name       string
		conference string
		want       string
	}{
		{"plain name", "pycon", "i1-s1@pycon.agenda"},
		{"spaces and capitals", "My Conf 2024", "i1-s1@my-conf-2024.agenda"},
		{"punctuation runs collapse", "  PyCon (UK) -- 2013!", "i1-s1@pycon-uk-2013.agenda"},
		{"non-ascii letters dropped", "Café Conf", "i1-s1@caf-conf.agenda"},
		{"nothing usable", "!!!", "i1-s1@conference.agenda"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid := EventUID(tt.conference, "i1", "s1")
			assert.Equal(t, tt.want, uid)
			assert.NotContains(t, uid, " ")
		})
	}
}
