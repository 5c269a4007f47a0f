package schedule

import (
	"sort"
)

// Snapshot is an immutable, indexed view of one consistent read of the schedule.
// Entities live in arenas (slices) and are looked up through id → index maps.
// All methods are read-only, so a Snapshot may be shared between goroutines.
type Snapshot struct {
	days   []Day
	venues []Venue
	slots  []Slot
	items  []ScheduleItem
	talks  []Talk
	pages  []Page

	dayIndex   map[string]int
	venueIndex map[string]int
	slotIndex  map[string]int
	itemIndex  map[string]int
	talkIndex  map[string]int
	pageIndex  map[string]int
}

// NewSnapshot copies data into a Snapshot and checks its references.
// Dangling day, venue and slot references fail with a ReferenceError; dangling
// talk and page references are left for ValidateItems to report.
func NewSnapshot(data Data) (*Snapshot, error) {
	s := &Snapshot{
		days:   append([]Day(nil), data.Days...),
		venues: make([]Venue, len(data.Venues)),
		slots:  make([]Slot, len(data.Slots)),
		items:  make([]ScheduleItem, len(data.Items)),
		talks:  append([]Talk(nil), data.Talks...),
		pages:  append([]Page(nil), data.Pages...),
	}

	for i, v := range data.Venues {
		v.DayIDs = append([]string(nil), v.DayIDs...)
		s.venues[i] = v
	}
	for i, sl := range data.Slots {
		if sl.Start != nil {
			start := *sl.Start
			sl.Start = &start
		}
		s.slots[i] = sl
	}
	for i, it := range data.Items {
		it.SlotIDs = append([]string(nil), it.SlotIDs...)
		s.items[i] = it
	}

	var err error
	if s.dayIndex, err = buildIndex("day", len(s.days), func(i int) string { return s.days[i].ID }); err != nil {
		return nil, err
	}
	if s.venueIndex, err = buildIndex("venue", len(s.venues), func(i int) string { return s.venues[i].ID }); err != nil {
		return nil, err
	}
	if s.slotIndex, err = buildIndex("slot", len(s.slots), func(i int) string { return s.slots[i].ID }); err != nil {
		return nil, err
	}
	if s.itemIndex, err = buildIndex("item", len(s.items), func(i int) string { return s.items[i].ID }); err != nil {
		return nil, err
	}
	if s.talkIndex, err = buildIndex("talk", len(s.talks), func(i int) string { return s.talks[i].ID }); err != nil {
		return nil, err
	}
	if s.pageIndex, err = buildIndex("page", len(s.pages), func(i int) string { return s.pages[i].ID }); err != nil {
		return nil, err
	}

	if err := s.checkReferences(); err != nil {
		return nil, err
	}

	return s, nil
}

func buildIndex(kind string, n int, id func(int) string) (map[string]int, error) {
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := id(i)
		if key == "" {
			return nil, &ReferenceError{Kind: kind, Field: "id"}
		}
		if _, exists := index[key]; exists {
			return nil, &ReferenceError{Kind: kind, ID: key}
		}
		index[key] = i
	}
	return index, nil
}

func (s *Snapshot) checkReferences() error {
	for _, v := range s.venues {
		for _, dayID := range v.DayIDs {
			if _, ok := s.dayIndex[dayID]; !ok {
				return &ReferenceError{Kind: "venue", ID: v.ID, Field: "day", Target: dayID}
			}
		}
	}

	for _, sl := range s.slots {
		if _, ok := s.dayIndex[sl.DayID]; !ok {
			return &ReferenceError{Kind: "slot", ID: sl.ID, Field: "day", Target: sl.DayID}
		}
		if sl.PreviousSlotID != "" {
			if _, ok := s.slotIndex[sl.PreviousSlotID]; !ok {
				return &ReferenceError{Kind: "slot", ID: sl.ID, Field: "previous slot", Target: sl.PreviousSlotID}
			}
		}
	}

	for _, it := range s.items {
		if _, ok := s.venueIndex[it.VenueID]; !ok {
			return &ReferenceError{Kind: "item", ID: it.ID, Field: "venue", Target: it.VenueID}
		}
		for _, slotID := range it.SlotIDs {
			if _, ok := s.slotIndex[slotID]; !ok {
				return &ReferenceError{Kind: "item", ID: it.ID, Field: "slot", Target: slotID}
			}
		}
	}

	for _, t := range s.talks {
		if err := t.Status.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Days returns all days in ascending date order.
func (s *Snapshot) Days() []Day {
	days := append([]Day(nil), s.days...)
	sort.SliceStable(days, func(i, j int) bool {
		if !days[i].Date.Equal(days[j].Date) {
			return days[i].Date.Before(days[j].Date)
		}
		return days[i].ID < days[j].ID
	})
	return days
}

// Venues returns all venues in display order.
func (s *Snapshot) Venues() []Venue {
	venues := make([]Venue, len(s.venues))
	for i, v := range s.venues {
		v.DayIDs = append([]string(nil), v.DayIDs...)
		venues[i] = v
	}
	sortVenues(venues)
	return venues
}

// Slots returns all slots ordered by id.
func (s *Snapshot) Slots() []Slot {
	slots := make([]Slot, len(s.slots))
	for i := range s.slots {
		slots[i] = s.slotAt(i)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })
	return slots
}

// Items returns all schedule items ordered by id.
func (s *Snapshot) Items() []ScheduleItem {
	items := make([]ScheduleItem, len(s.items))
	for i := range s.items {
		items[i] = s.itemAt(i)
	}
	sortItems(items)
	return items
}

// Talks returns all talks ordered by id.
func (s *Snapshot) Talks() []Talk {
	talks := append([]Talk(nil), s.talks...)
	sort.Slice(talks, func(i, j int) bool { return talks[i].ID < talks[j].ID })
	return talks
}

// Pages returns all pages ordered by id.
func (s *Snapshot) Pages() []Page {
	pages := append([]Page(nil), s.pages...)
	sort.Slice(pages, func(i, j int) bool { return pages[i].ID < pages[j].ID })
	return pages
}

// Day looks up a day by id.
func (s *Snapshot) Day(id string) (Day, bool) {
	i, ok := s.dayIndex[id]
	if !ok {
		return Day{}, false
	}
	return s.days[i], true
}

// Venue looks up a venue by id.
func (s *Snapshot) Venue(id string) (Venue, bool) {
	i, ok := s.venueIndex[id]
	if !ok {
		return Venue{}, false
	}
	v := s.venues[i]
	v.DayIDs = append([]string(nil), v.DayIDs...)
	return v, true
}

// Slot looks up a slot by id.
func (s *Snapshot) Slot(id string) (Slot, bool) {
	i, ok := s.slotIndex[id]
	if !ok {
		return Slot{}, false
	}
	return s.slotAt(i), true
}

// Item looks up a schedule item by id.
func (s *Snapshot) Item(id string) (ScheduleItem, bool) {
	i, ok := s.itemIndex[id]
	if !ok {
		return ScheduleItem{}, false
	}
	return s.itemAt(i), true
}

// Talk looks up a talk by id.
func (s *Snapshot) Talk(id string) (Talk, bool) {
	i, ok := s.talkIndex[id]
	if !ok {
		return Talk{}, false
	}
	return s.talks[i], true
}

// Page looks up a page by id.
func (s *Snapshot) Page(id string) (Page, bool) {
	i, ok := s.pageIndex[id]
	if !ok {
		return Page{}, false
	}
	return s.pages[i], true
}

// Data returns a deep copy of the snapshot contents, for persistence.
func (s *Snapshot) Data() Data {
	return Data{
		Days:   s.Days(),
		Venues: s.Venues(),
		Slots:  s.Slots(),
		Items:  s.Items(),
		Talks:  s.Talks(),
		Pages:  s.Pages(),
	}
}

func (s *Snapshot) slotAt(i int) Slot {
	sl := s.slots[i]
	if sl.Start != nil {
		start := *sl.Start
		sl.Start = &start
	}
	return sl
}

func (s *Snapshot) itemAt(i int) ScheduleItem {
	it := s.items[i]
	it.SlotIDs = append([]string(nil), it.SlotIDs...)
	return it
}

func sortVenues(venues []Venue) {
	sort.SliceStable(venues, func(i, j int) bool {
		a, b := venues[i], venues[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

func sortItems(items []ScheduleItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
