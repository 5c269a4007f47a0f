package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day is a single conference day. Days are ordered by date.
type Day struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"` // Only the calendar date is significant
}

// Clock is a time of day with one-second resolution, stored as seconds since midnight.
type Clock int32

// NewClock builds a Clock from hours, minutes and seconds.
func NewClock(hour, minute, second int) Clock {
	return Clock(hour*3600 + minute*60 + second)
}

// ParseClock parses "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM or HH:MM:SS", s)
	}

	limits := []int{23, 59, 59}
	values := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		values[i] = n
	}

	return NewClock(values[0], values[1], values[2]), nil
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / 3600 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 3600 / 60 }

// Second returns the second component.
func (c Clock) Second() int { return int(c) % 60 }

// On returns the instant at which this time of day falls on the given date in loc.
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, loc)
}

// String formats the clock as HH:MM, or HH:MM:SS when seconds are set.
func (c Clock) String() string {
	if c.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
	}
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Slot is a time interval on a day. Its start is either explicit or the end of
// the previous slot in its chain; a slot never has both.
type Slot struct {
	ID             string `json:"id"`
	DayID          string `json:"day_id"`
	Name           string `json:"name,omitempty"`
	Start          *Clock `json:"start,omitempty"`
	PreviousSlotID string `json:"previous_slot_id,omitempty"`
	End            Clock  `json:"end"`
}

// Venue is a room or track. Venues are displayed as columns, ordered by Order.
type Venue struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Order  int      `json:"order"`
	DayIDs []string `json:"day_ids"` // Empty means the venue is usable on every day
}

// Restricted reports whether the venue has a permitted-day set.
func (v Venue) Restricted() bool {
	return len(v.DayIDs) > 0
}

// PermitsDay reports whether the venue may be used on the given day.
func (v Venue) PermitsDay(dayID string) bool {
	if !v.Restricted() {
		return true
	}
	for _, id := range v.DayIDs {
		if id == dayID {
			return true
		}
	}
	return false
}

// TalkStatus is the review state of a talk.
type TalkStatus string

const (
	TalkStatusAccepted    TalkStatus = "accepted"
	TalkStatusRejected    TalkStatus = "rejected"
	TalkStatusPending     TalkStatus = "pending"
	TalkStatusSubmitted   TalkStatus = "submitted"
	TalkStatusProvisional TalkStatus = "provisional"
	TalkStatusWithdrawn   TalkStatus = "withdrawn"
	TalkStatusCancelled   TalkStatus = "cancelled"
)

// Validate checks if the TalkStatus is a known value.
func (ts TalkStatus) Validate() error {
	switch ts {
	case TalkStatusAccepted, TalkStatusRejected, TalkStatusPending, TalkStatusSubmitted,
		TalkStatusProvisional, TalkStatusWithdrawn, TalkStatusCancelled:
		return nil
	default:
		return fmt.Errorf("unknown talk status: %q", ts)
	}
}

// Schedulable reports whether a talk in this state may appear on the agenda.
func (ts TalkStatus) Schedulable() bool {
	return ts == TalkStatusAccepted
}

// Talk is a submitted talk.
type Talk struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Status TalkStatus `json:"status"`
}

// Page is static content (a break, a social event) that can be scheduled without review.
type Page struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ScheduleItem places content in a venue for one or more slots.
type ScheduleItem struct {
	ID      string     `json:"id"`
	VenueID string     `json:"venue_id"`
	SlotIDs []string   `json:"slot_ids"`
	Content ContentRef `json:"content"`
	Details string     `json:"details,omitempty"` // Free text, may stand in for a content reference
}

// HasSlot reports whether the item is attached to the given slot.
func (it ScheduleItem) HasSlot(slotID string) bool {
	for _, id := range it.SlotIDs {
		if id == slotID {
			return true
		}
	}
	return false
}

// Data is the raw input to NewSnapshot, as read from a persistence layer.
type Data struct {
	Days   []Day          `json:"days"`
	Venues []Venue        `json:"venues"`
	Slots  []Slot         `json:"slots"`
	Items  []ScheduleItem `json:"items"`
	Talks  []Talk         `json:"talks"`
	Pages  []Page         `json:"pages"`
}
